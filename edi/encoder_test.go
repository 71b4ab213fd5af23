package edi

import (
	"testing"
	"time"

	"github.com/ausocean/dabmux/eti"
)

func TestEncodeContainsCoreTags(t *testing.T) {
	f := eti.Empty(0, 0, false)
	f.MST = make([]byte, 32)
	if err := f.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	e := NewEncoder()
	subs := []SubChannelFrame{{SCID: 1, StartAddress: 0, TPL: 5, MST: f.MST}}
	packet := e.Encode(&f, subs, time.Time{})

	if len(packet)%8 != 0 {
		t.Errorf("len(packet) = %d, want multiple of 8", len(packet))
	}
	if !containsTagName(packet, "*ptr") {
		t.Error("packet missing *ptr tag")
	}
	if !containsTagName(packet, "deti") {
		t.Error("packet missing deti tag")
	}
	if !containsTagName(packet, "est0") {
		t.Error("packet missing est0 tag")
	}
}

func TestEncodeDLFCWrapsAt5000(t *testing.T) {
	f := eti.Empty(0, 0, false)
	f.Finalize()
	e := NewEncoder()
	e.dlfc = 4999
	e.Encode(&f, nil, time.Time{})
	if e.dlfc != 0 {
		t.Errorf("dlfc = %d, want 0 after wrap", e.dlfc)
	}
}

func TestEncodeEmitsTistWhenTimestamped(t *testing.T) {
	f := eti.Empty(0, 0, false)
	f.Finalize()
	e := NewEncoder()
	packet := e.Encode(&f, nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if !containsTagName(packet, "tist") {
		t.Error("packet missing tist tag when timestamp provided")
	}
}

func TestAssembleAFAdvancesSequence(t *testing.T) {
	e := NewEncoder()
	first := e.AssembleAF([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	second := e.AssembleAF([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	pFirst, err := ParseAF(first)
	if err != nil {
		t.Fatalf("ParseAF(first): %v", err)
	}
	pSecond, err := ParseAF(second)
	if err != nil {
		t.Fatalf("ParseAF(second): %v", err)
	}
	if pSecond.Seq != pFirst.Seq+1 {
		t.Errorf("second.Seq = %d, want %d", pSecond.Seq, pFirst.Seq+1)
	}
}

func containsTagName(packet []byte, name string) bool {
	off := 0
	for off+8 <= len(packet) {
		n := string(packet[off : off+4])
		bits := uint32(packet[off+4])<<24 | uint32(packet[off+5])<<16 | uint32(packet[off+6])<<8 | uint32(packet[off+7])
		valLen := int(bits / 8)
		if n == name {
			return true
		}
		off += 8 + valLen
	}
	return false
}
