package fig

import (
	"testing"

	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/dabmux/internal/crc"
)

func TestEncodeFICSizeModeI(t *testing.T) {
	e := &ensemble.Ensemble{EId: 0xCE15}
	fig00 := &FIG0_0{Ensemble: e, FrameNumber: func() uint64 { return 0 }}
	c := NewCarousel([]Encoder{fig00})
	c.Start(0)
	enc := NewFICEncoder(c)
	fic := enc.EncodeFIC(0)
	if len(fic) != FICSizeModeI {
		t.Fatalf("len(fic) = %d, want %d", len(fic), FICSizeModeI)
	}
}

func TestEncodeFICFIBCRCs(t *testing.T) {
	e := &ensemble.Ensemble{EId: 0xCE15}
	fig00 := &FIG0_0{Ensemble: e, FrameNumber: func() uint64 { return 0 }}
	c := NewCarousel([]Encoder{fig00})
	c.Start(0)
	enc := NewFICEncoder(c)
	fic := enc.EncodeFIC(0)
	for i := 0; i < 3; i++ {
		fib := fic[i*FIBSize : i*FIBSize+FIBSize]
		data, wantCRC := fib[:30], fib[30:32]
		got := crc.Stored16(data)
		if byte(got>>8) != wantCRC[0] || byte(got) != wantCRC[1] {
			t.Errorf("FIB %d CRC = % X, want % X", i, wantCRC, []byte{byte(got >> 8), byte(got)})
		}
	}
}

func TestEmptyFIBAllZeroCRC(t *testing.T) {
	zero := make([]byte, 30)
	if got, want := crc.Stored16(zero), uint16(0xD5BA); got != want {
		t.Errorf("Stored16(zero-30) = %#X, want %#X", got, want)
	}
}
