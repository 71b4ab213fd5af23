package fig

import (
	"testing"

	"github.com/ausocean/dabmux/ensemble"
)

func TestFillFIBPadsWithFF(t *testing.T) {
	e := &ensemble.Ensemble{EId: 0xCE15}
	fig00 := &FIG0_0{Ensemble: e, FrameNumber: func() uint64 { return 0 }}
	c := NewCarousel([]Encoder{fig00})
	c.Start(0)
	buf := make([]byte, FIBPayloadSize)
	c.FillFIB(buf, 0)
	for i := 6; i < FIBPayloadSize; i++ {
		if buf[i] != 0xFF {
			t.Errorf("buf[%d] = %#x, want 0xFF padding", i, buf[i])
			break
		}
	}
}

func TestCriticalFIGEmittedEveryCycle(t *testing.T) {
	e := &ensemble.Ensemble{EId: 0xCE15}
	fig00 := &FIG0_0{Ensemble: e, FrameNumber: func() uint64 { return 0 }}
	c := NewCarousel([]Encoder{fig00})
	c.Start(0)
	for ms := int64(0); ms < 1000; ms += 96 {
		buf := make([]byte, FIBPayloadSize)
		c.FillFIB(buf, ms)
		if buf[0] == 0xFF {
			t.Fatalf("FIG 0/0 not emitted at t=%dms", ms)
		}
	}
}

func TestBoostPhaseSortsByPriority(t *testing.T) {
	e := &ensemble.Ensemble{
		SubChannels: []*ensemble.SubChannel{{ID: 1, BitrateKbps: 128}},
	}
	low := &FIG0_9{Ensemble: e} // Normal priority, only emits if ECC != 0; keep for ordering only.
	e.ECC = 1
	high := &FIG0_1{Ensemble: e} // High priority.
	c := NewCarousel([]Encoder{low, high})
	c.Start(0)
	buf := make([]byte, FIBPayloadSize)
	c.FillFIB(buf, 10) // inside 5s boost phase.
	// High-priority FIG0_1 should be written first (type/ext 0/1) despite
	// being registered second.
	figType := buf[0] >> 5
	ext := buf[1] & 0x1F
	if figType != 0 || ext != 1 {
		t.Errorf("first FIG in boost phase = type %d ext %d, want type 0 ext 1 (priority order)", figType, ext)
	}
}
