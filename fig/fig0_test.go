package fig

import (
	"testing"

	"github.com/ausocean/dabmux/ensemble"
)

func TestFIG0_0Fields(t *testing.T) {
	e := &ensemble.Ensemble{EId: 0xCE15}
	f := &FIG0_0{Ensemble: e, FrameNumber: func() uint64 { return 5250 }}
	buf := make([]byte, 6)
	n, complete := f.Fill(buf, 30)
	if n != 6 || !complete {
		t.Fatalf("Fill() = (%d, %v), want (6, true)", n, complete)
	}
	if got := uint16(buf[2])<<8 | uint16(buf[3]); got != e.EId {
		t.Errorf("EId = %#x, want %#x", got, e.EId)
	}
	wantCIF := uint64(5250) % 5000 // 250
	wantHigh := byte((wantCIF / 250) % 20)
	wantLow := byte(wantCIF % 250)
	gotHigh := (buf[4] >> 3) & 0x1F
	gotLow := buf[5]
	if gotHigh != wantHigh || gotLow != wantLow {
		t.Errorf("CIF count = (%d,%d), want (%d,%d)", gotHigh, gotLow, wantHigh, wantLow)
	}
}

func TestFIG0_0RateAndPriority(t *testing.T) {
	f := &FIG0_0{}
	if f.Rate() != RateEveryFrame {
		t.Errorf("Rate() = %v, want RateEveryFrame", f.Rate())
	}
	if f.Priority() != Critical {
		t.Errorf("Priority() = %v, want Critical", f.Priority())
	}
}

func TestFIG0_7EmitsOnlyOnChange(t *testing.T) {
	e := &ensemble.Ensemble{
		SubChannels: []*ensemble.SubChannel{{ID: 1, BitrateKbps: 128}},
	}
	f := &FIG0_7{Ensemble: e}
	buf := make([]byte, 30)
	n, complete := f.Fill(buf, 30)
	if n == 0 || !complete {
		t.Fatalf("first Fill() = (%d, %v), want non-zero, true", n, complete)
	}
	n2, complete2 := f.Fill(buf, 30)
	if n2 != 0 || !complete2 {
		t.Errorf("second Fill() (no change) = (%d, %v), want (0, true)", n2, complete2)
	}
	e.SubChannels[0].BitrateKbps = 96
	n3, _ := f.Fill(buf, 30)
	if n3 == 0 {
		t.Error("Fill() after structural change = 0, want non-zero")
	}
}

func TestFIG0_1IteratesSubChannels(t *testing.T) {
	e := &ensemble.Ensemble{
		SubChannels: []*ensemble.SubChannel{
			{ID: 1, BitrateKbps: 128, Protection: ensemble.Protection{Form: ensemble.UEP, Level: 3}},
			{ID: 2, BitrateKbps: 64, Protection: ensemble.Protection{Form: ensemble.UEP, Level: 3}},
		},
	}
	f := &FIG0_1{Ensemble: e}
	buf := make([]byte, 30)
	n, complete := f.Fill(buf, 30)
	if n != 2+3+3 {
		t.Errorf("Fill() wrote %d bytes, want %d", n, 2+3+3)
	}
	if !complete {
		t.Error("Fill() complete = false, want true (both sub-channels fit)")
	}
}

func TestFIG0_19SkippedWhenIdle(t *testing.T) {
	e := &ensemble.Ensemble{}
	f := &FIG0_19{Ensemble: e}
	buf := make([]byte, 30)
	n, complete := f.Fill(buf, 30)
	if n != 0 || !complete {
		t.Errorf("Fill() with no active announcements = (%d, %v), want (0, true)", n, complete)
	}
	if f.Rate() != RateB || f.Priority() != Normal {
		t.Errorf("idle Rate/Priority = (%v, %v), want (RateB, Normal)", f.Rate(), f.Priority())
	}
}

func TestFIG0_19ActiveAnnouncement(t *testing.T) {
	e := &ensemble.Ensemble{
		Services: []*ensemble.Service{{SId: 0x5001, Clusters: []byte{3}}},
		Announcements: []ensemble.Announcement{
			{ServiceID: 0x5001, Type: ensemble.AnnAlarm, SubChannelID: 2, Active: true},
		},
	}
	f := &FIG0_19{Ensemble: e}
	if f.Rate() != RateA || f.Priority() != High {
		t.Errorf("active Rate/Priority = (%v, %v), want (RateA, High)", f.Rate(), f.Priority())
	}
	buf := make([]byte, 30)
	n, _ := f.Fill(buf, 30)
	if n == 0 {
		t.Fatal("Fill() with active announcement wrote 0 bytes")
	}
	if buf[2] != 3 {
		t.Errorf("cluster id = %d, want 3", buf[2])
	}
	if want := byte(1 << ensemble.AnnAlarm); buf[3] != want {
		t.Errorf("ASU bitmap byte = %#x, want %#x", buf[3], want)
	}
	if buf[4]>>2 != 2 {
		t.Errorf("SubChId = %d, want 2", buf[4]>>2)
	}
	if buf[5]&0x80 == 0 {
		t.Error("new-flag not set")
	}
}
