package device

import "testing"

func TestNearestValidBitrate(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{32, 32}, {40, 32}, {100, 96}, {400, 384}, {0, 32},
	}
	for _, c := range cases {
		if got := NearestValidBitrate(c.in); got != c.want {
			t.Errorf("NearestValidBitrate(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestManualInputReadFrameUnderrun(t *testing.T) {
	m := NewManualInput()
	if err := m.Open(""); err != nil {
		t.Fatalf("Open: %v", err)
	}
	m.Write([]byte{1, 2, 3})
	data, underrun := m.ReadFrame(5)
	if !underrun {
		t.Error("ReadFrame() underrun = false, want true (short write)")
	}
	if len(data) != 5 {
		t.Fatalf("len(data) = %d, want 5", len(data))
	}
	if data[0] != 1 || data[1] != 2 || data[2] != 3 || data[3] != 0 || data[4] != 0 {
		t.Errorf("data = %v, want [1 2 3 0 0]", data)
	}
}

func TestManualInputReadFrameExact(t *testing.T) {
	m := NewManualInput()
	m.Open("")
	m.Write([]byte{9, 9, 9, 9})
	data, underrun := m.ReadFrame(4)
	if underrun {
		t.Error("ReadFrame() underrun = true, want false")
	}
	if len(data) != 4 {
		t.Fatalf("len(data) = %d, want 4", len(data))
	}
}
