package pad

import "testing"

func TestSetTextTogglesOnChange(t *testing.T) {
	d := NewDLSEncoder()
	d.SetText("Original")
	first := d.Toggle()
	d.SetText("Updated")
	if d.Toggle() == first {
		t.Error("toggle bit did not flip after text change")
	}
}

func TestSetTextNoToggleOnIdenticalText(t *testing.T) {
	d := NewDLSEncoder()
	d.SetText("Same Text")
	first := d.Toggle()
	d.SetText("Same Text")
	if d.Toggle() != first {
		t.Error("toggle bit flipped on identical text")
	}
}

func TestSegmentationRoundRobin(t *testing.T) {
	d := NewDLSEncoder()
	d.SetText("This is longer than sixteen bytes of text")
	seen := map[int]bool{}
	for i := 0; i < len(d.segments)*2; i++ {
		seg, _, last, ok := d.NextSegment()
		if !ok {
			t.Fatal("NextSegment() ok=false, want true")
		}
		if len(seg) == 0 {
			t.Error("empty segment returned")
		}
		seen[i%len(d.segments)] = true
		_ = last
	}
	if len(seen) != len(d.segments) {
		t.Errorf("round robin visited %d of %d segments", len(seen), len(d.segments))
	}
}

func TestXPADTrailerFixedLength(t *testing.T) {
	d := NewDLSEncoder()
	d.SetText("Hello")
	x := NewXPADEncoder(d, 12)
	tr := x.Trailer()
	if len(tr) != 12 {
		t.Errorf("trailer length = %d, want 12", len(tr))
	}
}

func TestXPADTrailerEmptyWhenNoText(t *testing.T) {
	x := NewXPADEncoder(NewDLSEncoder(), 8)
	tr := x.Trailer()
	for i, b := range tr {
		if b != 0 {
			t.Errorf("trailer[%d] = %#x, want 0x00 with no DLS text", i, b)
		}
	}
}
