package pft

import "testing"

func TestAssembleParseRoundTrip(t *testing.T) {
	f := Fragment{PSeq: 999, FIndex: 2, FCount: 5, Payload: []byte("The quick brown fox")}
	d := f.Assemble()
	got, err := Parse(d)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.PSeq != f.PSeq || got.FIndex != f.FIndex || got.FCount != f.FCount || string(got.Payload) != string(f.Payload) {
		t.Errorf("Parse() = %+v, want %+v", got, f)
	}
}

func TestParseRejectsInvalidSync(t *testing.T) {
	d := append([]byte("XX"), make([]byte, 20)...)
	if _, err := Parse(d); err == nil {
		t.Error("Parse() = nil error, want error for bad sync")
	}
}

func TestParseRejectsTooShort(t *testing.T) {
	d := append([]byte("PF"), make([]byte, 5)...)
	if _, err := Parse(d); err == nil {
		t.Error("Parse() = nil error, want error for short fragment")
	}
}

func TestParseRejectsFlippedCRC(t *testing.T) {
	f := Fragment{PSeq: 1, FIndex: 0, FCount: 1, Payload: []byte("test")}
	d := f.Assemble()
	d[12] ^= 0xFF // CRC occupies bytes 12-13 with no FEC/Addr fields.
	if _, err := Parse(d); err == nil {
		t.Error("Parse() = nil error, want error for flipped CRC")
	}
}

func TestFragmentSmallPacketNoSplit(t *testing.T) {
	fr := NewFragmenter(Config{MaxFragmentSize: 1400})
	frags, err := fr.Fragment([]byte("Small packet"))
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	if len(frags) != 1 || frags[0].FIndex != 0 || frags[0].FCount != 1 {
		t.Fatalf("Fragment() = %+v, want single fragment", frags)
	}
	if string(frags[0].Payload) != "Small packet" {
		t.Errorf("payload = %q, want %q", frags[0].Payload, "Small packet")
	}
}

func TestFragmentLargePacketSplits(t *testing.T) {
	fr := NewFragmenter(Config{MaxFragmentSize: 100})
	af := make([]byte, 250)
	for i := range af {
		af[i] = 'X'
	}
	frags, err := fr.Fragment(af)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	if len(frags) != 3 {
		t.Fatalf("len(frags) = %d, want 3", len(frags))
	}
	total := 0
	for i, f := range frags {
		if int(f.FIndex) != i {
			t.Errorf("frags[%d].FIndex = %d, want %d", i, f.FIndex, i)
		}
		if int(f.FCount) != 3 {
			t.Errorf("frags[%d].FCount = %d, want 3", i, f.FCount)
		}
		total += len(f.Payload)
	}
	if total != 250 {
		t.Errorf("total payload bytes = %d, want 250", total)
	}
}

func TestFragmentWithFECAddsParityShards(t *testing.T) {
	fr := NewFragmenter(Config{MaxFragmentSize: 50, FEC: true, FECM: 2})
	af := make([]byte, 120)
	frags, err := fr.Fragment(af)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	k := int(frags[0].RSk)
	if len(frags) != k+2 {
		t.Errorf("len(frags) = %d, want rs_k(%d)+2 parity", len(frags), k)
	}
	for _, f := range frags {
		if !f.FEC {
			t.Error("fragment missing FEC flag")
		}
	}
}

func TestPseqIncrementsPerCall(t *testing.T) {
	fr := NewFragmenter(DefaultConfig())
	first, _ := fr.Fragment([]byte("a"))
	second, _ := fr.Fragment([]byte("b"))
	if second[0].PSeq != first[0].PSeq+1 {
		t.Errorf("second PSeq = %d, want %d", second[0].PSeq, first[0].PSeq+1)
	}
}
