package eti

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmptyFrameLength(t *testing.T) {
	f := Empty(0, 0, false)
	if err := f.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if got, want := f.FC.FL, uint16(25); got != want {
		t.Errorf("FL = %d, want %d", got, want)
	}
	buf, err := f.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if got, want := len(buf), 112; got != want {
		t.Errorf("frame length = %d bytes, want %d", got, want)
	}
}

func TestSyncBytes(t *testing.T) {
	f := Empty(0, 0, false)
	if err := f.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	buf, err := f.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []byte{0xFF, 0x07, 0x3A, 0xB6}
	if got := buf[0:4]; !cmp.Equal(got, want) {
		t.Errorf("SYNC = % X, want % X", got, want)
	}
}

func TestFsyncAlternates(t *testing.T) {
	cases := []struct {
		frame uint64
		want  uint32
	}{
		{0, FsyncEven},
		{1, FsyncOdd},
		{2, FsyncEven},
		{3, FsyncOdd},
	}
	for _, c := range cases {
		f := Empty(c.frame, 0, false)
		if got := f.Sync.Fsync; got != c.want {
			t.Errorf("frame %d: FSYNC = %#X, want %#X", c.frame, got, c.want)
		}
	}
}

func TestFCRoundTrip(t *testing.T) {
	fc := FC{FCT: 42, NST: 3, FICF: 1, FL: 1234, MID: 1, FP: 5}
	buf := make([]byte, HeadSize)
	if err := fc.pack(buf); err != nil {
		t.Fatalf("pack: %v", err)
	}
	got := unpackFC(buf)
	if diff := cmp.Diff(fc, got); diff != "" {
		t.Errorf("FC round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSTCRoundTrip(t *testing.T) {
	s := STC{SCID: 17, StartAddress: 500, TPL: 22, STL: 700}
	buf := make([]byte, HeadSize)
	if err := s.pack(buf); err != nil {
		t.Fatalf("pack: %v", err)
	}
	got := unpackSTC(buf)
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("STC round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFCOverflow(t *testing.T) {
	cases := []FC{
		{NST: 0x80},
		{FL: 0x800},
		{MID: 0x04},
		{FP: 0x08},
	}
	for _, fc := range cases {
		buf := make([]byte, HeadSize)
		if err := fc.pack(buf); err == nil {
			t.Errorf("pack(%+v) succeeded, want overflow error", fc)
		}
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{
		Sync: Sync{Err: 0xFF, Fsync: FsyncEven},
		FC:   FC{FCT: 7, FICF: 1, MID: 0},
		STCs: []STC{
			{SCID: 0, StartAddress: 0, TPL: 0x2C, STL: 16},
			{SCID: 1, StartAddress: 16, TPL: 0x34, STL: 8},
		},
		EOH:  EOH{MNSC: 0xFFFF},
		FIC:  make([]byte, FICBytes),
		MST:  make([]byte, (16+8)*8),
		TIST: &TIST{Value: 0x01020304},
	}
	if err := f.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	buf, err := f.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	got, err := Unpack(buf, true)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("frame round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWordLenAccountsForEOF(t *testing.T) {
	f := Empty(0, 0, false)
	if got, want := f.WordLen(), uint16(1+FICBytes/4); got != want {
		t.Errorf("WordLen = %d, want %d", got, want)
	}
}
