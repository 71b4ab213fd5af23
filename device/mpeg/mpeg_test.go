package mpeg

import "testing"

func TestFrameLenLayerII(t *testing.T) {
	// bitrate index 8 (128 kbps), sample-rate index 1 (48 kHz), no padding:
	// 144*128000/48000 = 384.
	header := []byte{0xFF, 0xFC, 0x84, 0x00}
	if got, want := frameLen(header, 0), 384; got != want {
		t.Errorf("frameLen() = %d, want %d", got, want)
	}
}

func TestFrameLenRejectsBadSync(t *testing.T) {
	header := []byte{0x00, 0xFC, 0x84, 0x00}
	if got := frameLen(header, 0); got != 0 {
		t.Errorf("frameLen() = %d, want 0 for bad sync", got)
	}
}

func TestFrameLenWithPadding(t *testing.T) {
	header := []byte{0xFF, 0xFC, 0x86, 0x00} // padding bit set.
	if got, want := frameLen(header, 0), 385; got != want {
		t.Errorf("frameLen() = %d, want %d", got, want)
	}
}
