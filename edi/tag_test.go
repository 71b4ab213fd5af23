package edi

import "testing"

func TestTagPackLengthInBits(t *testing.T) {
	tag := NewTag("deti", []byte{1, 2, 3, 4})
	buf := tag.Pack()
	if len(buf) != tagHeaderLen+4 {
		t.Fatalf("len(Pack()) = %d, want %d", len(buf), tagHeaderLen+4)
	}
	if string(buf[0:4]) != "deti" {
		t.Errorf("name = %q, want deti", buf[0:4])
	}
	gotBits := uint32(buf[4])<<24 | uint32(buf[5])<<16 | uint32(buf[6])<<8 | uint32(buf[7])
	if gotBits != 32 {
		t.Errorf("length-in-bits = %d, want 32", gotBits)
	}
}

func TestPackTagsAlignsToEightBytes(t *testing.T) {
	tags := []Tag{NewTag("*ptr", []byte{1, 2, 3}), NewTag("tist", []byte{1, 2, 3, 4, 5})}
	buf := PackTags(tags)
	if len(buf)%8 != 0 {
		t.Errorf("len(PackTags()) = %d, want multiple of 8", len(buf))
	}
}

func TestNewTagPadsShortName(t *testing.T) {
	tag := NewTag("ab", nil)
	if tag.Name != [4]byte{'a', 'b', ' ', ' '} {
		t.Errorf("Name = %q, want \"ab  \"", tag.Name)
	}
}
