/*
DESCRIPTION
  tag.go implements EDI TAG items (ETSI TS 102 693 Annex): a 4-byte name,
  a 4-byte big-endian length-in-bits, and a value, concatenated into a
  TAG packet aligned to 8 bytes with zero padding.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package edi implements the Ensemble Distribution Interface: TAG items,
// the deti/ptr/est/tist encoders that build a TAG packet from an ETI
// frame, and the AF packet that carries it on the wire.
package edi

import "encoding/binary"

// tagHeaderLen is the 4-byte name plus 4-byte length-in-bits header every
// TAG item carries ahead of its value.
const tagHeaderLen = 8

// Tag is one EDI TAG item.
type Tag struct {
	Name  [4]byte
	Value []byte
}

// NewTag returns a Tag with name copied from a (at most 4 ASCII bytes,
// space-padded).
func NewTag(name string, value []byte) Tag {
	var t Tag
	copy(t.Name[:], name)
	for i := len(name); i < 4; i++ {
		t.Name[i] = ' '
	}
	t.Value = value
	return t
}

// Pack serialises the tag: 4-byte name, 4-byte length-in-bits (big
// endian), value.
func (t Tag) Pack() []byte {
	buf := make([]byte, tagHeaderLen+len(t.Value))
	copy(buf[0:4], t.Name[:])
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(t.Value))*8)
	copy(buf[8:], t.Value)
	return buf
}

// PackTags concatenates tags in order into a TAG packet, zero-padded to
// an 8-byte boundary.
func PackTags(tags []Tag) []byte {
	var buf []byte
	for _, t := range tags {
		buf = append(buf, t.Pack()...)
	}
	if rem := len(buf) % 8; rem != 0 {
		buf = append(buf, make([]byte, 8-rem)...)
	}
	return buf
}
