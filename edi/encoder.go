/*
DESCRIPTION
  encoder.go builds the EDI TAG packet for one ETI frame: *ptr, deti,
  tist and one est<N> per sub-channel, then hands it to an AF packet with
  an owned sequence number and DLFC, per §4.8.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package edi

import (
	"fmt"
	"time"

	"github.com/ausocean/dabmux/eti"
)

// dlfcModulus is the modulus DLFC (the deti frame counter) cycles
// through, independent of the ETI FCT byte's mod-256 cycle.
const dlfcModulus = 5000

// edi2000 is the EDI epoch, 2000-01-01T00:00:00Z, used by both the
// deti ATST field and the standalone tist tag.
var edi2000 = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// SubChannelFrame is one sub-channel's MST bytes plus the STC fields
// needed to build its est<N> tag.
type SubChannelFrame struct {
	SCID         byte
	StartAddress uint16
	TPL          byte
	MST          []byte
}

// Encoder builds TAG packets from successive ETI frames, owning the AF
// sequence number and the DLFC counter.
type Encoder struct {
	seq  uint16
	dlfc uint16
}

// NewEncoder returns an Encoder with its sequence and DLFC counters
// reset to zero.
func NewEncoder() *Encoder { return &Encoder{} }

// Encode builds the TAG packet for one ETI frame: *ptr, deti (with an
// embedded timestamp when now is non-zero), tist (when now is non-zero),
// then one est<N> per sub, in order. It advances DLFC by one (mod 5000)
// on every call.
func (e *Encoder) Encode(f *eti.Frame, subs []SubChannelFrame, now time.Time) []byte {
	tags := []Tag{e.ptrTag(), e.detiTag(f, now)}
	if !now.IsZero() {
		tags = append(tags, e.tistTag(now))
	}
	for i, s := range subs {
		tags = append(tags, e.estTag(i, s))
	}
	e.dlfc = uint16((int(e.dlfc) + 1) % dlfcModulus)
	return PackTags(tags)
}

// Seq returns the AF sequence number that will be used by the next
// AssembleAF call, for the remote-control get_statistics command.
func (e *Encoder) Seq() uint16 { return e.seq }

// AssembleAF wraps a TAG packet built by Encode in an AF packet, owning
// and advancing the encoder's sequence number.
func (e *Encoder) AssembleAF(tagPacket []byte) []byte {
	pkt := AFPacket{Seq: e.seq, Payload: tagPacket}
	e.seq++
	return pkt.Assemble()
}

func (e *Encoder) ptrTag() Tag {
	v := make([]byte, 8)
	copy(v[0:4], "DETI")
	v[4], v[5] = 0, 1 // major version 1.
	v[6], v[7] = 0, 0 // minor version 0.
	return NewTag("*ptr", v)
}

// detiTag packs the deti payload: a 16-bit FCT|FCTH|rfudf|ficf|atstf
// word, a 32-bit mnsc|rfu|rfa|fp|mid|stat word, then the fields enabled
// by those flag bits: 8-byte ATST, FIC bytes, 3-byte RFUD.
func (e *Encoder) detiTag(f *eti.Frame, now time.Time) Tag {
	atstf := !now.IsZero()
	ficf := f.FC.FICF != 0

	var v []byte
	v = append(v, 0, 0) // word1 placeholder.
	fct := byte(e.dlfc & 0xFF)
	fcth := byte((e.dlfc >> 8) & 0x1F)
	var rfudf, ficfBit, atstfBit byte
	if ficf {
		ficfBit = 1
	}
	if atstf {
		atstfBit = 1
	}
	word1 := uint16(fct)<<8 | uint16(fcth)<<3 | uint16(rfudf)<<2 | uint16(ficfBit)<<1 | uint16(atstfBit)
	v[0] = byte(word1 >> 8)
	v[1] = byte(word1)

	var rfu, rfa byte
	mnsc := f.EOH.MNSC
	word2 := uint32(mnsc)<<16 | uint32(rfu)<<15 | uint32(rfa)<<13 | uint32(f.FC.FP&0x07)<<10 | uint32(f.FC.MID&0x03)<<8 | uint32(0) // stat byte left zero: healthy.
	v = append(v, byte(word2>>24), byte(word2>>16), byte(word2>>8), byte(word2))

	if atstf {
		v = append(v, atstBytes(now)...)
	}
	if ficf {
		v = append(v, f.FIC...)
	}

	return NewTag("deti", v)
}

// atstBytes packs the deti ATST field: 1-byte UTC offset in units of
// 0.5s (always zero, UTC), 4-byte seconds since the EDI epoch, 3-byte
// (24-bit) sub-second ticks at 1/16384000s.
func atstBytes(now time.Time) []byte {
	d := now.Sub(edi2000)
	secs := uint32(d / time.Second)
	frac := d % time.Second
	ticks := uint32(uint64(frac) * 16384000 / uint64(time.Second))
	return []byte{0, byte(secs >> 24), byte(secs >> 16), byte(secs >> 8), byte(secs), byte(ticks >> 16), byte(ticks >> 8), byte(ticks)}
}

// tistTag packs the standalone tist tag: 4-byte seconds since the EDI
// epoch, 3-byte (24-bit) sub-second ticks at 1/16384s.
func (e *Encoder) tistTag(now time.Time) Tag {
	d := now.Sub(edi2000)
	secs := uint32(d / time.Second)
	frac := d % time.Second
	ticks := uint32(uint64(frac) * 16384 / uint64(time.Second))
	v := []byte{byte(secs >> 24), byte(secs >> 16), byte(secs >> 8), byte(secs), byte(ticks >> 16), byte(ticks >> 8), byte(ticks)}
	return NewTag("tist", v)
}

// estTag builds the est<N> tag for sub-channel index i (0-based carriage
// order, not its SCID): a 3-byte SSTC header (scid/sad/tpl) then the
// sub-channel's MST bytes.
func (e *Encoder) estTag(i int, s SubChannelFrame) Tag {
	header := []byte{
		(s.SCID&0x3F)<<2 | byte(s.StartAddress>>8)&0x03,
		byte(s.StartAddress & 0xFF),
		(s.TPL & 0x3F) << 2,
	}
	v := append(header, s.MST...)
	return NewTag(fmt.Sprintf("est%d", i), v)
}
