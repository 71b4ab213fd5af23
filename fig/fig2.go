/*
DESCRIPTION
  fig2.go implements FIG 2/1, the Service-component Dynamic Label FIG that
  streams one DLS text segment per call, round-robin over components.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fig

import "github.com/ausocean/dabmux/pad"

// FIG2_1 emits dynamic label segments for each component that has one, in
// round-robin order, one segment per call.
type FIG2_1 struct {
	Sources []*pad.DLSEncoder
	idx     int
}

func (f *FIG2_1) Type() byte         { return 2 }
func (f *FIG2_1) Extension() byte    { return 1 }
func (f *FIG2_1) Rate() RateClass    { return RateA }
func (f *FIG2_1) Priority() Priority { return High }

func (f *FIG2_1) Fill(buf []byte, budget int) (int, bool) {
	if len(f.Sources) == 0 {
		return 0, true
	}
	if f.idx >= len(f.Sources) {
		f.idx = 0
	}
	enc := f.Sources[f.idx]
	seg, segIdx, last, ok := enc.NextSegment()
	if !ok {
		f.idx++
		return 0, f.idx >= len(f.Sources)
	}
	const headerLen = 4 // type/length + charset/ext + segment byte + char-flag.
	size := headerLen + len(seg)
	if budget < size {
		return 0, false
	}
	buf[0] = header(2, byte(2+len(seg)))
	buf[1] = (enc.Charset()&0x0F)<<4 | 0x01 // bits 7-4 charset, low bits extension=1.
	var toggle byte
	if enc.Toggle() {
		toggle = 1
	}
	var lastFlag byte
	if last {
		lastFlag = 1
	}
	buf[2] = (toggle&0x01)<<7 | (segIdx&0x03)<<5 | (lastFlag&0x01)<<4
	var charFlag byte
	if len(seg) > 0 {
		charFlag = 0xFF
	}
	buf[3] = charFlag
	copy(buf[headerLen:], seg)
	written := size
	f.idx++
	complete := f.idx >= len(f.Sources)
	if complete {
		f.idx = 0
	}
	return written, complete
}
