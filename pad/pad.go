/*
DESCRIPTION
  pad.go implements the Dynamic Label Segment encoder (ETSI TS 102 980)
  and the fixed-length X-PAD trailer encoder carried in each audio
  sub-channel's frame payload.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pad implements Programme-Associated Data: the Dynamic Label
// Segment text encoder carried via FIG 2/1, and the X-PAD trailer that
// rides inside or after each audio sub-channel's frame payload.
package pad

import "github.com/ausocean/dabmux/internal/charset"

// MaxDLSTextBytes is the largest EBU-Latin-encoded label this encoder
// accepts.
const MaxDLSTextBytes = 128

// segmentBytes is the maximum payload of one DLS segment.
const segmentBytes = 16

// DLSEncoder segments label text into PAD-sized chunks and tracks the
// toggle bit that flips on every text change.
type DLSEncoder struct {
	charsetID byte
	text      []byte
	segments  [][]byte
	toggle    bool
	cursor    int
}

// NewDLSEncoder returns an encoder with no text set.
func NewDLSEncoder() *DLSEncoder { return &DLSEncoder{} }

// SetText re-segments text (UTF-8) and flips the toggle bit. A text
// identical to the currently loaded text is a no-op (no toggle flip),
// matching the "toggle flips on every text change" invariant literally.
func (d *DLSEncoder) SetText(text string) {
	encoded := charset.Encode(text, min(len(text), MaxDLSTextBytes))
	if len(encoded) > MaxDLSTextBytes {
		encoded = encoded[:MaxDLSTextBytes]
	}
	if string(encoded) == string(d.text) {
		return
	}
	d.text = encoded
	d.segments = segment(encoded)
	d.toggle = !d.toggle
	d.cursor = 0
}

func segment(text []byte) [][]byte {
	if len(text) == 0 {
		return nil
	}
	var segs [][]byte
	for i := 0; i < len(text); i += segmentBytes {
		end := i + segmentBytes
		if end > len(text) {
			end = len(text)
		}
		segs = append(segs, text[i:end])
	}
	return segs
}

// Charset returns the label's declared charset id (0 EBU-Latin, 1 UCS-2,
// 2 UTF-8). This encoder always emits EBU-Latin.
func (d *DLSEncoder) Charset() byte { return 0 }

// Text returns the currently loaded label, decoded back from EBU-Latin,
// for remote-control get_label queries.
func (d *DLSEncoder) Text() string { return charset.Decode(d.text) }

// Toggle returns the current toggle bit.
func (d *DLSEncoder) Toggle() bool { return d.toggle }

// NextSegment returns the next segment to transmit, its 2-bit segment
// index within the current text, whether it's the last segment, and
// whether a segment was available at all.
func (d *DLSEncoder) NextSegment() (seg []byte, segIdx byte, last bool, ok bool) {
	if len(d.segments) == 0 {
		return nil, 0, false, false
	}
	if d.cursor >= len(d.segments) {
		d.cursor = 0
	}
	seg = d.segments[d.cursor]
	segIdx = byte(d.cursor & 0x03)
	last = d.cursor == len(d.segments)-1
	d.cursor++
	if d.cursor >= len(d.segments) {
		d.cursor = 0
	}
	return seg, segIdx, last, true
}

// XPADEncoder produces a fixed-length byte trailer carrying the current
// DLS segment, appended to (MP2) or injected into (AAC, via
// set_pad_data) an audio frame.
type XPADEncoder struct {
	DLS    *DLSEncoder
	Length int // pad_length, bytes.
}

// NewXPADEncoder returns an encoder producing trailers of exactly length
// bytes.
func NewXPADEncoder(dls *DLSEncoder, length int) *XPADEncoder {
	return &XPADEncoder{DLS: dls, Length: length}
}

// Trailer computes this tick's fixed-length X-PAD trailer. When no DLS
// segment is pending the trailer is all end-of-PAD filler (0x00).
func (x *XPADEncoder) Trailer() []byte {
	out := make([]byte, x.Length)
	if x.DLS == nil || x.Length == 0 {
		return out
	}
	seg, segIdx, last, ok := x.DLS.NextSegment()
	if !ok {
		return out
	}
	// X-PAD data sub-field header: CI(1)=1, type=DLS(0x02), then the
	// number of segment bytes copied, in the low 5 bits.
	n := copy(out[1:], seg)
	out[0] = 0x80 | 0x20 | byte(len(seg[:n])&0x1F)
	_ = segIdx
	_ = last
	return out
}
