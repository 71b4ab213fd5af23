/*
DESCRIPTION
  fig6.go implements the FIG type 6 Conditional Access variants: CA
  organisation (system ids) and CA service (per-service CA mapping).

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

import "github.com/ausocean/dabmux/ensemble"

func header6(length, ext byte) (byte, byte) {
	b0 := header(6, length)
	b1 := ext & 0x1F
	return b0, b1
}

// FIG6_0 lists the ensemble's known CA system identifiers.
type FIG6_0 struct {
	Ensemble *ensemble.Ensemble
}

func (f *FIG6_0) Type() byte         { return 6 }
func (f *FIG6_0) Extension() byte    { return 0 }
func (f *FIG6_0) Rate() RateClass    { return RateC }
func (f *FIG6_0) Priority() Priority { return Normal }

func (f *FIG6_0) Fill(buf []byte, budget int) (int, bool) {
	systems := f.Ensemble.CASystems
	if len(systems) == 0 {
		return 0, true
	}
	size := 2 + 2*len(systems)
	if budget < size {
		return 0, false
	}
	buf[0], buf[1] = header6(byte(2*len(systems)), 0)
	off := 2
	for _, s := range systems {
		buf[off] = byte(s.ID >> 8)
		buf[off+1] = byte(s.ID)
		off += 2
	}
	return size, true
}

// FIG6_1 maps services to their CA system.
type FIG6_1 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG6_1) Type() byte         { return 6 }
func (f *FIG6_1) Extension() byte    { return 1 }
func (f *FIG6_1) Rate() RateClass    { return RateC }
func (f *FIG6_1) Priority() Priority { return Normal }

func (f *FIG6_1) caServices() []*ensemble.Service {
	var out []*ensemble.Service
	for _, s := range f.Ensemble.Services {
		if s.CASystemID != 0 {
			out = append(out, s)
		}
	}
	return out
}

func (f *FIG6_1) Fill(buf []byte, budget int) (int, bool) {
	svcs := f.caServices()
	if len(svcs) == 0 {
		return 0, true
	}
	if f.idx >= len(svcs) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(svcs) && pos+4 <= budget {
		s := svcs[f.idx]
		buf[pos] = byte(s.SId >> 8)
		buf[pos+1] = byte(s.SId)
		buf[pos+2] = byte(s.CASystemID >> 8)
		buf[pos+3] = byte(s.CASystemID)
		pos += 4
		f.idx++
	}
	buf[0], buf[1] = header6(byte(pos-2), 1)
	if f.idx >= len(svcs) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}
