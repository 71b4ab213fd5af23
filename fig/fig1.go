/*
DESCRIPTION
  fig1.go implements the FIG type 1 label variants (ensemble, programme
  service and component labels).

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

import (
	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/dabmux/internal/charset"
)

func header1(length, ext byte) (byte, byte) {
	b0 := header(1, length)
	b1 := ext & 0x1F
	return b0, b1
}

func labelBytes(long, short string) []byte {
	mask, err := charset.ShortLabelMask(long, short)
	if err != nil {
		mask = 0
	}
	out := make([]byte, 0, charset.LongLabelLen+2)
	out = append(out, charset.Encode(long, charset.LongLabelLen)...)
	out = append(out, byte(mask>>8), byte(mask))
	return out
}

// FIG1_0 is the Ensemble Label FIG.
type FIG1_0 struct {
	Ensemble *ensemble.Ensemble
}

func (f *FIG1_0) Type() byte         { return 1 }
func (f *FIG1_0) Extension() byte    { return 0 }
func (f *FIG1_0) Rate() RateClass    { return RateB }
func (f *FIG1_0) Priority() Priority { return Normal }

func (f *FIG1_0) Fill(buf []byte, budget int) (int, bool) {
	if f.Ensemble.LongLabel == "" {
		return 0, true
	}
	const size = 2 + 2 + 18 // header + EId + label + mask.
	if budget < size {
		return 0, false
	}
	b0, b1 := header1(2+18, 0)
	buf[0], buf[1] = b0, b1
	buf[2] = byte(f.Ensemble.EId >> 8)
	buf[3] = byte(f.Ensemble.EId)
	copy(buf[4:], labelBytes(f.Ensemble.LongLabel, f.Ensemble.ShortLabel))
	return size, true
}

// FIG1_1 is the Programme Service Label FIG, round-robin over services.
type FIG1_1 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG1_1) Type() byte         { return 1 }
func (f *FIG1_1) Extension() byte    { return 1 }
func (f *FIG1_1) Rate() RateClass    { return RateAB }
func (f *FIG1_1) Priority() Priority { return Normal }

func (f *FIG1_1) labeled() []*ensemble.Service {
	var out []*ensemble.Service
	for _, s := range f.Ensemble.Services {
		if s.LongLabel != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f *FIG1_1) Fill(buf []byte, budget int) (int, bool) {
	svcs := f.labeled()
	if len(svcs) == 0 {
		return 0, true
	}
	if f.idx >= len(svcs) {
		f.idx = 0
	}
	const size = 2 + 2 + 18
	if budget < size {
		return 0, false
	}
	s := svcs[f.idx]
	b0, b1 := header1(2+18, 1)
	buf[0], buf[1] = b0, b1
	buf[2] = byte(s.SId >> 8)
	buf[3] = byte(s.SId)
	copy(buf[4:], labelBytes(s.LongLabel, s.ShortLabel))
	f.idx++
	complete := f.idx >= len(svcs)
	if complete {
		f.idx = 0
	}
	return size, complete
}

// FIG1_4 is the Component Label FIG, round-robin over labelled components.
type FIG1_4 struct {
	Ensemble *ensemble.Ensemble
	Label    map[*ensemble.Component]string
	idx      int
}

func (f *FIG1_4) Type() byte         { return 1 }
func (f *FIG1_4) Extension() byte    { return 4 }
func (f *FIG1_4) Rate() RateClass    { return RateB }
func (f *FIG1_4) Priority() Priority { return Normal }

func (f *FIG1_4) labeled() []*ensemble.Component {
	var out []*ensemble.Component
	for _, c := range f.Ensemble.Components {
		if _, ok := f.Label[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (f *FIG1_4) Fill(buf []byte, budget int) (int, bool) {
	comps := f.labeled()
	if len(comps) == 0 {
		return 0, true
	}
	if f.idx >= len(comps) {
		f.idx = 0
	}
	const size = 2 + 3 + 18
	if budget < size {
		return 0, false
	}
	c := comps[f.idx]
	b0, b1 := header1(3+18, 4)
	buf[0], buf[1] = b0, b1
	buf[2] = byte(c.ServiceID >> 8)
	buf[3] = byte(c.ServiceID)
	buf[4] = c.SCIdS & 0x0F
	copy(buf[5:], labelBytes(f.Label[c], ""))
	f.idx++
	complete := f.idx >= len(comps)
	if complete {
		f.idx = 0
	}
	return size, complete
}
