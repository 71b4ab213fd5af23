/*
DESCRIPTION
  fig0.go implements the FIG type 0 variants: ensemble/service/
  sub-channel/announcement signalling.

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

// header0 packs the shared FIG-0 header: byte0 = type<<5|(length+1) (see
// header), byte1 = C/N, O/E, P/D flags and the 5-bit extension number.
func header0(length byte, cn, oe, pd bool, ext byte) (byte, byte) {
	b0 := header(0, length)
	var b1 byte
	if cn {
		b1 |= 1 << 7
	}
	if oe {
		b1 |= 1 << 6
	}
	if pd {
		b1 |= 1 << 5
	}
	b1 |= ext & 0x1F
	return b0, b1
}

// FIG0_0 is the Ensemble Information FIG: mandatory, emitted every frame.
type FIG0_0 struct {
	Ensemble    *ensemble.Ensemble
	FrameNumber func() uint64
}

func (f *FIG0_0) Type() byte      { return 0 }
func (f *FIG0_0) Extension() byte { return 0 }
func (f *FIG0_0) Rate() RateClass { return RateEveryFrame }
func (f *FIG0_0) Priority() Priority { return Critical }

func (f *FIG0_0) Fill(buf []byte, budget int) (int, bool) {
	const size = 6
	if budget < size {
		return 0, false
	}
	var frame uint64
	if f.FrameNumber != nil {
		frame = f.FrameNumber()
	}
	cifCount := frame % 5000
	cifHigh := byte((cifCount / 250) % 20)
	cifLow := byte(cifCount % 250)

	b0, b1 := header0(4, false, false, false, 0)
	buf[0] = b0
	buf[1] = b1
	buf[2] = byte(f.Ensemble.EId >> 8)
	buf[3] = byte(f.Ensemble.EId)
	var change byte
	if f.Ensemble.HashChanged() {
		change = 1 // 2-bit change flags; 01 = FIG info changed.
	}
	var alarm byte
	if f.Ensemble.Alarm {
		alarm = 1
	}
	buf[4] = (cifHigh << 3) | (alarm << 2) | change
	buf[5] = cifLow
	return size, true
}

// FIG0_1 is the Sub-channel Organisation FIG, iterating all sub-channels
// with a resumable index.
type FIG0_1 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_1) Type() byte         { return 0 }
func (f *FIG0_1) Extension() byte    { return 1 }
func (f *FIG0_1) Rate() RateClass    { return RateB }
func (f *FIG0_1) Priority() Priority { return High }

func (f *FIG0_1) Fill(buf []byte, budget int) (int, bool) {
	if len(f.Ensemble.SubChannels) == 0 {
		return 0, true
	}
	if f.idx >= len(f.Ensemble.SubChannels) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(f.Ensemble.SubChannels) {
		sc := f.Ensemble.SubChannels[f.idx]
		recLen := 3
		if sc.Protection.Form != ensemble.UEP {
			recLen = 4
		}
		if pos+recLen > budget {
			break
		}
		if sc.Protection.Form == ensemble.UEP {
			buf[pos] = (sc.ID&0x3F)<<2 | byte(sc.StartAddress>>8)&0x03
			buf[pos+1] = byte(sc.StartAddress & 0xFF)
			tableIndex := sc.Protection.Level // UEP table index taken directly from the protection level.
			buf[pos+2] = (tableIndex & 0x3F) << 2
		} else {
			buf[pos] = (sc.ID&0x3F)<<2 | byte(sc.StartAddress>>8)&0x03
			buf[pos+1] = byte(sc.StartAddress & 0xFF)
			option := byte(0)
			if sc.Protection.Form == ensemble.EEPB {
				option = 1
			}
			sizeCU := uint16(sc.SizeCU())
			buf[pos+2] = 0x80 | (option&0x07)<<4 | (sc.Protection.Level&0x03)<<2 | byte(sizeCU>>8)&0x03
			buf[pos+3] = byte(sizeCU & 0xFF)
		}
		pos += recLen
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 1)
	if f.idx >= len(f.Ensemble.SubChannels) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_2 is the Service Organisation FIG, alternating programme and data
// services across successive cycles.
type FIG0_2 struct {
	Ensemble *ensemble.Ensemble
	idx      int
	dataCycle bool
}

func (f *FIG0_2) Type() byte         { return 0 }
func (f *FIG0_2) Extension() byte    { return 2 }
func (f *FIG0_2) Rate() RateClass    { return RateAB }
func (f *FIG0_2) Priority() Priority { return High }

func (f *FIG0_2) wantsData(s *ensemble.Service) bool { return s.SId >= 0x10000 }

func (f *FIG0_2) Fill(buf []byte, budget int) (int, bool) {
	pd := f.dataCycle
	var matching []*ensemble.Service
	for _, s := range f.Ensemble.Services {
		if f.wantsData(s) == pd {
			matching = append(matching, s)
		}
	}
	if len(matching) == 0 {
		f.dataCycle = !f.dataCycle
		return 0, true
	}
	if f.idx >= len(matching) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(matching) {
		s := matching[f.idx]
		comps := f.Ensemble.ComponentsForService(s.SId)
		sidLen := 2
		if pd {
			sidLen = 4
		}
		recLen := sidLen + 1 + 2*len(comps)
		if pos+recLen > budget {
			break
		}
		if pd {
			buf[pos] = byte(s.SId >> 24)
			buf[pos+1] = byte(s.SId >> 16)
			buf[pos+2] = byte(s.SId >> 8)
			buf[pos+3] = byte(s.SId)
		} else {
			buf[pos] = byte(s.SId >> 8)
			buf[pos+1] = byte(s.SId)
		}
		off := pos + sidLen
		var local byte
		var caId byte
		buf[off] = (local&0x01)<<7 | (caId&0x07)<<4 | byte(len(comps)&0x0F)
		off++
		for _, c := range comps {
			asctyOrDscty := byte(0)
			if c.Kind == ensemble.StreamAudio {
				sc := f.Ensemble.SubChannelByID(c.SubChannelID)
				if sc != nil && sc.Kind == ensemble.DABPlusAAC {
					asctyOrDscty = 63
				}
			}
			tmId := byte(0)
			if c.Kind == ensemble.PacketComponent {
				tmId = 3
			} else if c.Kind == ensemble.StreamData {
				tmId = 1
			}
			buf[off] = (tmId&0x03)<<6 | (asctyOrDscty & 0x3F)
			var ps, ca byte
			if c.Primary {
				ps = 1
			}
			buf[off+1] = (c.SubChannelID&0x3F)<<2 | (ps&0x01)<<1 | (ca & 0x01)
			off += 2
		}
		pos = off
		f.idx++
	}
	var pdBit byte
	if pd {
		pdBit = 1
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, pdBit != 0, 2)
	if f.idx >= len(matching) {
		f.idx = 0
		f.dataCycle = !f.dataCycle
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_3 is the Packet-mode Service Component FIG.
type FIG0_3 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_3) Type() byte         { return 0 }
func (f *FIG0_3) Extension() byte    { return 3 }
func (f *FIG0_3) Rate() RateClass    { return RateB }
func (f *FIG0_3) Priority() Priority { return High }

func (f *FIG0_3) packetComponents() []*ensemble.Component {
	var out []*ensemble.Component
	for _, c := range f.Ensemble.Components {
		if c.Kind == ensemble.PacketComponent {
			out = append(out, c)
		}
	}
	return out
}

func (f *FIG0_3) Fill(buf []byte, budget int) (int, bool) {
	comps := f.packetComponents()
	if len(comps) == 0 {
		return 0, true
	}
	if f.idx >= len(comps) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(comps) && pos+3 <= budget {
		c := comps[f.idx]
		buf[pos] = 0x40 | (c.DSCTy & 0x3F)
		buf[pos+1] = (c.SubChannelID&0x3F)<<2 | byte(c.PacketAddress>>8)&0x03
		buf[pos+2] = byte(c.PacketAddress & 0xFF)
		pos += 3
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 3)
	if f.idx >= len(comps) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_7 is the Configuration Information Count FIG: a 10-bit structural
// hash, re-emitted only while it differs from the last emission.
type FIG0_7 struct {
	Ensemble *ensemble.Ensemble
}

func (f *FIG0_7) Type() byte         { return 0 }
func (f *FIG0_7) Extension() byte    { return 7 }
func (f *FIG0_7) Rate() RateClass    { return RateB }
func (f *FIG0_7) Priority() Priority { return High }

func (f *FIG0_7) Fill(buf []byte, budget int) (int, bool) {
	if !f.Ensemble.HashChanged() {
		return 0, true
	}
	const size = 4
	if budget < size {
		return 0, false
	}
	buf[0], buf[1] = header0(2, false, false, false, 7)
	hash := f.Ensemble.ConfigHash()
	buf[2] = byte(hash >> 8)
	buf[3] = byte(hash & 0xFF)
	f.Ensemble.MarkHashEmitted()
	return size, true
}

// FIG0_9 carries the Extended Country Code and Local Time Offset.
type FIG0_9 struct {
	Ensemble *ensemble.Ensemble
}

func (f *FIG0_9) Type() byte         { return 0 }
func (f *FIG0_9) Extension() byte    { return 9 }
func (f *FIG0_9) Rate() RateClass    { return RateC }
func (f *FIG0_9) Priority() Priority { return Normal }

func (f *FIG0_9) Fill(buf []byte, budget int) (int, bool) {
	if f.Ensemble.ECC == 0 || len(f.Ensemble.Services) == 0 {
		return 0, true
	}
	const size = 5
	if budget < size {
		return 0, false
	}
	buf[0], buf[1] = header0(3, false, false, false, 9)
	var auto byte
	if f.Ensemble.LTOAuto {
		auto = 1
	}
	buf[2] = (auto&0x01)<<5 | byte(f.Ensemble.LTOHalfHours)&0x3F
	buf[3] = 0 // International Table Id, always written as 0.
	buf[4] = f.Ensemble.ECC
	return size, true
}

// FIG0_10 carries Date/Time (MJD + UTC).
type FIG0_10 struct {
	Ensemble *ensemble.Ensemble
	Now      func() (mjd uint32, hours, minutes, seconds byte, utc bool)
}

func (f *FIG0_10) Type() byte         { return 0 }
func (f *FIG0_10) Extension() byte    { return 10 }
func (f *FIG0_10) Rate() RateClass    { return RateB }
func (f *FIG0_10) Priority() Priority { return Normal }

func (f *FIG0_10) Fill(buf []byte, budget int) (int, bool) {
	if !f.Ensemble.EnableDateTime || f.Now == nil {
		return 0, true
	}
	const size = 6
	if budget < size {
		return 0, false
	}
	mjd, hours, minutes, seconds, utc := f.Now()
	buf[0], buf[1] = header0(4, false, false, false, 10)
	buf[2] = byte(mjd >> 9)
	buf[3] = byte(mjd >> 1)
	var utcFlag byte
	if utc {
		utcFlag = 1
	}
	buf[4] = byte(mjd&0x01)<<7 | (utcFlag&0x01)<<6 | (hours & 0x1F)
	buf[5] = (minutes & 0x3F) << 2
	if utc {
		buf[5] |= (seconds >> 4) & 0x03
	}
	return size, true
}

// FIG0_13 signals MOT slideshow user-application support (0x002) for
// components with a carousel enabled.
type FIG0_13 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_13) Type() byte         { return 0 }
func (f *FIG0_13) Extension() byte    { return 13 }
func (f *FIG0_13) Rate() RateClass    { return RateB }
func (f *FIG0_13) Priority() Priority { return Normal }

func (f *FIG0_13) carouselComponents() []*ensemble.Component {
	var out []*ensemble.Component
	for _, c := range f.Ensemble.Components {
		if c.MOTCarouselEnabled {
			out = append(out, c)
		}
	}
	return out
}

func (f *FIG0_13) Fill(buf []byte, budget int) (int, bool) {
	comps := f.carouselComponents()
	if len(comps) == 0 {
		return 0, true
	}
	if f.idx >= len(comps) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(comps) {
		const recLen = 8 // SId(4)+SCIdS/No(1)+user-app(3: type 0x002 + length 0).
		if pos+recLen > budget {
			break
		}
		c := comps[f.idx]
		buf[pos] = byte(c.ServiceID >> 24)
		buf[pos+1] = byte(c.ServiceID >> 16)
		buf[pos+2] = byte(c.ServiceID >> 8)
		buf[pos+3] = byte(c.ServiceID)
		buf[pos+4] = (c.SCIdS & 0x0F) << 4 // No. of user applications = 1.
		buf[pos+4] |= 0x01
		buf[pos+5] = 0x00
		buf[pos+6] = 0x02 // MOT slideshow user-application type.
		buf[pos+7] = 0x00 // user-application data length.
		pos += recLen
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 13)
	if f.idx >= len(comps) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_14 announces the FEC scheme for sub-channels that use one.
type FIG0_14 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_14) Type() byte         { return 0 }
func (f *FIG0_14) Extension() byte    { return 14 }
func (f *FIG0_14) Rate() RateClass    { return RateB }
func (f *FIG0_14) Priority() Priority { return Normal }

func (f *FIG0_14) fecSubChannels() []*ensemble.SubChannel {
	var out []*ensemble.SubChannel
	for _, sc := range f.Ensemble.SubChannels {
		if sc.FECScheme != 0 {
			out = append(out, sc)
		}
	}
	return out
}

func (f *FIG0_14) Fill(buf []byte, budget int) (int, bool) {
	subs := f.fecSubChannels()
	if len(subs) == 0 {
		return 0, true
	}
	if f.idx >= len(subs) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(subs) && pos+1 <= budget {
		sc := subs[f.idx]
		buf[pos] = (sc.ID&0x3F)<<2 | (sc.FECScheme & 0x03)
		pos++
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 14)
	if f.idx >= len(subs) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_17 carries each service's Programme Type.
type FIG0_17 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_17) Type() byte         { return 0 }
func (f *FIG0_17) Extension() byte    { return 17 }
func (f *FIG0_17) Rate() RateClass    { return RateB }
func (f *FIG0_17) Priority() Priority { return Normal }

func (f *FIG0_17) Fill(buf []byte, budget int) (int, bool) {
	svcs := f.Ensemble.Services
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
		buf[pos+2] = 0 // rfa / L/SD / PS flags, unused.
		buf[pos+3] = s.PTy & 0x1F
		pos += 4
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 17)
	if f.idx >= len(svcs) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_18 is the static Announcement Support FIG: which announcement
// types a service supports and on which cluster(s).
type FIG0_18 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_18) Type() byte         { return 0 }
func (f *FIG0_18) Extension() byte    { return 18 }
func (f *FIG0_18) Rate() RateClass    { return RateB }
func (f *FIG0_18) Priority() Priority { return Normal }

func (f *FIG0_18) supportingServices() []*ensemble.Service {
	var out []*ensemble.Service
	for _, s := range f.Ensemble.Services {
		if len(s.Clusters) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (f *FIG0_18) Fill(buf []byte, budget int) (int, bool) {
	svcs := f.supportingServices()
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
	for f.idx < len(svcs) {
		s := svcs[f.idx]
		recLen := 4 + len(s.Clusters)
		if pos+recLen > budget {
			break
		}
		buf[pos] = byte(s.SId >> 8)
		buf[pos+1] = byte(s.SId)
		asuFlags := f.asuFlags(s)
		buf[pos+2] = byte(asuFlags >> 8)
		buf[pos+3] = byte(asuFlags&0xFF) & 0xF0
		buf[pos+3] |= byte(len(s.Clusters)) & 0x1F
		copy(buf[pos+4:], s.Clusters)
		pos += recLen
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 18)
	if f.idx >= len(svcs) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

func (f *FIG0_18) asuFlags(s *ensemble.Service) uint16 {
	var flags uint16
	for _, a := range f.Ensemble.Announcements {
		if a.ServiceID == s.SId {
			flags |= 1 << uint(a.Type)
		}
	}
	return flags
}

// FIG0_19 is the dynamic Announcement Switching FIG: Rate A/High while
// any announcement is active, Rate B/Normal when idle, and skipped
// entirely when no announcement is active.
type FIG0_19 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_19) Type() byte      { return 0 }
func (f *FIG0_19) Extension() byte { return 19 }

func (f *FIG0_19) activeAnnouncements() []ensemble.Announcement {
	var out []ensemble.Announcement
	for _, a := range f.Ensemble.Announcements {
		if a.Active {
			out = append(out, a)
		}
	}
	return out
}

func (f *FIG0_19) Rate() RateClass {
	if len(f.activeAnnouncements()) > 0 {
		return RateA
	}
	return RateB
}

func (f *FIG0_19) Priority() Priority {
	if len(f.activeAnnouncements()) > 0 {
		return High
	}
	return Normal
}

func (f *FIG0_19) Fill(buf []byte, budget int) (int, bool) {
	active := f.activeAnnouncements()
	if len(active) == 0 {
		return 0, true
	}
	if f.idx >= len(active) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(active) && pos+4 <= budget {
		a := active[f.idx]
		svc := f.Ensemble.ServiceByID(a.ServiceID)
		var cluster byte
		if svc != nil && len(svc.Clusters) > 0 {
			cluster = svc.Clusters[0]
		}
		buf[pos] = cluster
		buf[pos+1] = byte(1 << uint(a.Type))
		buf[pos+2] = (a.SubChannelID & 0x3F) << 2
		buf[pos+3] = 0x80 // new-flag set.
		pos += 4
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 19)
	if f.idx >= len(active) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_21 carries per-service Frequency Information.
type FIG0_21 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_21) Type() byte         { return 0 }
func (f *FIG0_21) Extension() byte    { return 21 }
func (f *FIG0_21) Rate() RateClass    { return RateC }
func (f *FIG0_21) Priority() Priority { return Normal }

func (f *FIG0_21) withFreq() []*ensemble.Service {
	var out []*ensemble.Service
	for _, s := range f.Ensemble.Services {
		if len(s.Frequencies) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (f *FIG0_21) Fill(buf []byte, budget int) (int, bool) {
	svcs := f.withFreq()
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
	for f.idx < len(svcs) {
		s := svcs[f.idx]
		recLen := 3 + 3*len(s.Frequencies)
		if pos+recLen > budget {
			break
		}
		buf[pos] = byte(len(s.Frequencies))
		buf[pos+1] = 0
		buf[pos+2] = 0
		off := pos + 3
		for _, fq := range s.Frequencies {
			buf[off] = fq.RegionID
			buf[off+1] = byte(fq.FrequencyKHz >> 8)
			buf[off+2] = byte(fq.FrequencyKHz)
			off += 3
		}
		pos = off
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 21)
	if f.idx >= len(svcs) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_24 lists services carried in other ensembles.
type FIG0_24 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_24) Type() byte         { return 0 }
func (f *FIG0_24) Extension() byte    { return 24 }
func (f *FIG0_24) Rate() RateClass    { return RateC }
func (f *FIG0_24) Priority() Priority { return Normal }

func (f *FIG0_24) Fill(buf []byte, budget int) (int, bool) {
	refs := f.Ensemble.OtherEnsembleServices
	if len(refs) == 0 {
		return 0, true
	}
	if f.idx >= len(refs) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(refs) && pos+4 <= budget {
		r := refs[f.idx]
		buf[pos] = byte(r.ServiceID >> 8)
		buf[pos+1] = byte(r.ServiceID)
		buf[pos+2] = byte(r.OtherEId >> 8)
		buf[pos+3] = byte(r.OtherEId)
		pos += 4
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 24)
	if f.idx >= len(refs) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_5 carries per-component language codes.
type FIG0_5 struct {
	Ensemble *ensemble.Ensemble
	Language map[uint32]byte // keyed by (serviceID<<8 | subChannelID).
	idx      int
}

func (f *FIG0_5) Type() byte         { return 0 }
func (f *FIG0_5) Extension() byte    { return 5 }
func (f *FIG0_5) Rate() RateClass    { return RateB }
func (f *FIG0_5) Priority() Priority { return Normal }

func (f *FIG0_5) Fill(buf []byte, budget int) (int, bool) {
	comps := f.Ensemble.Components
	if len(comps) == 0 || len(f.Language) == 0 {
		return 0, true
	}
	if f.idx >= len(comps) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(comps) && pos+2 <= budget {
		c := comps[f.idx]
		key := c.ServiceID<<8 | uint32(c.SubChannelID)
		lang, ok := f.Language[key]
		f.idx++
		if !ok {
			continue
		}
		buf[pos] = (c.SubChannelID & 0x3F) << 2
		buf[pos+1] = lang & 0x7F
		pos += 2
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 5)
	if f.idx >= len(comps) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_6 carries service linkage sets.
type FIG0_6 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_6) Type() byte         { return 0 }
func (f *FIG0_6) Extension() byte    { return 6 }
func (f *FIG0_6) Rate() RateClass    { return RateC }
func (f *FIG0_6) Priority() Priority { return Normal }

func (f *FIG0_6) linked() []*ensemble.Service {
	var out []*ensemble.Service
	for _, s := range f.Ensemble.Services {
		if s.Linkage != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f *FIG0_6) Fill(buf []byte, budget int) (int, bool) {
	svcs := f.linked()
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
	for f.idx < len(svcs) {
		s := svcs[f.idx]
		l := s.Linkage
		recLen := 2 + 3*len(l.Targets)
		if pos+recLen > budget {
			break
		}
		var hard, intl byte
		if l.Hard {
			hard = 1
		}
		if l.International {
			intl = 1
		}
		buf[pos] = (hard&0x01)<<7 | (intl&0x01)<<6 | byte(l.LSN>>8)&0x0F
		buf[pos+1] = byte(l.LSN & 0xFF)
		off := pos + 2
		for _, tgt := range l.Targets {
			buf[off] = byte(tgt.Kind) << 5
			buf[off+1] = byte(tgt.ID >> 8)
			buf[off+2] = byte(tgt.ID)
			off += 3
		}
		pos = off
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 6)
	if f.idx >= len(svcs) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}

// FIG0_8 is the Service Component Global Definition FIG, binding an SCIdS
// to its global sub-channel/packet-address identity.
type FIG0_8 struct {
	Ensemble *ensemble.Ensemble
	idx      int
}

func (f *FIG0_8) Type() byte         { return 0 }
func (f *FIG0_8) Extension() byte    { return 8 }
func (f *FIG0_8) Rate() RateClass    { return RateB }
func (f *FIG0_8) Priority() Priority { return Normal }

func (f *FIG0_8) Fill(buf []byte, budget int) (int, bool) {
	comps := f.Ensemble.Components
	if len(comps) == 0 {
		return 0, true
	}
	if f.idx >= len(comps) {
		f.idx = 0
	}
	pos := 2
	if budget < pos {
		return 0, false
	}
	start := f.idx
	for f.idx < len(comps) {
		c := comps[f.idx]
		recLen := 3
		if c.Kind == ensemble.PacketComponent {
			recLen = 4
		}
		if pos+recLen > budget {
			break
		}
		buf[pos] = byte(c.ServiceID >> 8)
		buf[pos+1] = byte(c.ServiceID)
		var ls byte
		if c.Kind == ensemble.PacketComponent {
			ls = 1
		}
		buf[pos+2] = (ls&0x01)<<7 | (c.SCIdS & 0x0F)
		if c.Kind == ensemble.PacketComponent {
			buf[pos+3] = byte(c.PacketAddress)
		}
		pos += recLen
		f.idx++
	}
	buf[0], buf[1] = header0(byte(pos-2), false, false, false, 8)
	if f.idx >= len(comps) {
		f.idx = 0
		return pos, true
	}
	return pos, f.idx == start
}
