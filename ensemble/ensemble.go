/*
DESCRIPTION
  ensemble.go defines the ensemble data model (Ensemble, Sub-channel,
  Service, Component, DynamicLabel and related records) and their load-time
  invariants, plus the structural hash FIG 0/7 uses to detect configuration
  changes.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ensemble holds the DAB ensemble configuration model: the root
// Ensemble record and its sub-channels, services and components, their
// load-time invariants, and a structural hash used to detect the
// configuration changes FIG 0/7 must announce.
package ensemble

import (
	"fmt"
	"sort"
)

// Mode is the DAB transmission mode.
type Mode int

const (
	ModeI Mode = iota + 1
	ModeII
	ModeIII
	ModeIV
)

// SubChannelKind is the payload type carried by a sub-channel.
type SubChannelKind int

const (
	DABMP2 SubChannelKind = iota
	DABPlusAAC
	Packet
	DataDMB
)

// ProtectionForm distinguishes UEP short-form from EEP long-form
// protection encoding in FIG 0/1.
type ProtectionForm int

const (
	UEP ProtectionForm = iota
	EEPA
	EEPB
)

// Protection describes a sub-channel's error protection profile.
type Protection struct {
	Form  ProtectionForm
	Level byte // UEP 1-5, or EEP level 1-4.
}

// SubChannel is a contiguous range of Capacity Units in the MSC.
type SubChannel struct {
	ID           byte // 6-bit.
	Kind         SubChannelKind
	StartAddress uint16 // 10-bit CU index.
	BitrateKbps  int
	Protection   Protection
	FECScheme    byte // 0 = none; packet mode only.
	InputURI     string

	// ConfigVersion is bumped whenever a structural field of this
	// sub-channel changes after initial load.
	ConfigVersion uint64

	// SizeCUOverride, when non-zero, takes precedence over the protection
	// table lookup (for protection profiles outside the common UEP table).
	SizeCUOverride int

	// GetFrameSizeOverride, when non-zero, overrides bitrate*3 (for DAB+
	// inputs whose pre-encoded superframes carry FEC overhead the nominal
	// bitrate doesn't account for).
	GetFrameSizeOverride int
}

// SizeCU returns the sub-channel's size in Capacity Units via the
// ETSI protection-table lookup. Only the common UEP sizes used by DAB
// audio are tabulated; callers needing exotic profiles should set
// SizeCUOverride.
func (s *SubChannel) SizeCU() int {
	if s.SizeCUOverride > 0 {
		return s.SizeCUOverride
	}
	return uepSizeCU(s.BitrateKbps, s.Protection.Level)
}

// uepSizeCU is a partial ETSI EN 300 401 Table 8 lookup for common
// bitrate/protection-level combinations used by DAB audio sub-channels.
func uepSizeCU(kbps int, level byte) int {
	type key struct {
		kbps  int
		level byte
	}
	table := map[key]int{
		{32, 4}: 21, {32, 3}: 24, {32, 2}: 29, {32, 1}: 35,
		{48, 4}: 32, {48, 3}: 37, {48, 2}: 43, {48, 1}: 52,
		{56, 4}: 37, {56, 3}: 43, {56, 2}: 50, {56, 1}: 61,
		{64, 4}: 42, {64, 3}: 49, {64, 2}: 57, {64, 1}: 70,
		{96, 4}: 63, {96, 3}: 73, {96, 2}: 86, {96, 1}: 105,
		{112, 4}: 74, {112, 3}: 86, {112, 2}: 100, {112, 1}: 122,
		{128, 4}: 84, {128, 3}: 98, {128, 2}: 113, {128, 1}: 140,
		{160, 4}: 105, {160, 3}: 122, {160, 2}: 141, {160, 1}: 174,
		{192, 4}: 126, {192, 3}: 146, {192, 2}: 169, {192, 1}: 209,
		{224, 4}: 147, {224, 3}: 171, {224, 2}: 198, {224, 1}: 244,
		{256, 4}: 168, {256, 3}: 195, {256, 2}: 226, {256, 1}: 279,
		{320, 4}: 210, {320, 3}: 243, {320, 2}: 282, {320, 1}: 349,
		{384, 4}: 253, {384, 3}: 292, {384, 2}: 338, {384, 1}: 419,
	}
	if v, ok := table[key{kbps, level}]; ok {
		return v
	}
	// Fall back to the nominal CU-per-kbps ratio for EEP/unlisted profiles.
	return (kbps*3 + 7) / 8
}

// FrameSizeBytes returns the 24ms-frame payload size: bitrate x 3 bytes,
// unless an input has published a larger protected-AU size via
// GetFrameSizeOverride.
func (s *SubChannel) FrameSizeBytes() int {
	if s.GetFrameSizeOverride > 0 {
		return s.GetFrameSizeOverride
	}
	return s.BitrateKbps * 3
}

// Service is a logical programme or data stream.
type Service struct {
	SId         uint32 // 16-bit programme, or >=0x10000 for data.
	LongLabel   string
	ShortLabel  string
	PTy         byte // 0-31.
	Language    byte // 0-127.
	ECC         byte // 0 = inherit ensemble ECC.
	Clusters    []byte
	Linkage     *Linkage
	Frequencies []FrequencyInfo
	CASystemID  uint16 // 0 = none.
}

// Linkage describes a service's linkage set (FIG 0/6).
type Linkage struct {
	LSN          uint16
	Hard         bool
	International bool
	Targets      []LinkageTarget
}

// LinkageTargetKind enumerates the receiver technology a linkage target
// points at.
type LinkageTargetKind int

const (
	TargetDAB LinkageTargetKind = iota
	TargetRDS
	TargetFM
	TargetDRM
	TargetAMSS
)

// LinkageTarget is one cross-referenced service reachable via a linkage set.
type LinkageTarget struct {
	Kind LinkageTargetKind
	ID   uint32
}

// FrequencyInfo is one alternative-frequency entry for a service (FIG 0/21).
type FrequencyInfo struct {
	RegionID  byte
	FrequencyKHz uint32
}

// ComponentKind is the stream type a component carries.
type ComponentKind int

const (
	StreamAudio ComponentKind = iota
	StreamData
	PacketComponent
)

// Component binds one service to one sub-channel.
type Component struct {
	ServiceID   uint32
	SubChannelID byte
	SCIdS       byte // within-service index.
	Primary     bool
	Kind        ComponentKind

	// Label, when non-empty, is this component's FIG 1/4 component label.
	Label string

	// Packet-mode fields.
	PacketAddress uint16
	DataGroup     bool
	DSCTy         byte
	CAOrg         uint16

	DynamicLabelChannel bool
	MOTCarouselEnabled  bool

	// DLSSourcePath, when set alongside DynamicLabelChannel, names a text
	// file watched as the component's dynamic label source.
	DLSSourcePath string

	// MOTDirectory, when set alongside MOTCarouselEnabled, names a
	// directory watched for carousel object changes.
	MOTDirectory string
}

// DynamicLabel is rolling text bound to a component.
type DynamicLabel struct {
	Text    string
	Charset byte // 0 EBU-Latin, 1 UCS-2, 2 UTF-8.
	Toggle  bool

	segments [][]byte
	cursor   int
}

// CASystem is a conditional-access system id known to the ensemble.
type CASystem struct {
	ID uint16
}

// OtherEnsembleService references a service carried in another ensemble
// (FIG 0/24).
type OtherEnsembleService struct {
	ServiceID    uint32
	OtherEId     uint16
}

// AnnouncementType enumerates the ETSI-defined announcement categories.
type AnnouncementType int

const (
	AnnAlarm AnnouncementType = iota
	AnnTrafficFlash
	AnnTransportFlash
	AnnWarning
	AnnNews
	AnnWeather
	AnnEvent
	AnnSpecialEvent
	AnnProgrammeInfo
	AnnSportReport
	AnnFinancial
)

// Announcement is a live or cleared announcement switch for a service.
type Announcement struct {
	ServiceID    uint32
	Type         AnnouncementType
	SubChannelID byte
	RegionID     byte
	Active       bool
}

// Ensemble is the root configuration.
type Ensemble struct {
	EId              uint16
	ECC              byte
	LongLabel        string
	ShortLabel       string
	Mode             Mode
	InternationalTableID byte
	LTOHalfHours     int8 // +-24 half hours.
	LTOAuto          bool
	Alarm            bool
	EnableDateTime   bool
	EnableTIST       bool
	TISTOffsetSecs   float64

	SubChannels []*SubChannel
	Services    []*Service
	Components  []*Component

	OtherEnsembleServices []OtherEnsembleService
	Frequencies           []FrequencyInfo
	CASystems             []CASystem
	Announcements         []Announcement

	lastHash     uint16
	haveLastHash bool
}

// Validate checks the invariants required at load time: ids unique
// within their list, sub-channel CU ranges non-overlapping, and every
// component referencing an existing service and sub-channel.
func (e *Ensemble) Validate() error {
	seenSub := map[byte]bool{}
	for _, sc := range e.SubChannels {
		if seenSub[sc.ID] {
			return fmt.Errorf("ensemble: duplicate sub-channel id %d", sc.ID)
		}
		seenSub[sc.ID] = true
	}

	sorted := append([]*SubChannel(nil), e.SubChannels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartAddress < sorted[j].StartAddress })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if int(prev.StartAddress)+prev.SizeCU() > int(cur.StartAddress) {
			return fmt.Errorf("ensemble: sub-channels %d and %d overlap in CU space", prev.ID, cur.ID)
		}
	}

	seenSvc := map[uint32]bool{}
	for _, s := range e.Services {
		if seenSvc[s.SId] {
			return fmt.Errorf("ensemble: duplicate service id %#x", s.SId)
		}
		seenSvc[s.SId] = true
	}

	for _, c := range e.Components {
		if !seenSvc[c.ServiceID] {
			return fmt.Errorf("ensemble: component references unknown service %#x", c.ServiceID)
		}
		if !seenSub[c.SubChannelID] {
			return fmt.Errorf("ensemble: component references unknown sub-channel %d", c.SubChannelID)
		}
	}

	primaryFor := map[uint32]bool{}
	for _, c := range e.Components {
		if !c.Primary {
			continue
		}
		if primaryFor[c.ServiceID] {
			return fmt.Errorf("ensemble: service %#x has more than one primary component", c.ServiceID)
		}
		primaryFor[c.ServiceID] = true
	}

	return nil
}

// SubChannelByID returns the sub-channel with the given id, or nil.
func (e *Ensemble) SubChannelByID(id byte) *SubChannel {
	for _, sc := range e.SubChannels {
		if sc.ID == id {
			return sc
		}
	}
	return nil
}

// ServiceByID returns the service with the given SId, or nil.
func (e *Ensemble) ServiceByID(sid uint32) *Service {
	for _, s := range e.Services {
		if s.SId == sid {
			return s
		}
	}
	return nil
}

// ConfigHash computes the 10-bit structural hash FIG 0/7 reports: over
// ensemble id, ECC, and the ordered sub-channel/service/component lists,
// deliberately excluding labels, dynamic text and announcements so that
// only structural changes are observed.
func (e *Ensemble) ConfigHash() uint16 {
	var h uint32 = 2166136261 // FNV-1a offset basis, folded to 10 bits below.
	mix := func(b byte) {
		h ^= uint32(b)
		h *= 16777619
	}
	mixU16 := func(v uint16) { mix(byte(v >> 8)); mix(byte(v)) }
	mixU32 := func(v uint32) {
		mix(byte(v >> 24))
		mix(byte(v >> 16))
		mix(byte(v >> 8))
		mix(byte(v))
	}

	mixU16(e.EId)
	mix(e.ECC)

	subs := append([]*SubChannel(nil), e.SubChannels...)
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	for _, sc := range subs {
		mix(sc.ID)
		mixU16(uint16(sc.BitrateKbps))
		mixU16(sc.StartAddress)
		mix(byte(sc.Protection.Form))
		mix(sc.Protection.Level)
		mix(byte(sc.Kind))
	}

	svcs := append([]*Service(nil), e.Services...)
	sort.Slice(svcs, func(i, j int) bool { return svcs[i].SId < svcs[j].SId })
	for _, s := range svcs {
		mixU32(s.SId)
	}

	comps := append([]*Component(nil), e.Components...)
	sort.Slice(comps, func(i, j int) bool {
		if comps[i].ServiceID != comps[j].ServiceID {
			return comps[i].ServiceID < comps[j].ServiceID
		}
		return comps[i].SubChannelID < comps[j].SubChannelID
	})
	for _, c := range comps {
		mixU32(c.ServiceID)
		mix(c.SubChannelID)
		mixU16(c.PacketAddress)
	}

	return uint16(h) & 0x3FF
}

// HashChanged reports whether ConfigHash differs from the last value
// observed via MarkHashEmitted, and is how FIG 0/7 decides whether to
// retransmit.
func (e *Ensemble) HashChanged() bool {
	return !e.haveLastHash || e.ConfigHash() != e.lastHash
}

// MarkHashEmitted records the current ConfigHash as having been emitted.
func (e *Ensemble) MarkHashEmitted() {
	e.lastHash = e.ConfigHash()
	e.haveLastHash = true
}

// ComponentsForService returns the components bound to the given service, primary
// first.
func (e *Ensemble) ComponentsForService(sid uint32) []*Component {
	var out []*Component
	for _, c := range e.Components {
		if c.ServiceID == sid {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Primary && !out[j].Primary })
	return out
}

// ComponentUID formats the (service id, sub-channel id) pair that
// uniquely identifies a component, as used by the remote-control command
// surface (§6) to name a component_uid.
func ComponentUID(serviceID uint32, subChannelID byte) string {
	return fmt.Sprintf("%d:%d", serviceID, subChannelID)
}

// ComponentByUID looks up a component by its ComponentUID, or returns nil
// if none matches.
func (e *Ensemble) ComponentByUID(uid string) *Component {
	for _, c := range e.Components {
		if ComponentUID(c.ServiceID, c.SubChannelID) == uid {
			return c
		}
	}
	return nil
}
