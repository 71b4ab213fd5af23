/*
DESCRIPTION
  remote.go implements the semantic effects of the multiplexer's
  remote-control command surface. Wire transport (ZMQ/telnet framing) is
  out of scope; this package is the collaborator a transport layer calls
  into, mutating the live ensemble model under the Mux's single-writer
  discipline and reading back the statistics it maintains.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package remote implements the multiplexer's remote-control command
// surface: statistics and label queries, dynamic label and MOT carousel
// control, announcement triggers, and per-service metadata edits. Every
// command here is a semantic effect only; how it arrives over the wire
// is a transport concern outside this package.
package remote

import (
	"fmt"

	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/dabmux/internal/charset"
	"github.com/ausocean/dabmux/mux"
	"github.com/ausocean/utils/logging"
)

// Controller exposes the remote-control command surface over a running
// Mux. All methods are safe to call from any goroutine; mutations are
// applied under the Mux's tick-boundary lock.
type Controller struct {
	m *mux.Mux
}

// New returns a Controller driving m.
func New(m *mux.Mux) *Controller { return &Controller{m: m} }

// Statistics reports the frame/sequence counters and per-sub-channel
// input health, for get_statistics.
type Statistics struct {
	FrameCount   uint64
	EDISequence  uint64
	Underruns    map[byte]uint64
	Prebuffering map[byte]bool
}

// GetStatistics implements get_statistics.
func (c *Controller) GetStatistics() Statistics {
	s := c.m.Statistics()
	return Statistics{
		FrameCount:   s.FrameCount,
		EDISequence:  s.EDISeq,
		Underruns:    s.Underruns,
		Prebuffering: s.Prebuffering,
	}
}

// GetLabel implements get_label: the currently loaded dynamic label text
// for componentUID (per ensemble.ComponentUID).
func (c *Controller) GetLabel(componentUID string) (string, error) {
	return c.m.DynamicLabelText(componentUID)
}

// SetLabel implements set_label(component_uid, text): pushing text to the
// component's DLS encoder, flipping its toggle bit.
func (c *Controller) SetLabel(componentUID, text string) error {
	return c.m.SetDynamicLabel(componentUID, text)
}

// TriggerAnnouncement implements
// trigger_announcement(service_id, type, subchannel_id[, region_id]):
// it activates (or replaces) the announcement switch for serviceID/typ,
// which FIG 0/19 picks up on its next Rate-A emission (scenario 5).
func (c *Controller) TriggerAnnouncement(serviceID uint32, typ ensemble.AnnouncementType, subChannelID, regionID byte) error {
	var outErr error
	c.m.MutateEnsemble(func(e *ensemble.Ensemble) {
		if e.ServiceByID(serviceID) == nil {
			outErr = fmt.Errorf("remote: no service %#x", serviceID)
			return
		}
		for i, a := range e.Announcements {
			if a.ServiceID == serviceID && a.Type == typ {
				e.Announcements[i].SubChannelID = subChannelID
				e.Announcements[i].RegionID = regionID
				e.Announcements[i].Active = true
				return
			}
		}
		e.Announcements = append(e.Announcements, ensemble.Announcement{
			ServiceID:    serviceID,
			Type:         typ,
			SubChannelID: subChannelID,
			RegionID:     regionID,
			Active:       true,
		})
	})
	return outErr
}

// ClearAnnouncement implements clear_announcement(service_id, type): it
// deactivates the switch rather than removing it, so a later trigger of
// the same type reuses the same record.
func (c *Controller) ClearAnnouncement(serviceID uint32, typ ensemble.AnnouncementType) error {
	var outErr error
	c.m.MutateEnsemble(func(e *ensemble.Ensemble) {
		for i, a := range e.Announcements {
			if a.ServiceID == serviceID && a.Type == typ {
				e.Announcements[i].Active = false
				return
			}
		}
		outErr = fmt.Errorf("remote: no announcement of type %d for service %#x", typ, serviceID)
	})
	return outErr
}

// ComponentInfo is one service component as reported by GetServiceInfo.
type ComponentInfo struct {
	ComponentUID string
	SubChannelID byte
	Primary      bool
	Kind         ensemble.ComponentKind
	Label        string
}

// ServiceInfo is the get_service_info response for one service.
type ServiceInfo struct {
	ServiceID  uint32
	LongLabel  string
	ShortLabel string
	PTy        byte
	Language   byte
	Components []ComponentInfo
}

// GetServiceInfo implements get_service_info: the full set of configured
// services, their labels/PTy/language, and their bound components.
func (c *Controller) GetServiceInfo() []ServiceInfo {
	ens := c.m.Ensemble()
	out := make([]ServiceInfo, 0, len(ens.Services))
	for _, s := range ens.Services {
		info := ServiceInfo{
			ServiceID:  s.SId,
			LongLabel:  s.LongLabel,
			ShortLabel: s.ShortLabel,
			PTy:        s.PTy,
			Language:   s.Language,
		}
		for _, comp := range ens.ComponentsForService(s.SId) {
			info.Components = append(info.Components, ComponentInfo{
				ComponentUID: ensemble.ComponentUID(comp.ServiceID, comp.SubChannelID),
				SubChannelID: comp.SubChannelID,
				Primary:      comp.Primary,
				Kind:         comp.Kind,
				Label:        comp.Label,
			})
		}
		out = append(out, info)
	}
	return out
}

// InputStatus is the get_input_status response for one sub-channel.
type InputStatus struct {
	SubChannelID byte
	Underruns    uint64
	Prebuffering bool
}

// GetInputStatus implements get_input_status: per-sub-channel underrun
// counters and whether the driver is currently in a prebuffering restart.
func (c *Controller) GetInputStatus() []InputStatus {
	s := c.m.Statistics()
	out := make([]InputStatus, 0, len(s.Underruns))
	for _, sc := range c.m.Ensemble().SubChannels {
		out = append(out, InputStatus{
			SubChannelID: sc.ID,
			Underruns:    s.Underruns[sc.ID],
			Prebuffering: s.Prebuffering[sc.ID],
		})
	}
	return out
}

// ReloadCarousel implements reload_carousel(component_uid): it flags the
// component's MOT carousel for a directory reload, observed by the
// producer between ticks.
func (c *Controller) ReloadCarousel(componentUID string) error {
	return c.m.ReloadCarousel(componentUID)
}

// CarouselStats is the get_carousel_stats response for one component.
type CarouselStats struct {
	ObjectCount   int
	ReloadPending bool
}

// GetCarouselStats implements get_carousel_stats.
func (c *Controller) GetCarouselStats(componentUID string) (CarouselStats, error) {
	n, err := c.m.CarouselObjectCount(componentUID)
	if err != nil {
		return CarouselStats{}, err
	}
	pending, err := c.m.CarouselReloadPending(componentUID)
	if err != nil {
		return CarouselStats{}, err
	}
	return CarouselStats{ObjectCount: n, ReloadPending: pending}, nil
}

// SetServicePTy implements set_service_pty(service_uid, pty), pty in
// 0..31. FIG 0/17 picks up the new value on its next emission.
func (c *Controller) SetServicePTy(serviceID uint32, pty byte) error {
	if pty > 31 {
		return fmt.Errorf("remote: pty %d out of range 0-31", pty)
	}
	var outErr error
	c.m.MutateEnsemble(func(e *ensemble.Ensemble) {
		s := e.ServiceByID(serviceID)
		if s == nil {
			outErr = fmt.Errorf("remote: no service %#x", serviceID)
			return
		}
		s.PTy = pty
	})
	return outErr
}

// SetServiceLanguage implements set_service_language(uid, lang), lang in
// 0..127. FIG 0/5 picks up the new value on its next emission.
func (c *Controller) SetServiceLanguage(serviceID uint32, lang byte) error {
	if lang > 127 {
		return fmt.Errorf("remote: language %d out of range 0-127", lang)
	}
	var outErr error
	c.m.MutateEnsemble(func(e *ensemble.Ensemble) {
		s := e.ServiceByID(serviceID)
		if s == nil {
			outErr = fmt.Errorf("remote: no service %#x", serviceID)
			return
		}
		s.Language = lang
	})
	return outErr
}

// SetServiceLabel implements set_service_label(uid, text<=16, short<=8):
// the short label, when given, must select characters from text in
// order, per the FIG 1/x character mask encoding.
func (c *Controller) SetServiceLabel(serviceID uint32, text, short string) error {
	if len([]rune(text)) > 16 {
		return fmt.Errorf("remote: long label %q exceeds 16 characters", text)
	}
	if len([]rune(short)) > 8 {
		return fmt.Errorf("remote: short label %q exceeds 8 characters", short)
	}
	if _, err := charset.ShortLabelMask(text, short); err != nil {
		return err
	}
	var outErr error
	c.m.MutateEnsemble(func(e *ensemble.Ensemble) {
		s := e.ServiceByID(serviceID)
		if s == nil {
			outErr = fmt.Errorf("remote: no service %#x", serviceID)
			return
		}
		s.LongLabel = text
		s.ShortLabel = short
	})
	return outErr
}

// SetLogLevel implements set_log_level(level[, module]): module is
// accepted for command-surface compatibility but this multiplexer has a
// single injected logger, so it is applied ensemble-wide via the
// Variables table's logging key.
func (c *Controller) SetLogLevel(level int8, module string) {
	_ = module
	c.m.Update(map[string]string{"logging": fmt.Sprintf("%d", level)})
}

// Logger exposes the configured logger, for a transport layer that wants
// to report command failures through the same sink as the tick loop.
func (c *Controller) Logger() logging.Logger { return c.m.Config().Logger }
