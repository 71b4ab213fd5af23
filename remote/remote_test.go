/*
DESCRIPTION
  remote_test.go exercises the remote-control command surface against a
  running Mux: dynamic label get/set, announcement trigger/clear, MOT
  carousel reload, and per-service metadata edits.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package remote

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/dabmux/mux"
	"github.com/ausocean/dabmux/mux/config"
	"github.com/ausocean/utils/logging"
)

type dumbLogger struct{}

func (dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dumbLogger) SetLevel(l int8)                         {}
func (dumbLogger) Debug(msg string, args ...interface{})   {}
func (dumbLogger) Info(msg string, args ...interface{})    {}
func (dumbLogger) Warning(msg string, args ...interface{}) {}
func (dumbLogger) Error(msg string, args ...interface{})   {}
func (dumbLogger) Fatal(msg string, args ...interface{})   {}

var _ logging.Logger = dumbLogger{}

func testEnsemble(t *testing.T, dir string) *ensemble.Ensemble {
	t.Helper()
	dlsPath := filepath.Join(dir, "dls.raw")
	if err := os.WriteFile(dlsPath, make([]byte, 64*3*4), 0o644); err != nil {
		t.Fatalf("writing input file: %v", err)
	}

	ens := &ensemble.Ensemble{
		EId:  0xC181,
		ECC:  0xE1,
		Mode: ensemble.ModeI,
		SubChannels: []*ensemble.SubChannel{
			{ID: 1, Kind: ensemble.DABPlusAAC, StartAddress: 0, BitrateKbps: 64,
				Protection: ensemble.Protection{Form: ensemble.UEP, Level: 3}, InputURI: "file://" + dlsPath},
			{ID: 2, Kind: ensemble.Packet, StartAddress: 100, BitrateKbps: 8,
				Protection: ensemble.Protection{Form: ensemble.UEP, Level: 3}},
		},
		Services: []*ensemble.Service{
			{SId: 0x5001, LongLabel: "Test Service One", ShortLabel: "Test1"},
		},
		Components: []*ensemble.Component{
			{ServiceID: 0x5001, SubChannelID: 1, Primary: true, Kind: ensemble.StreamAudio, DynamicLabelChannel: true},
			{ServiceID: 0x5001, SubChannelID: 2, Kind: ensemble.PacketComponent, MOTCarouselEnabled: true},
		},
	}
	if err := ens.Validate(); err != nil {
		t.Fatalf("invalid ensemble: %v", err)
	}
	return ens
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	dir := t.TempDir()
	ens := testEnsemble(t, dir)
	cfg := config.Config{
		Logger:         dumbLogger{},
		TickIntervalMS: 5,
	}
	m, err := mux.New(cfg, ens)
	if err != nil {
		t.Fatalf("mux.New: %v", err)
	}
	return New(m)
}

func TestSetGetLabel(t *testing.T) {
	c := newTestController(t)
	uid := ensemble.ComponentUID(0x5001, 1)

	if got, err := c.GetLabel(uid); err != nil || got != "" {
		t.Fatalf("GetLabel before any label is set: got (%q, %v), want empty text and no error", got, err)
	}
	if err := c.SetLabel(uid, "Now Playing"); err != nil {
		t.Fatalf("SetLabel: %v", err)
	}
	got, err := c.GetLabel(uid)
	if err != nil {
		t.Fatalf("GetLabel: %v", err)
	}
	if got != "Now Playing" {
		t.Errorf("GetLabel: got %q, want %q", got, "Now Playing")
	}
}

func TestSetLabelUnknownComponent(t *testing.T) {
	c := newTestController(t)
	if err := c.SetLabel("9999:9", "x"); err == nil {
		t.Fatalf("expected error for unknown component uid")
	}
}

func TestTriggerAndClearAnnouncement(t *testing.T) {
	c := newTestController(t)

	if err := c.TriggerAnnouncement(0x5001, ensemble.AnnAlarm, 2, 0); err != nil {
		t.Fatalf("TriggerAnnouncement: %v", err)
	}
	found := false
	for _, a := range c.m.Ensemble().Announcements {
		if a.ServiceID == 0x5001 && a.Type == ensemble.AnnAlarm {
			found = true
			if !a.Active {
				t.Errorf("announcement should be active after trigger")
			}
			if a.SubChannelID != 2 {
				t.Errorf("announcement sub-channel id = %d, want 2", a.SubChannelID)
			}
		}
	}
	if !found {
		t.Fatalf("no announcement record created")
	}

	if err := c.ClearAnnouncement(0x5001, ensemble.AnnAlarm); err != nil {
		t.Fatalf("ClearAnnouncement: %v", err)
	}
	for _, a := range c.m.Ensemble().Announcements {
		if a.ServiceID == 0x5001 && a.Type == ensemble.AnnAlarm && a.Active {
			t.Errorf("announcement still active after clear")
		}
	}
}

func TestClearAnnouncementUnknown(t *testing.T) {
	c := newTestController(t)
	if err := c.ClearAnnouncement(0x5001, ensemble.AnnTrafficFlash); err == nil {
		t.Fatalf("expected error clearing a never-triggered announcement")
	}
}

func TestReloadCarouselAndStats(t *testing.T) {
	c := newTestController(t)
	uid := ensemble.ComponentUID(0x5001, 2)

	stats, err := c.GetCarouselStats(uid)
	if err != nil {
		t.Fatalf("GetCarouselStats: %v", err)
	}
	if stats.ReloadPending {
		t.Errorf("reload should not be pending initially")
	}

	if err := c.ReloadCarousel(uid); err != nil {
		t.Fatalf("ReloadCarousel: %v", err)
	}
	stats, err = c.GetCarouselStats(uid)
	if err != nil {
		t.Fatalf("GetCarouselStats: %v", err)
	}
	if !stats.ReloadPending {
		t.Errorf("reload should be pending after ReloadCarousel")
	}
}

func TestSetServicePTyAndLanguage(t *testing.T) {
	c := newTestController(t)

	if err := c.SetServicePTy(0x5001, 32); err == nil {
		t.Fatalf("expected error for out-of-range pty")
	}
	if err := c.SetServicePTy(0x5001, 5); err != nil {
		t.Fatalf("SetServicePTy: %v", err)
	}
	if err := c.SetServiceLanguage(0x5001, 200); err == nil {
		t.Fatalf("expected error for out-of-range language")
	}
	if err := c.SetServiceLanguage(0x5001, 9); err != nil {
		t.Fatalf("SetServiceLanguage: %v", err)
	}

	info := c.GetServiceInfo()
	if len(info) != 1 || info[0].PTy != 5 || info[0].Language != 9 {
		t.Fatalf("GetServiceInfo after edits: %+v", info)
	}
}

func TestSetServiceLabelValidatesShortLabel(t *testing.T) {
	c := newTestController(t)
	if err := c.SetServiceLabel(0x5001, "BBC Radio One", "XYZ"); err == nil {
		t.Fatalf("expected error: short label characters not found in order in long label")
	}
	if err := c.SetServiceLabel(0x5001, "BBC Radio One", "BBC One"); err != nil {
		t.Fatalf("SetServiceLabel: %v", err)
	}
}

func TestGetInputStatus(t *testing.T) {
	c := newTestController(t)
	statuses := c.GetInputStatus()
	if len(statuses) != 2 {
		t.Fatalf("GetInputStatus: got %d entries, want 2", len(statuses))
	}
}
