package ensemble

import "testing"

func baseEnsemble() *Ensemble {
	return &Ensemble{
		EId: 0xCE15,
		SubChannels: []*SubChannel{
			{ID: 1, BitrateKbps: 128, StartAddress: 0, Protection: Protection{Level: 3}},
			{ID: 2, BitrateKbps: 64, StartAddress: 98, Protection: Protection{Level: 3}},
		},
		Services: []*Service{
			{SId: 0x5001, LongLabel: "Test Service One"},
			{SId: 0x5002, LongLabel: "Test Service Two"},
		},
		Components: []*Component{
			{ServiceID: 0x5001, SubChannelID: 1, Primary: true},
			{ServiceID: 0x5002, SubChannelID: 2, Primary: true},
		},
	}
}

func TestValidateOK(t *testing.T) {
	e := baseEnsemble()
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateDuplicateSubChannel(t *testing.T) {
	e := baseEnsemble()
	e.SubChannels = append(e.SubChannels, &SubChannel{ID: 1, BitrateKbps: 32, StartAddress: 200})
	if err := e.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for duplicate sub-channel id")
	}
}

func TestValidateOverlappingSubChannels(t *testing.T) {
	e := baseEnsemble()
	e.SubChannels[1].StartAddress = 10 // overlaps sub-channel 1's CU range.
	if err := e.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for overlapping sub-channels")
	}
}

func TestValidateUnknownComponentRefs(t *testing.T) {
	e := baseEnsemble()
	e.Components = append(e.Components, &Component{ServiceID: 0x9999, SubChannelID: 1})
	if err := e.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for unknown service reference")
	}
}

func TestValidateMultiplePrimaryComponents(t *testing.T) {
	e := baseEnsemble()
	e.Components = append(e.Components, &Component{ServiceID: 0x5001, SubChannelID: 2, Primary: true})
	if err := e.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for two primary components on one service")
	}
}

func TestConfigHashIgnoresLabels(t *testing.T) {
	e := baseEnsemble()
	h1 := e.ConfigHash()
	e.Services[0].LongLabel = "Renamed Service"
	e.LongLabel = "Renamed Ensemble"
	h2 := e.ConfigHash()
	if h1 != h2 {
		t.Errorf("ConfigHash changed after label-only edit: %d != %d", h1, h2)
	}
}

func TestConfigHashChangesOnStructuralEdit(t *testing.T) {
	e := baseEnsemble()
	h1 := e.ConfigHash()
	e.SubChannels[0].BitrateKbps = 192
	h2 := e.ConfigHash()
	if h1 == h2 {
		t.Error("ConfigHash did not change after bitrate edit")
	}
}

func TestConfigHashFitsIn10Bits(t *testing.T) {
	e := baseEnsemble()
	if h := e.ConfigHash(); h > 0x3FF {
		t.Errorf("ConfigHash %d exceeds 10 bits", h)
	}
}

func TestHashChangedTracksEmission(t *testing.T) {
	e := baseEnsemble()
	if !e.HashChanged() {
		t.Fatal("HashChanged() = false before first emission, want true")
	}
	e.MarkHashEmitted()
	if e.HashChanged() {
		t.Fatal("HashChanged() = true immediately after MarkHashEmitted, want false")
	}
	e.SubChannels[0].BitrateKbps = 96
	if !e.HashChanged() {
		t.Fatal("HashChanged() = false after structural edit, want true")
	}
}
