/*
DESCRIPTION
  config.go loads an Ensemble from an on-disk YAML document. Parsing itself
  is a thin pass-through to gopkg.in/yaml.v3; this file populates the data
  model in ensemble.go and runs Ensemble.Validate on the result. It does
  no templating.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ensemble

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// configDoc mirrors the on-disk YAML shape; it exists only so yaml.v3 has
// plain-old-data to unmarshal into before we build the richer Ensemble
// aggregate (which carries derived hashing state unsuited to marshalling).
type configDoc struct {
	EId                  uint16  `yaml:"eid"`
	ECC                  byte    `yaml:"ecc"`
	LongLabel            string  `yaml:"long_label"`
	ShortLabel           string  `yaml:"short_label"`
	Mode                 int     `yaml:"mode"`
	InternationalTableID byte    `yaml:"international_table_id"`
	LTOHalfHours         int8    `yaml:"lto_half_hours"`
	LTOAuto              bool    `yaml:"lto_auto"`
	Alarm                bool    `yaml:"alarm"`
	EnableDateTime       bool    `yaml:"enable_datetime"`
	EnableTIST           bool    `yaml:"enable_tist"`
	TISTOffsetSecs       float64 `yaml:"tist_offset_secs"`

	SubChannels []struct {
		ID           byte   `yaml:"id"`
		Kind         string `yaml:"kind"`
		StartAddress uint16 `yaml:"start_address"`
		BitrateKbps  int    `yaml:"bitrate_kbps"`
		Protection   struct {
			Form  string `yaml:"form"`
			Level byte   `yaml:"level"`
		} `yaml:"protection"`
		FECScheme byte   `yaml:"fec_scheme"`
		InputURI  string `yaml:"input_uri"`
	} `yaml:"sub_channels"`

	Services []struct {
		SId        uint32 `yaml:"sid"`
		LongLabel  string `yaml:"long_label"`
		ShortLabel string `yaml:"short_label"`
		PTy        byte   `yaml:"pty"`
		Language   byte   `yaml:"language"`
		ECC        byte   `yaml:"ecc"`
		CASystemID uint16 `yaml:"ca_system_id"`
	} `yaml:"services"`

	Components []struct {
		ServiceID           uint32 `yaml:"service_id"`
		SubChannelID        byte   `yaml:"sub_channel_id"`
		SCIdS               byte   `yaml:"scids"`
		Primary             bool   `yaml:"primary"`
		Kind                string `yaml:"kind"`
		PacketAddress       uint16 `yaml:"packet_address"`
		DataGroup           bool   `yaml:"data_group"`
		DSCTy               byte   `yaml:"dscty"`
		CAOrg               uint16 `yaml:"ca_org"`
		DynamicLabelChannel bool   `yaml:"dynamic_label_channel"`
		MOTCarouselEnabled  bool   `yaml:"mot_carousel_enabled"`
		Label               string `yaml:"label"`
		DLSSourcePath       string `yaml:"dls_source_path"`
		MOTDirectory        string `yaml:"mot_directory"`
	} `yaml:"components"`
}

var subChannelKinds = map[string]SubChannelKind{
	"dab-mp2":  DABMP2,
	"dab+-aac": DABPlusAAC,
	"packet":   Packet,
	"data-dmb": DataDMB,
}

var protectionForms = map[string]ProtectionForm{
	"uep":  UEP,
	"eep-a": EEPA,
	"eep-b": EEPB,
}

var componentKinds = map[string]ComponentKind{
	"stream-audio": StreamAudio,
	"stream-data":  StreamData,
	"packet":       PacketComponent,
}

// Load reads and parses the ensemble configuration at path.
func Load(path string) (*Ensemble, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "ensemble: reading config")
	}
	var doc configDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "ensemble: parsing config")
	}
	return fromDoc(&doc)
}

func fromDoc(doc *configDoc) (*Ensemble, error) {
	e := &Ensemble{
		EId:                  doc.EId,
		ECC:                  doc.ECC,
		LongLabel:            doc.LongLabel,
		ShortLabel:           doc.ShortLabel,
		Mode:                 Mode(doc.Mode),
		InternationalTableID: doc.InternationalTableID,
		LTOHalfHours:         doc.LTOHalfHours,
		LTOAuto:              doc.LTOAuto,
		Alarm:                doc.Alarm,
		EnableDateTime:       doc.EnableDateTime,
		EnableTIST:           doc.EnableTIST,
		TISTOffsetSecs:       doc.TISTOffsetSecs,
	}
	if e.Mode == 0 {
		e.Mode = ModeI
	}

	for _, sc := range doc.SubChannels {
		kind, ok := subChannelKinds[sc.Kind]
		if !ok {
			return nil, errors.Errorf("ensemble: unknown sub-channel kind %q", sc.Kind)
		}
		form, ok := protectionForms[sc.Protection.Form]
		if !ok {
			return nil, errors.Errorf("ensemble: unknown protection form %q", sc.Protection.Form)
		}
		e.SubChannels = append(e.SubChannels, &SubChannel{
			ID:           sc.ID,
			Kind:         kind,
			StartAddress: sc.StartAddress,
			BitrateKbps:  sc.BitrateKbps,
			Protection:   Protection{Form: form, Level: sc.Protection.Level},
			FECScheme:    sc.FECScheme,
			InputURI:     sc.InputURI,
		})
	}

	for _, s := range doc.Services {
		e.Services = append(e.Services, &Service{
			SId:        s.SId,
			LongLabel:  s.LongLabel,
			ShortLabel: s.ShortLabel,
			PTy:        s.PTy,
			Language:   s.Language,
			ECC:        s.ECC,
			CASystemID: s.CASystemID,
		})
	}

	for _, c := range doc.Components {
		kind, ok := componentKinds[c.Kind]
		if !ok {
			return nil, errors.Errorf("ensemble: unknown component kind %q", c.Kind)
		}
		e.Components = append(e.Components, &Component{
			ServiceID:           c.ServiceID,
			SubChannelID:        c.SubChannelID,
			SCIdS:               c.SCIdS,
			Primary:             c.Primary,
			Kind:                kind,
			PacketAddress:       c.PacketAddress,
			DataGroup:           c.DataGroup,
			DSCTy:               c.DSCTy,
			CAOrg:               c.CAOrg,
			DynamicLabelChannel: c.DynamicLabelChannel,
			MOTCarouselEnabled:  c.MOTCarouselEnabled,
			Label:               c.Label,
			DLSSourcePath:       c.DLSSourcePath,
			MOTDirectory:        c.MOTDirectory,
		})
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
