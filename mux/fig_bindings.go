/*
DESCRIPTION
  fig_bindings.go builds the set of FIG encoders the FIC carousel
  schedules for a given ensemble and its live sub-channel bindings.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mux

import (
	"time"

	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/dabmux/fig"
	"github.com/ausocean/dabmux/pad"
)

// mjdEpoch is 1858-11-17, the Modified Julian Date origin, used to derive
// FIG 0/10's MJD field from wall-clock time.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// nowDateTime implements FIG0_10.Now: it derives MJD and UTC time-of-day
// from the wall clock, for the ensemble's Date/Time announcement.
func nowDateTime() (mjd uint32, hours, minutes, seconds byte, utc bool) {
	now := time.Now().UTC()
	days := int(now.Sub(mjdEpoch).Hours() / 24)
	return uint32(days), byte(now.Hour()), byte(now.Minute()), byte(now.Second()), true
}

// buildFIGEncoders returns every FIG encoder relevant to ens, in a fixed
// order (FIG 0/0 first, as it's emitted every FIB cycle), wiring dynamic
// label sources from the live bindings.
func buildFIGEncoders(ens *ensemble.Ensemble, bindings []*subChannelBinding, frameNumber func() uint64) []fig.Encoder {
	var dls []*pad.DLSEncoder
	for _, b := range bindings {
		if b.dls != nil {
			dls = append(dls, b.dls)
		}
	}

	labels := map[*ensemble.Component]string{}
	for _, c := range ens.Components {
		if c.Label != "" {
			labels[c] = c.Label
		}
	}

	encs := []fig.Encoder{
		&fig.FIG0_0{Ensemble: ens, FrameNumber: frameNumber},
		&fig.FIG0_1{Ensemble: ens},
		&fig.FIG0_2{Ensemble: ens},
		&fig.FIG0_3{Ensemble: ens},
		&fig.FIG0_5{Ensemble: ens},
		&fig.FIG0_6{Ensemble: ens},
		&fig.FIG0_7{Ensemble: ens},
		&fig.FIG0_8{Ensemble: ens},
		&fig.FIG0_9{Ensemble: ens},
		&fig.FIG0_10{Ensemble: ens, Now: nowDateTime},
		&fig.FIG0_13{Ensemble: ens},
		&fig.FIG0_14{Ensemble: ens},
		&fig.FIG0_17{Ensemble: ens},
		&fig.FIG0_18{Ensemble: ens},
		&fig.FIG0_19{Ensemble: ens},
		&fig.FIG0_21{Ensemble: ens},
		&fig.FIG0_24{Ensemble: ens},
		&fig.FIG1_0{Ensemble: ens},
		&fig.FIG1_1{Ensemble: ens},
		&fig.FIG6_0{Ensemble: ens},
		&fig.FIG6_1{Ensemble: ens},
	}
	if len(labels) > 0 {
		encs = append(encs, &fig.FIG1_4{Ensemble: ens, Label: labels})
	}
	if len(dls) > 0 {
		encs = append(encs, &fig.FIG2_1{Sources: dls})
	}
	return encs
}
