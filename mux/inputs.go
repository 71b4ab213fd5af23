/*
DESCRIPTION
  inputs.go dispatches a sub-channel's configured input URI to the
  matching device.Input driver, keyed by URI scheme and sub-channel kind.

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
	"fmt"
	"strings"

	"github.com/ausocean/dabmux/device"
	"github.com/ausocean/dabmux/device/dabp"
	"github.com/ausocean/dabmux/device/fifo"
	"github.com/ausocean/dabmux/device/file"
	"github.com/ausocean/dabmux/device/mpeg"
	"github.com/ausocean/dabmux/device/tcpin"
	"github.com/ausocean/dabmux/device/udpin"
	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/utils/logging"
)

const inputQueueSize = 64

// newInput builds the device.Input for a sub-channel's configured
// InputURI and opens it, choosing the driver by URI scheme and, for
// files, by the sub-channel's payload kind.
func newInput(sc *ensemble.SubChannel, log logging.Logger) (device.Input, error) {
	uri := sc.InputURI
	var in device.Input
	switch {
	case strings.HasPrefix(uri, "file://"):
		if sc.Kind == ensemble.DABPlusAAC && strings.HasSuffix(uri, ".dabp") {
			in = dabp.New(log, sc.BitrateKbps)
		} else if sc.Kind == ensemble.DABMP2 {
			in = mpeg.New(log, true)
		} else {
			in = file.New(log, true)
		}
	case strings.HasPrefix(uri, "fifo://"):
		in = fifo.New(log, 0)
	case strings.HasPrefix(uri, "tcp://"):
		in = tcpin.New(log, inputQueueSize*sc.FrameSizeBytes())
	case strings.HasPrefix(uri, "udp://"):
		in = udpin.New(log, inputQueueSize*sc.FrameSizeBytes())
	default:
		return nil, fmt.Errorf("mux: unrecognised input URI %q for sub-channel %d", uri, sc.ID)
	}

	if err := in.Open(uri); err != nil {
		return nil, fmt.Errorf("mux: opening input for sub-channel %d: %w", sc.ID, err)
	}
	if _, err := in.SetBitrate(sc.BitrateKbps); err != nil {
		return nil, fmt.Errorf("mux: setting bitrate for sub-channel %d: %w", sc.ID, err)
	}
	return in, nil
}
