/*
DESCRIPTION
  subchannel.go binds one ensemble.SubChannel to its live input driver and
  optional PAD/MOT encoders, and assembles that sub-channel's MST payload
  once per tick.

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
	"github.com/ausocean/dabmux/device"
	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/dabmux/eti"
	"github.com/ausocean/dabmux/mot"
	"github.com/ausocean/dabmux/pad"
	"github.com/ausocean/utils/logging"
)

// closer is the minimal interface shared by the DLS and MOT directory
// watchers, so subChannelBinding can hold either without importing the
// fsnotify-backed types directly into its hot-path fields.
type closer interface{ Close() error }

// defaultPADBytes is the fixed-length X-PAD trailer appended to audio
// sub-channels carrying a dynamic label, when the driver does not embed
// PAD itself.
const defaultPADBytes = 2

// subChannelBinding pairs one sub-channel's static configuration with its
// live resources: input driver, optional PAD trailer encoder, optional
// MOT carousel (packet mode only).
type subChannelBinding struct {
	sc    *ensemble.SubChannel
	comp  *ensemble.Component
	input device.Input
	xpad  *pad.XPADEncoder // nil unless a dynamic label is bound.
	dls   *pad.DLSEncoder  // shared with the FIG 2/1 encoder.
	mot   *mot.Carousel    // nil unless packet mode with a carousel bound.
	log   logging.Logger

	// watchers are the optional fsnotify-backed DLS file source and MOT
	// directory watcher, closed alongside the rest of the binding.
	watchers []closer

	// underrunCount and prebuffering track the input-underrun statistics
	// the remote-control get_input_status command surface reports.
	underrunCount uint64
	prebuffering  bool
}

// newSubChannelBinding opens sc's input and wires PAD/MOT as configured by
// comp (nil for sub-channels with no bound component).
func newSubChannelBinding(sc *ensemble.SubChannel, comp *ensemble.Component, log logging.Logger) (*subChannelBinding, error) {
	b := &subChannelBinding{sc: sc, comp: comp, log: log}

	if sc.Kind == ensemble.Packet && comp != nil && comp.MOTCarouselEnabled {
		b.mot = mot.NewCarousel(0)
		if comp.MOTDirectory != "" {
			dw, err := mot.NewDirWatcher(comp.MOTDirectory, b.mot, log)
			if err != nil {
				if log != nil {
					log.Warning("mux: could not watch MOT directory", "path", comp.MOTDirectory, "error", err.Error())
				}
			} else {
				b.watchers = append(b.watchers, dw)
			}
		}
		return b, nil
	}

	in, err := newInput(sc, log)
	if err != nil {
		return nil, err
	}
	b.input = in

	if comp != nil && comp.DynamicLabelChannel {
		b.dls = pad.NewDLSEncoder()
		if setter, ok := in.(device.PADSetter); ok {
			_ = setter // PAD is injected via set_pad_data in buildMST, not here.
		}
		b.xpad = pad.NewXPADEncoder(b.dls, defaultPADBytes)

		if comp.DLSSourcePath != "" {
			fw, err := pad.NewFileWatcher(comp.DLSSourcePath, b.dls, log)
			if err != nil {
				if log != nil {
					log.Warning("mux: could not watch DLS source file", "path", comp.DLSSourcePath, "error", err.Error())
				}
			} else {
				b.watchers = append(b.watchers, fw)
			}
		}
	}

	return b, nil
}

// frameSize returns the number of content bytes this tick expects from
// the driver, before PAD and padding.
func (b *subChannelBinding) frameSize() int {
	if fs, ok := b.input.(device.FrameSizer); ok {
		return fs.GetFrameSize()
	}
	return b.sc.FrameSizeBytes()
}

// buildMST reads this tick's content (packet-mode carousel or audio
// driver), appends PAD where configured, pads to an 8-byte boundary, and
// returns the payload plus its STC.STL (in 64-bit words, i.e. 8-byte
// units).
func (b *subChannelBinding) buildMST() (payload []byte, stl uint16) {
	if b.mot != nil {
		pkt := b.mot.NextPacket()
		return pkt, uint16((len(pkt) + 7) / 8)
	}

	size := b.frameSize()
	if setter, ok := b.input.(device.PADSetter); ok && b.xpad != nil {
		setter.SetPADData(b.xpad.Trailer())
	}
	data, underrun := b.input.ReadFrame(size)
	b.prebuffering = underrun
	if underrun {
		b.underrunCount++
		if b.log != nil {
			b.log.Warning("mux: sub-channel input underrun", "sub_channel", b.sc.ID)
		}
	}

	out := data
	if _, ok := b.input.(device.PADSetter); !ok && b.xpad != nil {
		out = append(append([]byte(nil), data...), b.xpad.Trailer()...)
	}

	padded := make([]byte, (len(out)+7)/8*8)
	copy(padded, out)
	return padded, uint16(len(padded) / 8)
}

// stc builds this sub-channel's STC header for the current tick, given
// its MST-offset-derived STL.
func (b *subChannelBinding) stc(stl uint16) eti.STC {
	return eti.STC{
		SCID:         b.sc.ID,
		StartAddress: b.sc.StartAddress,
		TPL:          tplEncoding(b.sc.Protection),
		STL:          stl,
	}
}

// tplEncoding packs a sub-channel's protection profile into ETI's 6-bit
// TPL field: UEP profiles use a direct table-index encoding (bit 5
// clear); EEP profiles set bit 5, bit 4 selects option A/B, and the low
// bits carry the protection level, per ETSI EN 300 799 table 7.
func tplEncoding(p ensemble.Protection) byte {
	switch p.Form {
	case ensemble.EEPA:
		return 0x20 | (p.Level & 0x0F)
	case ensemble.EEPB:
		return 0x20 | 0x10 | (p.Level & 0x0F)
	default:
		return p.Level & 0x1F
	}
}

func (b *subChannelBinding) close() error {
	var firstErr error
	for _, w := range b.watchers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if b.input != nil {
		if err := b.input.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
