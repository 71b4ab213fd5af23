/*
DESCRIPTION
  tick.go implements the per-24ms tick body: build an empty ETI frame,
  stamp TIST, roll the FIG carousel into the FIC, pull one sub-channel
  frame from each input, finalise FL/CRCs, then fan out to the ETI
  sinks and the EDI encoder/PFT/transport stack.

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

	"github.com/ausocean/dabmux/edi"
	"github.com/ausocean/dabmux/eti"
)

// tistTicksPerSecond is TIST's resolution, 1/16384000s.
const tistTicksPerSecond = 16384000

// tick assembles and emits exactly one ETI (and, if enabled, EDI) frame.
// It never returns an error for tick-local failures (input underrun,
// output transport failure); those are logged and the tick continues.
// A non-nil error return indicates a structural/programming-error class
// failure.
func (m *Mux) tick() error {
	frameCount := m.FrameCount()
	now := time.Now()

	frame := eti.Empty(frameCount, m.mid, m.ens.EnableTIST)
	if m.ens.EnableTIST {
		frame.TIST.Value = tistValue(now, m.ens.TISTOffsetSecs)
	}

	frame.FIC = m.ficEnc.EncodeFIC(now.UnixMilli())

	subs := make([]edi.SubChannelFrame, 0, len(m.bindings))
	for _, b := range m.bindings {
		payload, stl := b.buildMST()
		frame.STCs = append(frame.STCs, b.stc(stl))
		frame.MST = append(frame.MST, payload...)
		subs = append(subs, edi.SubChannelFrame{
			SCID:         b.sc.ID,
			StartAddress: b.sc.StartAddress,
			TPL:          tplEncoding(b.sc.Protection),
			MST:          payload,
		})
	}

	if err := frame.Finalize(); err != nil {
		return err
	}

	if m.cfg.EDI.Enabled {
		m.sendEDI(&frame, subs, now)
	}

	packed, err := frame.Pack()
	if err != nil {
		return err
	}
	for _, s := range m.sinks {
		if err := s.WriteFrame(packed); err != nil && m.cfg.Logger != nil {
			m.cfg.Logger.Error("mux: ETI sink write failed", "error", err.Error())
		}
	}

	m.mu.Lock()
	m.frameCount++
	m.mu.Unlock()
	return nil
}

// tistValue computes the 32-bit TIST field: wall-clock seconds (plus the
// configured offset) in units of 1/16384000s, wrapped modulo 2^32.
func tistValue(now time.Time, offsetSecs float64) uint32 {
	secs := float64(now.UnixNano())/1e9 + offsetSecs
	ticks := uint64(secs * tistTicksPerSecond)
	return uint32(ticks & 0xFFFFFFFF)
}

// sendEDI builds the TAG packet and AF packet for this frame and writes
// it (PFT-fragmented if configured) to the configured transport. Output
// transport failures are logged, never fatal to the tick.
func (m *Mux) sendEDI(frame *eti.Frame, subs []edi.SubChannelFrame, now time.Time) {
	tagPacket := m.ediEncoder.Encode(frame, subs, now)
	af := m.ediEncoder.AssembleAF(tagPacket)

	if m.fragmenter == nil {
		if _, err := m.ediOut.Write(af); err != nil && m.cfg.Logger != nil {
			m.cfg.Logger.Warning("mux: EDI transport write failed", "error", err.Error())
		}
		return
	}

	frags, err := m.fragmenter.Fragment(af)
	if err != nil {
		if m.cfg.Logger != nil {
			m.cfg.Logger.Error("mux: PFT fragmentation failed", "error", err.Error())
		}
		return
	}
	for _, f := range frags {
		if _, err := m.ediOut.Write(f.Assemble()); err != nil && m.cfg.Logger != nil {
			m.cfg.Logger.Warning("mux: EDI transport write failed", "error", err.Error())
		}
	}
}
