/*
NAME
  mux.go

DESCRIPTION
  mux.go provides the Mux type: the per-tick multiplexer core loop,
  orchestrating the FIG carousel, sub-channel bindings, ETI frame
  assembly and EDI/ETI output fan-out.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>
  Dan Kortschak <dan@ausocean.org>
  Trek Hopton <trek@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mux implements the DAB/DAB+ multiplexer core loop: once per
// 24ms logical frame it rotates the FIG carousel into the FIC, pulls one
// sub-channel frame from each configured input, concatenates the MSC,
// stamps frame counters/CRCs/timestamp, and ships the result through the
// ETI byte sinks and the EDI AF/PFT/transport stack.
package mux

import (
	"fmt"
	"sync"
	"time"

	"github.com/ausocean/dabmux/edi"
	"github.com/ausocean/dabmux/edi/pft"
	"github.com/ausocean/dabmux/edi/transport"
	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/dabmux/fig"
	"github.com/ausocean/dabmux/mux/config"
	"github.com/ausocean/utils/logging"
)

// ediOutput is the transport an assembled EDI datagram (AF packet or PF
// fragment) is written to: UDP, TCP-client or TCP-server.
type ediOutput interface {
	Write(d []byte) (int, error)
	Close() error
}

// Stats are the counters the remote-control get_statistics and
// get_input_status commands report.
type Stats struct {
	FrameCount uint64
	EDISeq     uint64
	Underruns  map[byte]uint64 // keyed by sub-channel id.
	Prebuffering map[byte]bool
}

// Mux drives the 24ms tick that assembles and emits one ETI (and
// optionally EDI) frame per call.
type Mux struct {
	cfg config.Config
	ens *ensemble.Ensemble

	bindings []*subChannelBinding
	carousel *fig.Carousel
	ficEnc   *fig.FICEncoder

	ediEncoder   *edi.Encoder
	ediOut       ediOutput
	fragmenter   *pft.Fragmenter

	sinks []etiSink

	frameCount uint64
	mid        byte

	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
	err     chan error

	mu sync.Mutex // guards bindings' per-tick-observable stats.
}

// New builds a Mux over cfg and an already-loaded, already-validated
// ensemble, opening every sub-channel's input and the configured ETI/EDI
// outputs. The multiplexer is not yet ticking; call Start to begin.
func New(cfg config.Config, ens *ensemble.Ensemble) (*Mux, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mux: invalid config: %w", err)
	}

	m := &Mux{cfg: cfg, ens: ens, err: make(chan error, 8)}

	for _, sc := range ens.SubChannels {
		comp := componentForSubChannel(ens, sc.ID)
		b, err := newSubChannelBinding(sc, comp, cfg.Logger)
		if err != nil {
			m.closeBindings()
			return nil, fmt.Errorf("mux: binding sub-channel %d: %w", sc.ID, err)
		}
		m.bindings = append(m.bindings, b)
	}

	encs := buildFIGEncoders(ens, m.bindings, m.FrameCount)
	m.carousel = fig.NewCarousel(encs)
	m.ficEnc = fig.NewFICEncoder(m.carousel)

	if err := m.openSinks(); err != nil {
		m.closeBindings()
		return nil, err
	}
	if cfg.EDI.Enabled {
		if err := m.openEDI(); err != nil {
			m.closeBindings()
			m.closeSinks()
			return nil, err
		}
	}

	go m.handleErrors()
	return m, nil
}

// componentForSubChannel returns the first component bound to sc (a
// sub-channel carries at most one bound component in this model), or nil
// for an unbound sub-channel.
func componentForSubChannel(ens *ensemble.Ensemble, subChannelID byte) *ensemble.Component {
	for _, c := range ens.Components {
		if c.SubChannelID == subChannelID {
			return c
		}
	}
	return nil
}

func (m *Mux) openSinks() error {
	for _, s := range m.cfg.ETISinks {
		var sink etiSink
		var err error
		switch s.Kind {
		case config.SinkFramedFile:
			sink, err = newFramedFileSink(m.cfg.Logger, s.Path)
		case config.SinkStreamedFile:
			sink, err = newStreamedFileSink(m.cfg.Logger, s.Path)
		case config.SinkRawFile:
			sink, err = newRawFileSink(m.cfg.Logger, s.Path)
		default:
			err = fmt.Errorf("mux: unrecognised ETI sink kind %d", s.Kind)
		}
		if err != nil {
			return err
		}
		m.sinks = append(m.sinks, sink)
	}
	return nil
}

func (m *Mux) closeSinks() {
	for _, s := range m.sinks {
		_ = s.Close()
	}
}

func (m *Mux) openEDI() error {
	m.ediEncoder = edi.NewEncoder()

	var out ediOutput
	var err error
	switch m.cfg.EDI.Transport {
	case config.EDIUDP:
		out, err = transport.NewUDP(m.cfg.Logger, m.cfg.EDI.Address, m.cfg.EDI.SourceAddr)
	case config.EDITCPClient:
		out, err = transport.NewTCPClient(m.cfg.Logger, m.cfg.EDI.Address, m.cfg.EDI.Retries)
	case config.EDITCPServer:
		out, err = transport.NewTCPServer(m.cfg.Logger, m.cfg.EDI.Address)
	default:
		err = fmt.Errorf("mux: unrecognised EDI transport kind %d", m.cfg.EDI.Transport)
	}
	if err != nil {
		return fmt.Errorf("mux: opening EDI transport: %w", err)
	}
	m.ediOut = out

	if m.cfg.EDI.PFT {
		pc := pft.Config{
			FEC:             m.cfg.EDI.FEC,
			FECM:            m.cfg.EDI.FECChunks,
			MaxFragmentSize: m.cfg.EDI.MaxFragmentSize,
		}
		if pc.MaxFragmentSize == 0 {
			pc = pft.DefaultConfig()
			pc.FEC, pc.FECM = m.cfg.EDI.FEC, m.cfg.EDI.FECChunks
		}
		m.fragmenter = pft.NewFragmenter(pc)
	}
	return nil
}

func (m *Mux) closeBindings() {
	for _, b := range m.bindings {
		_ = b.close()
	}
}

func (m *Mux) handleErrors() {
	for e := range m.err {
		if e != nil && m.cfg.Logger != nil {
			m.cfg.Logger.Error("mux: async error", "error", e.Error())
		}
	}
}

// FrameCount returns the current tick's 64-bit frame counter, used by
// FIG 0/0 to derive its CIF counter.
func (m *Mux) FrameCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameCount
}

// Config returns a copy of the multiplexer's current configuration.
func (m *Mux) Config() config.Config { return m.cfg }

// Ensemble returns the live ensemble model driving this multiplexer.
// Remote-control mutations must only be applied between ticks.
func (m *Mux) Ensemble() *ensemble.Ensemble { return m.ens }

// MutateEnsemble applies fn to the live ensemble model under a
// single-writer/single-reader discipline: fn runs with the same lock
// the tick loop holds to update frameCount, so it never observes a
// tick mid-assembly. Structural edits take effect no earlier than the
// next tick, as FIG 0/7 only re-announces once ConfigHash next changes.
func (m *Mux) MutateEnsemble(fn func(*ensemble.Ensemble)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.ens)
}

// Running reports whether the tick loop is active.
func (m *Mux) Running() bool { return m.running }

// Statistics returns a snapshot of the per-sub-channel input statistics
// and frame/sequence counters, for the remote-control get_statistics and
// get_input_status commands.
func (m *Mux) Statistics() Stats {
	s := Stats{
		FrameCount:   m.FrameCount(),
		Underruns:    make(map[byte]uint64, len(m.bindings)),
		Prebuffering: make(map[byte]bool, len(m.bindings)),
	}
	if m.ediEncoder != nil {
		s.EDISeq = uint64(m.ediEncoder.Seq())
	}
	for _, b := range m.bindings {
		s.Underruns[b.sc.ID] = b.underrunCount
		s.Prebuffering[b.sc.ID] = b.prebuffering
	}
	return s
}

// bindingForSubChannel returns the binding for a sub-channel id, or nil.
func (m *Mux) bindingForSubChannel(id byte) *subChannelBinding {
	for _, b := range m.bindings {
		if b.sc.ID == id {
			return b
		}
	}
	return nil
}

// bindingForComponentUID resolves a remote-control component_uid (per
// ensemble.ComponentUID) to its live sub-channel binding.
func (m *Mux) bindingForComponentUID(uid string) (*subChannelBinding, error) {
	comp := m.ens.ComponentByUID(uid)
	if comp == nil {
		return nil, fmt.Errorf("mux: no component with uid %q", uid)
	}
	b := m.bindingForSubChannel(comp.SubChannelID)
	if b == nil {
		return nil, fmt.Errorf("mux: component %q has no live sub-channel binding", uid)
	}
	return b, nil
}

// DynamicLabelText returns the most recently set dynamic-label text bound
// to a component, for the remote-control get_label command.
func (m *Mux) DynamicLabelText(uid string) (string, error) {
	b, err := m.bindingForComponentUID(uid)
	if err != nil {
		return "", err
	}
	if b.dls == nil {
		return "", fmt.Errorf("mux: component %q has no dynamic label", uid)
	}
	return b.dls.Text(), nil
}

// SetDynamicLabel pushes new text to a component's dynamic label encoder,
// for the remote-control set_label command. The toggle bit flip (so
// receivers re-render) happens inside DLSEncoder.SetText.
func (m *Mux) SetDynamicLabel(uid string, text string) error {
	b, err := m.bindingForComponentUID(uid)
	if err != nil {
		return err
	}
	if b.dls == nil {
		return fmt.Errorf("mux: component %q has no dynamic label", uid)
	}
	b.dls.SetText(text)
	return nil
}

// ReloadCarousel flags a component's MOT carousel for a directory
// reload, for the remote-control reload_carousel command. Scanning the
// directory for changed objects is the directory watcher's job; this
// only raises the pending flag the carousel exposes.
func (m *Mux) ReloadCarousel(uid string) error {
	b, err := m.bindingForComponentUID(uid)
	if err != nil {
		return err
	}
	if b.mot == nil {
		return fmt.Errorf("mux: component %q has no MOT carousel", uid)
	}
	b.mot.FlagReload()
	return nil
}

// CarouselReloadPending reports whether a component's MOT carousel has a
// reload flagged but not yet applied, for get_carousel_stats.
func (m *Mux) CarouselReloadPending(uid string) (bool, error) {
	b, err := m.bindingForComponentUID(uid)
	if err != nil {
		return false, err
	}
	if b.mot == nil {
		return false, fmt.Errorf("mux: component %q has no MOT carousel", uid)
	}
	return b.mot.ReloadPending(), nil
}

// CarouselObjectCount returns the number of objects scheduled in a
// component's MOT carousel, for the remote-control get_carousel_stats
// command.
func (m *Mux) CarouselObjectCount(uid string) (int, error) {
	b, err := m.bindingForComponentUID(uid)
	if err != nil {
		return 0, err
	}
	if b.mot == nil {
		return 0, fmt.Errorf("mux: component %q has no MOT carousel", uid)
	}
	return b.mot.ObjectCount(), nil
}

// Start begins the 24ms tick loop in a background goroutine.
func (m *Mux) Start() error {
	if m.running {
		if m.cfg.Logger != nil {
			m.cfg.Logger.Warning("mux: start called, but already running")
		}
		return nil
	}

	m.mid = modeID(m.ens.Mode)
	m.carousel.Start(time.Now().UnixMilli())
	m.stop = make(chan struct{})
	m.running = true

	m.wg.Add(1)
	go m.run()
	return nil
}

// modeID returns the 2-bit ETI MID field for a transmission mode.
func modeID(mode ensemble.Mode) byte {
	switch mode {
	case ensemble.ModeII:
		return 1
	case ensemble.ModeIII:
		return 2
	case ensemble.ModeIV:
		return 3
	default:
		return 0
	}
}

// run drives one tick every cfg.TickIntervalMS until Stop is called. A
// nominal DAB transmission always ticks at 24ms; tests may configure a
// faster interval via TickIntervalMS to exercise many frames quickly.
func (m *Mux) run() {
	defer m.wg.Done()

	interval := time.Duration(m.cfg.TickIntervalMS) * time.Millisecond
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			if err := m.tick(); err != nil {
				m.err <- err
			}
		}
	}
}

// Stop halts the tick loop and closes every input and output resource.
func (m *Mux) Stop() {
	if !m.running {
		if m.cfg.Logger != nil {
			m.cfg.Logger.Warning("mux: stop called but not running")
		}
		return
	}
	close(m.stop)
	m.wg.Wait()
	m.running = false

	m.closeBindings()
	m.closeSinks()
	if m.ediOut != nil {
		_ = m.ediOut.Close()
	}
}

// Burst starts the multiplexer, runs it for cfg.BurstPeriod seconds, then
// stops it — used by burst-mode test/transmission tools.
func (m *Mux) Burst() error {
	if err := m.Start(); err != nil {
		return fmt.Errorf("mux: could not start: %w", err)
	}
	time.Sleep(time.Duration(m.cfg.BurstPeriod) * time.Second)
	m.Stop()
	return nil
}

// Update applies remote-control set_log_level-style variable updates to
// the running configuration. Ensemble mutations (labels, announcements,
// service parameters) go through the remote package instead, since they
// act on the ensemble model rather than mux settings.
func (m *Mux) Update(vars map[string]string) {
	m.cfg.Update(vars)
}

// logging.Logger is re-exported here so callers constructing a Config
// don't need to import the logging package directly for this interface.
type Logger = logging.Logger
