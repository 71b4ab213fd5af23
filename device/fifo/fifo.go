/*
DESCRIPTION
  fifo.go implements the FIFO input driver: a blocking read with a
  timeout, so a non-responding pipe degrades to silence rather than
  stalling the tick.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package fifo implements device.Input over a named pipe.
package fifo

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ausocean/dabmux/device"
	"github.com/ausocean/utils/logging"
)

// Input reads from a named pipe, with a per-read timeout so a stalled
// writer cannot block the tick.
type Input struct {
	log     logging.Logger
	f       *os.File
	timeout time.Duration
	mu      sync.Mutex
}

// New returns a FIFO input that logs via l and times reads out after
// timeout.
func New(l logging.Logger, timeout time.Duration) *Input {
	return &Input{log: l, timeout: timeout}
}

// Open opens the named pipe at a "fifo://path" URI.
func (in *Input) Open(uri string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	path := strings.TrimPrefix(uri, "fifo://")
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("fifo: could not open %q: %w", path, err)
	}
	in.f = f
	return nil
}

func (in *Input) SetBitrate(kbps int) (int, error) {
	return device.NearestValidBitrate(kbps), nil
}

// ReadFrame reads byteCount bytes, underrunning (zero-padded) if the pipe
// does not produce them within the configured timeout.
func (in *Input) ReadFrame(byteCount int) ([]byte, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]byte, byteCount)
	if in.f == nil {
		return out, true
	}

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := in.f.Read(out)
		done <- result{n, err}
	}()

	select {
	case r := <-done:
		return out, r.err != nil || r.n < byteCount
	case <-time.After(in.timeout):
		if in.log != nil {
			in.log.Warning("fifo: read timed out")
		}
		return out, true
	}
}

func (in *Input) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.f == nil {
		return nil
	}
	err := in.f.Close()
	in.f = nil
	return err
}

var _ device.Input = (*Input)(nil)
