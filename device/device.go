/*
DESCRIPTION
  device.go provides Input, an interface describing a configurable
  sub-channel input from which per-tick frame data can be obtained.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides the Input interface common to every sub-channel
// source (file, UDP, TCP, FIFO, DAB+ superframe) and the optional
// capability interfaces (FrameSizer, PADSetter) a driver may also satisfy.
package device

import (
	"fmt"
	"io"
)

// ValidBitratesKbps lists the DAB bitrates a sub-channel may snap to.
var ValidBitratesKbps = []int{32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384}

// NearestValidBitrate returns the DAB bitrate closest to kbps.
func NearestValidBitrate(kbps int) int {
	best := ValidBitratesKbps[0]
	bestDiff := abs(kbps - best)
	for _, v := range ValidBitratesKbps[1:] {
		if d := abs(kbps - v); d < bestDiff {
			best, bestDiff = v, d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Input describes a configurable sub-channel source: it is opened once,
// then polled once per 24ms tick for exactly byteCount bytes.
type Input interface {
	// Open connects the input to its backing resource. Open is
	// idempotent and fails if the resource does not exist.
	Open(uri string) error

	// SetBitrate configures the nominal input bitrate and returns the
	// effective bitrate, snapped to the nearest valid DAB bitrate where
	// the driver requires it.
	SetBitrate(kbps int) (effectiveKbps int, err error)

	// ReadFrame returns exactly byteCount bytes for this tick. An
	// underrun is signalled out-of-band rather than by error: the
	// returned slice is always byteCount bytes (zero-padded on
	// underrun), and underrun reports whether padding was needed.
	ReadFrame(byteCount int) (data []byte, underrun bool)

	// Close releases the input's resources.
	Close() error
}

// FrameSizer is implemented by inputs (DAB+ superframes) whose per-tick
// frame size differs from bitrate*3 due to embedded FEC overhead.
type FrameSizer interface {
	GetFrameSize() int
}

// PADSetter is implemented by inputs (AAC superframes) that embed PAD
// inside the frame itself rather than accepting it as a trailer appended
// by the caller.
type PADSetter interface {
	SetPADData(pad []byte)
}

// MultiError collects multiple configuration validation errors.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// ManualInput is an in-memory Input useful for tests and for feeding
// frames produced directly by the caller. Every ReadFrame call drains up
// to byteCount bytes from the front of the queue, oldest Write first;
// underrun is signalled (and the shortfall zero-padded) when fewer bytes
// are queued.
type ManualInput struct {
	opened bool
	buf    []byte
}

// NewManualInput returns an unopened ManualInput.
func NewManualInput() *ManualInput { return &ManualInput{} }

func (m *ManualInput) Open(uri string) error {
	m.opened = true
	return nil
}

func (m *ManualInput) SetBitrate(kbps int) (int, error) {
	return NearestValidBitrate(kbps), nil
}

// Write queues p to be drained by subsequent ReadFrame calls.
func (m *ManualInput) Write(p []byte) (int, error) {
	m.buf = append(m.buf, p...)
	return len(p), nil
}

func (m *ManualInput) ReadFrame(byteCount int) ([]byte, bool) {
	out := make([]byte, byteCount)
	n := copy(out, m.buf)
	if n < len(m.buf) {
		m.buf = m.buf[n:]
	} else {
		m.buf = nil
	}
	return out, n < byteCount
}

func (m *ManualInput) Close() error {
	m.opened = false
	return nil
}

var _ Input = (*ManualInput)(nil)
var _ io.Writer = (*ManualInput)(nil)
