/*
DESCRIPTION
  mpeg.go implements the MPEG-1 Layer II file input driver: it parses the
  4-byte frame header (ISO/IEC 11172-3) to recover the frame length, and
  fills each ReadFrame call's byteCount bytes from as many consecutive
  frames as needed, looping on EOF.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mpeg implements device.Input for MPEG-1 Layer II files.
package mpeg

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ausocean/dabmux/device"
	"github.com/ausocean/utils/logging"
)

// bitrateTableKbps is ISO/IEC 11172-3 Table B.1 for Layer II, MPEG-1.
var bitrateTableKbps = [16]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0}

// sampleRateTableHz is ISO/IEC 11172-3 Table B.1 sampling-rate index.
var sampleRateTableHz = [4]int{44100, 48000, 32000, 0}

// File implements device.Input for a local MPEG-1 Layer II elementary
// stream, pre-loaded into memory so looping is cheap.
type File struct {
	log  logging.Logger
	data []byte
	pos  int
	loop bool
	mu   sync.Mutex
}

// New returns an MPEG Layer II file input that logs via l.
func New(l logging.Logger, loop bool) *File {
	return &File{log: l, loop: loop}
}

// Open reads the whole file named by a "file://path" URI into memory.
func (m *File) Open(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := strings.TrimPrefix(uri, "file://")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("mpeg: could not read %q: %w", path, err)
	}
	m.data = raw
	m.pos = 0
	return nil
}

func (m *File) SetBitrate(kbps int) (int, error) {
	return device.NearestValidBitrate(kbps), nil
}

// frameLen parses the 4-byte Layer II header at data[off:] and returns
// the total frame length in bytes (header onward), or 0 if the header is
// not a valid Layer II sync word.
func frameLen(data []byte, off int) int {
	if off+4 > len(data) {
		return 0
	}
	h := data[off:]
	if h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return 0
	}
	layer := (h[1] >> 1) & 0x03
	if layer != 0x02 { // "10" = Layer II.
		return 0
	}
	bitrateIdx := (h[2] >> 4) & 0x0F
	sampleIdx := (h[2] >> 2) & 0x03
	padding := (h[2] >> 1) & 0x01
	kbps := bitrateTableKbps[bitrateIdx]
	hz := sampleRateTableHz[sampleIdx]
	if kbps == 0 || hz == 0 {
		return 0
	}
	return 144*kbps*1000/hz + int(padding)
}

// ReadFrame returns exactly byteCount bytes covering one or more Layer II
// frames starting at the current position, looping at EOF.
func (m *File) ReadFrame(byteCount int) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, byteCount)
	if len(m.data) == 0 {
		return out, true
	}
	n := 0
	for n < byteCount {
		if m.pos >= len(m.data) {
			if !m.loop {
				return out, true
			}
			if m.log != nil {
				m.log.Info("looping MPEG Layer II input")
			}
			m.pos = 0
		}
		fl := frameLen(m.data, m.pos)
		if fl == 0 {
			// Lost sync; advance by one byte and keep searching.
			m.pos++
			continue
		}
		end := m.pos + fl
		if end > len(m.data) {
			end = len(m.data)
		}
		copied := copy(out[n:], m.data[m.pos:end])
		n += copied
		m.pos = end
	}
	return out, false
}

func (m *File) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

var _ device.Input = (*File)(nil)
