/*
DESCRIPTION
  dabp.go implements the DAB+ superframe file input driver: it slices
  pre-encoded superframes of (bitrate/8)*120 bytes into 5 Access Units,
  cycling 0 -> 4 -> 0 across ticks.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dabp implements device.Input for pre-encoded DAB+ superframe
// files (".dabp").
package dabp

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ausocean/dabmux/device"
	"github.com/ausocean/utils/logging"
)

const ausPerSuperframe = 5

// File slices pre-encoded DAB+ superframes into Access Units, one per
// tick, and implements device.FrameSizer since an AU's size is derived
// from the superframe, not from bitrate*3.
type File struct {
	log         logging.Logger
	data        []byte
	bitrateKbps int
	superframe  int // bytes.
	auIdx       int // 0..4, cycling.
	pos         int // byte offset of the start of the current superframe.
	mu          sync.Mutex
}

// New returns a DAB+ file input at the given nominal bitrate.
func New(l logging.Logger, bitrateKbps int) *File {
	f := &File{log: l}
	f.SetBitrate(bitrateKbps) //nolint:errcheck // constructor-time only, never fails.
	return f
}

func (f *File) Open(uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(uri, "file://")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("dabp: could not read %q: %w", path, err)
	}
	f.data = raw
	f.pos = 0
	f.auIdx = 0
	return nil
}

func (f *File) SetBitrate(kbps int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bitrateKbps = device.NearestValidBitrate(kbps)
	f.superframe = (f.bitrateKbps / 8) * 120
	return f.bitrateKbps, nil
}

// GetFrameSize returns the size of one Access Unit.
func (f *File) GetFrameSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auSize()
}

func (f *File) auSize() int {
	if f.superframe == 0 {
		return 0
	}
	return f.superframe / ausPerSuperframe
}

// ReadFrame ignores byteCount (DAB+ AU size is driven by GetFrameSize)
// and returns the next Access Unit, cycling the superframe at auIdx==0.
func (f *File) ReadFrame(byteCount int) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	auSize := f.auSize()
	if auSize == 0 || len(f.data) == 0 {
		return make([]byte, byteCount), true
	}
	if f.auIdx == 0 && f.pos+f.superframe > len(f.data) {
		if f.log != nil {
			f.log.Info("looping DAB+ superframe input")
		}
		f.pos = 0
	}
	start := f.pos + f.auIdx*auSize
	out := make([]byte, auSize)
	underrun := start+auSize > len(f.data)
	if !underrun {
		copy(out, f.data[start:start+auSize])
	}
	f.auIdx++
	if f.auIdx >= ausPerSuperframe {
		f.auIdx = 0
		f.pos += f.superframe
	}
	return out, underrun
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = nil
	return nil
}

var (
	_ device.Input      = (*File)(nil)
	_ device.FrameSizer = (*File)(nil)
)
