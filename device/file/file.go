/*
DESCRIPTION
  file.go provides the raw-file implementation of device.Input: reads
  fixed-size frames from a file, looping on EOF.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file implements device.Input for raw pre-coded frame files.
package file

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ausocean/dabmux/device"
	"github.com/ausocean/utils/logging"
)

// File is a raw-file implementation of device.Input: each ReadFrame call
// reads exactly byteCount bytes, looping back to the start of the file on
// EOF rather than underrunning.
type File struct {
	f    *os.File
	path string
	loop bool
	log  logging.Logger
	mu   sync.Mutex
}

// New returns a File input that logs via l. Loop is enabled whenever the
// file is opened for a sub-channel whose input is expected to recycle
// indefinitely (the common case for test/loop playback).
func New(l logging.Logger, loop bool) *File {
	return &File{log: l, loop: loop}
}

// Open opens the file named by a "file://path" URI.
func (m *File) Open(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = strings.TrimPrefix(uri, "file://")
	f, err := os.Open(m.path)
	if err != nil {
		return fmt.Errorf("file: could not open %q: %w", m.path, err)
	}
	m.f = f
	return nil
}

// SetBitrate snaps kbps to the nearest valid DAB bitrate.
func (m *File) SetBitrate(kbps int) (int, error) {
	return device.NearestValidBitrate(kbps), nil
}

// ReadFrame reads exactly byteCount bytes, looping on EOF when loop is
// enabled, and zero-padding (reporting underrun) otherwise.
func (m *File) ReadFrame(byteCount int) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, byteCount)
	if m.f == nil {
		return out, true
	}
	n, err := io.ReadFull(m.f, out)
	if err == nil {
		return out, false
	}
	if !m.loop {
		if m.log != nil {
			m.log.Warning("input underrun", "path", m.path, "read", n, "want", byteCount)
		}
		return out, true
	}
	if m.log != nil {
		m.log.Info("looping input file", "path", m.path)
	}
	if _, seekErr := m.f.Seek(0, io.SeekStart); seekErr != nil {
		return out, true
	}
	n2, err2 := io.ReadFull(m.f, out[n:])
	return out, n+n2 < byteCount || err2 != nil
}

// Close closes the underlying file.
func (m *File) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return nil
	}
	err := m.f.Close()
	m.f = nil
	return err
}

var _ device.Input = (*File)(nil)
