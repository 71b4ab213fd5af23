/*
DESCRIPTION
  sinks.go implements the ETI byte sinks of §6: framed file (u32 frame
  count header rewritten per write), streamed file (length-prefixed
  records only) and raw file (each frame padded with 0x55 to 6144 bytes).

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
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"
)

// rawFrameSize is the fixed payload size raw ETI files pad every frame to.
const rawFrameSize = 6144

// etiSink receives one complete packed ETI frame per call.
type etiSink interface {
	WriteFrame(frame []byte) error
	Close() error
}

// framedFileSink writes a little-endian u32 frame count at byte 0,
// rewritten after every frame, followed by length-prefixed records.
type framedFileSink struct {
	f     *os.File
	count uint32
	log   logging.Logger
}

// newFramedFileSink creates (or truncates) path and reserves its 4-byte
// frame-count header.
func newFramedFileSink(log logging.Logger, path string) (*framedFileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("mux: creating framed ETI file %q: %w", path, err)
	}
	if _, err := f.Write(make([]byte, 4)); err != nil {
		return nil, fmt.Errorf("mux: reserving frame-count header: %w", err)
	}
	return &framedFileSink{f: f, log: log}, nil
}

func (s *framedFileSink) WriteFrame(frame []byte) error {
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(frame)))
	if _, err := s.f.Write(lenBuf); err != nil {
		return err
	}
	if _, err := s.f.Write(frame); err != nil {
		return err
	}
	s.count++
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, s.count)
	if _, err := s.f.WriteAt(hdr, 0); err != nil {
		return fmt.Errorf("mux: rewriting frame-count header: %w", err)
	}
	return nil
}

func (s *framedFileSink) Close() error { return s.f.Close() }

// streamedFileSink writes only length-prefixed records, no header.
type streamedFileSink struct {
	w   io.WriteCloser
	log logging.Logger
}

func newStreamedFileSink(log logging.Logger, path string) (*streamedFileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("mux: creating streamed ETI file %q: %w", path, err)
	}
	return &streamedFileSink{w: f, log: log}, nil
}

func (s *streamedFileSink) WriteFrame(frame []byte) error {
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(frame)))
	if _, err := s.w.Write(lenBuf); err != nil {
		return err
	}
	_, err := s.w.Write(frame)
	return err
}

func (s *streamedFileSink) Close() error { return s.w.Close() }

// rawFileSink pads every frame with 0x55 to exactly rawFrameSize bytes.
type rawFileSink struct {
	w   io.WriteCloser
	log logging.Logger
}

func newRawFileSink(log logging.Logger, path string) (*rawFileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("mux: creating raw ETI file %q: %w", path, err)
	}
	return &rawFileSink{w: f, log: log}, nil
}

func (s *rawFileSink) WriteFrame(frame []byte) error {
	if len(frame) > rawFrameSize {
		return fmt.Errorf("mux: frame of %d bytes exceeds raw sink frame size %d", len(frame), rawFrameSize)
	}
	padded := make([]byte, rawFrameSize)
	copy(padded, frame)
	for i := len(frame); i < rawFrameSize; i++ {
		padded[i] = 0x55
	}
	_, err := s.w.Write(padded)
	return err
}

func (s *rawFileSink) Close() error { return s.w.Close() }
