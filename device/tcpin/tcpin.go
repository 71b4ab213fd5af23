/*
DESCRIPTION
  tcpin.go implements the TCP server input driver: accepts one client at
  a time, replacing any previous connection, with the same ring-buffer
  semantics as udpin.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tcpin implements device.Input over a listening TCP socket.
package tcpin

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/ausocean/dabmux/device"
	"github.com/ausocean/utils/logging"
)

const prebufferFrames = 5

// Input accepts a single TCP client at a time and buffers its stream
// into a bounded ring, replacing the active connection whenever a new
// client connects.
type Input struct {
	log            logging.Logger
	ln             net.Listener
	maxBufferBytes int

	mu      sync.Mutex
	conn    net.Conn
	ring    []byte
	stopCh  chan struct{}
}

// New returns a TCP server input that logs via l and bounds its ring to
// maxBufferBytes.
func New(l logging.Logger, maxBufferBytes int) *Input {
	return &Input{log: l, maxBufferBytes: maxBufferBytes, stopCh: make(chan struct{})}
}

// Open parses a "tcp://host:port" URI and starts listening.
func (in *Input) Open(uri string) error {
	addr := strings.TrimPrefix(uri, "tcp://")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("tcpin: listen failed: %w", err)
	}
	in.ln = ln
	go in.acceptLoop()
	return nil
}

func (in *Input) acceptLoop() {
	for {
		conn, err := in.ln.Accept()
		if err != nil {
			select {
			case <-in.stopCh:
				return
			default:
				if in.log != nil {
					in.log.Warning("tcpin: accept error", "error", err.Error())
				}
				continue
			}
		}
		in.mu.Lock()
		if in.conn != nil {
			in.conn.Close()
		}
		in.conn = conn
		in.ring = nil
		in.mu.Unlock()
		go in.receiveLoop(conn)
	}
}

func (in *Input) receiveLoop(conn net.Conn) {
	buf := make([]byte, 65536)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			in.mu.Lock()
			if in.conn == conn {
				in.ring = append(in.ring, buf[:n]...)
				if over := len(in.ring) - in.maxBufferBytes; in.maxBufferBytes > 0 && over > 0 {
					in.ring = in.ring[over:]
				}
			}
			in.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (in *Input) SetBitrate(kbps int) (int, error) {
	return device.NearestValidBitrate(kbps), nil
}

// ReadFrame drains byteCount bytes from the head of the ring, with the
// same underrun handling as udpin.Input.ReadFrame (no multi-frame
// prebuffer floor).
func (in *Input) ReadFrame(byteCount int) ([]byte, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]byte, byteCount)
	if len(in.ring) < byteCount*prebufferFrames && len(in.ring) < byteCount {
		n := copy(out, in.ring)
		in.ring = nil
		return out, n < byteCount
	}
	copy(out, in.ring[:byteCount])
	in.ring = in.ring[byteCount:]
	return out, false
}

func (in *Input) Close() error {
	close(in.stopCh)
	in.mu.Lock()
	if in.conn != nil {
		in.conn.Close()
	}
	in.mu.Unlock()
	if in.ln != nil {
		return in.ln.Close()
	}
	return nil
}

var _ device.Input = (*Input)(nil)
