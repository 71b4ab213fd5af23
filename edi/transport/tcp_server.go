/*
DESCRIPTION
  tcp_server.go implements the TCP-server EDI output: listens for
  clients and broadcasts each Write to all of them, dropping dead peers
  on send error, per §6.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package transport

import (
	"net"
	"sync"

	"github.com/ausocean/utils/logging"
)

// TCPServer accepts any number of clients and broadcasts every Write to
// each of them; a peer that errors on send is dropped.
type TCPServer struct {
	log logging.Logger
	ln  net.Listener

	mu    sync.Mutex
	peers map[net.Conn]struct{}

	stopCh chan struct{}
}

// NewTCPServer listens on addr ("host:port") and accepts clients in the
// background.
func NewTCPServer(log logging.Logger, addr string) (*TCPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &TCPServer{
		log:    log,
		ln:     ln,
		peers:  make(map[net.Conn]struct{}),
		stopCh: make(chan struct{}),
	}
	go s.acceptLoop()
	return s, nil
}

func (s *TCPServer) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				if s.log != nil {
					s.log.Warning("transport: TCP accept error", "error", err.Error())
				}
				continue
			}
		}
		s.mu.Lock()
		s.peers[conn] = struct{}{}
		s.mu.Unlock()
		if s.log != nil {
			s.log.Info("transport: EDI client connected", "remote", conn.RemoteAddr().String())
		}
	}
}

// Write broadcasts d to every connected peer, dropping any peer whose
// send fails.
func (s *TCPServer) Write(d []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.peers {
		if _, err := conn.Write(d); err != nil {
			if s.log != nil {
				s.log.Warning("transport: dropping dead EDI peer", "remote", conn.RemoteAddr().String(), "error", err.Error())
			}
			conn.Close()
			delete(s.peers, conn)
		}
	}
	return len(d), nil
}

// PeerCount reports the number of currently connected peers.
func (s *TCPServer) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

func (s *TCPServer) Close() error {
	close(s.stopCh)
	s.mu.Lock()
	for conn := range s.peers {
		conn.Close()
	}
	s.peers = nil
	s.mu.Unlock()
	return s.ln.Close()
}
