/*
DESCRIPTION
  udp.go implements the UDP EDI output: one AF packet (or PF fragment)
  per datagram, multicast-aware with TTL 2 for 224.0.0.0/4 destinations
  and an optional source bind address, per §6.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package transport implements the EDI output transports: UDP,
// TCP-client and TCP-server.
package transport

import (
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/ipv4"

	"github.com/ausocean/utils/logging"
)

// multicastTTL is the TTL EDI multicast datagrams carry, per §6.
const multicastTTL = 2

// UDP sends one datagram per Write call to a fixed destination.
type UDP struct {
	log  logging.Logger
	conn *net.UDPConn
	mu   sync.Mutex
}

// NewUDP dials addr ("host:port"); if addr's host is a 224.0.0.0/4
// multicast group, outgoing datagrams carry TTL 2. sourceAddr, if
// non-empty, binds the local ("host:port") address used to send.
func NewUDP(log logging.Logger, addr, sourceAddr string) (*UDP, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: bad UDP address %q: %w", addr, err)
	}
	var laddr *net.UDPAddr
	if sourceAddr != "" {
		laddr, err = net.ResolveUDPAddr("udp", sourceAddr)
		if err != nil {
			return nil, fmt.Errorf("transport: bad UDP source address %q: %w", sourceAddr, err)
		}
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, fmt.Errorf("transport: UDP dial failed: %w", err)
	}
	if raddr.IP.IsMulticast() {
		if err := ipv4.NewConn(conn).SetMulticastTTL(multicastTTL); err != nil && log != nil {
			log.Warning("transport: could not set multicast TTL", "error", err.Error())
		}
	}
	return &UDP{log: log, conn: conn}, nil
}

// Write sends d as a single datagram.
func (u *UDP) Write(d []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n, err := u.conn.Write(d)
	if err != nil && u.log != nil {
		u.log.Warning("transport: UDP send failed", "error", err.Error())
	}
	return n, err
}

func (u *UDP) Close() error { return u.conn.Close() }
