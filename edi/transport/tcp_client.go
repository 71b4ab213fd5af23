/*
DESCRIPTION
  tcp_client.go implements the TCP-client EDI output: a single
  destination connection that re-dials on send failure, per §6.

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
	"fmt"
	"net"
	"sync"

	"github.com/ausocean/utils/logging"
)

// TCPClient sends each Write as a single packet to one destination,
// re-dialing on the next Write after a send failure.
type TCPClient struct {
	log     logging.Logger
	addr    string
	retries int
	mu      sync.Mutex
	conn    net.Conn
}

// NewTCPClient dials addr ("host:port"), retrying up to retries times.
func NewTCPClient(log logging.Logger, addr string, retries int) (*TCPClient, error) {
	c := &TCPClient{log: log, addr: addr, retries: retries}
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *TCPClient) dial() error {
	var err error
	for n := 0; n < c.retries; n++ {
		c.conn, err = net.Dial("tcp", c.addr)
		if err == nil {
			return nil
		}
		if c.log != nil {
			c.log.Warning("transport: TCP dial failed", "address", c.addr, "error", err.Error())
		}
	}
	return fmt.Errorf("transport: TCP dial to %q failed after %d retries: %w", c.addr, c.retries, err)
}

// Write sends d whole, re-dialing once on failure.
func (c *TCPClient) Write(d []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		if err := c.dial(); err != nil {
			return 0, err
		}
	}
	n, err := c.conn.Write(d)
	if err != nil {
		if c.log != nil {
			c.log.Warning("transport: TCP send failed, re-dialing", "error", err.Error())
		}
		c.conn.Close()
		c.conn = nil
		if err := c.dial(); err != nil {
			return 0, err
		}
		n, err = c.conn.Write(d)
	}
	return n, err
}

func (c *TCPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
