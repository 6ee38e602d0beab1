// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"net"
	"time"
)

// Compile-time interface checks.
var (
	_ Listener = (*TCPListener)(nil)
	_ Dialer   = (*TCPDialer)(nil)
)

// TCPListener accepts inbound TCP connections from peers. The
// development and same-LAN transport: it requires direct TCP
// reachability between hosts.
type TCPListener struct {
	listener net.Listener
}

// NewTCPListener listens on address (e.g. ":7891" or
// "192.168.1.10:7891"); ":0" picks a random available port.
func NewTCPListener(address string) (*TCPListener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return &TCPListener{listener: listener}, nil
}

// Accept blocks until a peer dials in.
func (l *TCPListener) Accept() (Conn, error) {
	return l.listener.Accept()
}

// Address returns the listener's "host:port".
func (l *TCPListener) Address() string {
	return l.listener.Addr().String()
}

// Close shuts down the listener.
func (l *TCPListener) Close() error {
	return l.listener.Close()
}

// TCPDialer opens TCP connections to peers.
type TCPDialer struct {
	// Timeout bounds how long Dial waits to establish a connection.
	// Zero means no timeout.
	Timeout time.Duration
}

// Dial opens a TCP connection to address ("host:port").
func (d *TCPDialer) Dial(address string) (Conn, error) {
	return net.DialTimeout("tcp", address, d.Timeout)
}
