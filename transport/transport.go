// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport defines the byte-oriented contract between the Node
// and whatever carries its packets, plus a stream implementation over
// TCP or Unix-domain sockets and the TLV element reader that re-frames
// a byte stream into whole packets.
package transport

import (
	"fmt"
	"net"
	"os"
	"time"
)

// ElementListener receives whole inbound TLV elements, de-framed from
// the transport's byte stream.
type ElementListener interface {
	OnReceivedElement(element []byte)
}

// Transport is the contract the Node drives. Connect must invoke
// onConnected exactly once when the transport is ready to Send;
// implementations that connect synchronously call it before returning.
// ProcessEvents reads whatever bytes are available without blocking and
// delivers complete elements to the listener given to Connect.
type Transport interface {
	Connect(listener ElementListener, onConnected func()) error
	Send(element []byte) error
	ProcessEvents() error
	Close() error
	// IsLocal reports whether the transport reaches a forwarder on
	// this machine, which decides whether prefix registration may use
	// local-scope conventions.
	IsLocal() bool
}

// ConnectionInfo names a forwarder endpoint.
type ConnectionInfo struct {
	Network string // "unix" or "tcp"
	Address string
}

// Default forwarder endpoints, tried in order by Discover.
var defaultEndpoints = []ConnectionInfo{
	{Network: "unix", Address: "/var/run/nfd.sock"},
	{Network: "unix", Address: "/tmp/.ndnd.sock"},
	{Network: "tcp", Address: "localhost:6363"},
}

// Discover returns the first plausible local forwarder endpoint: a
// known Unix socket path that exists, else TCP to localhost:6363.
func Discover() ConnectionInfo {
	for _, info := range defaultEndpoints {
		if info.Network != "unix" {
			return info
		}
		if st, err := os.Stat(info.Address); err == nil && st.Mode()&os.ModeSocket != 0 {
			return info
		}
	}
	return defaultEndpoints[len(defaultEndpoints)-1]
}

// StreamTransport carries TLV elements over any stream connection (TCP
// or Unix-domain). Reads are polled: ProcessEvents drains whatever the
// kernel has buffered, using a read deadline of now so it never blocks
// the event loop.
type StreamTransport struct {
	info     ConnectionInfo
	conn     net.Conn
	reader   *ElementReader
	listener ElementListener
	readBuf  []byte
}

// NewStreamTransport returns an unconnected transport for info.
func NewStreamTransport(info ConnectionInfo) *StreamTransport {
	return &StreamTransport{info: info, readBuf: make([]byte, 16*1024)}
}

// Connect dials the endpoint and reports readiness synchronously.
func (t *StreamTransport) Connect(listener ElementListener, onConnected func()) error {
	conn, err := net.Dial(t.info.Network, t.info.Address)
	if err != nil {
		return fmt.Errorf("transport: connecting to %s %s: %w", t.info.Network, t.info.Address, err)
	}
	t.conn = conn
	t.listener = listener
	t.reader = NewElementReader(listener)
	if onConnected != nil {
		onConnected()
	}
	return nil
}

// Send writes one encoded element.
func (t *StreamTransport) Send(element []byte) error {
	if t.conn == nil {
		return fmt.Errorf("transport: send before connect")
	}
	_, err := t.conn.Write(element)
	return err
}

// ProcessEvents drains available inbound bytes into the element reader.
func (t *StreamTransport) ProcessEvents() error {
	if t.conn == nil {
		return nil
	}
	for {
		if err := t.conn.SetReadDeadline(time.Now()); err != nil {
			return err
		}
		n, err := t.conn.Read(t.readBuf)
		if n > 0 {
			if rerr := t.reader.OnReceivedBytes(t.readBuf[:n]); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				return nil
			}
			return err
		}
	}
}

// Close shuts the connection down.
func (t *StreamTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// IsLocal reports true for Unix-domain sockets and loopback TCP.
func (t *StreamTransport) IsLocal() bool {
	if t.info.Network == "unix" {
		return true
	}
	host, _, err := net.SplitHostPort(t.info.Address)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
