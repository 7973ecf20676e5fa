// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"bufio"
	"net"
	"time"
)

const defaultBufferSize = 4096

// NetConn adapts a net.Conn into a buffered, flushable stream.
// Bytes already buffered by the handshake stay readable.
type NetConn struct {
	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
}

// NewNetConn wraps conn. br may be nil or a reader left over from the
// handshake that still holds unread bytes from conn.
func NewNetConn(conn net.Conn, br *bufio.Reader) *NetConn {
	if br == nil {
		br = bufio.NewReaderSize(conn, defaultBufferSize)
	}
	return &NetConn{
		conn: conn,
		br:   br,
		bw:   bufio.NewWriterSize(conn, defaultBufferSize),
	}
}

// Read reads from the buffered reader.
func (n *NetConn) Read(buf []byte) (int, error) {
	return n.br.Read(buf)
}

// Write buffers buf until Flush.
func (n *NetConn) Write(buf []byte) (int, error) {
	return n.bw.Write(buf)
}

// Flush pushes buffered bytes to the connection.
func (n *NetConn) Flush() error {
	return n.bw.Flush()
}

// Close the connection.
func (n *NetConn) Close() error {
	return n.conn.Close()
}

// Conn returns the underlying connection.
func (n *NetConn) Conn() net.Conn { return n.conn }

// SetDeadline sets read and write deadlines on the connection.
func (n *NetConn) SetDeadline(t time.Time) error { return n.conn.SetDeadline(t) }

// SetReadDeadline sets the read deadline on the connection.
func (n *NetConn) SetReadDeadline(t time.Time) error { return n.conn.SetReadDeadline(t) }

// SetWriteDeadline sets the write deadline on the connection.
func (n *NetConn) SetWriteDeadline(t time.Time) error { return n.conn.SetWriteDeadline(t) }

// LocalAddr returns the local network address.
func (n *NetConn) LocalAddr() net.Addr { return n.conn.LocalAddr() }

// RemoteAddr returns the remote network address.
func (n *NetConn) RemoteAddr() net.Addr { return n.conn.RemoteAddr() }
