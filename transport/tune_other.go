//go:build !linux
// +build !linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "net"

// TuneTCP uses the portable net.TCPConn knobs outside linux.
func TuneTCP(conn net.Conn, keepAliveIdle int) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tc.SetNoDelay(true); err != nil {
		return err
	}
	if keepAliveIdle > 0 {
		return tc.SetKeepAlive(true)
	}
	return nil
}
