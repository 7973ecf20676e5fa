// transport/tune_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux socket tuning applied to accepted and dialed TCP connections.

package transport

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// TuneTCP disables Nagle and enables keepalive probing with the given idle
// time in seconds. Non-TCP connections are left untouched.
func TuneTCP(conn net.Conn, keepAliveIdle int) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return fmt.Errorf("syscall conn: %w", err)
	}
	var serr error
	err = raw.Control(func(fd uintptr) {
		if serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); serr != nil {
			serr = fmt.Errorf("setsockopt TCP_NODELAY: %w", serr)
			return
		}
		if keepAliveIdle <= 0 {
			return
		}
		if serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); serr != nil {
			serr = fmt.Errorf("setsockopt SO_KEEPALIVE: %w", serr)
			return
		}
		if serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, keepAliveIdle); serr != nil {
			serr = fmt.Errorf("setsockopt TCP_KEEPIDLE: %w", serr)
		}
	})
	if err != nil {
		return err
	}
	return serr
}

// tcpNoDelay reports the TCP_NODELAY option of conn.
func tcpNoDelay(conn net.Conn) (bool, error) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return false, fmt.Errorf("not a TCP connection")
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return false, err
	}
	var v int
	var gerr error
	if err := raw.Control(func(fd uintptr) {
		v, gerr = unix.GetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY)
	}); err != nil {
		return false, err
	}
	return v != 0, gerr
}
