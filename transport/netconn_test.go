// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

// netconn_test.go - buffered connection wrapper over a loopback listener.
package transport

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"golang.org/x/net/nettest"
)

func loopbackPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := nettest.NewLocalListener("tcp")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()
	client, err := net.Dial(ln.Addr().Network(), ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	server, ok := <-accepted
	if !ok {
		t.Fatal("accept failed")
	}
	t.Cleanup(func() { client.Close(); server.Close() })
	return client, server
}

func TestNetConnBuffersUntilFlush(t *testing.T) {
	c, s := loopbackPair(t)
	nc := NewNetConn(c, nil)
	if _, err := nc.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	s.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	buf := make([]byte, 5)
	if n, _ := s.Read(buf); n != 0 {
		t.Fatalf("read %d bytes before flush", n)
	}

	if err := nc.Flush(); err != nil {
		t.Fatal(err)
	}
	s.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(s, buf); err != nil || string(buf) != "hello" {
		t.Fatalf("got %q %v", buf, err)
	}
}

func TestNetConnKeepsHandshakeLeftovers(t *testing.T) {
	c, s := loopbackPair(t)
	if _, err := s.Write([]byte("HEADER\nframe")); err != nil {
		t.Fatal(err)
	}
	br := bufio.NewReader(c)
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := br.ReadString('\n')
	if err != nil || line != "HEADER\n" {
		t.Fatalf("got %q %v", line, err)
	}
	nc := NewNetConn(c, br)
	buf := make([]byte, 5)
	if _, err := io.ReadFull(nc, buf); err != nil || string(buf) != "frame" {
		t.Fatalf("got %q %v", buf, err)
	}
}

func TestTuneTCP(t *testing.T) {
	c, _ := loopbackPair(t)
	if err := TuneTCP(c, 30); err != nil {
		t.Fatalf("tune: %v", err)
	}
	p1, p2 := net.Pipe()
	defer p1.Close()
	defer p2.Close()
	if err := TuneTCP(p1, 30); err != nil {
		t.Fatalf("non-TCP conn: %v", err)
	}
}
