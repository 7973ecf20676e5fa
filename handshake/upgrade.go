// File: handshake/upgrade.go
// Package handshake implements the HTTP/1.1 to WebSocket upgrade with strict
// validation on both the accepting and the dialing side.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Upgrade validates the request headers, computes Sec-WebSocket-Accept per
// RFC 6455, hijacks the connection and writes the 101 response itself.

package handshake

import (
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"strings"
)

const (
	WebSocketGUID            = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	MaxHandshakeHeadersSize  = 8192
	HeaderConnection         = "Connection"
	HeaderUpgrade            = "Upgrade"
	HeaderSecWebSocketKey    = "Sec-WebSocket-Key"
	HeaderSecWebSocketVer    = "Sec-WebSocket-Version"
	HeaderSecWebSocketAccept = "Sec-WebSocket-Accept"
	RequiredWebSocketVersion = "13"
)

var (
	ErrMethodNotAllowed      = errors.New("handshake: method must be GET")
	ErrHeadersTooLarge       = errors.New("handshake: headers too large")
	ErrInvalidUpgradeHeaders = errors.New("handshake: invalid upgrade headers")
	ErrBadWebSocketVersion   = errors.New("handshake: unsupported version; only 13 is supported")
	ErrInvalidWebSocketKey   = errors.New("handshake: invalid Sec-WebSocket-Key")
	ErrNotHijackable         = errors.New("handshake: connection not hijackable")
)

// ComputeAcceptKey returns the Sec-WebSocket-Accept value for key.
func ComputeAcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key + WebSocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateRequest checks r for a well-formed upgrade request and returns the
// client key.
func ValidateRequest(r *http.Request) (string, error) {
	if r.Method != http.MethodGet {
		return "", ErrMethodNotAllowed
	}
	total := 0
	for k, vs := range r.Header {
		total += len(k)
		for _, v := range vs {
			total += len(v)
		}
		if total > MaxHandshakeHeadersSize {
			return "", ErrHeadersTooLarge
		}
	}
	if !headerContainsToken(r.Header, HeaderConnection, "Upgrade") ||
		!headerContainsToken(r.Header, HeaderUpgrade, "websocket") {
		return "", ErrInvalidUpgradeHeaders
	}
	if r.Header.Get(HeaderSecWebSocketVer) != RequiredWebSocketVersion {
		return "", ErrBadWebSocketVersion
	}
	key := r.Header.Get(HeaderSecWebSocketKey)
	if raw, err := base64.StdEncoding.DecodeString(key); err != nil || len(raw) != 16 {
		return "", ErrInvalidWebSocketKey
	}
	return key, nil
}

// Upgrade completes the server side of the handshake. extra headers are added
// to the 101 response. On failure an HTTP error has already been written.
//
// The returned ReadWriter may hold bytes the client sent after its request;
// read frames through it rather than directly from the connection.
func Upgrade(w http.ResponseWriter, r *http.Request, extra http.Header) (net.Conn, *bufio.ReadWriter, error) {
	key, err := ValidateRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		switch err {
		case ErrMethodNotAllowed:
			status = http.StatusMethodNotAllowed
		case ErrBadWebSocketVersion:
			w.Header().Set(HeaderSecWebSocketVer, RequiredWebSocketVersion)
			status = http.StatusUpgradeRequired
		}
		http.Error(w, http.StatusText(status), status)
		return nil, nil, err
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, nil, ErrNotHijackable
	}
	conn, rw, err := hj.Hijack()
	if err != nil {
		return nil, nil, err
	}

	resp := make(http.Header, len(extra)+3)
	for k, vs := range extra {
		resp[http.CanonicalHeaderKey(k)] = vs
	}
	resp.Set(HeaderUpgrade, "websocket")
	resp.Set(HeaderConnection, "Upgrade")
	resp.Set(HeaderSecWebSocketAccept, ComputeAcceptKey(key))

	rw.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	resp.Write(rw)
	rw.WriteString("\r\n")
	if err := rw.Flush(); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, rw, nil
}

// headerContainsToken checks if headerName contains the given token, case-insensitive.
func headerContainsToken(h http.Header, headerName, token string) bool {
	vals := h[http.CanonicalHeaderKey(headerName)]
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(p), token) {
				return true
			}
		}
	}
	return false
}
