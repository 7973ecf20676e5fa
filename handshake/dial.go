// Package handshake
// Author: momentics <momentics@gmail.com>

package handshake

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gbrlsnchs/uuid"
)

var (
	ErrBadScheme      = errors.New("handshake: URL scheme must be ws or wss")
	ErrBadStatus      = errors.New("handshake: server did not answer 101 Switching Protocols")
	ErrAcceptMismatch = errors.New("handshake: Sec-WebSocket-Accept mismatch")
)

// Dialer opens client connections. The zero value is usable.
type Dialer struct {
	// NetDialer dials the TCP connection; nil uses a default net.Dialer.
	NetDialer *net.Dialer
	// TLSConfig is used for wss URLs; nil uses a config for the URL host.
	TLSConfig *tls.Config
	// HandshakeTimeout bounds the upgrade exchange when ctx has no deadline.
	HandshakeTimeout time.Duration
}

// DefaultDialer is used by Dial.
var DefaultDialer = &Dialer{HandshakeTimeout: 10 * time.Second}

// Dial connects to a ws:// or wss:// URL using DefaultDialer.
func Dial(ctx context.Context, rawURL string, header http.Header) (net.Conn, *bufio.Reader, *http.Response, error) {
	return DefaultDialer.Dial(ctx, rawURL, header)
}

// NewKey returns a fresh Sec-WebSocket-Key.
func NewKey() (string, error) {
	guid, err := uuid.GenerateV4(nil)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(guid[:]), nil
}

// Dial performs the client side of the handshake. The returned reader may
// already hold frames the server sent right after its response.
func (d *Dialer) Dial(ctx context.Context, rawURL string, header http.Header) (net.Conn, *bufio.Reader, *http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, nil, err
	}
	host := u.Host
	secure := false
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
		if u.Port() == "" {
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	case "wss":
		u.Scheme = "https"
		secure = true
		if u.Port() == "" {
			host = net.JoinHostPort(u.Hostname(), "443")
		}
	default:
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrBadScheme, u.Scheme)
	}

	key, err := NewKey()
	if err != nil {
		return nil, nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, nil, err
	}
	for k, vs := range header {
		req.Header[http.CanonicalHeaderKey(k)] = vs
	}
	req.Header.Set(HeaderUpgrade, "websocket")
	req.Header.Set(HeaderConnection, "Upgrade")
	req.Header.Set(HeaderSecWebSocketVer, RequiredWebSocketVersion)
	req.Header.Set(HeaderSecWebSocketKey, key)

	nd := d.NetDialer
	if nd == nil {
		nd = &net.Dialer{}
	}
	var conn net.Conn
	if secure {
		cfg := d.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{ServerName: u.Hostname()}
		}
		td := &tls.Dialer{NetDialer: nd, Config: cfg}
		conn, err = td.DialContext(ctx, "tcp", host)
	} else {
		conn, err = nd.DialContext(ctx, "tcp", host)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	deadline, ok := ctx.Deadline()
	if !ok && d.HandshakeTimeout > 0 {
		deadline, ok = time.Now().Add(d.HandshakeTimeout), true
	}
	if ok {
		conn.SetDeadline(deadline)
	}

	br, resp, err := roundTrip(conn, req, key)
	if err != nil {
		conn.Close()
		return nil, nil, resp, err
	}
	conn.SetDeadline(time.Time{})
	return conn, br, resp, nil
}

func roundTrip(conn net.Conn, req *http.Request, key string) (*bufio.Reader, *http.Response, error) {
	if err := req.Write(conn); err != nil {
		return nil, nil, err
	}
	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return nil, resp, fmt.Errorf("%w: got %s", ErrBadStatus, resp.Status)
	}
	if !headerContainsToken(resp.Header, HeaderUpgrade, "websocket") ||
		!headerContainsToken(resp.Header, HeaderConnection, "Upgrade") {
		return nil, resp, ErrInvalidUpgradeHeaders
	}
	if resp.Header.Get(HeaderSecWebSocketAccept) != ComputeAcceptKey(key) {
		return nil, resp, ErrAcceptMismatch
	}
	return br, resp, nil
}
