// Package layer8
// Author: momentics <momentics@gmail.com>
//
// Accept and Dial run the HTTP upgrade and, when key agreement is enabled,
// exchange public keys in the upgrade headers before any frame is sent.

package layer8

import (
	"context"
	"net/http"

	"github.com/momentics/layer8-ws/api"
	"github.com/momentics/layer8-ws/handshake"
	"github.com/momentics/layer8-ws/protocol"
	"github.com/momentics/layer8-ws/secret"
	"github.com/momentics/layer8-ws/transport"
)

// Accept upgrades an HTTP request into a server-role Streamer.
// On failure an HTTP error response has already been written.
func Accept(w http.ResponseWriter, r *http.Request, opts ...Option) (*Streamer, error) {
	o := buildOptions(opts)

	var extra http.Header
	if o.kex != nil {
		key, err := agree(o.kex, r.Header.Get(HeaderPublicKey))
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return nil, err
		}
		o.key = key
		extra = http.Header{HeaderPublicKey: {o.kex.priv.Public().Encode()}}
	}

	conn, rw, err := handshake.Upgrade(w, r, extra)
	if err != nil {
		return nil, err
	}
	if err := transport.TuneTCP(conn, DefaultKeepAliveIdle); err != nil && o.logger != nil {
		o.logger.Printf("layer8: tcp tuning: %v", err)
	}
	return newStreamer(transport.NewNetConn(conn, rw.Reader), protocol.RoleServer, o), nil
}

// Dial connects to a ws:// or wss:// URL and returns a client-role Streamer.
func Dial(ctx context.Context, rawURL string, opts ...Option) (*Streamer, *http.Response, error) {
	o := buildOptions(opts)

	header := http.Header{}
	for k, vs := range o.header {
		header[http.CanonicalHeaderKey(k)] = vs
	}
	if o.kex != nil {
		header.Set(HeaderPublicKey, o.kex.priv.Public().Encode())
	}

	d := o.dialer
	if d == nil {
		d = handshake.DefaultDialer
	}
	conn, br, resp, err := d.Dial(ctx, rawURL, header)
	if err != nil {
		return nil, resp, err
	}

	if o.kex != nil {
		key, err := agree(o.kex, resp.Header.Get(HeaderPublicKey))
		if err != nil {
			conn.Close()
			return nil, resp, err
		}
		o.key = key
	}
	if err := transport.TuneTCP(conn, DefaultKeepAliveIdle); err != nil && o.logger != nil {
		o.logger.Printf("layer8: tcp tuning: %v", err)
	}
	return newStreamer(transport.NewNetConn(conn, br), protocol.RoleClient, o), resp, nil
}

func agree(kex *keyAgreement, encoded string) (api.SymmetricKey, error) {
	if encoded == "" {
		return nil, ErrMissingPublicKey
	}
	peer, err := secret.DecodePublicKey(encoded)
	if err != nil {
		return nil, err
	}
	return kex.priv.SharedSecret(peer, kex.suite)
}
