// File: layer8/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Functional options for streamers and the Accept/Dial helpers.

package layer8

import (
	"log"
	"net/http"

	"github.com/momentics/layer8-ws/api"
	"github.com/momentics/layer8-ws/control"
	"github.com/momentics/layer8-ws/envelope"
	"github.com/momentics/layer8-ws/handshake"
	"github.com/momentics/layer8-ws/protocol"
	"github.com/momentics/layer8-ws/secret"
)

// HeaderPublicKey carries each side's encoded public key during the upgrade.
const HeaderPublicKey = "X-Layer8-Public-Key"

// DefaultKeepAliveIdle is the TCP keepalive idle time, in seconds, applied by
// Accept and Dial.
const DefaultKeepAliveIdle = 30

type keyAgreement struct {
	priv  *secret.PrivateKey
	suite secret.Suite
}

type options struct {
	key       api.SymmetricKey
	codec     api.EnvelopeCodec
	cfg       protocol.Config
	observer  api.FrameObserver
	logger    *log.Logger
	kex       *keyAgreement
	header    http.Header
	dialer    *handshake.Dialer
	probes    *control.DebugProbes
	probeName string
}

func defaultOptions() *options {
	return &options{
		codec: envelope.Binary{},
		cfg:   protocol.DefaultConfig(),
	}
}

// Option configures a Streamer.
type Option func(*options)

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSharedSecret turns on the encrypted overlay with key.
func WithSharedSecret(key api.SymmetricKey) Option {
	return func(o *options) { o.key = key }
}

// WithEnvelopeCodec replaces the default binary envelope.
func WithEnvelopeCodec(c api.EnvelopeCodec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithConfig sets the frame socket configuration.
func WithConfig(cfg protocol.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithObserver installs a hook called for every frame read or written.
func WithObserver(obs api.FrameObserver) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger enables debug traces of the overlay.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithKeyAgreement makes Accept and Dial exchange public keys in the upgrade
// headers and derive the shared secret for suite.
func WithKeyAgreement(priv *secret.PrivateKey, suite secret.Suite) Option {
	return func(o *options) { o.kex = &keyAgreement{priv: priv, suite: suite} }
}

// WithHeader adds request headers sent by Dial.
func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

// WithDialer replaces handshake.DefaultDialer for Dial.
func WithDialer(d *handshake.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithProbes registers the streamer's Stats under name.
func WithProbes(p *control.DebugProbes, name string) Option {
	return func(o *options) {
		o.probes = p
		o.probeName = name
	}
}
