// File: transport/quic.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// QUIC carrier: one bidirectional stream per Layer8 connection.

package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"math/big"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// DefaultALPN is negotiated when no protocol list is given.
const DefaultALPN = "layer8-ws"

// SelfSignedTLS returns a throwaway ECDSA P-256 certificate config that skips
// verification. It suits tests and private links only.
func SelfSignedTLS(alpn ...string) (*tls.Config, error) {
	if len(alpn) == 0 {
		alpn = []string{DefaultALPN}
	}
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         alpn,
		Certificates:       []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: priv}},
	}, nil
}

func defaultQUICConfig() *quic.Config {
	return &quic.Config{MaxIdleTimeout: 3 * time.Minute, KeepAlivePeriod: 30 * time.Second}
}

// QUICStream is one bidirectional QUIC stream plus its connection.
// Closing it closes the whole connection.
type QUICStream struct {
	conn   *quic.Conn
	stream *quic.Stream
}

func (s *QUICStream) Read(p []byte) (int, error)  { return s.stream.Read(p) }
func (s *QUICStream) Write(p []byte) (int, error) { return s.stream.Write(p) }

// Close closes the stream and the connection carrying it.
func (s *QUICStream) Close() error {
	s.stream.Close()
	return s.conn.CloseWithError(0, "bye")
}

// SetDeadline sets read and write deadlines on the stream.
func (s *QUICStream) SetDeadline(t time.Time) error { return s.stream.SetDeadline(t) }

// RemoteAddr returns the peer's UDP address.
func (s *QUICStream) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// QUICListener accepts QUIC connections and their first stream.
type QUICListener struct {
	ln *quic.Listener
}

// ListenQUIC listens on a UDP address. A nil tlsConf uses SelfSignedTLS.
func ListenQUIC(addr string, tlsConf *tls.Config) (*QUICListener, error) {
	if tlsConf == nil {
		var err error
		if tlsConf, err = SelfSignedTLS(); err != nil {
			return nil, err
		}
	}
	ln, err := quic.ListenAddr(addr, tlsConf, defaultQUICConfig())
	if err != nil {
		return nil, err
	}
	return &QUICListener{ln: ln}, nil
}

// Addr returns the listening address.
func (l *QUICListener) Addr() net.Addr { return l.ln.Addr() }

// Accept waits for a connection and its first bidirectional stream.
// The stream surfaces once the peer has written to it.
func (l *QUICListener) Accept(ctx context.Context) (*QUICStream, error) {
	conn, err := l.ln.Accept(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		conn.CloseWithError(0, "no stream")
		return nil, err
	}
	return &QUICStream{conn: conn, stream: stream}, nil
}

// Close stops accepting connections.
func (l *QUICListener) Close() error { return l.ln.Close() }

// DialQUIC connects to addr and opens one bidirectional stream.
// A nil tlsConf uses SelfSignedTLS.
func DialQUIC(ctx context.Context, addr string, tlsConf *tls.Config) (*QUICStream, error) {
	if tlsConf == nil {
		var err error
		if tlsConf, err = SelfSignedTLS(); err != nil {
			return nil, err
		}
	}
	conn, err := quic.DialAddr(ctx, addr, tlsConf, defaultQUICConfig())
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(0, "no stream")
		return nil, err
	}
	return &QUICStream{conn: conn, stream: stream}, nil
}
