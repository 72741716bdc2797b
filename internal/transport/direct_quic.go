package transport

import (
	"context"
	"crypto/tls"

	"github.com/quic-go/quic-go"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// quicStreamAdapter satisfies io.ReadWriteCloser over a quic.Stream,
// since quic.Stream additionally exposes half-close primitives the
// framed channel doesn't need.
type quicStreamAdapter struct {
	stream *quic.Stream
}

func (a *quicStreamAdapter) Read(p []byte) (int, error)  { return a.stream.Read(p) }
func (a *quicStreamAdapter) Write(p []byte) (int, error) { return a.stream.Write(p) }
func (a *quicStreamAdapter) Close() error                { return a.stream.Close() }

// SelfSignedTLSConfig builds the self-signed TLS config DirectQUIC uses:
// transport secrecy only, since the hybrid handshake and ratchet provide
// the real end-to-end secrecy.
func SelfSignedTLSConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"tallow/1"},
	}
}

// DialDirectQUIC opens a DirectQUIC connection to a peer at addr. The
// caller supplies addr; no LAN discovery is wired to it.
func DialDirectQUIC(ctx context.Context, addr string, tlsConf *tls.Config) (PeerChannel, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConf, nil)
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "direct quic dial", err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "direct quic open stream", err)
	}
	return newFramedChannel(&quicStreamAdapter{stream: stream}, "direct-quic:"+addr), nil
}

// ListenDirectQUIC starts a QUIC listener on addr, for the sender side of
// DirectQUIC and for the relay server. Nothing advertises the bound
// address; the dialing side must already know it.
func ListenDirectQUIC(addr string, tlsConf *tls.Config) (*quic.Listener, error) {
	ln, err := quic.ListenAddr(addr, tlsConf, nil)
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "direct quic listen", err)
	}
	return ln, nil
}

// AcceptDirectQUIC accepts one connection and its first bidirectional
// stream from a DirectQUIC listener.
func AcceptDirectQUIC(ctx context.Context, ln *quic.Listener) (PeerChannel, error) {
	conn, err := ln.Accept(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "direct quic accept", err)
	}
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "direct quic accept stream", err)
	}
	return newFramedChannel(&quicStreamAdapter{stream: stream}, "direct-quic:"+conn.RemoteAddr().String()), nil
}
