package transport

import (
	"crypto/tls"
	"net"

	"golang.org/x/net/proxy"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// ProxyConfig configures the SOCKS5-fronted TCP+TLS transport.
type ProxyConfig struct {
	Socks5Addr string
	TorMode    bool // hostname-mode SOCKS5, no local DNS resolution
	Username   string
	Password   string
}

// DialProxiedTCPTLS connects to targetAddr through a SOCKS5 proxy and
// wraps the resulting connection in TLS. QUIC cannot traverse SOCKS5, so
// this is the only variant used whenever a proxy is configured.
func DialProxiedTCPTLS(cfg ProxyConfig, targetAddr string, tlsConf *tls.Config) (PeerChannel, error) {
	var auth *proxy.Auth
	if cfg.Username != "" {
		auth = &proxy.Auth{User: cfg.Username, Password: cfg.Password}
	}

	dialer, err := proxy.SOCKS5("tcp", cfg.Socks5Addr, auth, proxy.Direct)
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "socks5 dialer init", err)
	}

	// Hostname-mode SOCKS5 (cfg.TorMode) relies on proxy.SOCKS5 forwarding
	// the hostname rather than resolving it locally; targetAddr must
	// already be host:port and is passed through unresolved.
	rawConn, err := dialer.Dial("tcp", targetAddr)
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "socks5 dial", err)
	}

	tlsConn := tls.Client(rawConn, tlsConf)
	if err := tlsConn.Handshake(); err != nil {
		rawConn.Close()
		return nil, errs.Wrap(errs.TransportFailure, "tls handshake over proxy", err)
	}

	return newFramedChannel(tlsConn, "proxied-tcp-tls:"+targetAddr), nil
}

// ListenTCPTLS starts a plain TCP+TLS listener for the ProxiedTcpTls
// variant's receiving side (reached by the sender's SOCKS5 hop, not dialed
// directly by this process).
func ListenTCPTLS(addr string, tlsConf *tls.Config) (net.Listener, error) {
	ln, err := tls.Listen("tcp", addr, tlsConf)
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "tcp+tls listen", err)
	}
	return ln, nil
}

// AcceptTCPTLS accepts one connection from a ListenTCPTLS listener.
func AcceptTCPTLS(ln net.Listener) (PeerChannel, error) {
	conn, err := ln.Accept()
	if err != nil {
		return nil, errs.Wrap(errs.TransportFailure, "tcp+tls accept", err)
	}
	return newFramedChannel(conn, "proxied-tcp-tls:"+conn.RemoteAddr().String()), nil
}
