package transport

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// Ladder timeouts, per the design's connection-strategy section.
const (
	LocalBrowseTimeout  = 5 * time.Second
	LocalConnectTimeout = 5 * time.Second
	LocalAcceptTimeout  = 30 * time.Second
	RelayConnectTimeout = 10 * time.Second
)

// Strategy selects which transport variant a session should attempt, in
// priority order: local-mode Direct first, else proxy-only, else relay.
type Strategy struct {
	LocalModeEnabled bool
	Proxy            *ProxyConfig
	RelayAddr        string
	RoomID           [32]byte
	PasswordHash     *[32]byte
	TLSConfig        *tls.Config

	// DialLocal attempts the DirectQUIC path (mDNS discovery + dial);
	// callers supply it because discovery lives outside this package.
	// It must respect ctx's deadline and return a TransportFailure on
	// any failure so the ladder can fall through.
	DialLocal func(ctx context.Context) (PeerChannel, error)

	// ProxyTargetAddr is the peer address to dial through the proxy,
	// resolved out-of-band (e.g. via the relay or a prior exchange).
	ProxyTargetAddr string
}

// Connect runs the fallback ladder and returns the first transport that
// succeeds.
func (s Strategy) Connect(ctx context.Context) (PeerChannel, error) {
	if s.LocalModeEnabled && s.DialLocal != nil {
		localCtx, cancel := context.WithTimeout(ctx, LocalConnectTimeout)
		ch, err := s.DialLocal(localCtx)
		cancel()
		if err == nil {
			return ch, nil
		}
		// Fall through to the next rung; local-mode failure unregisters
		// its own mDNS advertisement before returning.
	}

	if s.Proxy != nil {
		if s.ProxyTargetAddr == "" {
			return nil, errs.New(errs.InvalidArgument, "proxy configured without a target address")
		}
		ch, err := DialProxiedTCPTLS(*s.Proxy, s.ProxyTargetAddr, s.TLSConfig)
		if err != nil {
			return nil, err
		}
		return ch, nil
	}

	relayCtx, cancel := context.WithTimeout(ctx, RelayConnectTimeout)
	defer cancel()
	ch, _, err := DialRelayQUIC(relayCtx, s.RelayAddr, s.TLSConfig, s.RoomID, s.PasswordHash)
	if err != nil {
		return nil, err
	}
	return ch, nil
}
