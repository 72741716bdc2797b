package commands

import (
	"crypto/tls"

	"github.com/tallowteam/tallow-go/internal/config"
	"github.com/tallowteam/tallow-go/internal/kex"
	"github.com/tallowteam/tallow-go/internal/primitives"
	"github.com/tallowteam/tallow-go/internal/transport"
)

// buildStrategy derives the room/session material from roomCode+password
// and assembles the connection ladder described in spec.md §6: proxy first
// if configured and peerAddr was supplied (the SOCKS5 path tunnels straight
// to the peer, bypassing the relay, so it needs the peer's address
// resolved out-of-band), else the relay. Local-mode direct dialing needs
// LAN discovery this command set doesn't implement yet, so
// LocalModeEnabled is left false regardless of cfg.LocalMode.
func buildStrategy(cfg *config.Config, roomCode, peerAddr string) (transport.Strategy, kex.DerivedSession, error) {
	derived, err := kex.DeriveSession([]byte(roomCode), []byte(cfg.Password))
	if err != nil {
		return transport.Strategy{}, derived, err
	}

	strategy := transport.Strategy{
		RelayAddr: cfg.RelayURL,
		RoomID:    [32]byte(derived.RoomID),
		TLSConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // relay cert is self-signed and pinned by room secrecy, not CA trust
	}

	if cfg.Password != "" {
		hash := primitives.Hash([]byte(cfg.Password))
		strategy.PasswordHash = &hash
	}

	if cfg.Proxy != nil && peerAddr != "" {
		strategy.Proxy = &transport.ProxyConfig{
			Socks5Addr: cfg.Proxy.Socks5Addr,
			TorMode:    cfg.Proxy.TorMode,
			Username:   cfg.Proxy.Username,
			Password:   cfg.Proxy.Password,
		}
		strategy.ProxyTargetAddr = peerAddr
	}

	return strategy, derived, nil
}
