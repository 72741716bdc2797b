package transport

import (
	"context"
	"crypto/tls"

	"github.com/quic-go/quic-go"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/wire"
)

// DialRelayQUIC connects to the relay, opens the bidirectional stream, and
// performs the RoomJoin rendezvous, returning a PeerChannel ready for the
// hybrid handshake.
func DialRelayQUIC(ctx context.Context, relayAddr string, tlsConf *tls.Config, roomID [32]byte, passwordHash *[32]byte) (PeerChannel, bool, error) {
	conn, err := quic.DialAddr(ctx, relayAddr, tlsConf, nil)
	if err != nil {
		return nil, false, errs.Wrap(errs.TransportFailure, "relay quic dial", err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, false, errs.Wrap(errs.TransportFailure, "relay quic open stream", err)
	}

	ch := newFramedChannel(&quicStreamAdapter{stream: stream}, "relay-quic:"+relayAddr)
	if err := ch.SendMessage(wire.RoomJoin{RoomID: roomID, PasswordHash: passwordHash}); err != nil {
		return nil, false, err
	}

	msg, err := ch.ReceiveMessage()
	if err != nil {
		return nil, false, err
	}
	joined, ok := msg.(wire.RoomJoined)
	if !ok {
		return nil, false, errs.New(errs.HandshakeFailure, "expected RoomJoined from relay")
	}
	return ch, joined.PeerPresent, nil
}

// WaitPeerArrived blocks until the relay pushes PeerArrived (for the first
// peer, who joined before its counterpart).
func WaitPeerArrived(ch PeerChannel) error {
	msg, err := ch.ReceiveMessage()
	if err != nil {
		return err
	}
	if _, ok := msg.(wire.PeerArrived); !ok {
		return errs.New(errs.HandshakeFailure, "expected PeerArrived")
	}
	return nil
}
