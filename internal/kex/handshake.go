package kex

import (
	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
	"github.com/tallowteam/tallow-go/internal/wire"
)

// Role distinguishes the two sides of the hybrid handshake.
type Role int

const (
	Initiator Role = iota
	Responder
)

// Stream is the narrow transport contract the handshake needs: send and
// receive exactly one wire message. Transport implementations (direct QUIC,
// relay QUIC, proxied TCP+TLS) all satisfy this.
type Stream interface {
	SendMessage(wire.Message) error
	ReceiveMessage() (wire.Message, error)
}

// SessionKey is the 32-byte symmetric key the hybrid handshake produces,
// exclusively owned thereafter by the session's ratchet.
type SessionKey [32]byte

// Zeroize clears the session key's bytes.
func (k *SessionKey) Zeroize() { primitives.Zero(k[:]) }

const (
	hybridKexSalt = "tallow-hybrid-kex-v1"
	hybridKexInfo = "tallow-session-key"
)

// HybridHandshake runs the ML-KEM-1024 + X25519 hybrid key exchange over
// stream and returns the derived SessionKey. It fails with HandshakeFailure
// on any malformed message; callers must close the transport on failure.
func HybridHandshake(role Role, sharedSeed [32]byte, stream Stream) (SessionKey, error) {
	switch role {
	case Initiator:
		return hybridInitiate(sharedSeed, stream)
	case Responder:
		return hybridRespond(sharedSeed, stream)
	default:
		return SessionKey{}, errs.New(errs.InvalidArgument, "unknown handshake role")
	}
}

func hybridInitiate(sharedSeed [32]byte, stream Stream) (SessionKey, error) {
	ek, dk, err := primitives.MLKEMKeygen()
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "mlkem keygen", err)
	}
	xPriv, xPub, err := primitives.GenerateX25519()
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "x25519 keygen", err)
	}

	if err := stream.SendMessage(wire.KexInit{EKMLKEM: ek, PubX25519: xPub}); err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "send kex init", err)
	}

	msg, err := stream.ReceiveMessage()
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "receive kex response", err)
	}
	resp, ok := msg.(wire.KexResponse)
	if !ok {
		return SessionKey{}, errs.New(errs.HandshakeFailure, "expected KexResponse")
	}

	ssPQ, err := primitives.MLKEMDecaps(dk, resp.CTMLKEM)
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "mlkem decaps", err)
	}
	ssCL, err := primitives.DH(xPriv, resp.PubX25519)
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "x25519 dh", err)
	}

	key, err := deriveSessionKey(ssPQ, ssCL[:], sharedSeed)
	primitives.Zero(ssPQ)
	primitives.Zero(ssCL[:])
	return key, err
}

func hybridRespond(sharedSeed [32]byte, stream Stream) (SessionKey, error) {
	msg, err := stream.ReceiveMessage()
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "receive kex init", err)
	}
	init, ok := msg.(wire.KexInit)
	if !ok {
		return SessionKey{}, errs.New(errs.HandshakeFailure, "expected KexInit")
	}

	ct, ssPQ, err := primitives.MLKEMEncaps(init.EKMLKEM)
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "mlkem encaps", err)
	}
	xPriv, xPub, err := primitives.GenerateX25519()
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "x25519 keygen", err)
	}
	ssCL, err := primitives.DH(xPriv, init.PubX25519)
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "x25519 dh", err)
	}

	if err := stream.SendMessage(wire.KexResponse{CTMLKEM: ct, PubX25519: xPub}); err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "send kex response", err)
	}

	key, err := deriveSessionKey(ssPQ, ssCL[:], sharedSeed)
	primitives.Zero(ssPQ)
	primitives.Zero(ssCL[:])
	return key, err
}

func deriveSessionKey(ssPQ, ssCL []byte, sharedSeed [32]byte) (SessionKey, error) {
	ikm := make([]byte, 0, len(ssPQ)+len(ssCL)+len(sharedSeed))
	ikm = append(ikm, ssPQ...)
	ikm = append(ikm, ssCL...)
	ikm = append(ikm, sharedSeed[:]...)
	key, err := hkdfExtractExpand([]byte(hybridKexSalt), ikm, []byte(hybridKexInfo))
	primitives.Zero(ikm)
	if err != nil {
		return SessionKey{}, errs.Wrap(errs.HandshakeFailure, "derive session key", err)
	}
	return SessionKey(key), nil
}
