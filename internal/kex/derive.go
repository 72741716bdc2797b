// Package kex implements tallow's key-exchange engine: deriving a room-id
// and initial shared material from a code phrase, then running the hybrid
// ML-KEM-1024 + X25519 handshake over a transport stream to produce a
// session key.
package kex

import (
	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"

	"golang.org/x/crypto/hkdf"
	"io"
)

const (
	roomDomain    = "tallow.room.v1"
	sessionDomain = "tallow.session.v1"
)

// RoomID is the relay's pairing key, derived from a code phrase that never
// crosses the wire itself.
type RoomID [32]byte

// DerivedSession is the output of derive_session: the RoomID both peers
// converge on, and the shared seed the hybrid handshake binds itself to.
type DerivedSession struct {
	RoomID     RoomID
	SharedSeed [32]byte
}

// DeriveSession computes the RoomID and shared seed from a code phrase,
// optionally mixing a password in via Argon2id + HKDF per spec.md §4.2.
func DeriveSession(codePhrase []byte, password []byte) (DerivedSession, error) {
	var out DerivedSession

	roomKey, err := primitives.KeyedHashString(roomDomain, codePhrase)
	if err != nil {
		return out, errs.Wrap(errs.CryptoFailure, "derive room id", err)
	}
	out.RoomID = RoomID(roomKey)

	shared, err := primitives.KeyedHashString(sessionDomain, codePhrase)
	if err != nil {
		return out, errs.Wrap(errs.CryptoFailure, "derive shared seed", err)
	}

	if len(password) > 0 {
		pwdKey, err := primitives.Argon2id(password, roomKey[:16])
		if err != nil {
			return out, errs.Wrap(errs.CryptoFailure, "password mix argon2id", err)
		}
		mixed, err := hkdfExtractExpand(shared[:], pwdKey[:], []byte("password-mix"))
		if err != nil {
			return out, err
		}
		shared = mixed
		primitives.Zero(pwdKey[:])
	}

	out.SharedSeed = shared
	return out, nil
}

func hkdfExtractExpand(salt, ikm, info []byte) ([32]byte, error) {
	var out [32]byte
	r := hkdf.New(newHash, ikm, salt, info)
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return out, errs.Wrap(errs.CryptoFailure, "hkdf expand", err)
	}
	return out, nil
}
