package primitives

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// X25519Private is a clamped Curve25519 scalar.
type X25519Private [32]byte

// X25519Public is a Curve25519 point.
type X25519Public [32]byte

// Slice views the key as a []byte without copying.
func (k *X25519Private) Slice() []byte { return k[:] }

// Slice views the key as a []byte without copying.
func (k *X25519Public) Slice() []byte { return k[:] }

// GenerateX25519 creates a fresh, clamped X25519 keypair.
func GenerateX25519() (priv X25519Private, pub X25519Public, err error) {
	if _, err = rand.Read(priv[:]); err != nil {
		return priv, pub, errs.Wrap(errs.CryptoFailure, "x25519 keygen", err)
	}
	ClampX25519(&priv)
	pubBytes, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return priv, pub, errs.Wrap(errs.CryptoFailure, "x25519 base-point mult", err)
	}
	copy(pub[:], pubBytes)
	return priv, pub, nil
}

// ClampX25519 applies RFC 7748 clamping to a scalar in place.
func ClampX25519(k *X25519Private) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}

// DH computes the Curve25519 Diffie-Hellman shared secret between priv and
// pub. Callers must Zero the result once it has been consumed by a KDF.
func DH(priv X25519Private, pub X25519Public) ([32]byte, error) {
	var out [32]byte
	secret, err := curve25519.X25519(priv[:], pub[:])
	if err != nil {
		return out, errs.Wrap(errs.CryptoFailure, "x25519 dh", err)
	}
	copy(out[:], secret)
	return out, nil
}
