package primitives

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// Ed25519Private is a signing private key (seed||public, 64 bytes, matching
// crypto/ed25519.PrivateKey's layout).
type Ed25519Private [ed25519.PrivateKeySize]byte

// Ed25519Public is a signing public key.
type Ed25519Public [ed25519.PublicKeySize]byte

// Slice views the key as a []byte without copying.
func (k *Ed25519Private) Slice() []byte { return k[:] }

// Slice views the key as a []byte without copying.
func (k *Ed25519Public) Slice() []byte { return k[:] }

// GenerateEd25519 creates a fresh Ed25519 signing keypair.
func GenerateEd25519() (priv Ed25519Private, pub Ed25519Public, err error) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return priv, pub, errs.Wrap(errs.CryptoFailure, "ed25519 keygen", err)
	}
	copy(priv[:], privKey)
	copy(pub[:], pubKey)
	return priv, pub, nil
}

// Sign signs msg with priv.
func Sign(priv Ed25519Private, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv[:]), msg)
}

// Verify reports whether sig is a valid signature over msg by pub.
func Verify(pub Ed25519Public, msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig)
}
