// Package primitives wraps every cryptographic building block tallow uses
// behind a narrow, domain-shaped API, so the key-exchange engine and the
// ratchet never reach for crypto/* or golang.org/x/crypto/* directly.
package primitives

import (
	"crypto/rand"

	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// ML-KEM-1024 is the variant fixed for both the hybrid handshake and the
// Triple Ratchet's sparse PQ overlay (spec.md §9 open question: earlier
// comments in the source reference ML-KEM-768, but mixing variants within
// a session is not interoperable, so tallow-go standardizes on the
// stronger ML-KEM-1024 end to end).
const (
	MLKEMPublicKeySize  = mlkem1024.PublicKeySize
	MLKEMPrivateKeySize = mlkem1024.PrivateKeySize
	MLKEMCiphertextSize = mlkem1024.CiphertextSize
	MLKEMSharedKeySize  = mlkem1024.SharedKeySize
)

// MLKEMKeygen generates a fresh ML-KEM-1024 encapsulation/decapsulation
// keypair.
func MLKEMKeygen() (ek, dk []byte, err error) {
	pub, priv, err := mlkem1024.GenerateKeyPair(rand.Reader)
	if err != nil {
		return nil, nil, errs.Wrap(errs.CryptoFailure, "mlkem1024 keygen", err)
	}
	ek = make([]byte, MLKEMPublicKeySize)
	dk = make([]byte, MLKEMPrivateKeySize)
	pub.Pack(ek)
	priv.Pack(dk)
	return ek, dk, nil
}

// MLKEMEncaps encapsulates a fresh shared secret against a peer's
// encapsulation key.
func MLKEMEncaps(ek []byte) (ct, ss []byte, err error) {
	if len(ek) != MLKEMPublicKeySize {
		return nil, nil, errs.New(errs.InvalidArgument, "mlkem1024 public key size")
	}
	var pub mlkem1024.PublicKey
	if err := pub.Unpack(ek); err != nil {
		return nil, nil, errs.Wrap(errs.CryptoFailure, "mlkem1024 unpack public key", err)
	}

	seed := make([]byte, mlkem1024.EncapsulationSeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, nil, errs.Wrap(errs.CryptoFailure, "mlkem1024 encaps seed", err)
	}

	ct = make([]byte, MLKEMCiphertextSize)
	ss = make([]byte, MLKEMSharedKeySize)
	pub.EncapsulateTo(ct, ss, seed)
	return ct, ss, nil
}

// MLKEMDecaps decapsulates a ciphertext against a decapsulation key,
// recovering the shared secret the peer encapsulated.
func MLKEMDecaps(dk, ct []byte) (ss []byte, err error) {
	if len(dk) != MLKEMPrivateKeySize {
		return nil, errs.New(errs.InvalidArgument, "mlkem1024 private key size")
	}
	if len(ct) != MLKEMCiphertextSize {
		return nil, errs.New(errs.InvalidArgument, "mlkem1024 ciphertext size")
	}
	var priv mlkem1024.PrivateKey
	if err := priv.Unpack(dk); err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "mlkem1024 unpack private key", err)
	}
	ss = make([]byte, MLKEMSharedKeySize)
	priv.DecapsulateTo(ss, ct)
	return ss, nil
}
