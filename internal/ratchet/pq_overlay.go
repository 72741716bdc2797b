package ratchet

import (
	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

// DueForPQOverlay reports whether the current epoch should carry a sparse
// post-quantum remix, per the default-every-10-epochs cadence (or whatever
// PQInterval was configured to).
func (s *State) DueForPQOverlay() bool {
	interval := s.PQInterval
	if interval == 0 {
		interval = DefaultPQInterval
	}
	return s.EpochN > 0 && s.EpochN%interval == 0
}

// OfferPQPublic generates a fresh ML-KEM-1024 keypair for the sparse
// overlay and returns the encapsulation key to piggyback on the next
// ratchet message. The matching decapsulation key is retained until the
// peer's ciphertext arrives.
func (s *State) OfferPQPublic() (ek []byte, err error) {
	ek, dk, err := primitives.MLKEMKeygen()
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "pq overlay keygen", err)
	}
	if s.pqDK != nil {
		primitives.Zero(s.pqDK)
	}
	s.pqDK = dk
	return ek, nil
}

// EncapsulateOverlay is called by the initiator side of the overlay: given
// the peer's piggybacked ML-KEM public, encapsulate a fresh shared secret,
// mix it into the root key, and return the ciphertext to send back.
func (s *State) EncapsulateOverlay(peerEK []byte) (ct []byte, err error) {
	ct, ss, err := primitives.MLKEMEncaps(peerEK)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "pq overlay encaps", err)
	}
	var pq [32]byte
	copy(pq[:], ss)
	if err := s.MixPQSecret(pq); err != nil {
		return nil, err
	}
	primitives.Zero(ss)
	return ct, nil
}

// DecapsulateOverlay is called by the responder side: given the
// ciphertext the peer returned against our last OfferPQPublic, decapsulate
// and mix the resulting shared secret into the root key.
func (s *State) DecapsulateOverlay(ct []byte) error {
	if s.pqDK == nil {
		return errs.New(errs.InvalidArgument, "no pending pq overlay offer")
	}
	ss, err := primitives.MLKEMDecaps(s.pqDK, ct)
	if err != nil {
		return errs.Wrap(errs.CryptoFailure, "pq overlay decaps", err)
	}
	primitives.Zero(s.pqDK)
	s.pqDK = nil

	var pq [32]byte
	copy(pq[:], ss)
	primitives.Zero(ss)
	return s.MixPQSecret(pq)
}
