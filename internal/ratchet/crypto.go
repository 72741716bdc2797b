package ratchet

import (
	"encoding/binary"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

func chainNonce(counter uint64) [primitives.ChaChaNonceSize]byte {
	var nonce [primitives.ChaChaNonceSize]byte
	binary.BigEndian.PutUint64(nonce[len(nonce)-8:], counter)
	return nonce
}

// Encrypt seals plaintext under the current send chain and advances it.
func (s *State) Encrypt(plaintext []byte) (Header, []byte, error) {
	messageKey := primitives.DeriveKey("message", s.SendChainKey[:])
	s.SendChainKey = primitives.DeriveKey("chain_advance", s.SendChainKey[:])

	nonce := chainNonce(s.SendCounter)
	ct, err := primitives.ChaChaEncrypt(messageKey, nonce, plaintext, nil)
	primitives.Zero(messageKey[:])
	if err != nil {
		return Header{}, nil, errs.Wrap(errs.CryptoFailure, "ratchet encrypt", err)
	}

	header := Header{DHPub: s.DHPub, N: s.SendCounter}
	s.SendCounter++
	return header, ct, nil
}

// DecryptAt decrypts a message addressed by header, consulting the
// skipped-key cache first, then advancing the receive chain as needed.
func (s *State) DecryptAt(header Header, ciphertext []byte) ([]byte, error) {
	key := skippedKey{dhPub: header.DHPub, n: header.N}
	if mk, ok := s.skipped[key]; ok {
		delete(s.skipped, key)
		pt, err := primitives.ChaChaDecrypt(mk, chainNonce(header.N), ciphertext, nil)
		primitives.Zero(mk[:])
		if err != nil {
			return nil, errs.Wrap(errs.IntegrityFailure, "ratchet decrypt (skipped key)", err)
		}
		return pt, nil
	}

	if header.N > s.RecvCounter {
		if header.N-s.RecvCounter > maxSkipped {
			return nil, errs.New(errs.IntegrityFailure, "too many skipped messages")
		}
		for s.RecvCounter < header.N {
			mk := primitives.DeriveKey("message", s.RecvChainKey[:])
			s.RecvChainKey = primitives.DeriveKey("chain_advance", s.RecvChainKey[:])
			s.cacheSkipped(skippedKey{dhPub: header.DHPub, n: s.RecvCounter}, mk)
			s.RecvCounter++
		}
	}

	messageKey := primitives.DeriveKey("message", s.RecvChainKey[:])
	s.RecvChainKey = primitives.DeriveKey("chain_advance", s.RecvChainKey[:])
	pt, err := primitives.ChaChaDecrypt(messageKey, chainNonce(header.N), ciphertext, nil)
	primitives.Zero(messageKey[:])
	if err != nil {
		return nil, errs.Wrap(errs.IntegrityFailure, "ratchet decrypt", err)
	}
	s.RecvCounter++
	return pt, nil
}

func (s *State) cacheSkipped(key skippedKey, mk [32]byte) {
	s.skipped[key] = mk
	if len(s.skipped) <= pruneAt {
		return
	}
	// Prune the oldest-by-number entries, keeping the cache under pruneAt.
	type entry struct {
		key skippedKey
		n   uint64
	}
	entries := make([]entry, 0, len(s.skipped))
	for k := range s.skipped {
		entries = append(entries, entry{key: k, n: k.n})
	}
	for len(s.skipped) > maxSkipped {
		oldestIdx := 0
		for i := 1; i < len(entries); i++ {
			if entries[i].n < entries[oldestIdx].n {
				oldestIdx = i
			}
		}
		delete(s.skipped, entries[oldestIdx].key)
		entries = append(entries[:oldestIdx], entries[oldestIdx+1:]...)
	}
}

// RatchetStep performs a DH ratchet transition on receipt of a message
// advertising a new peer DH public key: root_key is re-derived from the new
// DH output, both chain keys refresh, counters reset, and a fresh ephemeral
// is generated.
func (s *State) RatchetStep(theirDHPub primitives.X25519Public) error {
	dh, err := primitives.DH(s.DHPriv, theirDHPub)
	if err != nil {
		return errs.Wrap(errs.CryptoFailure, "ratchet step dh", err)
	}
	ikm := append(append([]byte{}, s.RootKey[:]...), dh[:]...)
	s.RootKey = primitives.DeriveKey("root", ikm)
	primitives.Zero(dh[:])
	primitives.Zero(ikm)

	s.SendChainKey = primitives.DeriveKey("send_chain", s.RootKey[:])
	s.RecvChainKey = primitives.DeriveKey("recv_chain", s.RootKey[:])
	s.SendCounter = 0
	s.RecvCounter = 0
	s.PeerDHPub = theirDHPub
	s.havePeer = true

	newPriv, newPub, err := primitives.GenerateX25519()
	if err != nil {
		return errs.Wrap(errs.CryptoFailure, "ratchet step ephemeral keygen", err)
	}
	primitives.Zero(s.DHPriv[:])
	s.DHPriv = newPriv
	s.DHPub = newPub
	s.EpochN++
	s.Phase = Epoch
	return nil
}

// MixPQSecret folds a sparse post-quantum shared secret into the root key
// and refreshes both chain keys from it.
func (s *State) MixPQSecret(pq [32]byte) error {
	ikm := append(append([]byte{}, s.RootKey[:]...), pq[:]...)
	s.RootKey = primitives.DeriveKey("pq_rekey", ikm)
	primitives.Zero(ikm)

	s.SendChainKey = primitives.DeriveKey("send_chain", s.RootKey[:])
	s.RecvChainKey = primitives.DeriveKey("recv_chain", s.RootKey[:])
	return nil
}
