package transfer

import (
	"encoding/binary"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

// buildChunkAAD and buildChunkNonce are the single source of truth for the
// chunk AEAD discipline: every caller (sender, receiver, resume) must go
// through these two helpers so the construction can never drift between
// call sites.
func buildChunkAAD(transferID [16]byte, index uint64) []byte {
	aad := make([]byte, 24)
	copy(aad[:16], transferID[:])
	binary.BigEndian.PutUint64(aad[16:], index)
	return aad
}

func buildChunkNonce(index uint64) [primitives.GCMNonceSize]byte {
	var nonce [primitives.GCMNonceSize]byte
	binary.BigEndian.PutUint64(nonce[len(nonce)-8:], index)
	return nonce
}

// SealChunk encrypts one chunk's plaintext under the session key, binding
// it to transferID and index so a relay cannot reorder, duplicate, or
// cross-splice chunks across transfers.
func SealChunk(sessionKey [32]byte, transferID [16]byte, index uint64, plaintext []byte) ([]byte, error) {
	ct, err := primitives.AESEncrypt(sessionKey, buildChunkNonce(index), plaintext, buildChunkAAD(transferID, index))
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "seal chunk", err)
	}
	return ct, nil
}

// OpenChunk decrypts one chunk sealed by SealChunk.
func OpenChunk(sessionKey [32]byte, transferID [16]byte, index uint64, ciphertext []byte) ([]byte, error) {
	pt, err := primitives.AESDecrypt(sessionKey, buildChunkNonce(index), ciphertext, buildChunkAAD(transferID, index))
	if err != nil {
		return nil, errs.Wrap(errs.IntegrityFailure, "open chunk", err)
	}
	return pt, nil
}
