package primitives

import (
	"lukechampine.com/blake3"
)

// HashSize is the digest size used throughout tallow for BLAKE3 outputs:
// file hashes, Merkle leaves/root, RoomID, and KDF output.
const HashSize = 32

// Hash returns BLAKE3(data), unkeyed.
func Hash(data []byte) [HashSize]byte {
	return blake3.Sum256(data)
}

// KeyedHash returns BLAKE3 keyed with a 32-byte key, used for domain
// separation (e.g. RoomID := KeyedHash("tallow.room.v1", code)).
func KeyedHash(key [32]byte, data []byte) ([HashSize]byte, error) {
	h := blake3.New(HashSize, key[:])
	h.Write(data)
	var out [HashSize]byte
	h.Sum(out[:0])
	return out, nil
}

// KeyedHashString is a convenience over KeyedHash for the fixed,
// human-readable domain strings used by the KEX engine (RoomID, the
// initial shared-material derivation). The domain string is padded/
// truncated into a 32-byte BLAKE3 key the same way a keyed hash context
// string is derived.
func KeyedHashString(domain string, data []byte) ([HashSize]byte, error) {
	var key [32]byte
	copy(key[:], domain)
	return KeyedHash(key, data)
}

// StreamHasher is an incremental BLAKE3 hasher for rolling hashes over a
// stream of chunks (the transfer engine's full-stream integrity hash).
type StreamHasher struct {
	h *blake3.Hasher
}

// NewStreamHasher returns an empty incremental hasher.
func NewStreamHasher() *StreamHasher {
	return &StreamHasher{h: blake3.New(HashSize, nil)}
}

// Write feeds more bytes into the hash.
func (s *StreamHasher) Write(b []byte) {
	s.h.Write(b)
}

// Sum returns the BLAKE3 digest of everything written so far.
func (s *StreamHasher) Sum() [HashSize]byte {
	var out [HashSize]byte
	s.h.Sum(out[:0])
	return out
}

// DeriveKey implements tallow's domain-separated KDF: a BLAKE3
// derive_key-style construction keyed by a context string, independent of
// ikm length.
func DeriveKey(context string, ikm []byte) [HashSize]byte {
	var out [HashSize]byte
	blake3.DeriveKey(out[:], context, ikm)
	return out
}
