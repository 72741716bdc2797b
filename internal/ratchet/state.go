// Package ratchet implements tallow's Triple Ratchet: a Double Ratchet
// layer (root key, send/recv chain keys, DH ratchet, skipped-message-key
// cache) plus a sparse post-quantum overlay that periodically remixes an
// ML-KEM-1024 encapsulation into the root key.
package ratchet

import (
	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

// maxSkipped is the bound on cached skipped-message keys before decryption
// is refused outright (a fatal IntegrityFailure).
const maxSkipped = 1000

// pruneAt is the point at which the cache is pruned back down, keeping the
// highest-numbered (most recently relevant) entries.
const pruneAt = 2 * maxSkipped

// DefaultPQInterval is how many ratchet epochs elapse between sparse
// post-quantum remixes.
const DefaultPQInterval = 10

// Phase names the ratchet's coarse lifecycle state.
type Phase int

const (
	FreshOutbound Phase = iota
	FreshInbound
	Epoch
)

// Header accompanies each ratchet-encrypted message: the sender's current
// DH ratchet public key and the message's counter within that chain. The
// skipped-key cache is addressed by (DHPub, N).
type Header struct {
	DHPub primitives.X25519Public
	N     uint64
}

type skippedKey struct {
	dhPub primitives.X25519Public
	n     uint64
}

// State is one side of a Triple Ratchet session. It owns all key material
// exclusively; callers must not share a *State across tasks, and must call
// Zeroize before dropping it.
type State struct {
	Phase Phase

	RootKey      [32]byte
	SendChainKey [32]byte
	RecvChainKey [32]byte
	SendCounter  uint64
	RecvCounter  uint64

	DHPriv    primitives.X25519Private
	DHPub     primitives.X25519Public
	PeerDHPub primitives.X25519Public
	havePeer  bool

	skipped map[skippedKey][32]byte

	EpochN    uint64
	PQInterval uint64
	pqDK       []byte // our pending ML-KEM decapsulation key for the current overlay offer
}

// Init creates a fresh ratchet from a shared secret (the hybrid handshake's
// SessionKey), per spec: root_key := shared_secret; chain keys derived from
// it; a fresh X25519 ephemeral is generated.
func Init(sharedSecret [32]byte) (*State, error) {
	dhPriv, dhPub, err := primitives.GenerateX25519()
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "ratchet ephemeral keygen", err)
	}
	return &State{
		Phase:        FreshOutbound,
		RootKey:      sharedSecret,
		SendChainKey: primitives.DeriveKey("send_chain", sharedSecret[:]),
		RecvChainKey: primitives.DeriveKey("recv_chain", sharedSecret[:]),
		DHPriv:       dhPriv,
		DHPub:        dhPub,
		skipped:      make(map[skippedKey][32]byte),
		PQInterval:   DefaultPQInterval,
	}, nil
}

// SetPeerDHPub records the peer's initial ratchet public key, for the side
// that did not generate the first DH ratchet step (mirrors the teacher's
// InitAsResponder wiring the sender's ratchet pub before any message
// arrives). Init derives the same send and receive chains on both sides,
// so this side's two chain keys are swapped: its receive chain then matches
// the peer's send chain, and its send chain the peer's receive chain.
func (s *State) SetPeerDHPub(pub primitives.X25519Public) {
	s.PeerDHPub = pub
	s.havePeer = true
	s.SendChainKey, s.RecvChainKey = s.RecvChainKey, s.SendChainKey
}

// Zeroize clears every secret byte held by the state: chain keys, root key,
// cached skipped keys, and the ephemeral private key.
func (s *State) Zeroize() {
	primitives.Zero(s.RootKey[:])
	primitives.Zero(s.SendChainKey[:])
	primitives.Zero(s.RecvChainKey[:])
	primitives.Zero(s.DHPriv[:])
	for k, v := range s.skipped {
		primitives.Zero(v[:])
		delete(s.skipped, k)
	}
	if s.pqDK != nil {
		primitives.Zero(s.pqDK)
	}
}
