// Package chatsession implements tallow's chat session: a counter-
// partitioned AEAD layer on top of the raw session key, used directly
// (without re-ratcheting) when a peer bridges to a session key it cannot
// run the full Triple Ratchet over.
package chatsession

import (
	"encoding/binary"
	"regexp"
	"strings"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

const chatAAD = "tallow-chat-v1"

// Session owns a send-side and a receive-side counter, started on opposite
// parities per New's initiator argument, partitioning the 12-byte nonce
// space so two peers never collide.
type Session struct {
	key         [32]byte
	sendCounter uint64
	recvCounter uint64
}

// New starts a chat session directly under sessionKey. initiator partitions
// the nonce space between the two peers: the initiator sends on even
// counters (0,2,4,...) and expects the peer's messages on odd counters
// starting at 1; the other side is the mirror image. Constructing both
// ends of a session with the same initiator value reuses nonces under the
// same key, which ChaCha20-Poly1305 cannot tolerate.
func New(sessionKey [32]byte, initiator bool) *Session {
	if initiator {
		return &Session{key: sessionKey, sendCounter: 0, recvCounter: 1}
	}
	return &Session{key: sessionKey, sendCounter: 1, recvCounter: 0}
}

func nonceFor(counter uint64) [primitives.GCMNonceSize]byte {
	var nonce [primitives.GCMNonceSize]byte
	binary.BigEndian.PutUint64(nonce[len(nonce)-8:], counter)
	return nonce
}

// EncryptMessage seals text, returning the ciphertext and the nonce's
// counter value, then advances the send counter by 2.
func (s *Session) EncryptMessage(text string) (ciphertext []byte, counter uint64, err error) {
	if s.sendCounter > ^uint64(0)-2 {
		return nil, 0, errs.New(errs.ResourceExhausted, "chat send counter overflow")
	}
	counter = s.sendCounter
	ct, err := primitives.ChaChaEncrypt(s.key, nonceFor(counter), []byte(text), []byte(chatAAD))
	if err != nil {
		return nil, 0, errs.Wrap(errs.CryptoFailure, "chat encrypt", err)
	}
	s.sendCounter += 2
	return ct, counter, nil
}

// DecryptMessage opens ciphertext sealed under counter, returning
// sanitized UTF-8 text with ANSI escapes and control characters stripped.
func (s *Session) DecryptMessage(ciphertext []byte, counter uint64) (string, error) {
	pt, err := primitives.ChaChaDecrypt(s.key, nonceFor(counter), ciphertext, []byte(chatAAD))
	if err != nil {
		return "", errs.Wrap(errs.IntegrityFailure, "chat decrypt", err)
	}
	if counter >= s.recvCounter {
		if counter-s.recvCounter > ^uint64(0)-2 {
			return "", errs.New(errs.ResourceExhausted, "chat recv counter overflow")
		}
		s.recvCounter = counter + 1
	}
	return sanitize(string(pt)), nil
}

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// sanitize strips ANSI escape sequences and C0/C1 control characters,
// preserving ordinary printable text (including newlines and tabs).
func sanitize(s string) string {
	s = ansiEscape.ReplaceAllString(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
