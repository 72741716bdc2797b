package primitives

import "crypto/subtle"

// Zero overwrites b with zeros. Every type in tallow holding key material
// must call this before it is dropped; this is a contract enforced by
// callers (RatchetState, Identity, SessionKey), not something the Go
// garbage collector gives us for free.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// Zeroizer is implemented by any type owning secret bytes that must be
// cleared on drop.
type Zeroizer interface {
	Zeroize()
}
