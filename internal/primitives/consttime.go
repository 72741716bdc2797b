package primitives

import "crypto/subtle"

// CTEqual reports whether a and b are byte-identical, in constant time
// with respect to their contents. Used for every tag/hash/fingerprint
// comparison in tallow — never use bytes.Equal on secret-derived data.
func CTEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
