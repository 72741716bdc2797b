package primitives

import (
	"crypto/rand"

	"golang.org/x/crypto/argon2"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// Argon2 parameters mandated for password-based key derivation: identity
// keyring unlock and password-mixed room pairing (spec.md §4.1).
const (
	Argon2Memory  = 64 * 1024 // KiB, 64 MiB
	Argon2Time    = 3
	Argon2Threads = 4
	Argon2SaltMin = 16
	Argon2KeySize = 32
)

// NewArgon2Salt returns a fresh random salt of Argon2SaltMin bytes.
func NewArgon2Salt() ([]byte, error) {
	salt := make([]byte, Argon2SaltMin)
	if _, err := rand.Read(salt); err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "argon2 salt", err)
	}
	return salt, nil
}

// Argon2id derives a 32-byte key from password and salt using the fixed
// tallow parameters. salt must be at least Argon2SaltMin bytes.
func Argon2id(password, salt []byte) ([Argon2KeySize]byte, error) {
	var out [Argon2KeySize]byte
	if len(salt) < Argon2SaltMin {
		return out, errs.New(errs.InvalidArgument, "argon2 salt too short")
	}
	key := argon2.IDKey(password, salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeySize)
	copy(out[:], key)
	return out, nil
}
