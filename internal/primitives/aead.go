package primitives

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/tallowteam/tallow-go/internal/errs"
)

const (
	// AEADKeySize is the key size for both AES-256-GCM and ChaCha20-Poly1305.
	AEADKeySize = 32
	// GCMNonceSize is the standard AES-GCM nonce size.
	GCMNonceSize = 12
	// ChaChaNonceSize is the standard ChaCha20-Poly1305 nonce size.
	ChaChaNonceSize = chacha20poly1305.NonceSize
	// TagSize is the authentication tag appended by both AEADs.
	TagSize = 16
)

// AESEncrypt seals plaintext with AES-256-GCM, returning ciphertext||tag.
func AESEncrypt(key [AEADKeySize]byte, nonce [GCMNonceSize]byte, plaintext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "aes key schedule", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "aes-gcm init", err)
	}
	return gcm.Seal(nil, nonce[:], plaintext, aad), nil
}

// AESDecrypt opens ciphertext sealed by AESEncrypt; a tag mismatch is a
// CryptoFailure, never a panic or a silently-truncated plaintext.
func AESDecrypt(key [AEADKeySize]byte, nonce [GCMNonceSize]byte, ciphertext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "aes key schedule", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "aes-gcm init", err)
	}
	pt, err := gcm.Open(nil, nonce[:], ciphertext, aad)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "aes-gcm tag mismatch", err)
	}
	return pt, nil
}

// ChaChaEncrypt seals plaintext with ChaCha20-Poly1305.
func ChaChaEncrypt(key [AEADKeySize]byte, nonce [ChaChaNonceSize]byte, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "chacha20poly1305 init", err)
	}
	return aead.Seal(nil, nonce[:], plaintext, aad), nil
}

// ChaChaDecrypt opens ciphertext sealed by ChaChaEncrypt.
func ChaChaDecrypt(key [AEADKeySize]byte, nonce [ChaChaNonceSize]byte, ciphertext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "chacha20poly1305 init", err)
	}
	pt, err := aead.Open(nil, nonce[:], ciphertext, aad)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "chacha20poly1305 tag mismatch", err)
	}
	return pt, nil
}
