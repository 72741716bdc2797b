package kv

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

const envelopeVersion = 1

// envelope is the on-disk shape of one encrypted blob: an Argon2id salt,
// an AES-256-GCM nonce, and the ciphertext, each base64-encoded so the
// whole thing round-trips through JSON.
type envelope struct {
	V          int    `json:"v"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// sealEnvelope derives a key from passphrase via Argon2id under a fresh
// salt and seals plaintext with AES-256-GCM.
func sealEnvelope(passphrase, plaintext, aad []byte) (envelope, error) {
	salt, err := primitives.NewArgon2Salt()
	if err != nil {
		return envelope{}, err
	}
	key, err := primitives.Argon2id(passphrase, salt)
	if err != nil {
		return envelope{}, err
	}
	defer primitives.Zero(key[:])

	var nonce [primitives.GCMNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return envelope{}, errs.Wrap(errs.CryptoFailure, "generate nonce", err)
	}

	ct, err := primitives.AESEncrypt(key, nonce, plaintext, aad)
	if err != nil {
		return envelope{}, err
	}

	return envelope{
		V:          envelopeVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce[:]),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
	}, nil
}

// openEnvelope derives the same key from passphrase and opens the blob.
func openEnvelope(passphrase []byte, env envelope, aad []byte) ([]byte, error) {
	if env.V != envelopeVersion {
		return nil, errs.New(errs.DecodingFailure, "unsupported envelope version")
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode salt", err)
	}
	nonceB, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode nonce", err)
	}
	if len(nonceB) != primitives.GCMNonceSize {
		return nil, errs.New(errs.DecodingFailure, "invalid nonce length")
	}
	var nonce [primitives.GCMNonceSize]byte
	copy(nonce[:], nonceB)

	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode ciphertext", err)
	}

	key, err := primitives.Argon2id(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer primitives.Zero(key[:])

	pt, err := primitives.AESDecrypt(key, nonce, ct, aad)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoFailure, "decrypt envelope", err)
	}
	return pt, nil
}

func marshalEnvelope(env envelope) ([]byte, error) {
	return json.Marshal(env)
}

func unmarshalEnvelope(b []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return envelope{}, errs.Wrap(errs.DecodingFailure, "parse envelope", err)
	}
	return env, nil
}
