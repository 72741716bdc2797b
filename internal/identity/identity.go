// Package identity manages a user's durable Ed25519 signing identity: its
// keypair, its BLAKE3 identity hash, and its encrypted persistence under
// internal/kv.
package identity

import (
	"encoding/json"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/kv"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

const storeKey = "identity"
const identityAAD = "tallow-identity-v1"

// Identity is a user's signing keypair plus the BLAKE3 hash that names it
// on the wire (manifest signer IDs, peer fingerprints).
type Identity struct {
	Private primitives.Ed25519Private
	Public  primitives.Ed25519Public
	Hash    [32]byte
}

// Zeroize clears the private key.
func (id *Identity) Zeroize() {
	primitives.Zero(id.Private[:])
}

type identityFile struct {
	Private []byte `json:"private"`
	Public  []byte `json:"public"`
}

// Generate creates a fresh identity.
func Generate() (*Identity, error) {
	priv, pub, err := primitives.GenerateEd25519()
	if err != nil {
		return nil, err
	}
	return fromKeypair(priv, pub), nil
}

func fromKeypair(priv primitives.Ed25519Private, pub primitives.Ed25519Public) *Identity {
	return &Identity{
		Private: priv,
		Public:  pub,
		Hash:    primitives.Hash(pub[:]),
	}
}

// Load opens the identity persisted in store, unlocked by the store's
// passphrase. errs.NotFound if no identity has been saved yet.
func Load(store *kv.Store) (*Identity, error) {
	b, ok, err := store.Get(storeKey, []byte(identityAAD))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.NotFound, "no identity found")
	}

	var f identityFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "parse identity", err)
	}
	if len(f.Private) != len(primitives.Ed25519Private{}) || len(f.Public) != len(primitives.Ed25519Public{}) {
		return nil, errs.New(errs.DecodingFailure, "malformed identity key sizes")
	}

	var priv primitives.Ed25519Private
	var pub primitives.Ed25519Public
	copy(priv[:], f.Private)
	copy(pub[:], f.Public)
	return fromKeypair(priv, pub), nil
}

// Save persists id into store, overwriting any existing identity.
func Save(store *kv.Store, id *Identity) error {
	f := identityFile{
		Private: append([]byte(nil), id.Private[:]...),
		Public:  append([]byte(nil), id.Public[:]...),
	}
	b, err := json.Marshal(f)
	if err != nil {
		return errs.Wrap(errs.EncodingFailure, "encode identity", err)
	}
	return store.Put(storeKey, b, []byte(identityAAD))
}

// LoadOrGenerate returns the identity persisted in store, generating and
// saving a fresh one if none exists yet.
func LoadOrGenerate(store *kv.Store) (*Identity, error) {
	id, err := Load(store)
	if err == nil {
		return id, nil
	}
	if kind, ok := errs.Of(err); !ok || kind != errs.NotFound {
		return nil, err
	}

	id, err = Generate()
	if err != nil {
		return nil, err
	}
	if err := Save(store, id); err != nil {
		return nil, err
	}
	return id, nil
}
