package kv

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// FileMode is the permission bits every file this package writes carries:
// owner read/write only.
const FileMode = 0o600

// Store is an encrypted file-backed key/value store: each key is one file
// under dir, holding an Argon2id/AES-256-GCM envelope keyed by a shared
// passphrase. Safe for concurrent use by one process; callers sharing a
// directory across processes must coordinate externally.
type Store struct {
	mu         sync.Mutex
	dir        string
	passphrase []byte
}

// Open returns a Store rooted at dir, creating dir (mode 0700) if absent.
// passphrase unlocks every entry; it is copied, not retained by reference.
func Open(dir string, passphrase []byte) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, "create store directory", err)
	}
	cp := make([]byte, len(passphrase))
	copy(cp, passphrase)
	return &Store{dir: dir, passphrase: cp}, nil
}

// Close zeroizes the store's retained passphrase.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.passphrase {
		s.passphrase[i] = 0
	}
}

func (s *Store) pathFor(key string) (string, error) {
	if key == "" || filepath.Base(key) != key {
		return "", errs.New(errs.InvalidArgument, "invalid store key")
	}
	return filepath.Join(s.dir, key+".tlw"), nil
}

// Put seals value under key, using aad as additional authenticated data
// (callers bind it to the key name or a schema version).
func (s *Store) Put(key string, value, aad []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	env, err := sealEnvelope(s.passphrase, value, aad)
	if err != nil {
		return err
	}
	b, err := marshalEnvelope(env)
	if err != nil {
		return err
	}
	return writeFile(path, b, FileMode)
}

// Get opens the value stored under key. ok is false if the key does not
// exist.
func (s *Store) Get(key string, aad []byte) (value []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	b, err := readFile(path)
	if err != nil {
		return nil, false, err
	}
	if b == nil {
		return nil, false, nil
	}
	env, err := unmarshalEnvelope(b)
	if err != nil {
		return nil, false, err
	}
	pt, err := openEnvelope(s.passphrase, env, aad)
	if err != nil {
		return nil, false, err
	}
	return pt, true, nil
}

// Delete removes key; it is not an error if key does not exist.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.InvalidArgument, "delete store key", err)
	}
	return nil
}
