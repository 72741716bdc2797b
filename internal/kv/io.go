// Package kv implements tallow's encrypted file-backed key/value store:
// Argon2id-derived-key AEAD envelopes written via temp-file-then-rename,
// the persisted-state layout spec.md §6 describes for identity and resume
// state. A Store serializes access within one process; callers sharing a
// store directory across processes must serialize access themselves.
package kv

import (
	"errors"
	"os"
	"path/filepath"
)

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// writeFile writes b via a temp file then an atomic rename, with mode
// applied before the rename so the target never exists with the wrong
// permissions.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
