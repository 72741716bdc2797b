package kv

import "testing"

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, []byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Put("identity", []byte("secret-bytes"), []byte("identity-v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := s.Get("identity", []byte("identity-v1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || string(got) != "secret-bytes" {
		t.Fatalf("unexpected value: %q ok=%v", got, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, []byte("passphrase"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Get("nope", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected missing key")
	}
}

func TestGetWrongPassphraseFails(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, []byte("passphrase-one"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put("k", []byte("v"), nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	s2, err := Open(dir, []byte("passphrase-two"))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if _, _, err := s2.Get("k", nil); err == nil {
		t.Fatal("expected decryption failure with wrong passphrase")
	}
}

func TestGetWrongAADFails(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, []byte("passphrase"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Put("k", []byte("v"), []byte("aad-a")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := s.Get("k", []byte("aad-b")); err == nil {
		t.Fatal("expected failure on aad mismatch")
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, []byte("passphrase"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Put("k", []byte("v"), nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, ok, err := s.Get("k", nil)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if ok {
		t.Fatal("expected key gone after delete")
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete missing key should not error: %v", err)
	}
}

func TestPathForRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, []byte("passphrase"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Put("../escape", []byte("v"), nil); err == nil {
		t.Fatal("expected rejection of traversal key")
	}
}
