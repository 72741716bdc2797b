package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultResolvesHomeUnderUserHome(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if filepath.Base(cfg.Home) != ".tallow" {
		t.Fatalf("expected home to end in .tallow, got %q", cfg.Home)
	}
	if cfg.Compression != CompressionAuto {
		t.Fatalf("expected auto compression default, got %q", cfg.Compression)
	}
}

func TestEnsureHomeCreatesDirectory(t *testing.T) {
	cfg := &Config{Home: filepath.Join(t.TempDir(), "nested", "home")}
	if err := cfg.EnsureHome(); err != nil {
		t.Fatalf("ensure home: %v", err)
	}
	if dir := cfg.IdentityStoreDir(); filepath.Base(dir) != "identity" {
		t.Fatalf("unexpected identity store dir: %q", dir)
	}
}

func TestHTTPClientDefaultsWhenUnset(t *testing.T) {
	cfg := &Config{}
	if cfg.HTTPClient() == nil {
		t.Fatal("expected non-nil default http client")
	}
}
