// Package app wires tallow's dependencies for the CLI: the config-
// resolved home directory, the encrypted key/value store, and the local
// identity, exposed via Wire for commands to use.
package app

import (
	"log/slog"
	"os"

	"github.com/tallowteam/tallow-go/internal/config"
	"github.com/tallowteam/tallow-go/internal/identity"
	"github.com/tallowteam/tallow-go/internal/kv"
	"github.com/tallowteam/tallow-go/internal/logging"
)

// Wire bundles the dependencies every command needs.
type Wire struct {
	Config *config.Config
	Store  *kv.Store
	Logger *logging.Logger
}

// New opens the key/value store under cfg.IdentityStoreDir unlocked by
// passphrase, creating cfg.Home if needed. It does not load or generate
// an identity; call identity.LoadOrGenerate against w.Store for that.
// When logJSON is true the wired logger emits structured JSON instead of
// text.
func New(cfg *config.Config, passphrase string, logJSON bool) (*Wire, error) {
	if err := cfg.EnsureHome(); err != nil {
		return nil, err
	}
	store, err := kv.Open(cfg.IdentityStoreDir(), []byte(passphrase))
	if err != nil {
		return nil, err
	}
	logger := logging.NewText(os.Stderr, slog.LevelInfo)
	if logJSON {
		logger = logging.NewJSON(os.Stderr, slog.LevelInfo)
	}
	return &Wire{
		Config: cfg,
		Store:  store,
		Logger: logger,
	}, nil
}

// Close releases the wired store.
func (w *Wire) Close() {
	w.Store.Close()
}

// Identity returns the wired store's identity, generating one on first
// use.
func (w *Wire) Identity() (*identity.Identity, error) {
	return identity.LoadOrGenerate(w.Store)
}
