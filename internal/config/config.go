// Package config holds tallow's runtime wiring options: everything the
// CLI surface (spec.md §6) accepts as arguments or environment defaults,
// resolved once at startup and threaded through the session builders.
package config

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// CompressionMode selects the manifest-level compression policy.
type CompressionMode string

const (
	CompressionAuto   CompressionMode = "auto"
	CompressionZstd   CompressionMode = "zstd"
	CompressionBrotli CompressionMode = "brotli"
	CompressionLZ4    CompressionMode = "lz4"
	CompressionLZMA   CompressionMode = "lzma"
	CompressionNone   CompressionMode = "none"
)

// ProxyConfig mirrors spec.md §6's optional proxy block.
type ProxyConfig struct {
	Socks5Addr string
	TorMode    bool
	Username   string
	Password   string
}

// Config holds runtime wiring options for building a session: the CLI
// surface's room_code/password/relay_addr/proxy/local_mode/transfer_type/
// compression/strip_metadata/encrypt_filenames/resume_id parameters, plus
// the Home directory every persisted package (identity, kv, history)
// resolves paths against.
type Config struct {
	Home     string // config/data directory, e.g. $HOME/.tallow
	RelayURL string // relay base address, e.g. "relay.tallow.dev:4433"
	HTTP     *http.Client

	RoomCode string
	Password string

	Proxy     *ProxyConfig
	LocalMode bool

	TransferType     string // "files" | "text"
	Compression      CompressionMode
	StripMetadata    bool
	EncryptFilenames bool
	ResumeID         *[16]byte
}

// Default returns a Config with Home resolved against $HOME (or the
// platform equivalent) and every other field at its zero/auto value.
func Default() (*Config, error) {
	home, err := defaultHome()
	if err != nil {
		return nil, err
	}
	return &Config{
		Home:        home,
		Compression: CompressionAuto,
	}, nil
}

func defaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Wrap(errs.InvalidArgument, "resolve home directory", err)
	}
	return filepath.Join(dir, ".tallow"), nil
}

// EnsureHome creates Home (and its parents) with owner-only permissions.
func (c *Config) EnsureHome() error {
	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return errs.Wrap(errs.InvalidArgument, "create home directory", err)
	}
	return nil
}

// ProxyFromEnvironment builds a ProxyConfig from SOCKS_PROXY/HTTPS_PROXY,
// returning nil if neither is set. NO_PROXY is not consulted.
func ProxyFromEnvironment() *ProxyConfig {
	if addr := os.Getenv("SOCKS_PROXY"); addr != "" {
		return &ProxyConfig{Socks5Addr: addr}
	}
	if addr := os.Getenv("HTTPS_PROXY"); addr != "" {
		return &ProxyConfig{Socks5Addr: addr}
	}
	return nil
}

// HTTPClient returns c.HTTP if set, else http.DefaultClient.
func (c *Config) HTTPClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// IdentityStoreDir is the directory internal/identity persists into.
func (c *Config) IdentityStoreDir() string {
	return filepath.Join(c.Home, "identity")
}

// HistoryStoreDir is the directory transfer/chat history is persisted into.
func (c *Config) HistoryStoreDir() string {
	return filepath.Join(c.Home, "history")
}
