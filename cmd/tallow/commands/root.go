package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallowteam/tallow-go/internal/app"
	"github.com/tallowteam/tallow-go/internal/config"
)

var (
	// These flags are shared across all commands.
	homeDir      string
	passphrase   string
	relayAddr    string
	roomPassword string
	socksAddr    string
	torMode      bool
	logJSON      bool

	// appCtx holds the wired dependencies after PersistentPreRunE.
	appCtx *app.Wire
)

// Execute initialises the application context and runs the root cobra command.
func Execute() error {
	root := &cobra.Command{
		Use:   "tallow",
		Short: "Peer-to-peer encrypted file transfer",
		// Before any sub-command runs we need to build out our Wire (dependencies).
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Default()
			if err != nil {
				return fmt.Errorf("resolving config: %w", err)
			}
			if homeDir != "" {
				cfg.Home = homeDir
			}
			cfg.RelayURL = relayAddr
			cfg.Password = roomPassword

			if socksAddr != "" {
				cfg.Proxy = &config.ProxyConfig{Socks5Addr: socksAddr, TorMode: torMode}
			} else {
				cfg.Proxy = config.ProxyFromEnvironment()
			}

			appCtx, err = app.New(cfg, passphrase, logJSON)
			if err != nil {
				return fmt.Errorf("initialising application: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appCtx != nil {
				appCtx.Close()
			}
		},
	}

	defaultHome := ""
	if h, err := os.UserHomeDir(); err == nil {
		defaultHome = filepath.Join(h, ".tallow")
	}

	root.PersistentFlags().StringVar(
		&homeDir,
		"home",
		"",
		fmt.Sprintf("config directory (default: %s)", defaultHome),
	)
	root.PersistentFlags().StringVarP(
		&passphrase,
		"passphrase",
		"p",
		"",
		"passphrase protecting your local identity store",
	)
	root.PersistentFlags().StringVar(
		&relayAddr,
		"relay",
		"relay.tallow.dev:4433",
		"relay address, host:port",
	)
	root.PersistentFlags().StringVar(
		&roomPassword,
		"password",
		"",
		"optional password mixed into the session key alongside the room code",
	)
	root.PersistentFlags().StringVar(
		&socksAddr,
		"socks5",
		"",
		"SOCKS5 proxy address to tunnel through instead of direct/relay QUIC",
	)
	root.PersistentFlags().BoolVar(
		&torMode,
		"tor",
		false,
		"use hostname-mode SOCKS5 (no local DNS resolution); only takes effect with --socks5",
	)
	root.PersistentFlags().BoolVar(
		&logJSON,
		"log-json",
		false,
		"emit structured JSON logs instead of text",
	)

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		sendCmd(),
		recvCmd(),
		chatCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	root.SetContext(ctx)

	return root.Execute()
}
