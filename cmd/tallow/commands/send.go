package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallowteam/tallow-go/internal/config"
	"github.com/tallowteam/tallow-go/internal/kex"
	"github.com/tallowteam/tallow-go/internal/session"
	"github.com/tallowteam/tallow-go/internal/transfer"
)

// sendCmd offers one or more files under a room code, waiting for the
// receiver to accept before streaming chunks.
func sendCmd() *cobra.Command {
	var roomCode string
	var peerAddr string
	var window int
	var compression string
	var stripMetadata bool

	cmd := &cobra.Command{
		Use:   "send <file>...",
		Short: "Send files to a peer under a room code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if roomCode == "" {
				return fmt.Errorf("a --room code is required")
			}

			manifest, sources, err := buildManifest(args, 0, stripMetadata)
			if err != nil {
				return err
			}
			mode := config.CompressionMode(compression)
			manifest.Compression = compressionTag(mode)
			if manifest.Compression == "" && mode != config.CompressionNone {
				fmt.Printf("compression mode %q is not implemented; sending uncompressed\n", compression)
			}

			id, err := appCtx.Identity()
			if err != nil {
				return fmt.Errorf("loading identity: %w", err)
			}
			if err := manifest.Finalize(&id.Private); err != nil {
				return fmt.Errorf("finalizing manifest: %w", err)
			}

			strategy, derived, err := buildStrategy(appCtx.Config, roomCode, peerAddr)
			if err != nil {
				return err
			}

			sess, err := session.Establish(cmd.Context(), kex.Initiator, derived, strategy, appCtx.Logger)
			if err != nil {
				return fmt.Errorf("establishing session: %w", err)
			}
			defer sess.Close()

			fmt.Printf("Connected. Sending %d file(s), %d bytes total.\n", len(manifest.Files), manifest.TotalSize)

			if err := sess.SendFile(cmd.Context(), manifest, openSource(sources), window); err != nil {
				return fmt.Errorf("sending files: %w", err)
			}

			fmt.Println("Transfer complete.")
			return nil
		},
	}

	cmd.Flags().StringVar(&roomCode, "room", "", "room code to pair with the receiver")
	cmd.Flags().StringVar(&peerAddr, "peer-addr", "", "peer address to dial through --socks5, bypassing the relay")
	cmd.Flags().IntVar(&window, "window", 32, "in-flight chunk window before waiting for acks")
	cmd.Flags().StringVar(&compression, "compression", "auto", "compression mode: auto|zstd|brotli|lz4|lzma|none")
	cmd.Flags().BoolVar(&stripMetadata, "strip-metadata", false, "strip EXIF/ICC/text metadata from JPEG and PNG files before sending")
	return cmd
}

// compressionTag maps a config.CompressionMode to the manifest's wire
// compression tag. Only zstd is implemented; auto resolves to it.
func compressionTag(mode config.CompressionMode) string {
	switch mode {
	case config.CompressionAuto, config.CompressionZstd:
		return transfer.CompressionZstd
	default:
		return ""
	}
}
