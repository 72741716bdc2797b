package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/kex"
	"github.com/tallowteam/tallow-go/internal/session"
	"github.com/tallowteam/tallow-go/internal/transfer"
)

// recvCmd joins a room, accepts the incoming manifest, and writes the
// transferred files under outDir.
func recvCmd() *cobra.Command {
	var roomCode string
	var peerAddr string
	var outDir string
	var maxSize int64

	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Receive files offered under a room code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if roomCode == "" {
				return fmt.Errorf("a --room code is required")
			}
			if err := os.MkdirAll(outDir, 0o700); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			strategy, derived, err := buildStrategy(appCtx.Config, roomCode, peerAddr)
			if err != nil {
				return err
			}

			sess, err := session.Establish(cmd.Context(), kex.Responder, derived, strategy, appCtx.Logger)
			if err != nil {
				return fmt.Errorf("establishing session: %w", err)
			}
			defer sess.Close()

			fmt.Println("Connected. Waiting for file offer.")

			manifest, chunks, err := sess.ReceiveFile(cmd.Context(), uint64(maxSize))
			if err != nil {
				return fmt.Errorf("receiving files: %w", err)
			}

			if err := writeFiles(outDir, manifest, chunks); err != nil {
				return err
			}

			fmt.Printf("Received %d file(s) into %s.\n", len(manifest.Files), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&roomCode, "room", "", "room code to pair with the sender")
	cmd.Flags().StringVar(&peerAddr, "peer-addr", "", "peer address to dial through --socks5, bypassing the relay")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write received files into")
	cmd.Flags().Int64Var(&maxSize, "max-size", 0, "reject transfers declaring more than this many total bytes (0 disables the check)")
	return cmd
}

// writeFiles splits the ordered, already-decrypted chunk stream back into
// manifest's declared files (in ChunkCount-sized runs, in manifest order)
// and writes each under outDir.
func writeFiles(outDir string, manifest *transfer.Manifest, chunks [][]byte) error {
	var cursor uint64
	for _, entry := range manifest.Files {
		if cursor+entry.ChunkCount > uint64(len(chunks)) {
			return errs.New(errs.IntegrityFailure, "fewer chunks received than the manifest declares for "+entry.Path)
		}

		dest := filepath.Join(outDir, entry.Path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
			return errs.Wrap(errs.InvalidArgument, "create output subdirectory", err)
		}
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return errs.Wrap(errs.InvalidArgument, "create output file", err)
		}
		for _, c := range chunks[cursor : cursor+entry.ChunkCount] {
			if _, err := f.Write(c); err != nil {
				f.Close()
				return errs.Wrap(errs.InvalidArgument, "write output file", err)
			}
		}
		if err := f.Close(); err != nil {
			return errs.Wrap(errs.InvalidArgument, "close output file", err)
		}
		cursor += entry.ChunkCount
	}
	return nil
}
