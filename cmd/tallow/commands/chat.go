package commands

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallowteam/tallow-go/internal/kex"
	"github.com/tallowteam/tallow-go/internal/session"
)

// chatCmd opens a room and exchanges plaintext lines over the raw
// session-keyed chat layer, per spec.md §4.8.
func chatCmd() *cobra.Command {
	var roomCode string
	var peerAddr string
	var initiate bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start or join a chat session under a room code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if roomCode == "" {
				return fmt.Errorf("a --room code is required")
			}

			strategy, derived, err := buildStrategy(appCtx.Config, roomCode, peerAddr)
			if err != nil {
				return err
			}

			role := kex.Responder
			if initiate {
				role = kex.Initiator
			}
			sess, err := session.Establish(cmd.Context(), role, derived, strategy, appCtx.Logger)
			if err != nil {
				return fmt.Errorf("establishing session: %w", err)
			}
			defer sess.Close()

			fmt.Println("Connected. Type a message and press enter; Ctrl-C to quit.")

			go func() {
				for {
					text, err := sess.ReceiveChatText()
					if err != nil {
						fmt.Fprintf(os.Stderr, "chat receive ended: %v\n", err)
						return
					}
					fmt.Printf("peer: %s\n", text)
				}
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if err := sess.SendChatText(scanner.Text()); err != nil {
					return fmt.Errorf("sending chat message: %w", err)
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&roomCode, "room", "", "room code to pair with the peer")
	cmd.Flags().StringVar(&peerAddr, "peer-addr", "", "peer address to dial through --socks5, bypassing the relay")
	cmd.Flags().BoolVar(&initiate, "initiate", false, "act as the handshake initiator (one side must)")
	return cmd
}
