package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallowteam/tallow-go/internal/identity"
)

// initCmd creates a new Ed25519 identity (or rotates an existing one) and
// stores it encrypted under the wired passphrase.
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or rotate your local identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identity.Generate()
			if err != nil {
				return fmt.Errorf("generating identity: %w", err)
			}
			if err := identity.Save(appCtx.Store, id); err != nil {
				return fmt.Errorf("saving identity: %w", err)
			}

			fmt.Println("Identity created.")
			fmt.Printf("Fingerprint: %x\n", id.Hash)
			return nil
		},
	}
}
