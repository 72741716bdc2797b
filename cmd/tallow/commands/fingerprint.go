package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fingerprintCmd prints the stored identity's fingerprint, generating one
// first if none exists yet.
func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := appCtx.Identity()
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %x\n", id.Hash)
			return nil
		},
	}
}
