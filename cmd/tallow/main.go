// The entrypoint for the tallow CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tallowteam/tallow-go/cmd/tallow/commands"
	"github.com/tallowteam/tallow-go/internal/errs"
)

// main executes the command hierarchy and translates the resulting error's
// taxonomy kind into the exit code spec.md §6 assigns it.
func main() {
	err := commands.Execute()
	if err == nil {
		os.Exit(0)
	}

	fmt.Fprintf(os.Stderr, "error: %v\n", err)

	if errors.Is(err, context.Canceled) {
		os.Exit(130)
	}
	kind, ok := errs.Of(err)
	if !ok {
		os.Exit(1)
	}
	os.Exit(errs.ExitCode(kind))
}
