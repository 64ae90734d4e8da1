// Package cli implements the hudi-sync command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code: 0 on success,
// 1 on any propagated error.
func Execute(ctx context.Context) int {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hudi-sync",
		Short: "Sync hudi tables into an external query engine",
		Long: "hudi-sync exposes copy-on-write hudi tables as consistent snapshot views\n" +
			"inside an external query engine, by publishing a manifest of the files\n" +
			"valid as of the latest commit and maintaining a raw file catalog plus a\n" +
			"manifest-gated snapshot view in the engine.",
		SilenceErrors: true,
	}
	// Usage is deliberately not silenced at this level: a missing required
	// flag prints usage and exits non-zero before any sync work starts.
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}
