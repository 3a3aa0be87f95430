// Package cli implements the volley command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

// failureThresholdPercent is the error rate above which a run counts as
// failed.
const failureThresholdPercent = 50.0

// ErrRunFailed is returned when a run completed but too many of its
// requests failed.
var ErrRunFailed = errors.New("load test failed")

// NewRootCmd builds the volley command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "volley",
		Short:   "A simple concurrent HTTP load tester",
		Version: loadtest.Version,
		Long: `Volley fires a fixed number of HTTP requests at a single URL from a pool
of concurrent workers and reports throughput, latency percentiles, status
codes and errors once all requests have completed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())

	return root
}

// Execute runs the root command against os.Args. Errors are printed to
// stderr before being returned.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
