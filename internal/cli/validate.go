package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/volley/internal/config"
	"github.com/wesleyorama2/volley/internal/loadtest"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan>",
		Short: "Validate a plan file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := config.LoadPlan(args[0])
			if err != nil {
				return err
			}

			cfg, err := plan.Apply(loadtest.DefaultConfig(""))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			printConfig(cmd, args[0], cfg)
			return nil
		},
	}
}

func printConfig(cmd *cobra.Command, path string, cfg loadtest.LoadTestConfig) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s is valid\n\n", path)
	fmt.Fprintf(out, "  URL:          %s\n", cfg.URL)
	fmt.Fprintf(out, "  Method:       %s\n", cfg.Method)
	fmt.Fprintf(out, "  Concurrency:  %d\n", cfg.Concurrency)
	fmt.Fprintf(out, "  Requests:     %d\n", cfg.TotalRequests)
	fmt.Fprintf(out, "  Timeout:      %s\n", cfg.Timeout)
	fmt.Fprintf(out, "  Verify TLS:   %t\n", cfg.VerifyTLS)
	fmt.Fprintf(out, "  Payload:      %d bytes\n", len(cfg.Payload))

	if len(cfg.Headers) == 0 {
		return
	}

	names := make([]string, 0, len(cfg.Headers))
	for name := range cfg.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "  Headers:")
	for _, name := range names {
		fmt.Fprintf(out, "    %s: %s\n", name, cfg.Headers[name])
	}
}
