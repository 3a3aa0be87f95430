package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/volley/internal/config"
	"github.com/wesleyorama2/volley/internal/loadtest"
	"github.com/wesleyorama2/volley/internal/logging"
	"github.com/wesleyorama2/volley/internal/report"
)

// runOptions holds the flag values of the run command.
type runOptions struct {
	configFile  string
	url         string
	concurrency int
	requests    int
	method      string
	headers     string
	headersFile string
	payload     string
	payloadFile string
	timeout     time.Duration
	verifyTLS   bool

	format  string
	output  string
	noColor bool

	logLevel  string
	logFormat string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [url]",
		Short: "Run a load test against a URL",
		Long: `Send a fixed number of requests to one URL using a pool of concurrent
workers, then print a summary of the results.

Flag mode:
  volley run --url https://api.example.com/health -c 20 -n 1000

Plan file mode (flags given on the command line override the plan):
  volley run --config plan.yaml --requests 50

The command exits with an error when more than half of the requests fail.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("url") {
					return fmt.Errorf("URL given both as argument and --url")
				}
				if err := cmd.Flags().Set("url", args[0]); err != nil {
					return err
				}
			}
			return runLoadTest(cmd, opts)
		},
	}

	flags := cmd.Flags()

	// Request flags
	flags.StringVarP(&opts.url, "url", "u", "", "URL to test")
	flags.IntVarP(&opts.concurrency, "concurrency", "c", loadtest.DefaultConcurrency, "Number of concurrent workers")
	flags.IntVarP(&opts.requests, "requests", "n", loadtest.DefaultTotalRequests, "Total number of requests")
	flags.StringVarP(&opts.method, "method", "X", string(loadtest.DefaultMethod), "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	flags.StringVar(&opts.headers, "headers", "", `Request headers as a JSON object, e.g. '{"X-Token":"abc"}'`)
	flags.StringVar(&opts.headersFile, "headers-file", "", "File containing request headers as a JSON object")
	flags.StringVar(&opts.payload, "payload", "", "Request body")
	flags.StringVar(&opts.payloadFile, "payload-file", "", "File containing the request body")
	flags.DurationVarP(&opts.timeout, "timeout", "t", loadtest.DefaultTimeout, "Per-request timeout")
	flags.BoolVar(&opts.verifyTLS, "verify-tls", false, "Verify TLS certificates")

	// Plan file
	flags.StringVarP(&opts.configFile, "config", "f", "", "Plan file (YAML or JSON)")

	// Reporting flags
	flags.StringVar(&opts.format, "format", string(report.FormatText), "Report format (text, json, html, prom)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file for report (default: stdout)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	// Logging flags
	flags.StringVar(&opts.logLevel, "log-level", logging.LevelWarn, "Log level (none, error, warn, info, debug)")
	flags.StringVar(&opts.logFormat, "log-format", logging.FormatLogfmt, "Log format (logfmt, json)")

	return cmd
}

// runLoadTest resolves the configuration, runs the test and writes the
// report.
func runLoadTest(cmd *cobra.Command, opts *runOptions) error {
	logger, err := logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	level.Info(logger).Log(
		"msg", "starting load test",
		"url", cfg.URL,
		"method", cfg.Method,
		"concurrency", cfg.Concurrency,
		"requests", cfg.TotalRequests,
	)

	startedAt := time.Now()
	metrics, err := loadtest.Run(cmd.Context(), cfg, loadtest.WithLogger(logger))
	if err != nil {
		return err
	}

	level.Info(logger).Log(
		"msg", "load test finished",
		"duration", time.Since(startedAt),
		"failed", metrics.FailedRequests,
		"error_rate_percent", metrics.ErrorRatePercent,
	)

	info := report.NewRunInfo(cfg, startedAt)
	if err := writeReport(cmd.OutOrStdout(), format, opts, metrics, info, logger); err != nil {
		return err
	}

	if metrics.ErrorRatePercent > failureThresholdPercent {
		return fmt.Errorf("%w: %.2f%% of %d requests failed", ErrRunFailed, metrics.ErrorRatePercent, metrics.TotalRequests)
	}
	return nil
}

// buildConfig layers the plan file, if any, and the explicitly set flags
// over the defaults.
func buildConfig(cmd *cobra.Command, opts *runOptions) (loadtest.LoadTestConfig, error) {
	cfg := loadtest.DefaultConfig("")

	if opts.configFile != "" {
		plan, err := config.LoadPlan(opts.configFile)
		if err != nil {
			return cfg, err
		}
		if cfg, err = plan.Apply(cfg); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("payload") && flags.Changed("payload-file") {
		return cfg, config.ErrPayloadConflict
	}

	if flags.Changed("url") {
		cfg.URL = opts.url
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("requests") {
		cfg.TotalRequests = opts.requests
	}
	if flags.Changed("method") {
		method, err := loadtest.ParseMethod(opts.method)
		if err != nil {
			return cfg, err
		}
		cfg.Method = method
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("verify-tls") {
		cfg.VerifyTLS = opts.verifyTLS
	}

	var fileHeaders, inlineHeaders map[string]string
	if opts.headersFile != "" {
		h, err := config.LoadHeadersFile(opts.headersFile)
		if err != nil {
			return cfg, err
		}
		fileHeaders = h
	}
	if opts.headers != "" {
		h, err := config.ParseHeaders(opts.headers)
		if err != nil {
			return cfg, fmt.Errorf("invalid --headers: %w", err)
		}
		inlineHeaders = h
	}
	cfg.Headers = config.MergeHeaders(cfg.Headers, config.MergeHeaders(fileHeaders, inlineHeaders))

	switch {
	case flags.Changed("payload"):
		cfg.Payload = []byte(opts.payload)
	case opts.payloadFile != "":
		payload, err := config.LoadPayloadFile(opts.payloadFile)
		if err != nil {
			return cfg, err
		}
		cfg.Payload = payload
	}

	return cfg, nil
}

// writeReport writes the report to the output file, or to stdout when no
// file was given.
func writeReport(stdout io.Writer, format report.Format, opts *runOptions, m *loadtest.LoadTestMetrics, info report.RunInfo, logger log.Logger) error {
	if opts.output == "" {
		return report.Write(format, stdout, m, info, report.Options{NoColor: opts.noColor})
	}

	if format == report.FormatPrometheus {
		if err := report.WritePrometheus(opts.output, m, info); err != nil {
			return err
		}
	} else {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		if err := report.Write(format, f, m, info, report.Options{NoColor: opts.noColor}); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
	}

	level.Info(logger).Log("msg", "report written", "format", format, "path", opts.output)
	return nil
}
