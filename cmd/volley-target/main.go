// Command volley-target serves endpoints with predictable behavior for
// trying out volley locally.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/volley/internal/logging"
	"github.com/wesleyorama2/volley/internal/target"
)

func newRootCmd() *cobra.Command {
	var (
		addr      string
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:          "volley-target",
		Short:        "Run a local HTTP server to load test against",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(os.Stderr, logLevel, logFormat)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := target.NewServer(addr, logger)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			level.Info(logger).Log("msg", "target server listening", "addr", addr)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			level.Info(logger).Log("msg", "shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&logLevel, "log-level", logging.LevelInfo, "Log level (none, error, warn, info, debug)")
	cmd.Flags().StringVar(&logFormat, "log-format", logging.FormatLogfmt, "Log format (logfmt, json)")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
