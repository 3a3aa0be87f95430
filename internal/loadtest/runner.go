package loadtest

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Run validates cfg, executes the load test and aggregates the results.
//
// Failed requests never make Run fail; they are reflected in the returned
// metrics. An error is only returned for an invalid configuration or when
// the workers cannot be started.
func Run(ctx context.Context, cfg LoadTestConfig, opts ...Option) (*LoadTestMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scheduler := NewScheduler(cfg, opts...)

	level.Debug(scheduler.logger).Log(
		"msg", "starting load test",
		"url", cfg.URL,
		"method", cfg.Method,
		"concurrency", cfg.Concurrency,
		"requests", cfg.TotalRequests,
		"timeout", cfg.Timeout,
		"verify_tls", cfg.VerifyTLS,
	)

	results, elapsed, err := scheduler.Run(ctx)
	if err != nil {
		return nil, err
	}

	metrics := Aggregate(results, elapsed)
	logSummary(scheduler.logger, metrics)

	return metrics, nil
}

func logSummary(logger log.Logger, m *LoadTestMetrics) {
	level.Debug(logger).Log(
		"msg", "load test finished",
		"total", m.TotalRequests,
		"successful", m.SuccessfulRequests,
		"failed", m.FailedRequests,
		"rps", m.RequestsPerSecond,
		"p95_ms", m.P95ResponseTimeMs,
		"error_rate_percent", m.ErrorRatePercent,
	)
}
