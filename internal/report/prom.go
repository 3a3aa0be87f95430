package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

// runLabels are attached to every exported gauge.
var runLabels = []string{"url", "method"}

// NewRegistry builds a registry holding the metrics of one run as gauges.
func NewRegistry(m *loadtest.LoadTestMetrics, info RunInfo) (*prometheus.Registry, error) {
	if m == nil {
		return nil, fmt.Errorf("metrics cannot be nil")
	}

	reg := prometheus.NewRegistry()
	gauge := func(name, help string, extra ...string) *prometheus.GaugeVec {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: help,
		}, append(append([]string{}, runLabels...), extra...))
		reg.MustRegister(g)
		return g
	}

	labels := prometheus.Labels{"url": info.URL, "method": info.Method}
	with := func(extra prometheus.Labels) prometheus.Labels {
		out := prometheus.Labels{}
		for k, v := range labels {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	gauge("volley_requests_total", "Number of requests issued").With(labels).Set(float64(m.TotalRequests))
	gauge("volley_requests_successful", "Number of requests with a 2xx or 3xx response").With(labels).Set(float64(m.SuccessfulRequests))
	gauge("volley_requests_failed", "Number of failed requests").With(labels).Set(float64(m.FailedRequests))
	gauge("volley_duration_seconds", "Wall-clock duration of the run").With(labels).Set(m.TotalTimeSeconds)
	gauge("volley_requests_per_second", "Requests completed per second").With(labels).Set(m.RequestsPerSecond)
	gauge("volley_throughput_bytes_per_second", "Response bytes received per second").With(labels).Set(m.ThroughputBytesPerSecond)
	gauge("volley_received_bytes", "Response bytes received by successful requests").With(labels).Set(float64(m.TotalBytesReceived))
	gauge("volley_error_rate_percent", "Percentage of failed requests").With(labels).Set(m.ErrorRatePercent)

	rt := gauge("volley_response_time_ms", "Response time statistics in milliseconds", "stat")
	for stat, v := range map[string]float64{
		"min":    m.MinResponseTimeMs,
		"max":    m.MaxResponseTimeMs,
		"avg":    m.AvgResponseTimeMs,
		"median": m.MedianResponseTimeMs,
		"p95":    m.P95ResponseTimeMs,
		"p99":    m.P99ResponseTimeMs,
	} {
		rt.With(with(prometheus.Labels{"stat": stat})).Set(v)
	}

	codes := gauge("volley_status_code_responses", "Responses per status code, 0 meaning no response", "code")
	for code, count := range m.StatusCodeDistribution {
		codes.With(with(prometheus.Labels{"code": strconv.Itoa(code)})).Set(float64(count))
	}

	return reg, nil
}

// WritePrometheus writes the metrics to path in the node_exporter textfile
// format. The file is replaced atomically.
func WritePrometheus(path string, m *loadtest.LoadTestMetrics, info RunInfo) error {
	reg, err := NewRegistry(m, info)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write Prometheus textfile: %w", err)
	}
	return nil
}

// WritePrometheusText writes the metrics to w in the Prometheus text
// exposition format.
func WritePrometheusText(w io.Writer, m *loadtest.LoadTestMetrics, info RunInfo) error {
	reg, err := NewRegistry(m, info)
	if err != nil {
		return err
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
