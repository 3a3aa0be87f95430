// Package report renders load test metrics as text, JSON, HTML or a
// Prometheus textfile.
//
// Reporters only see a LoadTestMetrics value and a RunInfo describing the
// run; raw per-request results are never needed.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

// ErrUnknownFormat is returned for report formats Write cannot render.
var ErrUnknownFormat = errors.New("unknown report format")

// Format identifies a report format.
type Format string

const (
	FormatText       Format = "text"
	FormatJSON       Format = "json"
	FormatHTML       Format = "html"
	FormatPrometheus Format = "prom"
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatHTML, FormatPrometheus:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// RunInfo describes the run a report is about.
type RunInfo struct {
	URL           string        `json:"url"`
	Method        string        `json:"method"`
	Concurrency   int           `json:"concurrency"`
	TotalRequests int           `json:"totalRequests"`
	Timeout       time.Duration `json:"timeout"`
	VerifyTLS     bool          `json:"verifyTls"`
	StartedAt     time.Time     `json:"startedAt"`
}

// NewRunInfo describes a run of cfg started at startedAt.
func NewRunInfo(cfg loadtest.LoadTestConfig, startedAt time.Time) RunInfo {
	return RunInfo{
		URL:           cfg.URL,
		Method:        string(cfg.Method),
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.TotalRequests,
		Timeout:       cfg.Timeout,
		VerifyTLS:     cfg.VerifyTLS,
		StartedAt:     startedAt,
	}
}

// Options control report rendering.
type Options struct {
	// NoColor disables colored text output
	NoColor bool
}

// Write renders m to w in the given format.
func Write(format Format, w io.Writer, m *loadtest.LoadTestMetrics, info RunInfo, opts Options) error {
	if m == nil {
		return fmt.Errorf("metrics cannot be nil")
	}

	switch format {
	case FormatText:
		return WriteText(w, m, info, opts)
	case FormatJSON:
		return WriteJSON(w, m, info)
	case FormatHTML:
		return WriteHTML(w, m, info)
	case FormatPrometheus:
		return WritePrometheusText(w, m, info)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// StatusCount is one entry of a status code distribution.
type StatusCount struct {
	Code  int
	Count int
}

// SortedStatusCodes returns the distribution ordered by status code.
func SortedStatusCodes(dist map[int]int) []StatusCount {
	out := make([]StatusCount, 0, len(dist))
	for code, count := range dist {
		out = append(out, StatusCount{Code: code, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ErrorCount is one entry of an error distribution.
type ErrorCount struct {
	Message string
	Count   int
}

// SortedErrors returns the distribution ordered by count, most frequent
// first, then by message.
func SortedErrors(dist map[string]int) []ErrorCount {
	out := make([]ErrorCount, 0, len(dist))
	for msg, count := range dist {
		out = append(out, ErrorCount{Message: msg, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// formatBytes formats bytes to human-readable string
func formatBytes(bytes float64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", bytes/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", bytes/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", bytes/KB)
	default:
		return fmt.Sprintf("%.0f B", bytes)
	}
}

func formatMs(ms float64) string {
	return fmt.Sprintf("%.2f ms", ms)
}

func statusLabel(code int) string {
	if code == 0 {
		return "no response"
	}
	return fmt.Sprintf("%d", code)
}
