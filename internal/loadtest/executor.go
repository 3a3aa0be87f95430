package loadtest

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Executor issues single requests for a LoadTestConfig.
//
// Each worker owns its Executor, and with it its own HTTP client and
// transport; nothing is shared between workers.
type Executor struct {
	config     LoadTestConfig
	httpClient *http.Client
	header     http.Header
}

// NewExecutor creates an executor for cfg.
//
// TLS verification is disabled unless cfg.VerifyTLS is set.
func NewExecutor(cfg LoadTestConfig) *Executor {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: !cfg.VerifyTLS, //nolint:gosec // trusted test targets
	}

	return &Executor{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		header: buildHeader(cfg),
	}
}

// buildHeader merges the configured headers with the defaults.
func buildHeader(cfg LoadTestConfig) http.Header {
	header := make(http.Header, len(cfg.Headers)+2)
	for key, value := range cfg.Headers {
		header.Set(key, value)
	}

	if header.Get("User-Agent") == "" {
		header.Set("User-Agent", "volley/"+Version)
	}
	if cfg.Payload != nil && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	return header
}

// Execute performs exactly one request and classifies its outcome.
//
// It never returns an error: transport problems, error statuses and
// anything unexpected all end up in the returned RequestResult.
func (e *Executor) Execute(ctx context.Context) RequestResult {
	var body io.Reader
	if e.config.Payload != nil {
		body = bytes.NewReader(e.config.Payload)
	}

	req, err := http.NewRequestWithContext(ctx, string(e.config.Method), e.config.URL, body)
	if err != nil {
		return RequestResult{ErrorMessage: err.Error()}
	}
	req.Header = e.header.Clone()
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}

	start := time.Now()

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return RequestResult{
			ResponseTimeMs: sinceMs(start),
			ErrorMessage:   "URL Error: " + transportReason(err),
		}
	}

	n, readErr := io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	elapsed := sinceMs(start)

	if resp.StatusCode >= http.StatusBadRequest {
		return RequestResult{
			StatusCode:     resp.StatusCode,
			ResponseTimeMs: elapsed,
			ErrorMessage:   "HTTP " + strconv.Itoa(resp.StatusCode) + ": " + reasonPhrase(resp),
		}
	}

	if readErr != nil {
		return RequestResult{
			ResponseTimeMs: elapsed,
			ErrorMessage:   readErr.Error(),
		}
	}

	return RequestResult{
		Success:           true,
		StatusCode:        resp.StatusCode,
		ResponseTimeMs:    elapsed,
		ResponseSizeBytes: n,
	}
}

// transportReason strips the "Get \"url\": " prefix the client adds.
func transportReason(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// reasonPhrase returns the reason phrase sent by the server, or the
// canonical status text when the server sent none.
func reasonPhrase(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
