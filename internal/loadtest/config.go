// Package loadtest implements the load generation core: a fixed pool of
// workers issuing HTTP requests and the aggregation of their results into
// latency and throughput statistics.
//
// The package is config-in/metrics-out:
//
//	cfg := loadtest.LoadTestConfig{URL: "http://localhost:8080/health", Concurrency: 10, TotalRequests: 100}
//	metrics, err := loadtest.Run(ctx, cfg)
package loadtest

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Version is reported in the default User-Agent header.
var Version = "0.1.0"

const (
	// DefaultConcurrency is the suggested number of parallel workers.
	DefaultConcurrency = 10

	// DefaultTotalRequests is the suggested number of requests per run.
	DefaultTotalRequests = 100

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// DefaultMethod is used when no method is configured.
	DefaultMethod = MethodGet
)

// Method is an HTTP method supported by the executor.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Methods lists every supported method.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// ParseMethod returns the Method matching s, ignoring case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unsupported method %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of Methods.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// LoadTestConfig describes a single load test run. It is treated as
// immutable once handed to Run or NewScheduler.
type LoadTestConfig struct {
	// URL is the request target
	URL string `json:"url" yaml:"url"`

	// Concurrency is the number of parallel workers
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// TotalRequests is the number of requests issued across all workers
	TotalRequests int `json:"totalRequests" yaml:"totalRequests"`

	// Method is the HTTP method
	Method Method `json:"method" yaml:"method"`

	// Headers are sent with every request
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Payload is the request body; nil sends no body
	Payload []byte `json:"-" yaml:"-"`

	// Timeout bounds each request including reading the body
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// VerifyTLS enables certificate and hostname verification.
	// Targets are assumed to be trusted test systems, so it is off by default.
	VerifyTLS bool `json:"verifyTls" yaml:"verifyTls"`
}

// DefaultConfig returns a config for url with the default settings.
func DefaultConfig(url string) LoadTestConfig {
	return LoadTestConfig{
		URL:           url,
		Concurrency:   DefaultConcurrency,
		TotalRequests: DefaultTotalRequests,
		Method:        DefaultMethod,
		Timeout:       DefaultTimeout,
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the configuration.
//
// Returns nil if valid, or a *ValidationErrors containing every violation.
func (c *LoadTestConfig) Validate() error {
	errs := &ValidationErrors{}

	if c.URL == "" {
		errs.Add("url", "url is required")
	} else if u, err := url.Parse(c.URL); err != nil {
		errs.Add("url", fmt.Sprintf("invalid url: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs.Add("url", fmt.Sprintf("unsupported scheme %q (expected http or https)", u.Scheme))
	} else if u.Host == "" {
		errs.Add("url", "url has no host")
	}

	if c.Concurrency < 1 {
		errs.Add("concurrency", "concurrency must be >= 1")
	}
	if c.TotalRequests < 0 {
		errs.Add("totalRequests", "totalRequests must be >= 0")
	}
	if !c.Method.Valid() {
		errs.Add("method", fmt.Sprintf("unsupported method %q", c.Method))
	}
	if c.Timeout <= 0 {
		errs.Add("timeout", "timeout must be > 0")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
