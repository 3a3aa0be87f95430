package loadtest

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_MixedStatuses(t *testing.T) {
	var n atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) <= 10 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Concurrency = 10
	cfg.TotalRequests = 100

	m, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if m.TotalRequests != 100 || m.SuccessfulRequests != 90 || m.FailedRequests != 10 {
		t.Errorf("counts = %d/%d/%d, want 100/90/10", m.TotalRequests, m.SuccessfulRequests, m.FailedRequests)
	}
	if math.Abs(m.ErrorRatePercent-10) > 1e-9 {
		t.Errorf("ErrorRatePercent = %v, want 10", m.ErrorRatePercent)
	}
	if want := map[int]int{200: 90, 500: 10}; !reflect.DeepEqual(m.StatusCodeDistribution, want) {
		t.Errorf("StatusCodeDistribution = %v, want %v", m.StatusCodeDistribution, want)
	}
	if want := map[string]int{"HTTP 500: Internal Server Error": 10}; !reflect.DeepEqual(m.ErrorDistribution, want) {
		t.Errorf("ErrorDistribution = %v, want %v", m.ErrorDistribution, want)
	}
	if want := int64(90 * len(`{"status":"ok"}`)); m.TotalBytesReceived != want {
		t.Errorf("TotalBytesReceived = %d, want %d", m.TotalBytesReceived, want)
	}
	if m.RequestsPerSecond <= 0 || m.ThroughputBytesPerSecond <= 0 {
		t.Errorf("Expected positive rates, got %v and %v", m.RequestsPerSecond, m.ThroughputBytesPerSecond)
	}

	ordered := []float64{m.MinResponseTimeMs, m.MedianResponseTimeMs, m.P95ResponseTimeMs, m.P99ResponseTimeMs, m.MaxResponseTimeMs}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] > ordered[i] {
			t.Errorf("latency statistics out of order: %v", ordered)
			break
		}
	}
}

func TestRun_UnreachableHost(t *testing.T) {
	cfg := testConfig("http://" + closedAddr(t) + "/")
	cfg.Concurrency = 2
	cfg.TotalRequests = 4
	cfg.Timeout = time.Second

	m, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if m.FailedRequests != 4 || m.ErrorRatePercent != 100 {
		t.Errorf("Expected 4 failures at 100%%, got %d at %v%%", m.FailedRequests, m.ErrorRatePercent)
	}
	if want := map[int]int{0: 4}; !reflect.DeepEqual(m.StatusCodeDistribution, want) {
		t.Errorf("StatusCodeDistribution = %v, want %v", m.StatusCodeDistribution, want)
	}
	if m.ThroughputBytesPerSecond != 0 {
		t.Errorf("ThroughputBytesPerSecond = %v, want 0", m.ThroughputBytesPerSecond)
	}
	for msg := range m.ErrorDistribution {
		if !strings.HasPrefix(msg, "URL Error: ") {
			t.Errorf("Expected URL Error, got %q", msg)
		}
	}
}

func TestRun_ZeroRequests(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/")
	cfg.TotalRequests = 0

	m, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if m.TotalRequests != 0 || m.RequestsPerSecond != 0 || m.ErrorRatePercent != 0 {
		t.Errorf("Expected zero metrics, got %+v", m)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := LoadTestConfig{URL: "ftp://example.com", Concurrency: 0, TotalRequests: -1, Method: "TRACE"}

	m, err := Run(context.Background(), cfg)
	if m != nil {
		t.Errorf("Expected nil metrics, got %+v", m)
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected ValidationErrors, got %v", err)
	}
	if len(verrs.Errors) != 5 {
		t.Errorf("Expected 5 validation errors, got %d: %v", len(verrs.Errors), verrs)
	}
}

func TestLoadTestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LoadTestConfig)
		wantErr string
	}{
		{"valid", func(*LoadTestConfig) {}, ""},
		{"missing url", func(c *LoadTestConfig) { c.URL = "" }, "url is required"},
		{"bad scheme", func(c *LoadTestConfig) { c.URL = "ws://example.com" }, "unsupported scheme"},
		{"no host", func(c *LoadTestConfig) { c.URL = "http://" }, "no host"},
		{"zero concurrency", func(c *LoadTestConfig) { c.Concurrency = 0 }, "concurrency must be >= 1"},
		{"negative requests", func(c *LoadTestConfig) { c.TotalRequests = -5 }, "totalRequests must be >= 0"},
		{"bad method", func(c *LoadTestConfig) { c.Method = "HEAD" }, "unsupported method"},
		{"zero timeout", func(c *LoadTestConfig) { c.Timeout = 0 }, "timeout must be > 0"},
		{"negative timeout", func(c *LoadTestConfig) { c.Timeout = -5 * time.Second }, "timeout must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("https://example.com/api")
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" patch ")
	if err != nil {
		t.Fatalf("ParseMethod() error = %v", err)
	}
	if m != MethodPatch {
		t.Errorf("ParseMethod(\" patch \") = %s, want %s", m, MethodPatch)
	}

	if _, err := ParseMethod("OPTIONS"); err == nil {
		t.Error("ParseMethod(\"OPTIONS\") expected error")
	}
}
