package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPlan_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "headers.json", `{"X-From-File": "file", "X-Shared": "file"}`)
	writeFile(t, dir, "body.json", `{"name":"volley"}`)
	path := writeFile(t, dir, "plan.yaml", `
url: https://api.example.com/items
concurrency: 20
requests: 500
method: post
timeout: 5s
verifyTls: true
headers:
  X-Shared: inline
  X-Retry: 3
headersFile: headers.json
payloadFile: body.json
`)

	plan, err := LoadPlan(path)
	require.NoError(t, err)

	cfg, err := plan.Apply(loadtest.DefaultConfig(""))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/items", cfg.URL)
	assert.Equal(t, 20, cfg.Concurrency)
	assert.Equal(t, 500, cfg.TotalRequests)
	assert.Equal(t, loadtest.MethodPost, cfg.Method)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.VerifyTLS)
	assert.Equal(t, map[string]string{
		"X-From-File": "file",
		"X-Shared":    "inline",
		"X-Retry":     "3",
	}, cfg.Headers)
	assert.Equal(t, `{"name":"volley"}`, string(cfg.Payload))
	assert.NoError(t, cfg.Validate())
}

func TestLoadPlan_JSONKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.json", `{"url": "http://localhost:8080/health", "timeout": 2.5, "payload": "ping"}`)

	plan, err := LoadPlan(path)
	require.NoError(t, err)

	cfg, err := plan.Apply(loadtest.DefaultConfig(""))
	require.NoError(t, err)

	assert.Equal(t, loadtest.DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, loadtest.DefaultTotalRequests, cfg.TotalRequests)
	assert.Equal(t, loadtest.MethodGet, cfg.Method)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.False(t, cfg.VerifyTLS)
	assert.Nil(t, cfg.Headers)
	assert.Equal(t, "ping", string(cfg.Payload))
}

func TestParsePlan_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing url", `concurrency: 2`},
		{"zero concurrency", "url: http://x\nconcurrency: 0"},
		{"negative requests", "url: http://x\nrequests: -1"},
		{"unknown method", "url: http://x\nmethod: TRACE"},
		{"unknown key", "url: http://x\nworkers: 4"},
		{"nested header", "url: http://x\nheaders:\n  X-A:\n    nested: true"},
		{"not an object", "- url: http://x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.data), "plan.yaml")
			require.Error(t, err)

			var schemaErrs SchemaErrors
			assert.True(t, errors.As(err, &schemaErrs), "got %T: %v", err, err)
			assert.Contains(t, err.Error(), "plan does not match schema")
		})
	}
}

func TestParsePlan_Malformed(t *testing.T) {
	_, err := ParsePlan([]byte(`{"url": `), "plan.json")
	assert.ErrorContains(t, err, "failed to parse JSON plan")

	_, err = ParsePlan([]byte("url: [unclosed"), "plan.yml")
	assert.ErrorContains(t, err, "failed to parse YAML plan")
}

func TestParsePlan_PayloadConflict(t *testing.T) {
	_, err := ParsePlan([]byte("url: http://x\npayload: a\npayloadFile: b.json"), "")
	assert.True(t, errors.Is(err, ErrPayloadConflict))
}

func TestPlan_ApplyMissingFiles(t *testing.T) {
	plan, err := ParsePlan([]byte("url: http://x\nheadersFile: nope.json"), "")
	require.NoError(t, err)
	_, err = plan.Apply(loadtest.DefaultConfig(""))
	assert.ErrorContains(t, err, "failed to read headers file")

	plan, err = ParsePlan([]byte("url: http://x\npayloadFile: nope.bin"), "")
	require.NoError(t, err)
	_, err = plan.Apply(loadtest.DefaultConfig(""))
	assert.ErrorContains(t, err, "failed to read payload file")
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"30s", 30 * time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"10", 10 * time.Second, false},
		{"0.25", 250 * time.Millisecond, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPlan_ApplyNonPositiveTimeout(t *testing.T) {
	tests := []struct {
		name string
		data string
		want time.Duration
	}{
		{"zero duration", "url: http://x\ntimeout: 0s", 0},
		{"negative duration", "url: http://x\ntimeout: -5s", -5 * time.Second},
		{"zero seconds string", "url: http://x\ntimeout: \"0\"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParsePlan([]byte(tt.data), "plan.yaml")
			require.NoError(t, err)

			cfg, err := plan.Apply(loadtest.DefaultConfig(""))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Timeout, "plan timeout must not fall back to the default")
			assert.ErrorContains(t, cfg.Validate(), "timeout must be > 0")
		})
	}

	_, err := ParsePlan([]byte("url: http://x\ntimeout: 0"), "plan.yaml")
	var schemaErrs SchemaErrors
	assert.True(t, errors.As(err, &schemaErrs), "numeric zero timeout: %v", err)
}

func TestPlan_ApplyWithoutTimeoutKeepsDefault(t *testing.T) {
	plan, err := ParsePlan([]byte("url: http://x"), "plan.yaml")
	require.NoError(t, err)
	assert.Nil(t, plan.Timeout)

	cfg, err := plan.Apply(loadtest.DefaultConfig(""))
	require.NoError(t, err)
	assert.Equal(t, loadtest.DefaultTimeout, cfg.Timeout)
}
