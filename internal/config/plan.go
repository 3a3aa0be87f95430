// Package config loads load test plans from YAML or JSON files and sources
// request headers and payloads from inline JSON or files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

// Plan is a load test described in a file.
//
// Example YAML:
//
//	url: "https://api.example.com/health"
//	concurrency: 20
//	requests: 500
//	method: POST
//	timeout: 5s
//	headers:
//	  Authorization: "Bearer token"
//	payloadFile: body.json
type Plan struct {
	URL         string          `json:"url"`
	Concurrency *int            `json:"concurrency,omitempty"`
	Requests    *int            `json:"requests,omitempty"`
	Method      string          `json:"method,omitempty"`
	Timeout     *Duration       `json:"timeout,omitempty"`
	VerifyTLS   *bool           `json:"verifyTls,omitempty"`
	Headers     json.RawMessage `json:"headers,omitempty"`
	HeadersFile string          `json:"headersFile,omitempty"`
	Payload     *string         `json:"payload,omitempty"`
	PayloadFile string          `json:"payloadFile,omitempty"`

	// dir is the directory relative file references resolve against
	dir string
}

// LoadPlan loads a plan from a file.
//
// The format is determined by extension:
//   - .json -> JSON
//   - anything else -> YAML
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	plan, err := ParsePlan(data, path)
	if err != nil {
		return nil, err
	}
	plan.dir = filepath.Dir(path)

	return plan, nil
}

// ParsePlan parses and schema-validates plan data. path only selects the
// format and may be empty.
func ParsePlan(data []byte, path string) (*Plan, error) {
	var doc interface{}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON plan: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML plan: %w", err)
		}
	}

	// Round-trip through JSON so the schema sees the same value types for
	// both formats.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize plan: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(normalized, &generic); err != nil {
		return nil, fmt.Errorf("failed to normalize plan: %w", err)
	}
	if err := validateDocument(generic); err != nil {
		return nil, err
	}

	plan := &Plan{dir: "."}
	if err := json.Unmarshal(normalized, plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}

	if plan.Payload != nil && plan.PayloadFile != "" {
		return nil, ErrPayloadConflict
	}

	return plan, nil
}

// Apply overlays the plan on cfg and returns the result. Header and
// payload files are read at this point.
func (p *Plan) Apply(cfg loadtest.LoadTestConfig) (loadtest.LoadTestConfig, error) {
	cfg.URL = p.URL

	if p.Concurrency != nil {
		cfg.Concurrency = *p.Concurrency
	}
	if p.Requests != nil {
		cfg.TotalRequests = *p.Requests
	}
	if p.Method != "" {
		method, err := loadtest.ParseMethod(p.Method)
		if err != nil {
			return cfg, err
		}
		cfg.Method = method
	}
	// Kept even when not positive so Validate reports it.
	if p.Timeout != nil {
		cfg.Timeout = time.Duration(*p.Timeout)
	}
	if p.VerifyTLS != nil {
		cfg.VerifyTLS = *p.VerifyTLS
	}

	var fileHeaders, inlineHeaders map[string]string
	var err error

	if p.HeadersFile != "" {
		if fileHeaders, err = LoadHeadersFile(p.resolve(p.HeadersFile)); err != nil {
			return cfg, err
		}
	}
	if len(p.Headers) > 0 {
		if inlineHeaders, err = ParseHeaders(string(p.Headers)); err != nil {
			return cfg, err
		}
	}
	if headers := MergeHeaders(fileHeaders, inlineHeaders); headers != nil {
		cfg.Headers = MergeHeaders(cfg.Headers, headers)
	}

	switch {
	case p.Payload != nil:
		cfg.Payload = []byte(*p.Payload)
	case p.PayloadFile != "":
		if cfg.Payload, err = LoadPayloadFile(p.resolve(p.PayloadFile)); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func (p *Plan) resolve(path string) string {
	if filepath.IsAbs(path) || p.dir == "" {
		return path
	}
	return filepath.Join(p.dir, path)
}

// Duration is a time.Duration that can be unmarshaled from a duration
// string ("5s", "1m30s") or a number of seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		dur, err := ParseDuration(str)
		if err != nil {
			return err
		}
		*d = Duration(dur)
		return nil
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s", s)
	}
	*d = Duration(seconds * float64(time.Second))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// ParseDuration parses a duration string.
//
// Supported formats:
//   - Standard Go duration: "30s", "2m", "500ms"
//   - Plain seconds: "30", "1.5"
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
