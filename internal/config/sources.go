package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// ErrPayloadConflict is returned when both an inline payload and a payload
// file are given.
var ErrPayloadConflict = errors.New("payload and payload file are mutually exclusive")

// ParseHeaders parses a JSON object of header names to values.
//
// String values are used as-is; numbers and booleans are converted to
// their JSON text. Nested objects, arrays and null are rejected.
func ParseHeaders(raw string) (map[string]string, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("headers are not valid JSON")
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("headers must be a JSON object")
	}

	headers := make(map[string]string)
	var err error

	parsed.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String, gjson.True, gjson.False:
			headers[key.String()] = value.String()
		case gjson.Number:
			headers[key.String()] = value.Raw
		default:
			err = fmt.Errorf("header %q must be a string, number or boolean", key.String())
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return headers, nil
}

// LoadHeadersFile reads a JSON header object from path.
func LoadHeadersFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read headers file: %w", err)
	}

	headers, err := ParseHeaders(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return headers, nil
}

// LoadPayloadFile returns the contents of path verbatim.
func LoadPayloadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	return data, nil
}

// MergeHeaders returns base overlaid with override; keys in override win.
func MergeHeaders(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}

	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
