package report

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is the JSON report layout.
type Document struct {
	Run     RunInfo                   `json:"run"`
	Metrics *loadtest.LoadTestMetrics `json:"metrics"`
}

// WriteJSON writes m and info as an indented JSON document.
func WriteJSON(w io.Writer, m *loadtest.LoadTestMetrics, info RunInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(Document{Run: info, Metrics: m}); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}
