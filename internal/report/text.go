package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

// palette holds the colors of the text report.
type palette struct {
	title   *color.Color
	label   *color.Color
	good    *color.Color
	warn    *color.Color
	bad     *color.Color
	section *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		title:   color.New(color.FgCyan, color.Bold),
		label:   color.New(color.FgWhite),
		good:    color.New(color.FgGreen, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		bad:     color.New(color.FgRed, color.Bold),
		section: color.New(color.FgBlue),
	}

	for _, c := range []*color.Color{p.title, p.label, p.good, p.warn, p.bad, p.section} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// rate picks the color for an error rate.
func (p *palette) rate(percent float64) *color.Color {
	switch {
	case percent == 0:
		return p.good
	case percent <= 5:
		return p.warn
	default:
		return p.bad
	}
}

// isTerminal checks if the writer is a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// WriteText writes a human-readable summary. Colors are used only when w
// is a terminal and opts.NoColor is not set.
func WriteText(w io.Writer, m *loadtest.LoadTestMetrics, info RunInfo, opts Options) error {
	p := newPalette(!opts.NoColor && isTerminal(w))
	tw := &textWriter{w: w}

	rule := strings.Repeat("=", 60)
	tw.println(rule)
	tw.printf(" %s\n", p.title.Sprintf("Load Test Results: %s %s", info.Method, info.URL))
	tw.println(rule)
	tw.printf(" Workers: %d   Timeout: %s   TLS verification: %s\n",
		info.Concurrency, info.Timeout, onOff(info.VerifyTLS))
	if !info.StartedAt.IsZero() {
		tw.printf(" Started: %s\n", info.StartedAt.Format(time.RFC3339))
	}
	tw.println("")

	tw.section(p, "Overall")
	tw.printf("  Total Requests:    %d\n", m.TotalRequests)
	tw.printf("  Successful:        %s\n", p.good.Sprint(m.SuccessfulRequests))
	tw.printf("  Failed:            %s\n", p.rate(m.ErrorRatePercent).Sprint(m.FailedRequests))
	tw.printf("  Error Rate:        %s\n", p.rate(m.ErrorRatePercent).Sprintf("%.2f%%", m.ErrorRatePercent))
	tw.printf("  Total Time:        %.3f s\n", m.TotalTimeSeconds)
	tw.printf("  Requests/sec:      %.2f\n", m.RequestsPerSecond)
	tw.printf("  Throughput:        %s/s\n", formatBytes(m.ThroughputBytesPerSecond))
	tw.printf("  Data Received:     %s\n", formatBytes(float64(m.TotalBytesReceived)))
	tw.println("")

	tw.section(p, "Response Times")
	tw.printf("  Min:     %s\n", formatMs(m.MinResponseTimeMs))
	tw.printf("  Max:     %s\n", formatMs(m.MaxResponseTimeMs))
	tw.printf("  Avg:     %s\n", formatMs(m.AvgResponseTimeMs))
	tw.printf("  Median:  %s\n", formatMs(m.MedianResponseTimeMs))
	tw.printf("  P95:     %s\n", formatMs(m.P95ResponseTimeMs))
	tw.printf("  P99:     %s\n", formatMs(m.P99ResponseTimeMs))
	tw.println("")

	if len(m.StatusCodeDistribution) > 0 {
		tw.section(p, "Status Codes")
		for _, sc := range SortedStatusCodes(m.StatusCodeDistribution) {
			c := p.good
			if sc.Code == 0 || sc.Code >= 400 {
				c = p.bad
			}
			tw.printf("  %-12s %d\n", c.Sprint(statusLabel(sc.Code)), sc.Count)
		}
		tw.println("")
	}

	if len(m.ErrorDistribution) > 0 {
		tw.section(p, "Errors")
		for _, ec := range SortedErrors(m.ErrorDistribution) {
			tw.printf("  %6d  %s\n", ec.Count, p.bad.Sprint(ec.Message))
		}
		tw.println("")
	}

	tw.println(rule)
	return tw.err
}

// textWriter remembers the first write error so the report can be
// written without checking every line.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) println(s string) {
	t.printf("%s\n", s)
}

func (t *textWriter) section(p *palette, name string) {
	t.printf("%s\n", p.section.Sprint("─── "+name+" "+strings.Repeat("─", 55-len(name))))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
