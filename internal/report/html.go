package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

// htmlData contains all data needed to render the HTML report.
type htmlData struct {
	Run         RunInfo
	Metrics     *loadtest.LoadTestMetrics
	StatusCodes []StatusCount
	Errors      []ErrorCount
	Histogram   []histogramBar
	GeneratedAt time.Time
}

// histogramBar is one row of the latency distribution table.
type histogramBar struct {
	FromMs  float64
	ToMs    float64
	Count   int64
	Percent float64
}

// WriteHTML writes a standalone HTML report to w.
func WriteHTML(w io.Writer, m *loadtest.LoadTestMetrics, info RunInfo) error {
	html, err := GenerateHTMLString(m, info)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, html); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}

// GenerateHTML generates an HTML report and writes it to a file.
func GenerateHTML(m *loadtest.LoadTestMetrics, info RunInfo, outputPath string) error {
	html, err := GenerateHTMLString(m, info)
	if err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}

	return nil
}

// GenerateHTMLString generates an HTML report and returns it as a string.
func GenerateHTMLString(m *loadtest.LoadTestMetrics, info RunInfo) (string, error) {
	if m == nil {
		return "", fmt.Errorf("metrics cannot be nil")
	}

	tmpl, err := template.New("report").Funcs(templateFuncs()).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := htmlData{
		Run:         info,
		Metrics:     m,
		StatusCodes: SortedStatusCodes(m.StatusCodeDistribution),
		Errors:      SortedErrors(m.ErrorDistribution),
		Histogram:   histogramBars(m.LatencyHistogram),
		GeneratedAt: time.Now(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func histogramBars(buckets []loadtest.LatencyBucket) []histogramBar {
	var total int64
	for _, b := range buckets {
		total += b.Count
	}

	bars := make([]histogramBar, 0, len(buckets))
	for _, b := range buckets {
		bar := histogramBar{FromMs: b.FromMs, ToMs: b.ToMs, Count: b.Count}
		if total > 0 {
			bar.Percent = float64(b.Count) / float64(total) * 100
		}
		bars = append(bars, bar)
	}
	return bars
}

// templateFuncs returns the template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatMs":    formatMs,
		"formatBytes": formatBytes,
		"statusLabel": statusLabel,
		"isFailure":   func(code int) bool { return code == 0 || code >= 400 },
		"toFloat":     func(n int64) float64 { return float64(n) },
		"formatTime":  func(t time.Time) string { return t.Format(time.RFC1123) },
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Run.Method}} {{.Run.URL}} - Load Test Report</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f4f6f8; color: #1f2933; }
  header { background: #1f2933; color: #fff; padding: 24px 32px; }
  header h1 { margin: 0 0 8px; font-size: 22px; }
  header p { margin: 2px 0; color: #cbd2d9; font-size: 14px; }
  main { padding: 24px 32px; }
  .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; margin-bottom: 24px; }
  .card { background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  .card .label { font-size: 12px; text-transform: uppercase; color: #7b8794; }
  .card .value { font-size: 24px; font-weight: 600; margin-top: 6px; }
  .ok { color: #2f855a; }
  .fail { color: #c53030; }
  section { background: #fff; border-radius: 8px; padding: 16px 20px; margin-bottom: 24px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  h2 { font-size: 16px; margin: 0 0 12px; }
  table { width: 100%; border-collapse: collapse; font-size: 14px; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #e4e7eb; }
  th { color: #52606d; font-weight: 600; }
  .bar { background: #3e8ed0; height: 10px; border-radius: 2px; }
  .empty { color: #7b8794; font-style: italic; }
</style>
</head>
<body>
<header>
  <h1>{{.Run.Method}} {{.Run.URL}}</h1>
  <p>{{.Run.Concurrency}} workers, {{.Run.TotalRequests}} requests, timeout {{.Run.Timeout}}</p>
  {{if not .Run.StartedAt.IsZero}}<p>Started {{formatTime .Run.StartedAt}}</p>{{end}}
</header>
<main>
  <div class="cards">
    <div class="card"><div class="label">Total Requests</div><div class="value">{{.Metrics.TotalRequests}}</div></div>
    <div class="card"><div class="label">Successful</div><div class="value ok">{{.Metrics.SuccessfulRequests}}</div></div>
    <div class="card"><div class="label">Failed</div><div class="value{{if gt .Metrics.FailedRequests 0}} fail{{end}}">{{.Metrics.FailedRequests}}</div></div>
    <div class="card"><div class="label">Error Rate</div><div class="value">{{printf "%.2f" .Metrics.ErrorRatePercent}}%</div></div>
    <div class="card"><div class="label">Requests/sec</div><div class="value">{{printf "%.2f" .Metrics.RequestsPerSecond}}</div></div>
    <div class="card"><div class="label">Throughput</div><div class="value">{{formatBytes .Metrics.ThroughputBytesPerSecond}}/s</div></div>
    <div class="card"><div class="label">Total Time</div><div class="value">{{printf "%.3f" .Metrics.TotalTimeSeconds}} s</div></div>
    <div class="card"><div class="label">Data Received</div><div class="value">{{formatBytes (toFloat .Metrics.TotalBytesReceived)}}</div></div>
  </div>

  <section>
    <h2>Response Times</h2>
    <table>
      <tr><th>Min</th><th>Avg</th><th>Median</th><th>P95</th><th>P99</th><th>Max</th></tr>
      <tr>
        <td>{{formatMs .Metrics.MinResponseTimeMs}}</td>
        <td>{{formatMs .Metrics.AvgResponseTimeMs}}</td>
        <td>{{formatMs .Metrics.MedianResponseTimeMs}}</td>
        <td>{{formatMs .Metrics.P95ResponseTimeMs}}</td>
        <td>{{formatMs .Metrics.P99ResponseTimeMs}}</td>
        <td>{{formatMs .Metrics.MaxResponseTimeMs}}</td>
      </tr>
    </table>
  </section>

  <section>
    <h2>Latency Distribution</h2>
    {{if .Histogram}}
    <table>
      <tr><th>Range</th><th>Count</th><th style="width:50%"></th></tr>
      {{range .Histogram}}
      <tr>
        <td>{{printf "%.2f" .FromMs}} - {{printf "%.2f" .ToMs}} ms</td>
        <td>{{.Count}}</td>
        <td><div class="bar" style="width: {{printf "%.1f" .Percent}}%"></div></td>
      </tr>
      {{end}}
    </table>
    {{else}}<p class="empty">No requests were recorded.</p>{{end}}
  </section>

  <section>
    <h2>Status Codes</h2>
    {{if .StatusCodes}}
    <table>
      <tr><th>Status</th><th>Count</th></tr>
      {{range .StatusCodes}}<tr><td class="{{if isFailure .Code}}fail{{else}}ok{{end}}">{{statusLabel .Code}}</td><td>{{.Count}}</td></tr>
      {{end}}
    </table>
    {{else}}<p class="empty">No responses.</p>{{end}}
  </section>

  <section>
    <h2>Errors</h2>
    {{if .Errors}}
    <table>
      <tr><th>Count</th><th>Message</th></tr>
      {{range .Errors}}<tr><td>{{.Count}}</td><td class="fail">{{.Message}}</td></tr>
      {{end}}
    </table>
    {{else}}<p class="empty">No errors.</p>{{end}}
  </section>
</main>
<footer style="padding: 0 32px 24px; color: #7b8794; font-size: 12px;">Generated {{formatTime .GeneratedAt}}</footer>
</body>
</html>
`
