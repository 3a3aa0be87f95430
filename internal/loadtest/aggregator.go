package loadtest

import (
	"math"
	"sort"
	"time"
)

// Aggregate computes the metrics of a run from its complete result set and
// the wall-clock time the scheduler took.
//
// Response times of failed requests are included in the latency
// statistics. An empty result set yields zero metrics.
func Aggregate(results []RequestResult, elapsed time.Duration) *LoadTestMetrics {
	m := &LoadTestMetrics{
		StatusCodeDistribution: make(map[int]int),
		ErrorDistribution:      make(map[string]int),
		LatencyHistogram:       []LatencyBucket{},
	}
	if len(results) == 0 {
		return m
	}

	times := make([]float64, len(results))
	var totalBytes int64
	var sum float64

	for i, r := range results {
		times[i] = r.ResponseTimeMs
		sum += r.ResponseTimeMs
		totalBytes += r.ResponseSizeBytes

		m.StatusCodeDistribution[r.StatusCode]++
		if r.Success {
			m.SuccessfulRequests++
		} else {
			m.ErrorDistribution[r.ErrorMessage]++
		}
	}
	sort.Float64s(times)

	total := len(results)
	seconds := elapsed.Seconds()

	m.TotalRequests = total
	m.FailedRequests = total - m.SuccessfulRequests
	m.TotalTimeSeconds = seconds
	m.TotalBytesReceived = totalBytes

	m.MinResponseTimeMs = times[0]
	m.MaxResponseTimeMs = times[total-1]
	m.AvgResponseTimeMs = sum / float64(total)
	m.MedianResponseTimeMs = Median(times)
	m.P95ResponseTimeMs = Percentile(times, 95)
	m.P99ResponseTimeMs = Percentile(times, 99)

	if seconds > 0 {
		m.RequestsPerSecond = float64(total) / seconds
		m.ThroughputBytesPerSecond = float64(totalBytes) / seconds
	}
	m.ErrorRatePercent = float64(m.FailedRequests) / float64(total) * 100

	m.LatencyHistogram = latencyHistogram(times)

	return m
}

// Percentile returns the p-th percentile (0-100) of ascending data using
// linear interpolation between closest ranks:
//
//	k = (n-1) * p/100, f = floor(k), c = min(f+1, n-1)
//	result = data[f] + (k-f) * (data[c]-data[f])
//
// Returns 0 for empty data.
func Percentile(data []float64, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}

	k := float64(n-1) * (p / 100)
	f := int(math.Floor(k))
	if f < 0 {
		return data[0]
	}
	if f > n-1 {
		return data[n-1]
	}
	c := f + 1
	if c > n-1 {
		c = n - 1
	}

	return data[f] + (k-float64(f))*(data[c]-data[f])
}

// Median returns the middle value of ascending data, or the mean of the
// two middle values when len(data) is even. Returns 0 for empty data.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 1 {
		return data[mid]
	}
	return (data[mid-1] + data[mid]) / 2
}
