package loadtest

import (
	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram range in microseconds: 1µs to 1 hour.
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 2
)

// latencyHistogram buckets response times (in milliseconds) with an HDR
// histogram and returns the non-empty bars in ascending order.
func latencyHistogram(timesMs []float64) []LatencyBucket {
	hist := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)

	for _, ms := range timesMs {
		micros := int64(ms * 1000)
		if micros < histogramMin {
			micros = histogramMin
		}
		if micros > histogramMax {
			micros = histogramMax
		}
		// Values are clamped to the trackable range, so this cannot fail.
		_ = hist.RecordValue(micros)
	}

	buckets := []LatencyBucket{}
	for _, bar := range hist.Distribution() {
		if bar.Count == 0 {
			continue
		}
		buckets = append(buckets, LatencyBucket{
			FromMs: float64(bar.From) / 1000,
			ToMs:   float64(bar.To) / 1000,
			Count:  bar.Count,
		})
	}
	return buckets
}
