package loadtest

// RequestResult is the outcome of a single request. It is created once by
// an Executor and never modified afterwards.
type RequestResult struct {
	// Success is true for responses with a 2xx or 3xx status
	Success bool `json:"success"`

	// StatusCode is the response status; 0 means no response was received
	StatusCode int `json:"statusCode"`

	// ResponseTimeMs is the time from dispatch until the body was drained
	ResponseTimeMs float64 `json:"responseTimeMs"`

	// ResponseSizeBytes is the length of the complete response body
	ResponseSizeBytes int64 `json:"responseSizeBytes"`

	// ErrorMessage describes the failure; empty iff Success
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// LoadTestMetrics are the aggregate statistics of one run.
type LoadTestMetrics struct {
	TotalRequests      int     `json:"totalRequests"`
	SuccessfulRequests int     `json:"successfulRequests"`
	FailedRequests     int     `json:"failedRequests"`
	TotalTimeSeconds   float64 `json:"totalTimeSeconds"`

	MinResponseTimeMs    float64 `json:"minResponseTimeMs"`
	MaxResponseTimeMs    float64 `json:"maxResponseTimeMs"`
	AvgResponseTimeMs    float64 `json:"avgResponseTimeMs"`
	MedianResponseTimeMs float64 `json:"medianResponseTimeMs"`
	P95ResponseTimeMs    float64 `json:"p95ResponseTimeMs"`
	P99ResponseTimeMs    float64 `json:"p99ResponseTimeMs"`

	RequestsPerSecond        float64 `json:"requestsPerSecond"`
	ThroughputBytesPerSecond float64 `json:"throughputBytesPerSecond"`
	TotalBytesReceived       int64   `json:"totalBytesReceived"`
	ErrorRatePercent         float64 `json:"errorRatePercent"`

	// StatusCodeDistribution counts results per status code (0 = no response)
	StatusCodeDistribution map[int]int `json:"statusCodeDistribution"`

	// ErrorDistribution counts failed results per verbatim error message
	ErrorDistribution map[string]int `json:"errorDistribution"`

	// LatencyHistogram holds the non-empty HDR histogram buckets, ascending
	LatencyHistogram []LatencyBucket `json:"latencyHistogram"`
}

// LatencyBucket is one bar of the latency histogram.
type LatencyBucket struct {
	FromMs float64 `json:"fromMs"`
	ToMs   float64 `json:"toMs"`
	Count  int64   `json:"count"`
}
