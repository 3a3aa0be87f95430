package target

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/volley/internal/loadtest"
)

func TestHandler_Routes(t *testing.T) {
	h := NewHandler(nil)

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{"GET", "/health", 200, "healthy"},
		{"GET", "/status/204", 204, ""},
		{"GET", "/status/503", 503, "Service Unavailable"},
		{"GET", "/status/abc", 400, "invalid status code"},
		{"GET", "/status/99", 400, "invalid status code"},
		{"GET", "/delay/0", 200, "OK"},
		{"GET", "/delay/-1", 400, "invalid delay"},
		{"GET", "/flaky?fail=0", 200, "OK"},
		{"GET", "/flaky?fail=100", 500, "induced failure"},
		{"GET", "/flaky?fail=101", 400, "percentage"},
		{"POST", "/health", 405, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
			}
		})
	}
}

func TestHandler_Echo(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/echo", strings.NewReader(`{"k":"v"}`))
	req.Header.Set("X-Token", "abc")
	NewHandler(nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Method  string              `json:"method"`
		Headers map[string][]string `json:"headers"`
		Body    string              `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "PUT", got.Method)
	assert.Equal(t, []string{"abc"}, got.Headers["X-Token"])
	assert.Equal(t, `{"k":"v"}`, got.Body)
}

func TestHandler_DelayHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rec := httptest.NewRecorder()
	start := time.Now()
	NewHandler(nil).ServeHTTP(rec, httptest.NewRequest("GET", "/delay/5000", nil).WithContext(ctx))

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, rec.Body.String())
}

func TestTarget_LoadTestOutcomes(t *testing.T) {
	srv := httptest.NewServer(NewHandler(nil))
	defer srv.Close()

	tests := []struct {
		path        string
		wantSuccess int
		wantCode    int
		wantError   string
	}{
		{"/health", 12, 200, ""},
		{"/status/301", 12, 301, ""},
		{"/status/404", 0, 404, "HTTP 404: Not Found"},
		{"/flaky?fail=100", 0, 500, "HTTP 500: Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			cfg := loadtest.DefaultConfig(srv.URL + tt.path)
			cfg.Concurrency = 3
			cfg.TotalRequests = 12

			m, err := loadtest.Run(context.Background(), cfg)
			require.NoError(t, err)

			assert.Equal(t, 12, m.TotalRequests)
			assert.Equal(t, tt.wantSuccess, m.SuccessfulRequests)
			assert.Equal(t, 12, m.StatusCodeDistribution[tt.wantCode])
			if tt.wantError != "" {
				assert.Equal(t, 12, m.ErrorDistribution[tt.wantError])
			}
		})
	}
}
