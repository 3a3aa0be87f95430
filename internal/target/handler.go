// Package target implements a small HTTP server to point volley at during
// local testing. Its endpoints produce fixed statuses, delays and failure
// ratios so every outcome class of a run can be reproduced.
package target

import (
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxDelay bounds the /delay endpoint.
const maxDelay = time.Minute

// NewHandler returns the target's routes:
//
//	GET  /health              200 "healthy"
//	GET  /status/{code}       responds with code
//	GET  /delay/{ms}          sleeps, then 200
//	GET  /flaky?fail=N        500 for roughly N percent of requests
//	ANY  /echo                echoes method, headers and body as JSON
func NewHandler(logger log.Logger) http.Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "healthy")
	})

	mux.HandleFunc("GET /status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil || code < 100 || code > 599 {
			http.Error(w, "invalid status code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(code)
		io.WriteString(w, http.StatusText(code))
	})

	mux.HandleFunc("GET /delay/{ms}", func(w http.ResponseWriter, r *http.Request) {
		ms, err := strconv.Atoi(r.PathValue("ms"))
		if err != nil || ms < 0 {
			http.Error(w, "invalid delay", http.StatusBadRequest)
			return
		}

		delay := min(time.Duration(ms)*time.Millisecond, maxDelay)
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		io.WriteString(w, "OK")
	})

	mux.HandleFunc("GET /flaky", func(w http.ResponseWriter, r *http.Request) {
		fail, err := strconv.Atoi(r.URL.Query().Get("fail"))
		if err != nil || fail < 0 || fail > 100 {
			http.Error(w, "fail must be a percentage", http.StatusBadRequest)
			return
		}
		if rand.IntN(100) < fail {
			http.Error(w, "induced failure", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "OK")
	})

	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"method":  r.Method,
			"headers": r.Header,
			"body":    string(body),
		})
	})

	return accessLog(logger, mux)
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(logger log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		level.Debug(logger).Log(
			"msg", "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// NewServer returns an http.Server serving NewHandler on addr, tuned for
// high request rates.
func NewServer(addr string, logger log.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(logger),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      maxDelay + 5*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
	}
}
