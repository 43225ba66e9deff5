// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/casemap/internal/logging"
)

// Auth rejects requests whose bearer token does not match token.
func Auth(token string, log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing authorization"})
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn("rejected api token", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid api token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}
