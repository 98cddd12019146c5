package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// loggingMiddleware shims in a handler middleware that logs requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug(
			"request",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Int64("content_length", r.ContentLength),
			zap.Duration("took", time.Since(start)),
		)
	})
}
