// ABOUTME: Middleware for the fake backend: chaining, request logging, bearer auth
// ABOUTME: Applies middleware in declaration order (first is outermost)

package fakebackend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type middleware func(http.HandlerFunc) http.HandlerFunc

// chain applies middleware to h. The first middleware is the outermost.
func chain(h http.HandlerFunc, middlewares ...middleware) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// logRequest logs each exchange, echoing the caller's X-Request-ID or
// minting one.
func (s *Server) logRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(wrapped, r)

		s.logger.Debug("Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

type officerKey struct{}

// requireAuth validates the bearer access token and puts the officer on the
// request context. Failures answer 401 in the token_not_valid shape.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.", "")
			return
		}

		c, err := s.tokens.verifyAccess(token)
		if err != nil {
			s.logger.Debug("Access token rejected", "error", err)
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type", "token_not_valid")
			return
		}

		o, ok := s.data.officer(c.OfficerID)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "User not found", "user_not_found")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), officerKey{}, o)))
	}
}

// currentOfficer returns the officer set by requireAuth.
func currentOfficer(r *http.Request) *officerRecord {
	o, _ := r.Context().Value(officerKey{}).(*officerRecord)
	return o
}
