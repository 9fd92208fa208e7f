package server

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/mod/semver"

	"github.com/abhisek/spansk/internal/logger"
)

const (
	// userIDHeader carries the caller's identity, set by the auth gateway
	// in front of the service.
	userIDHeader        = "X-User-ID"
	clientVersionHeader = "X-Client-Version"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the authenticated caller, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// responseWriter records the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := wrap(w)
		next.ServeHTTP(ww, r)
		logger.Request(r.Method, r.URL.Path, ww.statusCode, time.Since(start))
	})
}

// monitor records request counts and latency per route template so path
// parameters do not explode label cardinality.
func (s *Server) monitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := wrap(w)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(ww.statusCode)).Inc()
		s.metrics.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())

		switch ww.statusCode {
		case http.StatusUnauthorized:
			s.metrics.AuthRejections.WithLabelValues("401_unauthorized").Inc()
		case http.StatusForbidden:
			s.metrics.AuthRejections.WithLabelValues("403_forbidden").Inc()
		}
	})
}

// identify stores the gateway-provided user ID on the request context.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(userIDHeader)); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			respondWithError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserID(r.Context())
		if !s.cfg.AdminIDs.Contains(id) {
			respondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit counts requests per user, or per client IP for anonymous
// callers. Counter store failures let the request through.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		key := "ip:" + clientIP(r)
		if id, ok := UserID(r.Context()); ok {
			key = "user:" + id
		}

		d, err := s.limiter.Allow(r.Context(), key)
		if err != nil {
			logger.Warning("rate limiter: %v", err)
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			if s.metrics != nil {
				s.metrics.RateLimited.Inc()
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter(s.now()).Seconds())))
			respondWithError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requireClientVersion rejects clients older than the configured minimum.
// Requests without a version header pass.
func (s *Server) requireClientVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		minVersion := s.cfg.MinClientVersion
		v := strings.TrimSpace(r.Header.Get(clientVersionHeader))
		if minVersion == "" || v == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		if !semver.IsValid(v) {
			respondWithError(w, http.StatusBadRequest, "Invalid client version")
			return
		}
		if semver.Compare(v, minVersion) < 0 {
			respondWithJSON(w, http.StatusUpgradeRequired, map[string]string{
				"error":       "Please update the app",
				"min_version": minVersion,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// basicAuth protects /metrics when credentials are configured.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.MetricsUser == "" && s.cfg.MetricsPass == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.MetricsUser)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.MetricsPass)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
