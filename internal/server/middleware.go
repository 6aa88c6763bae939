package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
	contextKeyUser      contextKey = "user"
	contextKeyAdmin     contextKey = "admin"
)

const headerRequestID = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func (s *Service) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), contextKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"request_id":  requestIDFromContext(r.Context()),
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

func (s *Service) instrument(pattern string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.metrics.ObserveHTTP(r.Method, pattern, strconv.Itoa(rw.statusCode), time.Since(started))
	})
}

// StripTrailingSlash routes /path/ as /path. API clients do not follow
// redirects for POST, so the path is rewritten in place.
func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			r2 := r.Clone(r.Context())
			r2.URL.Path = strings.TrimRight(path, "/")
			if r2.URL.Path == "" {
				r2.URL.Path = "/"
			}
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireUser authenticates a citizen with HTTP Basic credentials: the egn
// and the account password.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		egn, password, ok := r.BasicAuth()
		if !ok {
			s.unauthorized(w, "user")
			return
		}

		user, err := s.authenticateUser(r.Context(), strings.TrimSpace(egn), password)
		if err != nil {
			s.logger.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).Debug("user authentication failed")
			s.unauthorized(w, "user")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin authenticates an active administrator by username and
// password.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			s.unauthorized(w, "admin")
			return
		}

		admin, err := s.authenticateAdmin(r.Context(), strings.TrimSpace(username), password)
		if err != nil {
			s.logger.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).Debug("admin authentication failed")
			s.unauthorized(w, "admin")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyAdmin, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) unauthorized(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`", charset="UTF-8"`)
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "UNAUTHORIZED"})
}
