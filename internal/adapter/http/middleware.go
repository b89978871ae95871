package adapthttp

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"gatechat/internal/app"
	"gatechat/internal/domain"
)

type contextKey string

const sessionContextKey contextKey = "session"

// requireAuth validates the session cookie and authorizes the request.
// An expired session is destroyed and its cookie cleared so the stale
// token can never be replayed.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := s.cookies.token(r)
		if !ok {
			writeAPIError(w, http.StatusUnauthorized, codeAuthRequired, "Authentication required")
			return
		}

		session, err := s.auth.ValidateSession(r.Context(), token)
		switch {
		case err == app.ErrSessionNotFound:
			writeAPIError(w, http.StatusUnauthorized, codeAuthRequired, "Authentication required")
			return
		case err == app.ErrSessionExpired:
			s.cookies.clear(w)
			writeAPIError(w, http.StatusUnauthorized, codeSessionExpired, "Your session has expired. Please login again.")
			return
		case err != nil:
			writeAPIError(w, http.StatusInternalServerError, codeInternalError, "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit throttles requests per client IP against the given bucket.
func (s *Server) rateLimit(b app.Bucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.limiter.Allow(r.Context(), b, clientIP(r))
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, codeInternalError, "Internal server error")
			return
		}
		if !ok {
			writeAPIError(w, http.StatusTooManyRequests, codeRateLimited, b.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware restricts cross-origin access to the configured
// front-end origin (production) or local development origins.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]bool{}
	if s.opts.Production {
		if s.opts.FrontendURL != "" {
			allowed[s.opts.FrontendURL] = true
		}
	} else {
		for _, o := range []string{"http://localhost:3000", "http://localhost:3001", "http://127.0.0.1:3000"} {
			allowed[o] = true
		}
		if s.opts.FrontendURL != "" {
			allowed[s.opts.FrontendURL] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs method, path, status, and duration per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func sessionFrom(ctx context.Context) *domain.Session {
	if s, ok := ctx.Value(sessionContextKey).(*domain.Session); ok {
		return s
	}
	return nil
}
