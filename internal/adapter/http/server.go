// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"
	"time"

	"gatechat/internal/app"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP adapter.
type Options struct {
	// SessionSecret signs session cookies so a tampered token is treated
	// as absent.
	SessionSecret string
	// WebDir is served as the static front-end with index fallback.
	WebDir string
	// Production enables secure cookies, strict same-site, and restricts
	// CORS to FrontendURL.
	Production bool
	// FrontendURL, when set, is the only origin allowed cross-origin
	// access in production.
	FrontendURL string
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth    *app.AuthService
	chat    *app.ChatService
	limiter *app.RateLimiter
	cookies cookieCodec
	opts    Options
	started time.Time
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, chat *app.ChatService, limiter *app.RateLimiter, opts Options) *Server {
	return &Server{
		auth:    auth,
		chat:    chat,
		limiter: limiter,
		cookies: cookieCodec{secret: []byte(opts.SessionSecret), production: opts.Production},
		opts:    opts,
		started: time.Now(),
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", s.handleHealth)
	api.Handle("/login", s.rateLimit(app.BucketLogin, http.HandlerFunc(s.handleLogin)))
	api.Handle("/chat", s.requireAuth(s.rateLimit(app.BucketChat, http.HandlerFunc(s.handleChat))))
	api.Handle("/logout", s.requireAuth(http.HandlerFunc(s.handleLogout)))
	api.HandleFunc("/check-auth", s.handleCheckAuth)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", s.rateLimit(app.BucketGeneral, api)))
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/", spaFromDisk(s.opts.WebDir))

	return s.loggingMiddleware(s.corsMiddleware(withSecurityHeaders(withNoCache(root))))
}
