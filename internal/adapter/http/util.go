package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
)

// Machine-readable error codes returned alongside human messages.
const (
	codeAuthRequired   = "AUTH_REQUIRED"
	codeSessionExpired = "SESSION_EXPIRED"
	codeInvalidInput   = "INVALID_INPUT"
	codeRateLimited    = "RATE_LIMITED"
	codeProviderAuth   = "PROVIDER_AUTH"
	codeProviderBusy   = "PROVIDER_RATE_LIMITED"
	codeInvalidRequest = "INVALID_REQUEST"
	codeProviderError  = "PROVIDER_ERROR"
	codeInternalError  = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"error": message, "code": code})
}

// maxBodyBytes caps request bodies so an oversized payload is refused
// at the transport layer instead of being buffered for validation.
const maxBodyBytes = 10 << 20

func parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// writeParseError distinguishes an oversized body from malformed JSON.
func writeParseError(w http.ResponseWriter, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeAPIError(w, http.StatusRequestEntityTooLarge, codeInvalidInput, "Request body too large")
		return
	}
	writeAPIError(w, http.StatusBadRequest, codeInvalidInput, message)
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// withSecurityHeaders locks scripts and styles to the server's own
// origin. Inline styles and data: images are allowed for the bundled
// front-end.
func withSecurityHeaders(next http.Handler) http.Handler {
	const csp = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", csp)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// spaFromDisk serves the static front-end with index fallback for
// non-API routes.
func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if _, err := os.Stat(staticPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}
