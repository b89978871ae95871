package adapthttp

import (
	"log"
	"net/http"
	"time"

	"gatechat/internal/app"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := parseJSON(w, r, &req); err != nil {
		writeParseError(w, err, "Invalid request")
		return
	}
	if req.Password == "" {
		writeAPIError(w, http.StatusBadRequest, codeInvalidInput, "Password is required")
		return
	}

	session, err := s.auth.Login(r.Context(), req.Password)
	if err == app.ErrInvalidCredentials {
		log.Printf("failed login attempt from %s", clientIP(r))
		writeAPIError(w, http.StatusUnauthorized, codeAuthRequired, "Invalid password")
		return
	}
	if err != nil {
		log.Printf("login: %v", err)
		writeAPIError(w, http.StatusInternalServerError, codeInternalError, "Internal server error")
		return
	}

	s.cookies.set(w, session.Token)
	log.Printf("successful login from %s at %s", clientIP(r), session.LoginTime.Format(time.RFC3339))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Login successful",
		"sessionExpiry": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session := sessionFrom(r.Context())

	// The cookie is cleared no matter how the destroy goes; the client
	// must never keep a token the server intended to revoke.
	err := s.auth.Logout(r.Context(), session.Token)
	s.cookies.clear(w)
	if err != nil {
		log.Printf("logout: destroy session: %v", err)
		writeAPIError(w, http.StatusInternalServerError, codeInternalError, "Failed to logout")
		return
	}

	log.Printf("user logged out from %s", clientIP(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token, ok := s.cookies.token(r)
	if ok {
		session, err := s.auth.Peek(r.Context(), token)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, codeInternalError, "Internal server error")
			return
		}
		if session != nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"authenticated": true,
				"loginTime":     session.LoginTime.UTC().Format(time.RFC3339),
				"sessionExpiry": session.ExpiresAt.UTC().Format(time.RFC3339),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Seconds(),
	})
}
