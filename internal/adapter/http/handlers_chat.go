package adapthttp

import (
	"errors"
	"log"
	"net/http"
	"time"

	"gatechat/internal/app"
	"gatechat/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatechat_chat_requests_total",
	Help: "Chat turns by outcome.",
}, []string{"outcome"})

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Message string `json:"message"`
		// The front-end has sent the prior turns under both names over
		// time; conversation wins when both are present.
		Conversation []domain.Turn `json:"conversation"`
		History      []domain.Turn `json:"history"`
	}
	if err := parseJSON(w, r, &req); err != nil {
		chatRequestsTotal.WithLabelValues("invalid_input").Inc()
		writeParseError(w, err, "Message is required and must be a string")
		return
	}

	history := req.Conversation
	if history == nil {
		history = req.History
	}

	reply, err := s.chat.Respond(r.Context(), req.Message, history)
	if err != nil {
		s.writeChatError(w, err)
		return
	}

	chatRequestsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"response":  reply,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeChatError maps completion failures to stable client-facing
// outcomes. Provider detail stays in the server log.
func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidMessage):
		chatRequestsTotal.WithLabelValues("invalid_input").Inc()
		writeAPIError(w, http.StatusBadRequest, codeInvalidInput, "Message is required and must be at most 4000 characters")
	case errors.Is(err, domain.ErrProviderAuth):
		log.Printf("chat: %v", err)
		chatRequestsTotal.WithLabelValues("provider_auth").Inc()
		writeAPIError(w, http.StatusServiceUnavailable, codeProviderAuth, "Service configuration error")
	case errors.Is(err, domain.ErrProviderRateLimited):
		log.Printf("chat: %v", err)
		chatRequestsTotal.WithLabelValues("provider_rate_limited").Inc()
		writeAPIError(w, http.StatusTooManyRequests, codeProviderBusy, "Service temporarily unavailable. Please try again in a moment.")
	case errors.Is(err, domain.ErrProviderBadRequest):
		log.Printf("chat: %v", err)
		chatRequestsTotal.WithLabelValues("invalid_request").Inc()
		writeAPIError(w, http.StatusBadRequest, codeInvalidRequest, "Invalid request format")
	default:
		log.Printf("chat: %v", err)
		chatRequestsTotal.WithLabelValues("error").Inc()
		writeAPIError(w, http.StatusInternalServerError, codeProviderError, "Failed to process your request. Please try again.")
	}
}
