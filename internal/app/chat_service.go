package app

import (
	"context"
	"errors"
	"unicode/utf8"

	"gatechat/internal/domain"
)

// Context assembly bounds. The provider request can never grow past one
// system turn, MaxHistoryTurns truncated history turns, and one user turn.
const (
	MaxMessageChars = 4000
	MaxHistoryTurns = 20
	MaxTurnChars    = 2000
)

const systemPrompt = "You are a helpful AI assistant. You can speak Korean fluently. " +
	"Respond in the same language as the user's input. Provide clear, accurate, " +
	"and helpful responses. When asked about well-known people like Sam Altman " +
	"(CEO of OpenAI), provide accurate information."

// ErrInvalidMessage indicates a missing or oversized chat message.
var ErrInvalidMessage = errors.New("message is required and must be at most 4000 characters")

// ChatService turns a user message plus prior conversation into one
// assistant reply via the completion provider.
type ChatService struct {
	client domain.CompletionClient
}

// NewChatService creates a ChatService backed by the given provider client.
func NewChatService(client domain.CompletionClient) *ChatService {
	return &ChatService{client: client}
}

// Respond validates the message, assembles the bounded provider context,
// and requests a completion. Validation failures never reach the provider.
func (s *ChatService) Respond(ctx context.Context, message string, history []domain.Turn) (string, error) {
	if message == "" || utf8.RuneCountInString(message) > MaxMessageChars {
		return "", ErrInvalidMessage
	}
	return s.client.Complete(ctx, assemble(message, history))
}

// assemble builds the message sequence sent to the provider: the fixed
// system instruction, the most recent MaxHistoryTurns history entries in
// original order with each truncated to MaxTurnChars, then the new user
// message. Entries with an unknown role or empty content are skipped.
func assemble(message string, history []domain.Turn) []domain.Turn {
	turns := make([]domain.Turn, 0, len(history)+2)
	turns = append(turns, domain.Turn{Role: domain.RoleSystem, Content: systemPrompt})

	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	for _, t := range history {
		if t.Content == "" || (t.Role != domain.RoleUser && t.Role != domain.RoleAssistant) {
			continue
		}
		turns = append(turns, domain.Turn{Role: t.Role, Content: truncate(t.Content, MaxTurnChars)})
	}

	return append(turns, domain.Turn{Role: domain.RoleUser, Content: message})
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
