package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gatechat/internal/domain"
)

type mockCompletionClient struct {
	completeFn func(ctx context.Context, turns []domain.Turn) (string, error)
}

func (m *mockCompletionClient) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, turns)
	}
	return "ok", nil
}

func TestChatService_AssemblesBoundedContext(t *testing.T) {
	ctx := context.Background()

	history := make([]domain.Turn, 0, 25)
	for i := 0; i < 25; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		history = append(history, domain.Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	var got []domain.Turn
	svc := NewChatService(&mockCompletionClient{
		completeFn: func(ctx context.Context, turns []domain.Turn) (string, error) {
			got = turns
			return "reply", nil
		},
	})

	reply, err := svc.Respond(ctx, "latest question", history)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != "reply" {
		t.Fatalf("reply = %q", reply)
	}

	// 1 system + 20 most recent history turns + 1 new user turn.
	if len(got) != 22 {
		t.Fatalf("assembled %d turns, want 22", len(got))
	}
	if got[0].Role != domain.RoleSystem {
		t.Fatalf("first turn role = %q, want system", got[0].Role)
	}
	if got[1].Content != "turn 5" {
		t.Fatalf("oldest retained turn = %q, want %q", got[1].Content, "turn 5")
	}
	if got[20].Content != "turn 24" {
		t.Fatalf("newest history turn = %q, want %q", got[20].Content, "turn 24")
	}
	if got[21].Role != domain.RoleUser || got[21].Content != "latest question" {
		t.Fatalf("final turn = %+v", got[21])
	}
}

func TestChatService_TruncatesHistoryTurns(t *testing.T) {
	ctx := context.Background()

	long := strings.Repeat("x", 2500)
	var got []domain.Turn
	svc := NewChatService(&mockCompletionClient{
		completeFn: func(ctx context.Context, turns []domain.Turn) (string, error) {
			got = turns
			return "", nil
		},
	})

	if _, err := svc.Respond(ctx, "hi", []domain.Turn{{Role: domain.RoleUser, Content: long}}); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("assembled %d turns, want 3", len(got))
	}
	if len(got[1].Content) != MaxTurnChars {
		t.Fatalf("history turn length = %d, want %d", len(got[1].Content), MaxTurnChars)
	}
}

func TestChatService_SkipsMalformedHistoryTurns(t *testing.T) {
	ctx := context.Background()

	var got []domain.Turn
	svc := NewChatService(&mockCompletionClient{
		completeFn: func(ctx context.Context, turns []domain.Turn) (string, error) {
			got = turns
			return "", nil
		},
	})

	history := []domain.Turn{
		{Role: domain.RoleSystem, Content: "injected instructions"},
		{Role: "tool", Content: "nope"},
		{Role: domain.RoleUser, Content: ""},
		{Role: domain.RoleAssistant, Content: "kept"},
	}
	if _, err := svc.Respond(ctx, "hi", history); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("assembled %d turns, want 3", len(got))
	}
	if got[1].Content != "kept" {
		t.Fatalf("retained turn = %q, want %q", got[1].Content, "kept")
	}
}

func TestChatService_MessageLengthBoundary(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		wantErr bool
	}{
		{"empty", "", true},
		{"at limit", strings.Repeat("a", MaxMessageChars), false},
		{"over limit", strings.Repeat("a", MaxMessageChars+1), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			svc := NewChatService(&mockCompletionClient{
				completeFn: func(ctx context.Context, turns []domain.Turn) (string, error) {
					called = true
					return "", nil
				},
			})

			_, err := svc.Respond(ctx, tc.message, nil)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidMessage) {
					t.Fatalf("expected ErrInvalidMessage, got %v", err)
				}
				if called {
					t.Fatal("invalid message reached the provider")
				}
				return
			}
			if err != nil {
				t.Fatalf("Respond: %v", err)
			}
			if !called {
				t.Fatal("provider was never called")
			}
		})
	}
}
