package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("CHAT_PASSWORD", "hunter2")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.Model != "gpt-4-turbo-preview" {
		t.Fatalf("Model = %q", cfg.Model)
	}
	if cfg.MaxTokens != 1000 {
		t.Fatalf("MaxTokens = %d", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Fatalf("Temperature = %v", cfg.Temperature)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.Production() {
		t.Fatal("default env must not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Production() {
		t.Fatal("Production() = false")
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.OpenAIBaseURL != "http://localhost:8080/v1" {
		t.Fatalf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("CHAT_PASSWORD", "hunter2")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without OPENAI_API_KEY")
	}
}

func TestLoadRequiresSomePassword(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("CHAT_PASSWORD", "")
	t.Setenv("CHAT_PASSWORD_HASH", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without any chat password")
	}
}

func TestLoadAcceptsHashOnly(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("CHAT_PASSWORD", "")
	t.Setenv("CHAT_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
