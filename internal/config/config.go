// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config holds all runtime configuration. Required values abort startup
// when absent so a misconfigured process never begins serving.
type Config struct {
	Addr   string `env:"ADDR,default=:3000"`
	Env    string `env:"APP_ENV,default=development"`
	WebDir string `env:"WEB_DIR,default=public"`

	OpenAIAPIKey  string  `env:"OPENAI_API_KEY,required"`
	OpenAIBaseURL string  `env:"OPENAI_BASE_URL,default=https://api.openai.com/v1"`
	Model         string  `env:"OPENAI_MODEL,default=gpt-4-turbo-preview"`
	MaxTokens     int     `env:"MAX_TOKENS,default=1000"`
	Temperature   float64 `env:"TEMPERATURE,default=0.7"`

	// Exactly one of ChatPassword and ChatPasswordHash must be set; the
	// hash form is a bcrypt digest of the shared password.
	ChatPassword     string `env:"CHAT_PASSWORD"`
	ChatPasswordHash string `env:"CHAT_PASSWORD_HASH"`

	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL,default=24h"`

	FrontendURL string `env:"FRONTEND_URL"`

	// DATABASE_URL selects the postgres session store; REDIS_ADDR selects
	// redis for sessions and rate counters. With neither set, everything
	// lives in process memory.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
}

// Load decodes configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.ChatPassword == "" && cfg.ChatPasswordHash == "" {
		return Config{}, errors.New("config: CHAT_PASSWORD or CHAT_PASSWORD_HASH is required")
	}
	return cfg, nil
}

// Production reports whether the server runs with production hardening
// (secure cookies, strict same-site, single allowed origin).
func (c Config) Production() bool {
	return c.Env == "production"
}
