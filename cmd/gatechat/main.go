package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapthttp "gatechat/internal/adapter/http"
	"gatechat/internal/adapter/memory"
	"gatechat/internal/adapter/openai"
	"gatechat/internal/adapter/postgres"
	redisstore "gatechat/internal/adapter/redis"
	"gatechat/internal/app"
	"gatechat/internal/config"
	"gatechat/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, counters, cleanup, err := openStores(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer cleanup()

	authSvc := app.NewAuthService(sessions, cfg.ChatPassword, cfg.ChatPasswordHash, cfg.SessionTTL)
	chatSvc := app.NewChatService(openai.New(openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}))
	limiter := app.NewRateLimiter(counters)

	srv := adapthttp.New(authSvc, chatSvc, limiter, adapthttp.Options{
		SessionSecret: cfg.SessionSecret,
		WebDir:        cfg.WebDir,
		Production:    cfg.Production(),
		FrontendURL:   cfg.FrontendURL,
	})

	go sweepExpiredSessions(ctx, authSvc)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s (env: %s, session timeout: %s)", cfg.Addr, cfg.Env, cfg.SessionTTL)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openStores picks the session and rate-counter backends: redis when
// REDIS_ADDR is set, postgres sessions when DATABASE_URL is set, and
// process memory otherwise. Rate counters only ever live in memory or
// redis; they are too short-lived to be worth a database round trip.
func openStores(cfg config.Config) (domain.SessionStore, domain.RateCounterStore, func(), error) {
	if cfg.RedisAddr != "" {
		rs, err := redisstore.New(cfg.RedisAddr, "")
		if err != nil {
			return nil, nil, nil, err
		}
		return rs, rs, func() { _ = rs.Close() }, nil
	}

	mem := memory.New()
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, mem, func() { _ = db.Close() }, nil
	}

	return mem, mem, func() {}, nil
}

func sweepExpiredSessions(ctx context.Context, auth *app.AuthService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.DeleteExpired(ctx); err != nil {
				log.Printf("session sweep: %v", err)
			}
		}
	}
}
