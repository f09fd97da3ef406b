package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexus-ai-chat/internal/config"
	"nexus-ai-chat/internal/domain/ports/adapter"
	aiAdapters "nexus-ai-chat/internal/infra/adapters/ai"
	pg "nexus-ai-chat/internal/infra/db/postgres"
	"nexus-ai-chat/internal/infra/logging"
	"nexus-ai-chat/internal/infra/media"
	"nexus-ai-chat/internal/infra/metrics"
	red "nexus-ai-chat/internal/infra/redis"
	"nexus-ai-chat/internal/infra/sched"
	"nexus-ai-chat/internal/infra/web"
	"nexus-ai-chat/internal/infra/worker"
	"nexus-ai-chat/internal/registry"
	"nexus-ai-chat/internal/reveal"
	"nexus-ai-chat/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	historyStore := red.NewHistoryStore(redisClient)
	sessionCache := red.NewSessionCache(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	sessionRepo := pg.NewSessionRepo(pool, sessionCache)
	identityRepo := pg.NewIdentityRepo(pool)

	// ---- Media ----
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	mediaStore, err := media.NewDiskStore(cfg.Server.MediaDir, baseURL)
	if err != nil {
		log.Fatalf("media: %v", err)
	}

	// ---- Inference adapters ----
	byProvider := map[string]adapter.InferenceAdapter{}
	gemini, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL)
	if err != nil {
		log.Fatalf("gemini adapter: %v", err)
	}
	byProvider[registry.ProviderGoogle] = gemini
	byProvider[registry.ProviderGroq] = aiAdapters.NewGroqAdapter(cfg.AI.GroqKey, cfg.AI.GroqURL)
	byProvider[registry.ProviderHuggingFace] = aiAdapters.NewHuggingFaceAdapter(cfg.AI.HuggingFaceKey, cfg.AI.HuggingFaceURL)
	ai := aiAdapters.NewLimitedInference(aiAdapters.NewMultiAdapter(byProvider, logger), cfg.AI.ConcurrentLimit)

	// ---- Workers ----
	pool2 := worker.NewPool(cfg.Chat.Workers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	retention := sched.NewRetentionWorker(time.Hour, cfg.Chat.RetentionDays, sessionRepo, logger)
	go func() { _ = retention.Run(ctx) }()

	// ---- Hub ----
	hub := usecase.NewHub(ctx, usecase.HubDeps{
		AI:         ai,
		Sessions:   sessionRepo,
		Identities: identityRepo,
		Media:      mediaStore,
		History:    historyStore,
		Pool:       pool2,
		Reveal:     reveal.NewScheduler(cfg.Chat.RevealInterval),
		Log:        logger,
	})
	go func() {
		tick := time.NewTicker(10 * time.Minute)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				if n := hub.Sweep(time.Hour); n > 0 {
					logger.Debug().Int("count", n).Msg("idle clients evicted")
				}
			}
		}
	}()

	// ---- HTTP server ----
	authMgr := web.NewAuthManager(cfg.Auth.JWTSecret, !cfg.Runtime.Dev, "", cfg.Auth.TokenTTL)
	srv := web.NewServer(hub, authMgr, mediaStore, historyStore, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
