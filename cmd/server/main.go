package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"hoctap-backend/internal/config"
	"hoctap-backend/internal/database"
	"hoctap-backend/internal/handlers"
	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/observability"
	"hoctap-backend/internal/repository"
	"hoctap-backend/internal/router"
	"hoctap-backend/internal/services"
	"hoctap-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("🚀 Starting Hoctap Backend...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("✗ Invalid configuration", "error", err)
	}
	log.Info("✓ Environment variables loaded", "storage", cfg.StorageType, "model", cfg.GeminiModel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Tracing ────
	shutdownTracing, err := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  "hoctap-backend",
		Environment:  cfg.Env,
		Exporter:     cfg.OTelExporter,
		OTLPEndpoint: cfg.OTelOTLPEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal("✗ Tracing initialization failed", "error", err)
	}

	// ──── Step 3: Initialize Redis Clients ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		redisClients, err = database.NewRedisClients(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("✗ Redis connection failed", "error", err)
		}
		defer redisClients.Close()
		log.Info("✓ Redis connected")
	}

	// ──── Step 4: Message Log Storage ────
	var messageRepo repository.MessageRepository
	switch cfg.StorageType {
	case config.StoragePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("✗ PostgreSQL connection failed", "error", err)
		}
		defer pool.Close()
		log.Info("✓ PostgreSQL connected")

		if err := database.RunMigrations(ctx, pool, cfg.MigrationsPath, log); err != nil {
			log.Fatal("✗ Database migration failed", "error", err)
		}
		log.Info("✓ Database migrations applied")
		messageRepo = repository.NewPostgresMessageRepo(pool)
	case config.StorageRedis:
		messageRepo = repository.NewRedisMessageRepo(redisClients.Main, cfg.MessageLogCapacity)
	default:
		messageRepo = repository.NewMemoryMessageRepo(cfg.MessageLogCapacity)
	}
	log.Info("✓ Message log ready", "storage", cfg.StorageType, "capacity", cfg.MessageLogCapacity)

	// ──── Step 5: Initialize Gemini Client ────
	gemini, err := services.NewGeminiClient(services.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		Temperature:     cfg.GeminiTemperature,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
		ConcurrentReqs:  cfg.GeminiConcurrentReqs,
		Timeout:         cfg.GeminiTimeout,
	}, log)
	if err != nil {
		log.Fatal("✗ Gemini client initialization failed", "error", err)
	}
	defer gemini.Close()
	log.Info("✓ Gemini client initialized", "model", cfg.GeminiModel)

	// ──── Step 6: WebSocket Hub ────
	var hub *websocket.Hub
	if redisClients != nil {
		hub = websocket.NewHub(redisClients.PubSub, cfg.FrontendURL, log)
	} else {
		hub = websocket.NewHub(nil, cfg.FrontendURL, log)
	}
	log.Info("✓ WebSocket hub started")

	// ──── Step 7: Services and Handlers ────
	chatLog := services.NewChatLog(messageRepo, hub, log)
	if err := chatLog.Ensure(ctx); err != nil {
		log.Fatal("✗ Message log unavailable", "error", err)
	}

	var explainCache services.ExplanationCache
	if redisClients != nil {
		explainCache = repository.NewExplanationCache(redisClients.Main, cfg.ExplainCacheTTL)
	}
	tutor := services.NewTutorService(gemini, chatLog, explainCache, log)

	handler := router.New(
		handlers.NewTutorHandler(tutor, log),
		handlers.NewMessageHandler(chatLog, log),
		hub.HandleWebSocket,
		router.Options{FrontendURL: cfg.FrontendURL, MaxBodyBytes: cfg.MaxBodyBytes},
	)

	// ──── Step 8: Start HTTP Server ────
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GeminiTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(fmt.Sprintf("✓ Hoctap Backend ready on http://localhost:%s", cfg.Port))
		log.Info(fmt.Sprintf("  API: http://localhost:%s/api", cfg.Port))
		log.Info(fmt.Sprintf("  WS:  ws://localhost:%s/api/ws", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		hub.Close()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", "error", err)
	}

	tracingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(tracingCtx); err != nil {
		log.Warn("Tracing shutdown failed", "error", err)
	}
	log.Info("Bye")
}
