package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mimohealth/triage/internal/api"
	"github.com/mimohealth/triage/internal/config"
	"github.com/mimohealth/triage/internal/knowledge"
	"github.com/mimohealth/triage/internal/provider"
	"github.com/mimohealth/triage/internal/session"
	"github.com/mimohealth/triage/internal/transcript"
	"github.com/mimohealth/triage/internal/triage"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting triage server...")

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/triage.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// Build the provider fallback chain in configured order.
	var providers []provider.Provider
	for _, pc := range cfg.Providers {
		provCfg := provider.Config{
			ID: pc.ID, Type: pc.Type, Name: pc.Name,
			Endpoint: pc.Endpoint, APIKey: pc.APIKey, Model: pc.Model,
			Timeout: time.Duration(pc.TimeoutSeconds) * time.Second,
		}
		switch pc.Type {
		case "openai":
			providers = append(providers, provider.NewOpenAIClient(provCfg, logger))
		case "anthropic":
			providers = append(providers, provider.NewAnthropicClient(provCfg, logger))
		default:
			logger.Warn("unknown provider type", zap.String("id", pc.ID), zap.String("type", pc.Type))
		}
	}
	chain := provider.NewChain(providers,
		time.Duration(cfg.Triage.AttemptTimeoutSeconds)*time.Second, logger)
	logger.Info("Provider chain built", zap.Int("providers", chain.Len()))

	// Initialize knowledge graph store
	var graph triage.GraphStore
	kg, err := knowledge.NewStore(cfg.Database.Neo4j.URI, cfg.Database.Neo4j.User, cfg.Database.Neo4j.Password, logger)
	if err != nil {
		logger.Warn("Neo4j unavailable, running in fallback-only mode", zap.Error(err))
	} else {
		graph = kg
	}

	// Initialize session store: Redis when configured, in-process otherwise.
	var sessions session.Store
	var redisStore *session.RedisStore
	if cfg.Database.Redis.URL != "" {
		rs, rErr := session.NewRedisStore(cfg.Database.Redis.URL, logger)
		if rErr != nil {
			logger.Warn("Redis unavailable, sessions will not survive restarts", zap.Error(rErr))
		} else {
			redisStore = rs
		}
	}
	if redisStore != nil {
		sessions = redisStore
	} else {
		sessions = session.NewInMemoryStore()
	}

	// Initialize transcript store
	var transcripts *transcript.Store
	if cfg.Database.Postgres.DSN != "" {
		ts, pgErr := transcript.New(cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without transcripts", zap.Error(pgErr))
		} else {
			if mErr := ts.Migrate(context.Background(), "migrations"); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			transcripts = ts
		}
	}

	// Build the engine; vocabulary snapshot happens here.
	engine := triage.NewEngine(context.Background(), graph, sessions, chain, logger)

	handler := api.NewHandler(engine, transcripts, chain, logger)

	// Start server
	port := fmt.Sprintf("%d", cfg.Server.Port)
	if port == "0" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Triage server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down triage server...")
	ctx := context.Background()
	srv.Shutdown(ctx)
	if kg != nil {
		kg.Close(ctx)
	}
	if redisStore != nil {
		redisStore.Close()
	}
	if transcripts != nil {
		transcripts.Close()
	}
}
