package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/mimohealth/triage/internal/config"
	"github.com/mimohealth/triage/internal/knowledge"
	"go.uber.org/zap"
)

func main() {
	dataset := flag.String("dataset", "data/disorders.json", "Path to the disorder/symptom dataset")
	wipe := flag.Bool("wipe", false, "Delete all graph data before seeding")
	flag.Parse()

	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/triage.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}

	entries, err := knowledge.LoadDataset(*dataset)
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	logger.Info("Dataset loaded", zap.String("path", *dataset), zap.Int("disorders", len(entries)))

	ctx := context.Background()
	store, err := knowledge.NewStore(cfg.Database.Neo4j.URI, cfg.Database.Neo4j.User, cfg.Database.Neo4j.Password, logger)
	if err != nil {
		logger.Fatal("failed to create knowledge store", zap.Error(err))
	}
	defer store.Close(ctx)

	if err := store.Ping(ctx); err != nil {
		logger.Fatal("Neo4j unreachable", zap.Error(err))
	}

	if *wipe {
		if err := store.Wipe(ctx); err != nil {
			logger.Fatal("wipe failed", zap.Error(err))
		}
		logger.Info("Cleared existing graph data")
	}

	if err := store.Seed(ctx, entries); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("Knowledge graph seeding complete")
}
