package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"mentor-pulse/internal/config"
	"mentor-pulse/internal/db"
	"mentor-pulse/internal/repository"
	"mentor-pulse/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// struggle_replay reprocesa las interacciones recientes de un usuario:
// vuelve a correr extracción y agregación y deja el perfil recalculado.
// La extracción es idempotente, así que repetir un replay es seguro.
func main() {
	userID := flag.String("user", "", "user id to replay")
	windowHours := flag.Int("window", 24, "lookback window in hours")
	flag.Parse()

	if *userID == "" {
		log.Fatal("usage: struggle_replay -user <id> [-window <hours>]")
	}

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	interactionRepo := repository.NewPgInteractionRepository(pool)
	signalRepo := repository.NewPgSignalRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)

	window := time.Duration(*windowHours) * time.Hour

	extractorCfg := service.DefaultExtractorConfig()
	extractorCfg.Lookback = window
	extractorCfg.SentimentCutoff = cfg.SentimentCutoff
	extractorCfg.RepeatedTopicMin = cfg.RepeatedTopicMin
	extractorCfg.LatencyRatioMin = cfg.LatencyRatioMin
	extractorCfg.BaselineLatencyMS = cfg.BaselineLatencyMS
	extractorCfg.EngagementCutoff = cfg.EngagementDropCutoff

	extractor := service.NewSignalExtractor(signalRepo, interactionRepo, service.DefaultLexicon(), extractorCfg, logger)
	aggregator := service.NewScoreAggregator(signalRepo, profileRepo, userRepo, service.DefaultWeightTable(), window, logger)

	since := time.Now().UTC().Add(-window)
	interactions, err := interactionRepo.ListByUserSince(ctx, *userID, since)
	if err != nil {
		logger.Fatal("list interactions", zap.Error(err))
	}
	if len(interactions) == 0 {
		logger.Info("no interactions in window", zap.String("user_id", *userID))
	}

	created, skipped := 0, 0
	// ListByUserSince devuelve de más reciente a más antigua; el replay
	// procesa en orden cronológico.
	for i := len(interactions) - 1; i >= 0; i-- {
		result, err := extractor.Extract(ctx, interactions[i])
		if err != nil {
			logger.Fatal("extract signals",
				zap.String("interaction_id", interactions[i].ID),
				zap.Error(err),
			)
		}
		created += result.Created
		skipped += result.Skipped
	}

	profile, err := aggregator.Evaluate(ctx, *userID)
	if err != nil {
		logger.Fatal("evaluate profile", zap.Error(err))
	}

	logger.Info("replay finished",
		zap.String("user_id", *userID),
		zap.Int("interactions", len(interactions)),
		zap.Int("signals_created", created),
		zap.Int("signals_skipped", skipped),
		zap.Float64("score", profile.Score),
		zap.String("trend", string(profile.Trend)),
		zap.String("support_level", string(profile.SupportLevel)),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(profile)
}
