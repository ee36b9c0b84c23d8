package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"mentor-pulse/internal/config"
	"mentor-pulse/internal/db"
	"mentor-pulse/internal/email"
	apihttp "mentor-pulse/internal/http"
	"mentor-pulse/internal/llm"
	"mentor-pulse/internal/repository"
	"mentor-pulse/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
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

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("schema bootstrap", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	interactionRepo := repository.NewPgInteractionRepository(pool)
	signalRepo := repository.NewPgSignalRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	alertRepo := repository.NewPgAlertRepository(pool)
	networkRepo := repository.NewPgCareNetworkRepository(pool)
	bookingRepo := repository.NewPgBookingRepository(pool)
	pointsRepo := repository.NewPgPointsRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter  service.OTPRateLimiter
		tokenStore  service.RefreshTokenStore
		cooldown    service.CooldownGuard
		leaderboard service.LeaderboardCache
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			cooldown = service.NewRedisCooldownGuard(redisClient)
			leaderboard = service.NewRedisLeaderboardCache(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)

	window := time.Duration(cfg.StruggleWindowHours) * time.Hour

	extractorCfg := service.DefaultExtractorConfig()
	extractorCfg.Lookback = window
	extractorCfg.RepeatedTopicMin = cfg.RepeatedTopicMin
	extractorCfg.LatencyRatioMin = cfg.LatencyRatioMin
	extractorCfg.BaselineLatencyMS = cfg.BaselineLatencyMS
	extractorCfg.SentimentCutoff = cfg.SentimentCutoff
	extractorCfg.EngagementCutoff = cfg.EngagementDropCutoff

	pointsSvc := service.NewPointsService(pointsRepo, leaderboard, logger)
	extractor := service.NewSignalExtractor(signalRepo, interactionRepo, service.DefaultLexicon(), extractorCfg, logger)
	aggregator := service.NewScoreAggregator(signalRepo, profileRepo, userRepo, service.DefaultWeightTable(), window, logger)
	dispatcher := service.NewAlertDispatcher(profileRepo, networkRepo, alertRepo, userRepo, cooldown, service.DispatcherConfig{
		Cooldown:      time.Duration(cfg.AlertCooldownHours) * time.Hour,
		CriticalScore: cfg.AlertCriticalScore,
	}, logger)
	pipeline := service.NewStrugglePipeline(extractor, aggregator, dispatcher, pointsSvc, logger)

	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter)
	tutorSvc := service.NewTutorService(llmClient, interactionRepo, pipeline, pointsSvc, logger)
	alertSvc := service.NewAlertService(alertRepo, userRepo)
	bookingSvc := service.NewBookingService(bookingRepo, networkRepo, pointsSvc, logger)
	insightSvc := service.NewInsightService(profileRepo, signalRepo)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	tutorHandler := apihttp.NewTutorHandler(logger, userSvc, tutorSvc)
	alertHandler := apihttp.NewAlertHandler(logger, alertSvc)
	bookingHandler := apihttp.NewBookingHandler(logger, bookingSvc)
	leaderboardHandler := apihttp.NewLeaderboardHandler(logger, pointsSvc)
	adminHandler := apihttp.NewAdminHandler(logger, insightSvc)

	router := apihttp.NewRouter(logger, pool, jwtSvc, userHandler, tutorHandler, alertHandler, bookingHandler, leaderboardHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
