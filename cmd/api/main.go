package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/writediary/writediary/internal/ai"
	"github.com/writediary/writediary/internal/api"
	"github.com/writediary/writediary/internal/audit"
	"github.com/writediary/writediary/internal/auth"
	"github.com/writediary/writediary/internal/config"
	"github.com/writediary/writediary/internal/database"
	"github.com/writediary/writediary/internal/diaries"
	"github.com/writediary/writediary/internal/images"
	"github.com/writediary/writediary/internal/middleware"
	inats "github.com/writediary/writediary/internal/nats"
	iredis "github.com/writediary/writediary/internal/redis"
	"github.com/writediary/writediary/internal/reviewcards"
	"github.com/writediary/writediary/internal/server"
	"github.com/writediary/writediary/internal/usage"
	"github.com/writediary/writediary/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	logger := slog.Default()

	// NATS is optional: without it audit events are dropped, everything
	// else works.
	var natsClient *inats.Client
	var publisher *inats.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())
	}

	// AI model invoker
	aiClient := ai.NewClient(ai.ClientConfig{
		BaseURL:     cfg.AI.Endpoint,
		APIKey:      cfg.AI.APIKey,
		ModelID:     cfg.AI.ModelID,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.RequestTimeout,
	})
	invoker := ai.NewInvoker(aiClient, ai.InvokerConfig{
		MaxAttempts: cfg.AI.MaxAttempts,
		BackoffBase: cfg.AI.BackoffBase,
		RetryPause:  cfg.AI.RetryPause,
	})

	// Users
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo, logger)
	userHandler := users.NewHandler(userSvc)

	// Usage ledger
	usageRepo := usage.NewRepository(pool)
	usageSvc := usage.NewService(usageRepo, userSvc, logger)
	usageHandler := usage.NewHandler(usageSvc)

	// Diaries
	imageStore := images.NewStore(pool)
	diaryRepo := diaries.NewRepository(pool)
	var auditPublisher diaries.AuditPublisher
	if publisher != nil {
		auditPublisher = publisher
		userSvc.SetAuditPublisher(publisher)
		usageSvc.SetAuditPublisher(publisher)
	}
	diarySvc := diaries.NewService(diaryRepo, invoker, usageSvc, userSvc, imageStore,
		auditPublisher, diaries.ServiceConfig{FallbackOriginal: cfg.AI.FallbackOriginal}, logger)
	diaryHandler := diaries.NewHandler(diarySvc)

	// Review cards
	cardRepo := reviewcards.NewRepository(pool)
	cardSvc := reviewcards.NewService(cardRepo, diarySvc, logger)
	cardHandler := reviewcards.NewHandler(cardSvc)
	diarySvc.SetCardSweeper(cardSvc)

	// Audit
	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(auditRepo)

	// Account deletion fans out across every feature's data.
	userSvc.RegisterEraser(cardSvc)
	userSvc.RegisterEraser(diarySvc)
	userSvc.RegisterEraser(usageSvc)
	userSvc.RegisterEraser(eraserFunc(auditRepo.DeleteByUser))

	// Background workers
	janitor := usage.NewJanitor(usageRepo, time.Hour, logger)
	go janitor.Run(ctx)

	if natsClient != nil {
		consumer := audit.NewConsumer(auditRepo, inats.NewConsumerManager(natsClient.JetStream()))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Auth
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	// Per-IP rate limit on the AI routes
	aiLimiter := middleware.NewRateLimiter(redisClient, "ai",
		cfg.RateLimit.AIMaxRequests, cfg.RateLimit.AIWindowSec)

	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AIRateLimiter:      aiLimiter.Middleware,
	}, api.HandlerSet{
		CreateDiary:  diaryHandler.Create,
		ListDiaries:  diaryHandler.List,
		GetDiary:     diaryHandler.Get,
		UpdateDiary:  diaryHandler.Update,
		DeleteDiary:  diaryHandler.Delete,
		CorrectDiary: diaryHandler.Correct,
		ScanDiary:    diaryHandler.Scan,

		CreateReviewCards: cardHandler.Create,
		ListReviewCards:   cardHandler.List,
		DeleteReviewCard:  cardHandler.Delete,

		GetUsage:   usageHandler.Get,
		GrantBonus: usageHandler.GrantBonus,

		GetMe:         userHandler.Me,
		UpdateMe:      userHandler.UpdateMe,
		DeleteMe:      userHandler.DeleteMe,
		ListUserAudit: auditHandler.List,

		AuthMiddleware: auth.Middleware(verifier),
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// eraserFunc adapts a plain function to the users.Eraser interface.
type eraserFunc func(ctx context.Context, userID string) error

func (f eraserFunc) DeleteByUser(ctx context.Context, userID string) error {
	return f(ctx, userID)
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
