package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/writediary/writediary/internal/database"
	mw "github.com/writediary/writediary/internal/middleware"
	inats "github.com/writediary/writediary/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import
// cycles.
type HandlerSet struct {
	// Diary handlers
	CreateDiary  http.HandlerFunc
	ListDiaries  http.HandlerFunc
	GetDiary     http.HandlerFunc
	UpdateDiary  http.HandlerFunc
	DeleteDiary  http.HandlerFunc
	CorrectDiary http.HandlerFunc
	ScanDiary    http.HandlerFunc

	// Review card handlers
	CreateReviewCards http.HandlerFunc
	ListReviewCards   http.HandlerFunc
	DeleteReviewCard  http.HandlerFunc

	// Usage handlers
	GetUsage   http.HandlerFunc
	GrantBonus http.HandlerFunc

	// User handlers
	GetMe         http.HandlerFunc
	UpdateMe      http.HandlerFunc
	DeleteMe      http.HandlerFunc
	ListUserAudit http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AIRateLimiter      func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, natsClient *inats.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe: checks DB and NATS
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient != nil && !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if natsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1: everything requires a valid bearer token
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/diaries", func(r chi.Router) {
				r.Post("/", h.CreateDiary)
				r.Get("/", h.ListDiaries)

				// AI-backed routes carry their own per-IP rate limit on top
				// of the per-user daily quota.
				r.Group(func(r chi.Router) {
					if cfg.AIRateLimiter != nil {
						r.Use(cfg.AIRateLimiter)
					}
					r.Post("/scan", h.ScanDiary)
					r.Post("/{id}/correct", h.CorrectDiary)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetDiary)
					r.Put("/", h.UpdateDiary)
					r.Delete("/", h.DeleteDiary)
				})
			})

			r.Route("/review-cards", func(r chi.Router) {
				r.Post("/", h.CreateReviewCards)
				r.Get("/", h.ListReviewCards)
				r.Delete("/{id}", h.DeleteReviewCard)
			})

			r.Route("/usage", func(r chi.Router) {
				r.Get("/{feature}", h.GetUsage)
				r.Post("/{feature}/bonus", h.GrantBonus)
			})

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.GetMe)
				r.Put("/", h.UpdateMe)
				r.Delete("/", h.DeleteMe)
				r.Get("/audit", h.ListUserAudit)
			})
		})
	})

	return r
}
