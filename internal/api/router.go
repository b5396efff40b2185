package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/replywise/replywise/internal/database"
	mw "github.com/replywise/replywise/internal/middleware"
	inats "github.com/replywise/replywise/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Profile handlers
	CreateProfile       http.HandlerFunc
	ListProfiles        http.HandlerFunc
	GetProfile          http.HandlerFunc
	UpdateProfile       http.HandlerFunc
	DeleteProfile       http.HandlerFunc
	OwnershipMiddleware func(http.Handler) http.Handler

	// Generation handlers
	GenerateReply  http.HandlerFunc
	GetReply       http.HandlerFunc
	GuestGenerate  http.HandlerFunc
	ResolvePreferences http.HandlerFunc

	// Generation history
	ListActivity http.HandlerFunc

	// Tone catalog handlers
	ListTones http.HandlerFunc
	MatchTone http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
	GuestRateLimiter   func(http.Handler) http.Handler
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

	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if pool == nil {
			health["database"] = "not configured"
		} else if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		// NATS is optional; losing it only drops generation events.
		if natsClient == nil {
			health["nats"] = "not configured"
		} else if !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public), optionally rate-limited
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Public tone catalog
		r.Get("/tones", h.ListTones)
		r.Post("/tones/match", h.MatchTone)
		r.Post("/preferences/resolve", h.ResolvePreferences)

		// Guest generation: cookie quota in the handler, per-IP throttle here
		r.Group(func(r chi.Router) {
			if cfg.GuestRateLimiter != nil {
				r.Use(cfg.GuestRateLimiter)
			}
			r.Post("/guest/generate", h.GuestGenerate)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/profiles", func(r chi.Router) {
				r.Post("/", h.CreateProfile)
				r.Get("/", h.ListProfiles)

				r.Route("/{profileID}", func(r chi.Router) {
					r.Use(h.OwnershipMiddleware)
					r.Get("/", h.GetProfile)
					r.Put("/", h.UpdateProfile)
					r.Delete("/", h.DeleteProfile)
				})
			})

			r.Post("/replies/generate", h.GenerateReply)
			r.Get("/replies/{replyID}", h.GetReply)
			r.Get("/activity", h.ListActivity)
		})
	})

	return r
}
