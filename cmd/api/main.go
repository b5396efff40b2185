package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/replywise/replywise/internal/activity"
	"github.com/replywise/replywise/internal/api"
	"github.com/replywise/replywise/internal/auth"
	"github.com/replywise/replywise/internal/config"
	"github.com/replywise/replywise/internal/database"
	"github.com/replywise/replywise/internal/generation"
	"github.com/replywise/replywise/internal/llm"
	mw "github.com/replywise/replywise/internal/middleware"
	inats "github.com/replywise/replywise/internal/nats"
	"github.com/replywise/replywise/internal/profiles"
	"github.com/replywise/replywise/internal/quota"
	iredis "github.com/replywise/replywise/internal/redis"
	"github.com/replywise/replywise/internal/replies"
	"github.com/replywise/replywise/internal/server"
	"github.com/replywise/replywise/internal/tone"
	"github.com/replywise/replywise/internal/users"
)

const (
	authRateLimit       = 10
	authRateLimitWindow = 60
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

	ctx := context.Background()

	// PostgreSQL
	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("migrating database", "error", err)
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

	// NATS (optional)
	var natsClient *inats.Client
	var events generation.EventPublisher
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Warn("NATS unavailable, reply events disabled", "error", err)
			natsClient = nil
		} else {
			events = inats.NewPublisher(natsClient.JetStream())
		}
	}

	// Tone catalog
	catalog, err := tone.LoadDefault()
	if err != nil {
		slog.Error("loading tone presets", "error", err)
		os.Exit(1)
	}

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)
	authHandler := auth.NewHandler(authSvc, userSvc)

	// Profiles
	encryptor, err := auth.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		slog.Error("creating encryptor", "error", err)
		os.Exit(1)
	}
	profileSvc := profiles.NewService(profiles.NewRepository(pool), catalog, encryptor)
	profileHandler := profiles.NewHandler(profileSvc)

	// Chat completion providers
	registry, err := newRegistry(cfg.LLM)
	if err != nil {
		slog.Error("configuring chat providers", "error", err)
		os.Exit(1)
	}

	// Generation
	replyStore := replies.NewStore(replies.NewRepository(pool))
	genSvc := generation.NewService(catalog, registry, profileSvc, replyStore, events, generation.Options{
		DefaultLength: tone.Length(cfg.Tone.DefaultLength),
		DefaultEmoji:  cfg.Tone.DefaultEmoji,
		Temperature:   cfg.LLM.Temperature,
	})
	guard := quota.NewGuard(quota.Options{
		Limit:        cfg.Guest.Limit,
		Window:       cfg.Guest.Window,
		CookieName:   cfg.Guest.CookieName,
		CookieSecure: cfg.Guest.CookieSecure,
	})
	genHandler := generation.NewHandler(genSvc, guard, catalog, replyStore)

	// Generation history, fed from NATS when it is available
	activityRepo := activity.NewRepository(pool)
	activityHandler := activity.NewHandler(activityRepo)
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if natsClient != nil {
		consumer, err := natsClient.DurableConsumer(ctx, activity.ConsumerName, inats.SubjectReplyGenerated)
		if err != nil {
			slog.Warn("activity consumer disabled", "error", err)
		} else {
			go func() {
				if err := activity.NewConsumer(activityRepo, consumer).Start(consumerCtx); err != nil {
					slog.Error("activity consumer stopped", "error", err)
				}
			}()
		}
	}

	// Router
	authLimiter := mw.NewRateLimiter(redisClient, "auth", authRateLimit, authRateLimitWindow)
	guestLimiter := mw.NewRateLimiter(redisClient, "guest", cfg.Guest.RateLimit, cfg.Guest.RateLimitWindow)

	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
		GuestRateLimiter:   guestLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		CreateProfile:       profileHandler.Create,
		ListProfiles:        profileHandler.List,
		GetProfile:          profileHandler.Get,
		UpdateProfile:       profileHandler.Update,
		DeleteProfile:       profileHandler.Delete,
		OwnershipMiddleware: profileHandler.OwnershipMiddleware,

		GenerateReply:      genHandler.GenerateReply,
		GetReply:           genHandler.GetReply,
		GuestGenerate:      genHandler.GuestGenerate,
		ResolvePreferences: genHandler.ResolvePreferences,

		ListActivity: activityHandler.List,

		ListTones: genHandler.ListTones,
		MatchTone: genHandler.MatchTone,

		AuthMiddleware: auth.Middleware(authSvc),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	srv.OnShutdown(stopConsumer)
	if natsClient != nil {
		srv.OnShutdown(natsClient.Close)
	}
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newRegistry registers every provider that can be built from cfg. The echo
// provider is always present so local setups work without an API key.
func newRegistry(cfg config.LLMConfig) (*llm.Registry, error) {
	registry := llm.NewRegistry(cfg.Provider)
	registry.Register("echo", "echo", llm.EchoClient{})

	if cfg.APIKey != "" {
		client, err := llm.NewOpenAIClient(cfg.APIKey, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		registry.Register("openai", cfg.Model, client)
	}

	if _, ok := registry.Lookup(cfg.Provider); !ok {
		slog.Warn("default chat provider not registered", "provider", cfg.Provider, "available", registry.Names())
	}
	slog.Info("chat providers ready", "default", cfg.Provider, "available", registry.Names())
	return registry, nil
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
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
