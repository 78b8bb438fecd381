// hungrybot - restaurant recommendation chat bot server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ashureev/hungrybot/internal/api"
	"github.com/ashureev/hungrybot/internal/config"
	"github.com/ashureev/hungrybot/internal/conversation"
	"github.com/ashureev/hungrybot/internal/directory"
	"github.com/ashureev/hungrybot/internal/health"
	"github.com/ashureev/hungrybot/internal/identity"
	"github.com/ashureev/hungrybot/internal/intent"
	"github.com/ashureev/hungrybot/internal/lookup"
	"github.com/ashureev/hungrybot/internal/metrics"
	"github.com/ashureev/hungrybot/internal/middleware"
	"github.com/ashureev/hungrybot/internal/router"
	slackbot "github.com/ashureev/hungrybot/internal/slack"
	"github.com/ashureev/hungrybot/internal/store"
	"github.com/ashureev/hungrybot/internal/webchat"
	"github.com/ashureev/hungrybot/web"
)

const healthCheckInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"slack", cfg.Slack.Enabled(),
		"webchat", cfg.WebchatEnabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Storage.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()
	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	// Business search.
	if cfg.Yelp.APIKey == "" {
		slog.Warn("YELP_API_KEY not set, every search will report no results")
	}
	var searcher lookup.Searcher = lookup.NewYelpClient(lookup.YelpConfig{
		APIKey:  cfg.Yelp.APIKey,
		BaseURL: cfg.Yelp.BaseURL,
		Timeout: cfg.Yelp.Timeout,
		Limit:   cfg.Yelp.ResultLimit,
	})

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = lookup.OpenRedis(ctx, lookup.RedisConfig{
			Address:  cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := rdb.Close(); closeErr != nil {
				slog.Debug("Failed to close Redis client", "error", closeErr)
			}
		}()
		searcher = lookup.NewCachedSearcher(searcher, rdb, cfg.Redis.TTL, logger, m)
		slog.Info("Search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	// Slack client, verified up front so a bad token fails at startup.
	var slackClient *slackbot.Client
	var remote directory.Remote
	if cfg.Slack.Enabled() {
		slackClient, err = slackbot.NewClient(cfg.Slack.BotToken)
		if err != nil {
			slog.Error("Failed to create Slack client", "error", err)
			os.Exit(1)
		}
		botID, err := slackClient.AuthTest(ctx)
		if err != nil {
			slog.Error("Slack authentication failed", "error", err)
			os.Exit(1)
		}
		remote = slackClient
		slog.Info("Slack authenticated", "bot_id", botID)
	}

	// Core.
	engine := conversation.NewEngine(lookup.NewAdapter(searcher, logger, m), logger, m)
	users := directory.New(repo, remote, cfg.Directory.NameMaxAge, logger)
	rtr := router.New(intent.MustDefault(), engine, users, logger, m)

	directory.StartGuestSweeper(ctx, repo, cfg.Directory.GuestTTL, cfg.Directory.SweepInterval)

	if slackClient != nil {
		bot := slackbot.NewBot(slackClient, rtr, logger)
		go func() {
			if err := bot.Run(ctx); err != nil {
				slog.Error("Slack bot stopped", "error", err)
				os.Exit(1)
			}
		}()
	}

	// gRPC health.
	var healthSrv *health.Server
	if cfg.GRPCHealthAddr != "" {
		healthSrv = health.NewServer(cfg.Timeout.HealthCheck, logger)
		healthSrv.AddCheck("sqlite", repo.Ping)
		if rdb != nil {
			healthSrv.AddCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		}

		lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			slog.Error("Failed to listen for gRPC health", "addr", cfg.GRPCHealthAddr, "error", err)
			os.Exit(1)
		}
		go func() {
			if err := healthSrv.Serve(lis); err != nil {
				slog.Error("gRPC health server failed", "error", err)
			}
		}()
		go healthSrv.Run(ctx, healthCheckInterval)
	}

	// HTTP.
	checks := map[string]api.Pinger{"database": repo}
	if rdb != nil {
		checks["redis"] = api.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	healthHandler := api.NewHealthHandler(checks, cfg.Timeout.HealthCheck)
	configHandler := api.NewConfigHandler(cfg.WebchatEnabled, cfg.Slack.Enabled())
	messageHandler := api.NewMessageHandler(rtr)
	sessions := webchat.NewSessions()

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(middleware.Origins(cfg.FrontendURL), identity.SessionHeaderName))

	healthHandler.RegisterHealth(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Post("/slack/outgoing", slackbot.OutgoingWebhookHandler(cfg.Slack.WebhookToken, logger))

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))
		configHandler.RegisterRoutes(r)
		messageHandler.RegisterRoutes(r)
		if cfg.WebchatEnabled {
			wsHandler := webchat.NewHandler(rtr, sessions, cfg.FrontendURL, cfg.IsDevelopment())
			r.Get("/ws/chat", wsHandler.ServeHTTP)
		}
	})

	if cfg.WebchatEnabled {
		r.Handle("/*", web.SPAHandler())
	}

	// WebSocket connections are long-lived, so no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...", "active_conversations", engine.Len())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.Shutdown)
	defer cancel()

	sessions.CloseAll()
	if healthSrv != nil {
		healthSrv.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
