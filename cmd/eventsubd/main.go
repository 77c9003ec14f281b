package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/suniastar/twitch-api/eventsub"
	"github.com/suniastar/twitch-api/internal/httpserver"
	"github.com/suniastar/twitch-api/internal/platform/config"
	"github.com/suniastar/twitch-api/internal/platform/logging"
	"github.com/suniastar/twitch-api/subscriber"
	"github.com/suniastar/twitch-api/subscriber/redisledger"
	"github.com/suniastar/twitch-api/webhook"
	"github.com/suniastar/twitch-api/webhook/redisdedupe"
)

const dedupTTL = 10 * time.Minute

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to parse REDIS_URL", "error", err)
		os.Exit(1)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

// definitions returns the subscriptions eventsubd maintains for the configured broadcaster.
func definitions(cfg *config.Config) []eventsub.Definition {
	broadcaster := cfg.BroadcasterUserID
	moderator := cfg.ModeratorUserID
	if moderator == "" {
		moderator = broadcaster
	}

	return []eventsub.Definition{
		eventsub.NewStreamOnlineV1(broadcaster),
		eventsub.NewStreamOfflineV1(broadcaster),
		eventsub.NewChannelUpdateV2(broadcaster),
		eventsub.NewChannelFollowV2(broadcaster, moderator),
		eventsub.NewAutomodMessageHoldV2(broadcaster, moderator),
		eventsub.NewAutomodMessageUpdateV1(broadcaster, moderator),
	}
}

func setupSubscriptions(cfg *config.Config, ledger subscriber.Ledger) *subscriber.Manager {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api, err := subscriber.NewHelixClient(ctx, cfg.TwitchClientID, cfg.TwitchClientSecret)
	if err != nil {
		slog.Error("Failed to create Helix client", "error", err)
		os.Exit(1)
	}

	manager := subscriber.NewManager(api, ledger, cfg.WebhookCallbackURL, cfg.WebhookSecret)
	if err := manager.Setup(ctx); err != nil {
		slog.Error("Failed to setup webhook conduit", "error", err)
		os.Exit(1)
	}
	return manager
}

// subscribeAll runs after the server is listening so Twitch can verify the callback.
func subscribeAll(manager *subscriber.Manager, defs []eventsub.Definition) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, def := range defs {
		if _, err := manager.Subscribe(ctx, def); err != nil {
			slog.Error("Failed to subscribe", "type", def.EventType(), "version", def.Version(), "error", err)
		}
	}
}

func runGracefulShutdown(srv *httpserver.Server, manager *subscriber.Manager) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if manager != nil {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := manager.Cleanup(cleanupCtx); err != nil {
				slog.Error("Failed to clean up conduit", "error", err)
			}
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "strict_parsing", cfg.StrictParsing)

	redisClient := setupRedis(context.Background(), cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	registry := httpserver.NewRegistry()

	opts := []webhook.Option{
		webhook.WithParser(eventsub.NewParser(eventsub.WithStrict(cfg.StrictParsing))),
		webhook.WithClock(clock),
		webhook.WithMetrics(webhook.NewMetrics(registry)),
		webhook.WithNotificationHandler(logNotification),
		webhook.WithRevocationHandler(logRevocation),
	}

	var ledger subscriber.Ledger = subscriber.NewMemoryLedger()
	var healthChecks []httpserver.HealthCheck
	if redisClient != nil {
		opts = append(opts, webhook.WithDeduplicator(redisdedupe.New(redisClient, dedupTTL)))
		ledger = redisledger.New(redisClient)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	var manager *subscriber.Manager
	if cfg.ManagesSubscriptions() {
		manager = setupSubscriptions(cfg, ledger)
	}

	srv := httpserver.NewServer(cfg.Port, webhook.NewHandler(cfg.WebhookSecret, opts...), registry, healthChecks, clock)
	done := runGracefulShutdown(srv, manager)

	if manager != nil {
		go subscribeAll(manager, definitions(cfg))
	}

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
