package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv             string `env:"APP_ENV" default:"development"`
	Port               string `env:"PORT" default:"8080"`
	LogLevel           string `env:"LOG_LEVEL" default:"info"`
	LogFormat          string `env:"LOG_FORMAT" default:"text"`
	WebhookSecret      string `env:"WEBHOOK_SECRET"`
	WebhookCallbackURL string `env:"WEBHOOK_CALLBACK_URL"`
	StrictParsing      bool   `env:"STRICT_PARSING" default:"false"`
	RedisURL           string `env:"REDIS_URL"`

	// Subscription management is enabled when client credentials are set.
	TwitchClientID     string `env:"TWITCH_CLIENT_ID"`
	TwitchClientSecret string `env:"TWITCH_CLIENT_SECRET"`
	BroadcasterUserID  string `env:"BROADCASTER_USER_ID"`
	ModeratorUserID    string `env:"MODERATOR_USER_ID"`
}

// ManagesSubscriptions reports whether the daemon should create its own
// conduit and subscriptions.
func (c *Config) ManagesSubscriptions() bool {
	return c.TwitchClientID != "" && c.TwitchClientSecret != ""
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.WebhookSecret == "" {
		return errors.New("WEBHOOK_SECRET is required")
	}
	if len(cfg.WebhookSecret) < 10 || len(cfg.WebhookSecret) > 100 {
		return errors.New("WEBHOOK_SECRET must be between 10 and 100 characters")
	}

	if (cfg.TwitchClientID == "") != (cfg.TwitchClientSecret == "") {
		return errors.New("TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET must be set together")
	}

	if cfg.ManagesSubscriptions() {
		required := map[string]string{
			"WEBHOOK_CALLBACK_URL": cfg.WebhookCallbackURL,
			"BROADCASTER_USER_ID":  cfg.BroadcasterUserID,
		}
		for name, value := range required {
			if value == "" {
				return fmt.Errorf("%s is required when TWITCH_CLIENT_ID is set", name)
			}
		}
	}

	if cfg.WebhookCallbackURL != "" {
		u, err := url.Parse(cfg.WebhookCallbackURL)
		if err != nil {
			return fmt.Errorf("WEBHOOK_CALLBACK_URL is invalid: %w", err)
		}
		if cfg.AppEnv == "production" && u.Scheme != "https" {
			return errors.New("WEBHOOK_CALLBACK_URL must use https in production")
		}
	}

	return nil
}
