package config

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config concentra toda la configuración de runtime.
// Todo viene de env vars; los defaults sirven para dev local.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"5s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// DBDSN vacío => repos in-memory (dev/handoff).
	DBDSN string `envconfig:"DB_DSN" default:""`

	// RedisAddr vacío => session store y view cache in-memory.
	RedisAddr  string        `envconfig:"REDIS_ADDR" default:""`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" default:""`

	// ActionDelay es el piso de latencia artificial de las mutaciones de pets.
	// Decisión de producto (pacing de UI), no una propiedad de performance.
	// 0 lo desactiva; los tests corren con 0.
	ActionDelay time.Duration `envconfig:"ACTION_DELAY" default:"1s"`
}

// Load lee la configuración desde el ambiente.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.IsProduction() && strings.TrimSpace(cfg.StripeWebhookSecret) == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is required in production")
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
