// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	CallbackURL string `yaml:"callback_url"` // browser return URL after gateway checkout
	AdminSecret string `yaml:"admin_secret"` // HS256 key for operator tokens
}

type DatabaseConfig struct {
	URL     string `yaml:"url"`
	MaxConn int32  `yaml:"max_conn"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// IntentTTL bounds how long a staged checkout payload survives.
	IntentTTL time.Duration `yaml:"intent_ttl"`
}

type PaymentConfig struct {
	MercadoPago struct {
		AccessToken   string `yaml:"access_token"`
		WebhookSecret string `yaml:"webhook_secret"`
	} `yaml:"mercadopago"`
}

type WorkerConfig struct {
	ExpiryInterval      time.Duration `yaml:"expiry_interval"`
	ReconcileInterval   time.Duration `yaml:"reconcile_interval"`
	ReconcileStaleAfter time.Duration `yaml:"reconcile_stale_after"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`
	Worker   WorkerConfig   `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, applies environment overrides for
// secrets, fills defaults, and validates the minimum viable setup.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Env wins over YAML for everything secret or deploy-specific.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("MERCADOPAGO_ACCESS_TOKEN"); v != "" {
		cfg.Payment.MercadoPago.AccessToken = v
	}
	if v := os.Getenv("MERCADOPAGO_WEBHOOK_SECRET"); v != "" {
		cfg.Payment.MercadoPago.WebhookSecret = v
	}
	if v := os.Getenv("ADMIN_JWT_SECRET"); v != "" {
		cfg.Server.AdminSecret = v
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.MaxConn <= 0 {
		cfg.Database.MaxConn = 10
	}
	if cfg.Redis.IntentTTL <= 0 {
		cfg.Redis.IntentTTL = time.Hour
	}
	if cfg.Worker.ExpiryInterval <= 0 {
		cfg.Worker.ExpiryInterval = 10 * time.Minute
	}
	if cfg.Worker.ReconcileInterval <= 0 {
		cfg.Worker.ReconcileInterval = time.Minute
	}
	if cfg.Worker.ReconcileStaleAfter <= 0 {
		cfg.Worker.ReconcileStaleAfter = 10 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Payment.MercadoPago.WebhookSecret == "" {
		return nil, errors.New("payment.mercadopago.webhook_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
