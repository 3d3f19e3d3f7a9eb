// File: cmd/setup/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"classifieds-marketplace/internal/config"
	"classifieds-marketplace/internal/infra/db/postgres"
	"classifieds-marketplace/internal/infra/redis"
)

// Provisions the database schema and, with -wipe, resets everything to
// a clean state for local end-to-end testing. Never run -wipe against
// a production database.
func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	wipe := flag.Bool("wipe", false, "truncate all tables and flush redis before setup")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	log.Println("applying schema...")
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("schema statement failed: %v", err)
		}
	}

	if *wipe {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisClient.Close()

		log.Println("wiping redis...")
		if err := redisClient.FlushDB(ctx); err != nil {
			log.Fatalf("failed to flush redis: %v", err)
		}

		log.Println("wiping database data...")
		_, err = pool.Exec(ctx, `
			TRUNCATE
				payments, coupons, subscriptions, listings,
				subscription_plans, highlight_plans, special_ads, production_requests
			RESTART IDENTITY CASCADE;
		`)
		if err != nil {
			log.Fatalf("failed to truncate tables: %v", err)
		}
	}

	log.Println("setup complete")
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS subscription_plans (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		duration_days INT NOT NULL,
		price_cents   BIGINT NOT NULL,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS highlight_plans (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		price_cents   BIGINT NOT NULL,
		duration_days INT NOT NULL,
		badge_label   TEXT NOT NULL DEFAULT '',
		badge_color   TEXT NOT NULL DEFAULT '',
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id               UUID PRIMARY KEY,
		code             TEXT NOT NULL UNIQUE,
		discount_percent INT NOT NULL,
		active           BOOLEAN NOT NULL DEFAULT TRUE,
		expires_at       TIMESTAMPTZ,
		max_uses         INT,
		usage_count      INT NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		user_id    TEXT PRIMARY KEY,
		plan_id    UUID NOT NULL REFERENCES subscription_plans(id),
		plan_type  TEXT NOT NULL,
		status     TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS listings (
		id                   UUID PRIMARY KEY,
		user_id              TEXT NOT NULL,
		title                TEXT NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		price_cents          BIGINT NOT NULL,
		category             TEXT NOT NULL DEFAULT '',
		status               TEXT NOT NULL,
		admin_approved       BOOLEAN NOT NULL DEFAULT FALSE,
		highlight_plan_id    UUID REFERENCES highlight_plans(id),
		highlight_expires_at TIMESTAMPTZ,
		end_date             TIMESTAMPTZ,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id                      UUID PRIMARY KEY,
		user_id                 TEXT NOT NULL,
		amount_cents            BIGINT NOT NULL,
		currency                TEXT NOT NULL,
		method                  TEXT NOT NULL DEFAULT '',
		external_tx_id          TEXT NOT NULL UNIQUE,
		kind                    TEXT NOT NULL,
		status                  TEXT NOT NULL,
		plan_id                 UUID,
		ad_id                   UUID,
		coupon_id               UUID REFERENCES coupons(id),
		coupon_discount_percent INT,
		meta                    JSONB,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_pending ON payments (created_at) WHERE status = 'pending';`,
	`CREATE TABLE IF NOT EXISTS special_ads (
		id              UUID PRIMARY KEY,
		title           TEXT NOT NULL,
		price_cents     BIGINT NOT NULL,
		status          TEXT NOT NULL,
		expires_at      TIMESTAMPTZ,
		small_image_url TEXT NOT NULL DEFAULT '',
		large_image_url TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS production_requests (
		id                   UUID PRIMARY KEY,
		user_id              TEXT NOT NULL,
		ad_type              TEXT NOT NULL,
		materials            TEXT NOT NULL DEFAULT '',
		observations         TEXT NOT NULL DEFAULT '',
		proposed_value_cents BIGINT NOT NULL,
		status               TEXT NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at         TIMESTAMPTZ
	);`,
}
