// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"classifieds-marketplace/internal/config"
	"classifieds-marketplace/internal/infra/api"
	pg "classifieds-marketplace/internal/infra/db/postgres"
	"classifieds-marketplace/internal/infra/logging"
	"classifieds-marketplace/internal/infra/metrics"
	payGW "classifieds-marketplace/internal/infra/payment"
	red "classifieds-marketplace/internal/infra/redis"
	"classifieds-marketplace/internal/infra/sched"
	"classifieds-marketplace/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local .env is optional; real deployments inject the environment.
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		log.Warn().Msg("developer mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConn)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	intentRepo := red.NewIntentRepo(redisClient, cfg.Redis.IntentTTL)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	highlightPlanRepo := pg.NewHighlightPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	listingRepo := pg.NewListingRepo(pool)
	specialAdRepo := pg.NewSpecialAdRepo(pool)
	requestRepo := pg.NewRequestRepo(pool)

	// ---- Gateway ----
	gateway, err := payGW.NewMercadoPagoGateway(cfg.Payment.MercadoPago.AccessToken)
	if err != nil {
		log.Fatal().Err(err).Msg("mercadopago gateway init failed")
	}

	// ---- Use cases ----
	couponUC := usecase.NewCouponUseCase(couponRepo, log)
	entitlementUC := usecase.NewEntitlementUseCase(subRepo, planRepo, highlightPlanRepo, listingRepo, log)
	footerAdUC := usecase.NewFooterAdUseCase(specialAdRepo, requestRepo, txManager, log)
	chain := usecase.NewHighlightChain(highlightPlanRepo, entitlementUC, log)
	reconcileUC := usecase.NewReconcileUseCase(paymentRepo, couponUC, entitlementUC, footerAdUC, chain, intentRepo, txManager, log)
	checkoutUC := usecase.NewCheckoutUseCase(planRepo, highlightPlanRepo, intentRepo, couponUC, chain, gateway, txManager, cfg.Server.CallbackURL, log)
	planUC := usecase.NewPlanUseCase(planRepo, highlightPlanRepo)

	// ---- HTTP ----
	srv := api.NewServer(
		checkoutUC, reconcileUC, footerAdUC, planUC,
		requestRepo, specialAdRepo, gateway,
		cfg.Payment.MercadoPago.WebhookSecret, cfg.Server.AdminSecret,
		log,
	)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	// ---- Workers ----
	expiry := sched.NewExpiryWorker(cfg.Worker.ExpiryInterval, subRepo, listingRepo, specialAdRepo, log)
	go func() { _ = expiry.Run(ctx) }()

	reconciler := sched.NewPaymentReconciler(
		reconcileUC, paymentRepo, gateway,
		cfg.Worker.ReconcileInterval, cfg.Worker.ReconcileStaleAfter, log,
	)
	go func() { _ = reconciler.Run(ctx) }()

	<-ctx.Done()
	log.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
