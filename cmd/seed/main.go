// File: cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"classifieds-marketplace/internal/config"
	"classifieds-marketplace/internal/domain/model"
	pg "classifieds-marketplace/internal/infra/db/postgres"
	"classifieds-marketplace/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	highlightPlanRepo := pg.NewHighlightPlanRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo, highlightPlanRepo)

	// If plans already exist, do nothing.
	plans, err := planUC.ListPlans(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		return
	}

	seedPlans := []struct {
		Name  string
		Days  int
		Price int64
	}{
		{"Básico", 30, 49_90},
		{"Profissional", 30, 99_90},
		{"Anual", 365, 499_00},
	}
	for _, s := range seedPlans {
		p, err := planUC.CreatePlan(ctx, s.Name, s.Days, s.Price)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded plan: %s (id=%s, days=%d, price=%d centavos)\n", p.Name, p.ID, p.DurationDays, p.PriceCents)
	}

	seedHighlights := []struct {
		Name  string
		Price int64
		Days  int
		Label string
		Color string
	}{
		{"Simples", 0, 7, "Destaque", "#2e7d32"},
		{"Turbo", 19_90, 15, "Turbo", "#f9a825"},
		{"Premium", 39_90, 30, "Premium", "#c62828"},
	}
	for _, s := range seedHighlights {
		p, err := planUC.CreateHighlightPlan(ctx, s.Name, s.Price, s.Days, s.Label, s.Color)
		if err != nil {
			log.Fatalf("create highlight plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded highlight plan: %s (id=%s, price=%d centavos)\n", p.Name, p.ID, p.PriceCents)
	}

	maxUses := 100
	coupon, err := model.NewCoupon(uuid.NewString(), "DESCONTO10", 10, nil, &maxUses)
	if err != nil {
		log.Fatalf("build coupon: %v", err)
	}
	if err := couponRepo.Save(ctx, nil, coupon); err != nil {
		log.Fatalf("save coupon: %v", err)
	}
	fmt.Printf("seeded coupon: %s (%d%%, max_uses=%d)\n", coupon.Code, coupon.DiscountPercent, maxUses)

	fmt.Println("seeding complete")
}
