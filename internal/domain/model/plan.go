package model

import (
	"time"

	"classifieds-marketplace/internal/domain"
)

// SubscriptionPlan is a purchasable listing plan with a fixed duration
// and price in centavos.
type SubscriptionPlan struct {
	ID           string
	Name         string
	DurationDays int
	PriceCents   int64
	Active       bool
	CreatedAt    time.Time
}

func (p *SubscriptionPlan) IsZero() bool { return p == nil || p.ID == "" }

// NewSubscriptionPlan validates and constructs a plan.
func NewSubscriptionPlan(id, name string, durationDays int, priceCents int64) (*SubscriptionPlan, error) {
	if id == "" || name == "" || durationDays <= 0 || priceCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &SubscriptionPlan{
		ID:           id,
		Name:         name,
		DurationDays: durationDays,
		PriceCents:   priceCents,
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}

// HighlightPlan is a paid visibility add-on for a listing. Price zero is
// a valid configuration: free highlights are granted without a payment.
type HighlightPlan struct {
	ID           string
	Name         string
	PriceCents   int64
	DurationDays int
	BadgeLabel   string
	BadgeColor   string
	Active       bool
	CreatedAt    time.Time
}

func (p *HighlightPlan) IsZero() bool { return p == nil || p.ID == "" }

// NewHighlightPlan validates and constructs a highlight plan.
func NewHighlightPlan(id, name string, priceCents int64, durationDays int, badgeLabel, badgeColor string) (*HighlightPlan, error) {
	if id == "" || name == "" || durationDays <= 0 || priceCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &HighlightPlan{
		ID:           id,
		Name:         name,
		PriceCents:   priceCents,
		DurationDays: durationDays,
		BadgeLabel:   badgeLabel,
		BadgeColor:   badgeColor,
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}
