//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"classifieds-marketplace/internal/domain"
)

// --- Coupon Model Tests ---

func TestNewCoupon(t *testing.T) {
	t.Run("should create a coupon and normalize the code", func(t *testing.T) {
		maxUses := 100
		c, err := NewCoupon("c-1", "  desconto10 ", 10, nil, &maxUses)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if c.Code != "DESCONTO10" {
			t.Errorf("expected normalized code 'DESCONTO10', but got %q", c.Code)
		}
		if !c.Active {
			t.Error("expected a new coupon to be active")
		}
		if c.UsageCount != 0 {
			t.Errorf("expected usage count 0, but got %d", c.UsageCount)
		}
	})

	t.Run("should fail with out-of-range discount", func(t *testing.T) {
		if _, err := NewCoupon("c-1", "X", 101, nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
		if _, err := NewCoupon("c-1", "X", -1, nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})

	t.Run("should fail with non-positive max uses", func(t *testing.T) {
		zero := 0
		if _, err := NewCoupon("c-1", "X", 10, nil, &zero); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		name    string
		base    int64
		percent int
		want    int64
	}{
		{"ten percent off 100.00", 10000, 10, 9000},
		{"zero percent", 10000, 0, 10000},
		{"full discount", 10000, 100, 0},
		{"negative percent clamps to zero", 10000, -5, 10000},
		{"over one hundred clamps to full", 10000, 250, 0},
		{"integer truncation stays in centavos", 999, 10, 899},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyDiscount(tc.base, tc.percent)
			if got != tc.want {
				t.Errorf("ApplyDiscount(%d, %d) = %d, want %d", tc.base, tc.percent, got, tc.want)
			}
			if got < 0 {
				t.Errorf("final amount must never be negative, got %d", got)
			}
		})
	}
}

// --- Subscription Model Tests ---

func TestSubscriptionRenewFrom(t *testing.T) {
	plan, err := NewSubscriptionPlan("p-1", "Premium", 30, 4990)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}

	t.Run("fresh grant sets expiry from now", func(t *testing.T) {
		now := time.Now()
		s := &Subscription{UserID: "u-1", Status: SubscriptionStatusInactive}
		s.RenewFrom(now, plan)
		if s.Status != SubscriptionStatusActive {
			t.Errorf("expected status active, but got %s", s.Status)
		}
		want := now.Add(30 * 24 * time.Hour)
		if !s.ExpiresAt.Equal(want) {
			t.Errorf("expected expiry %v, but got %v", want, s.ExpiresAt)
		}
	})

	t.Run("early renewal does not stack remaining days", func(t *testing.T) {
		now := time.Now()
		remaining := now.Add(10 * 24 * time.Hour)
		s := &Subscription{UserID: "u-1", Status: SubscriptionStatusActive, ExpiresAt: &remaining}
		s.RenewFrom(now, plan)
		want := now.Add(30 * 24 * time.Hour)
		if !s.ExpiresAt.Equal(want) {
			t.Errorf("expected fresh expiry %v, but got %v", want, s.ExpiresAt)
		}
	})
}

// --- Listing Model Tests ---

func TestListingApplyHighlight(t *testing.T) {
	hp, err := NewHighlightPlan("hp-1", "Destaque Ouro", 1990, 15, "DESTAQUE", "#FFD700")
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}

	now := time.Now()
	l := &Listing{ID: "ad-1", UserID: "u-1", Status: ListingStatusPending}
	l.ApplyHighlight(hp, now)

	if l.Status != ListingStatusActive || !l.AdminApproved {
		t.Error("a highlight purchase must force the listing active and approved")
	}
	if l.HighlightPlanID == nil || *l.HighlightPlanID != "hp-1" {
		t.Error("expected highlight plan id to be set")
	}
	if !l.HighlightActive("hp-1", now) {
		t.Error("expected HighlightActive to report true for a fresh highlight")
	}
	if l.HighlightActive("hp-other", now) {
		t.Error("expected HighlightActive to be false for a different plan")
	}
	if l.HighlightActive("hp-1", now.Add(16*24*time.Hour)) {
		t.Error("expected HighlightActive to be false after expiry")
	}
}
