package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusActive   SubscriptionStatus = "active"
)

// Subscription is a user's plan entitlement. One row per user, upserted
// on every plan purchase.
//
// Renewal policy: a purchase always sets a fresh expiry of
// now + plan.DurationDays. Remaining days on an early renewal are not
// carried over. This mirrors the historical behavior and is asserted by
// tests so a future policy change is a deliberate one.
type Subscription struct {
	UserID    string
	PlanID    string
	PlanType  string
	Status    SubscriptionStatus
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

// RenewFrom applies the fresh-grant renewal policy for the given plan.
func (s *Subscription) RenewFrom(now time.Time, plan *SubscriptionPlan) {
	expires := now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
	s.PlanID = plan.ID
	s.PlanType = plan.Name
	s.Status = SubscriptionStatusActive
	s.ExpiresAt = &expires
	s.UpdatedAt = now
}
