package model

import "time"

type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusActive   ListingStatus = "active"
	ListingStatusRejected ListingStatus = "rejected"
	ListingStatusExpired  ListingStatus = "expired"
)

// Listing is a classified ad. It becomes active + admin-approved only
// after an associated successful payment (for paid placements) or
// immediately for free ones.
type Listing struct {
	ID                 string // UUID
	UserID             string
	Title              string
	Description        string
	PriceCents         int64 // asking price of the advertised item
	Category           string
	Status             ListingStatus
	AdminApproved      bool
	HighlightPlanID    *string
	HighlightExpiresAt *time.Time
	EndDate            *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HighlightActive reports whether a given highlight plan is currently in
// effect on the listing. Used as the terminal-state re-check before a
// retried reconciliation pass re-applies a highlight.
func (l *Listing) HighlightActive(planID string, now time.Time) bool {
	return l.HighlightPlanID != nil && *l.HighlightPlanID == planID &&
		l.HighlightExpiresAt != nil && l.HighlightExpiresAt.After(now)
}

// ApplyHighlight grants a highlight and forces the listing into its
// visible state. A highlight purchase always (re)activates its listing.
func (l *Listing) ApplyHighlight(plan *HighlightPlan, now time.Time) {
	expires := now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
	l.HighlightPlanID = &plan.ID
	l.HighlightExpiresAt = &expires
	l.Status = ListingStatusActive
	l.AdminApproved = true
	l.UpdatedAt = now
}

// ListingDraft is the form data for a listing staged at checkout and
// materialized only after the plan payment succeeds.
type ListingDraft struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	Category        string `json:"category"`
	DurationDays    int    `json:"duration_days"`
	HighlightPlanID string `json:"highlight_plan_id,omitempty"` // desired add-on, resolved by the highlight chain
}
