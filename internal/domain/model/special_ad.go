package model

import "time"

type SpecialAdStatus string

const (
	SpecialAdStatusPending  SpecialAdStatus = "pending"
	SpecialAdStatusActive   SpecialAdStatus = "active"
	SpecialAdStatusInactive SpecialAdStatus = "inactive"
)

// SpecialAdDuration is how long a footer placement stays live.
const SpecialAdDuration = 30 * 24 * time.Hour

// SpecialAd is a site-wide rotating footer placement, sold separately
// from listing plans.
type SpecialAd struct {
	ID            string // UUID
	Title         string
	PriceCents    int64
	Status        SpecialAdStatus
	ExpiresAt     *time.Time
	SmallImageURL string
	LargeImageURL string
	CreatedAt     time.Time
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusCompleted RequestStatus = "completed"
)

// ProductionRequest is the manual-fulfillment detour: created instead of
// a SpecialAd when the buyer needs artwork produced. An operator later
// converts it into a SpecialAd and flips the status to completed.
type ProductionRequest struct {
	ID                 string // UUID
	UserID             string
	AdType             string
	Materials          string
	Observations       string
	ProposedValueCents int64
	Status             RequestStatus
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// FooterAdDraft is the footer-ad form data staged at checkout. ArtNeeded
// is decided before payment and must survive the redirect to the payment
// form, which is why it lives on the staged intent and not the payment.
type FooterAdDraft struct {
	Title         string `json:"title"`
	ArtNeeded     bool   `json:"art_needed"`
	Materials     string `json:"materials,omitempty"`
	Observations  string `json:"observations,omitempty"`
	SmallImageURL string `json:"small_image_url,omitempty"`
	LargeImageURL string `json:"large_image_url,omitempty"`
}
