// File: internal/usecase/footer_ad_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
)

// FooterAdUseCase branches a completed footer-ad purchase: artwork
// needed means a pending production request (no public placement yet),
// otherwise the special ad goes live immediately for 30 days.
type FooterAdUseCase struct {
	specialAds repository.SpecialAdRepository
	requests   repository.ProductionRequestRepository
	tm         repository.TransactionManager
	log        *zerolog.Logger
}

func NewFooterAdUseCase(
	specialAds repository.SpecialAdRepository,
	requests repository.ProductionRequestRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *FooterAdUseCase {
	l := logger.With().Str("component", "FooterAdUC").Logger()
	return &FooterAdUseCase{specialAds: specialAds, requests: requests, tm: tm, log: &l}
}

// Publish consumes the staged footer-ad draft after payment success.
// Returns a short tag describing what was created.
func (u *FooterAdUseCase) Publish(ctx context.Context, tx repository.Tx, userID string, draft *model.FooterAdDraft, paidCents int64) (string, error) {
	if draft == nil {
		return "", domain.ErrInvalidArgument
	}
	now := time.Now()

	if draft.ArtNeeded {
		req := &model.ProductionRequest{
			ID:                 uuid.NewString(),
			UserID:             userID,
			AdType:             "footer",
			Materials:          draft.Materials,
			Observations:       draft.Observations,
			ProposedValueCents: paidCents,
			Status:             model.RequestStatusPending,
			CreatedAt:          now,
		}
		if err := u.requests.Save(ctx, tx, req); err != nil {
			return "", err
		}
		u.log.Info().Str("request_id", req.ID).Str("user_id", userID).
			Msg("footer ad deferred to production request")
		return "production_request:" + req.ID, nil
	}

	expires := now.Add(model.SpecialAdDuration)
	ad := &model.SpecialAd{
		ID:            uuid.NewString(),
		Title:         draft.Title,
		PriceCents:    paidCents,
		Status:        model.SpecialAdStatusActive,
		ExpiresAt:     &expires,
		SmallImageURL: draft.SmallImageURL,
		LargeImageURL: draft.LargeImageURL,
		CreatedAt:     now,
	}
	if err := u.specialAds.Save(ctx, tx, ad); err != nil {
		return "", err
	}
	u.log.Info().Str("special_ad_id", ad.ID).Time("expires_at", expires).
		Msg("footer ad published")
	return "special_ad:" + ad.ID, nil
}

// CompleteRequest is the operator action that turns a pending production
// request into a live special ad once the artwork exists.
func (u *FooterAdUseCase) CompleteRequest(ctx context.Context, requestID, title, smallImageURL, largeImageURL string) (*model.SpecialAd, error) {
	var created *model.SpecialAd
	err := u.tm.WithTx(ctx, defaultTxOptions(), func(ctx context.Context, tx repository.Tx) error {
		req, err := u.requests.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Status == model.RequestStatusCompleted {
			return domain.ErrAlreadyExists
		}
		now := time.Now()
		expires := now.Add(model.SpecialAdDuration)
		ad := &model.SpecialAd{
			ID:            uuid.NewString(),
			Title:         title,
			PriceCents:    req.ProposedValueCents,
			Status:        model.SpecialAdStatusActive,
			ExpiresAt:     &expires,
			SmallImageURL: smallImageURL,
			LargeImageURL: largeImageURL,
			CreatedAt:     now,
		}
		if err := u.specialAds.Save(ctx, tx, ad); err != nil {
			return err
		}
		req.Status = model.RequestStatusCompleted
		req.CompletedAt = &now
		if err := u.requests.Save(ctx, tx, req); err != nil {
			return err
		}
		created = ad
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("request_id", requestID).Str("special_ad_id", created.ID).
		Msg("production request completed")
	return created, nil
}
