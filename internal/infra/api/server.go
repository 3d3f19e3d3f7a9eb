// File: internal/infra/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/adapter"
	"classifieds-marketplace/internal/domain/ports/repository"
	"classifieds-marketplace/internal/infra/logging"
	"classifieds-marketplace/internal/infra/metrics"
	"classifieds-marketplace/internal/infra/payment"
	"classifieds-marketplace/internal/usecase"
)

// Server owns the public HTTP surface: checkout, the two payment
// confirmation paths (browser callback and gateway webhook), the plan
// catalog, and the operator endpoints.
type Server struct {
	checkout  *usecase.CheckoutUseCase
	reconcile *usecase.ReconcileUseCase
	footerAds *usecase.FooterAdUseCase
	plans     *usecase.PlanUseCase
	requests  repository.ProductionRequestRepository
	ads       repository.SpecialAdRepository
	gateway   adapter.PaymentGateway

	webhookSecret string
	adminSecret   string

	validate *validator.Validate
	log      *zerolog.Logger
}

func NewServer(
	checkout *usecase.CheckoutUseCase,
	reconcile *usecase.ReconcileUseCase,
	footerAds *usecase.FooterAdUseCase,
	plans *usecase.PlanUseCase,
	requests repository.ProductionRequestRepository,
	ads repository.SpecialAdRepository,
	gateway adapter.PaymentGateway,
	webhookSecret, adminSecret string,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	return &Server{
		checkout:      checkout,
		reconcile:     reconcile,
		footerAds:     footerAds,
		plans:         plans,
		requests:      requests,
		ads:           ads,
		gateway:       gateway,
		webhookSecret: webhookSecret,
		adminSecret:   adminSecret,
		validate:      validator.New(),
		log:           &l,
	}
}

// Router builds the full route tree with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return Chain(next, TraceID(), Recover(s.log), RequestLog(s.log), Timeout(15*time.Second))
		})

		r.Post("/checkout", s.handleCheckout)
		r.Get("/payments/callback", s.handleCallback)
		r.Post("/webhooks/mercadopago", s.handleWebhook)

		r.Get("/plans", s.handleListPlans)
		r.Get("/highlight-plans", s.handleListHighlightPlans)
		r.Get("/special-ads", s.handleListSpecialAds)

		r.Route("/admin", func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return AdminAuth(s.adminSecret, s.log)(next)
			})
			r.Get("/requests", s.handleListRequests)
			r.Post("/requests/{id}/complete", s.handleCompleteRequest)
		})
	})

	return r
}

type checkoutRequest struct {
	UserID          string `json:"user_id" validate:"required"`
	Kind            string `json:"kind" validate:"required,oneof=plan highlight footer_ad"`
	PlanID          string `json:"plan_id,omitempty"`
	AdID            string `json:"ad_id,omitempty"`
	HighlightPlanID string `json:"highlight_plan_id,omitempty"`
	CouponCode      string `json:"coupon_code,omitempty"`

	FooterAdPriceCents int64                `json:"footer_ad_price_cents,omitempty" validate:"gte=0"`
	PendingListing     *model.ListingDraft  `json:"pending_listing,omitempty"`
	PendingFooterAd    *model.FooterAdDraft `json:"pending_footer_ad,omitempty"`
}

type checkoutResponse struct {
	IntentID        string `json:"intent_id,omitempty"`
	RedirectURL     string `json:"redirect_url,omitempty"`
	AmountCents     int64  `json:"amount_cents"`
	DiscountPercent int    `json:"discount_percent,omitempty"`
	Activated       bool   `json:"activated"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "malformed json body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.checkout.Initiate(r.Context(), &usecase.CheckoutInput{
		UserID:             req.UserID,
		Kind:               model.PurchaseKind(req.Kind),
		PlanID:             req.PlanID,
		AdID:               req.AdID,
		HighlightPlanID:    req.HighlightPlanID,
		CouponCode:         req.CouponCode,
		FooterAdPriceCents: req.FooterAdPriceCents,
		PendingListing:     req.PendingListing,
		PendingFooterAd:    req.PendingFooterAd,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, checkoutResponse{
		IntentID:        out.IntentID,
		RedirectURL:     out.RedirectURL,
		AmountCents:     out.AmountCents,
		DiscountPercent: out.DiscountPercent,
		Activated:       out.Activated,
	})
}

// handleCallback is the browser return leg. The inbound query is not
// trusted: the transaction is re-read from the provider and the
// authoritative status drives reconciliation. Rendering is HTML because
// a human lands here.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	txID := q.Get("payment_id")
	if txID == "" {
		txID = q.Get("collection_id")
	}
	if txID == "" || txID == "null" {
		// Buyer abandoned checkout before the provider created a
		// transaction. Nothing to reconcile.
		s.renderResult(w, http.StatusOK, false, "Pagamento não concluído.")
		return
	}

	if err := s.confirmFromGateway(r, txID); err != nil {
		if errors.Is(err, errPaymentNotApproved) {
			s.renderResult(w, http.StatusOK, false, "Pagamento não aprovado. Nenhuma cobrança adicional foi feita.")
			return
		}
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("external_tx_id", txID).Msg("callback reconciliation failed")
		s.renderResult(w, http.StatusInternalServerError, false, "Não foi possível confirmar o pagamento. Tente novamente em instantes.")
		return
	}
	s.renderResult(w, http.StatusOK, true, "Pagamento confirmado. Seu produto já está ativo.")
}

type webhookBody struct {
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// handleWebhook is the provider-push leg. Signature first, then the
// same gateway re-read as the callback. Always answers 200 for events
// we verified but chose to ignore, so the provider stops redelivering.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var body webhookBody
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "malformed json body")
		return
	}
	dataID := r.URL.Query().Get("data.id")
	if dataID == "" {
		dataID = body.Data.ID
	}

	if !payment.VerifyWebhookSignature(s.webhookSecret, dataID, r.Header.Get("x-request-id"), r.Header.Get("x-signature")) {
		metrics.IncWebhookRejected()
		l := logging.With(r.Context(), s.log)
		l.Warn().Str("data_id", dataID).Msg("webhook signature rejected")
		s.writeError(w, r, http.StatusBadRequest, "invalid signature")
		return
	}

	if body.Action != "payment.created" && body.Action != "payment.updated" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.confirmFromGateway(r, dataID); err != nil && !errors.Is(err, errPaymentNotApproved) {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("external_tx_id", dataID).Msg("webhook reconciliation failed")
		// Non-2xx makes the provider redeliver, which is the retry
		// mechanism for transient failures here.
		s.writeError(w, r, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	w.WriteHeader(http.StatusOK)
}

var errPaymentNotApproved = errors.New("payment not approved")

// confirmFromGateway re-reads the transaction from the provider and
// drives a reconciliation pass. Both confirmation paths funnel through
// here; idempotency lives one layer down.
func (s *Server) confirmFromGateway(r *http.Request, externalTxID string) error {
	ctx := logging.WithExternalTxID(r.Context(), externalTxID)
	gp, err := s.gateway.GetPayment(ctx, externalTxID)
	if err != nil {
		return err
	}

	ev := &model.ConfirmationEvent{
		ExternalTxID: gp.ExternalTxID,
		AmountCents:  gp.AmountCents,
		Currency:     gp.Currency,
		Method:       gp.Method,
	}
	if gp.Reference != "" {
		ref := gp.Reference
		ev.IntentID = &ref
	}

	switch gp.Status {
	case "approved":
		ev.Status = model.PaymentStatusCompleted
		_, err := s.reconcile.Reconcile(ctx, ev)
		return err
	case "rejected", "cancelled":
		ev.Status = model.PaymentStatusFailed
		if err := s.reconcile.RecordFailure(ctx, ev); err != nil {
			return err
		}
		return errPaymentNotApproved
	default:
		// pending / in_process: book the row so the stale-payment worker
		// can poll it to a terminal state even if no webhook returns.
		if err := s.reconcile.RecordPending(ctx, ev); err != nil {
			return err
		}
		return errPaymentNotApproved
	}
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListPlans(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	type planDTO struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		DurationDays int    `json:"duration_days"`
		PriceCents   int64  `json:"price_cents"`
	}
	out := make([]planDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, planDTO{ID: p.ID, Name: p.Name, DurationDays: p.DurationDays, PriceCents: p.PriceCents})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListHighlightPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListHighlightPlans(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	type highlightDTO struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		PriceCents   int64  `json:"price_cents"`
		DurationDays int    `json:"duration_days"`
		BadgeLabel   string `json:"badge_label,omitempty"`
		BadgeColor   string `json:"badge_color,omitempty"`
	}
	out := make([]highlightDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, highlightDTO{
			ID: p.ID, Name: p.Name, PriceCents: p.PriceCents,
			DurationDays: p.DurationDays, BadgeLabel: p.BadgeLabel, BadgeColor: p.BadgeColor,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListSpecialAds(w http.ResponseWriter, r *http.Request) {
	ads, err := s.ads.ListActive(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	type adDTO struct {
		ID            string     `json:"id"`
		Title         string     `json:"title"`
		SmallImageURL string     `json:"small_image_url,omitempty"`
		LargeImageURL string     `json:"large_image_url,omitempty"`
		ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	}
	out := make([]adDTO, 0, len(ads))
	for _, a := range ads {
		out = append(out, adDTO{ID: a.ID, Title: a.Title, SmallImageURL: a.SmallImageURL, LargeImageURL: a.LargeImageURL, ExpiresAt: a.ExpiresAt})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.requests.ListPending(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reqs)
}

type completeRequestBody struct {
	Title         string `json:"title" validate:"required"`
	SmallImageURL string `json:"small_image_url" validate:"required,url"`
	LargeImageURL string `json:"large_image_url" validate:"required,url"`
}

func (s *Server) handleCompleteRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body completeRequestBody
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "malformed json body")
		return
	}
	if err := s.validate.Struct(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ad, err := s.footerAds.CompleteRequest(r.Context(), id, body.Title, body.SmallImageURL, body.LargeImageURL)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	l := logging.With(r.Context(), s.log)
	l.Info().Str("request_id", id).Str("operator", SubjectFrom(r.Context())).
		Str("special_ad_id", ad.ID).Msg("production request completed")
	s.writeJSON(w, http.StatusOK, map[string]string{
		"special_ad_id": ad.ID,
		"status":        string(ad.Status),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if code >= 500 {
		l := logging.With(r.Context(), s.log)
		l.Error().Int("status", code).Str("path", r.URL.Path).Msg(msg)
	}
	s.writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		s.writeError(w, r, http.StatusConflict, "already processed")
	case errors.Is(err, domain.ErrCouponNotFound),
		errors.Is(err, domain.ErrCouponInactive),
		errors.Is(err, domain.ErrCouponExpired),
		errors.Is(err, domain.ErrCouponUsageLimit):
		s.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMissingTargetID),
		errors.Is(err, domain.ErrUnknownPurchaseKind):
		s.writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

var resultPage = template.Must(template.New("cb").Parse(`<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>{{if .OK}}Pagamento aprovado{{else}}Resultado do pagamento{{end}}</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.ok{color:#057a55} .fail{color:#b00020}
</style>
</head>
<body>
<div class="card">
  <h2 class="{{if .OK}}ok{{else}}fail{{end}}">{{if .OK}}Pagamento aprovado{{else}}Pagamento não aprovado{{end}}</h2>
  <p>{{.Msg}}</p>
</div>
</body>
</html>`))

func (s *Server) renderResult(w http.ResponseWriter, code int, ok bool, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = resultPage.Execute(w, struct {
		OK  bool
		Msg string
	}{OK: ok, Msg: msg})
}
