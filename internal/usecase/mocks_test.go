//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/adapter"
	"classifieds-marketplace/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockTxManager runs the closure inline with a nil handle; repository
// mocks ignore the tx argument anyway.
type mockTxManager struct {
	WithTxErr error
}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxErr != nil {
		return m.WithTxErr
	}
	return fn(ctx, nil)
}

// memPaymentRepo enforces the same external_tx_id uniqueness the real
// table does, which is what the idempotency tests lean on.
type memPaymentRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Payment // by ID
	InsertErr error
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *memPaymentRepo) Insert(ctx context.Context, _ repository.Tx, p *model.Payment) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.ExternalTxID == p.ExternalTxID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) FindByExternalTxID(ctx context.Context, _ repository.Tx, externalTxID string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.ExternalTxID == externalTxID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPaymentRepo) UpdateStatus(ctx context.Context, _ repository.Tx, id string, status model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memPaymentRepo) LinkAd(ctx context.Context, _ repository.Tx, id string, adID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.AdID = &adID
	return nil
}

func (m *memPaymentRepo) ListPendingOlderThan(ctx context.Context, _ repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memPaymentRepo) SumCompletedByPeriod(ctx context.Context, _ repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

func (m *memPaymentRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// memCouponRepo mirrors the conditional-increment redeem semantics.
type memCouponRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Coupon // by ID
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{store: make(map[string]*model.Coupon)}
}

func (m *memCouponRepo) Save(ctx context.Context, _ repository.Tx, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memCouponRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCouponRepo) FindByCode(ctx context.Context, _ repository.Tx, code string) (*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCouponRepo) Redeem(ctx context.Context, _ repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if !c.Active {
		return false, nil
	}
	if c.MaxUses != nil && c.UsageCount >= *c.MaxUses {
		return false, nil
	}
	c.UsageCount++
	return true, nil
}

type memPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.SubscriptionPlan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[string]*model.SubscriptionPlan)}
}

func (m *memPlanRepo) Save(ctx context.Context, _ repository.Tx, p *model.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SubscriptionPlan
	for _, p := range m.store {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memHighlightPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.HighlightPlan
}

func newMemHighlightPlanRepo() *memHighlightPlanRepo {
	return &memHighlightPlanRepo{store: make(map[string]*model.HighlightPlan)}
}

func (m *memHighlightPlanRepo) Save(ctx context.Context, _ repository.Tx, p *model.HighlightPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memHighlightPlanRepo) FindByID(ctx context.Context, id string) (*model.HighlightPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memHighlightPlanRepo) ListActive(ctx context.Context) ([]*model.HighlightPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.HighlightPlan
	for _, p := range m.store {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSubRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription // by user id
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubRepo) Upsert(ctx context.Context, _ repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.UserID] = &cp
	return nil
}

func (m *memSubRepo) FindByUser(ctx context.Context, _ repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubRepo) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusActive && s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
			s.Status = model.SubscriptionStatusInactive
			n++
		}
	}
	return n, nil
}

type memListingRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Listing
	SaveErr error
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{store: make(map[string]*model.Listing)}
}

func (m *memListingRepo) Save(ctx context.Context, _ repository.Tx, l *model.Listing) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.store[l.ID] = &cp
	return nil
}

func (m *memListingRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memListingRepo) ClearExpiredHighlights(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.store {
		if l.HighlightExpiresAt != nil && l.HighlightExpiresAt.Before(now) {
			l.HighlightPlanID = nil
			l.HighlightExpiresAt = nil
			n++
		}
	}
	return n, nil
}

func (m *memListingRepo) ExpireEnded(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.store {
		if l.Status == model.ListingStatusActive && l.EndDate != nil && l.EndDate.Before(now) {
			l.Status = model.ListingStatusExpired
			n++
		}
	}
	return n, nil
}

type memSpecialAdRepo struct {
	mu    sync.RWMutex
	store map[string]*model.SpecialAd
}

func newMemSpecialAdRepo() *memSpecialAdRepo {
	return &memSpecialAdRepo{store: make(map[string]*model.SpecialAd)}
}

func (m *memSpecialAdRepo) Save(ctx context.Context, _ repository.Tx, ad *model.SpecialAd) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ad
	m.store[ad.ID] = &cp
	return nil
}

func (m *memSpecialAdRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.SpecialAd, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ad, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ad
	return &cp, nil
}

func (m *memSpecialAdRepo) ListActive(ctx context.Context) ([]*model.SpecialAd, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SpecialAd
	for _, ad := range m.store {
		if ad.Status == model.SpecialAdStatusActive {
			cp := *ad
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSpecialAdRepo) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ad := range m.store {
		if ad.Status == model.SpecialAdStatusActive && ad.ExpiresAt != nil && ad.ExpiresAt.Before(now) {
			ad.Status = model.SpecialAdStatusInactive
			n++
		}
	}
	return n, nil
}

func (m *memSpecialAdRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

type memRequestRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ProductionRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{store: make(map[string]*model.ProductionRequest)}
}

func (m *memRequestRepo) Save(ctx context.Context, _ repository.Tx, r *model.ProductionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *memRequestRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.ProductionRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRequestRepo) ListPending(ctx context.Context) ([]*model.ProductionRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.ProductionRequest
	for _, r := range m.store {
		if r.Status == model.RequestStatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRequestRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// memIntentRepo mimics the Redis one-shot consume semantics.
type memIntentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PurchaseIntent
}

func newMemIntentRepo() *memIntentRepo {
	return &memIntentRepo{store: make(map[string]*model.PurchaseIntent)}
}

func (m *memIntentRepo) Save(ctx context.Context, intent *model.PurchaseIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *intent
	m.store[intent.ID] = &cp
	return nil
}

func (m *memIntentRepo) Find(ctx context.Context, id string) (*model.PurchaseIntent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memIntentRepo) Consume(ctx context.Context, id string) (*model.PurchaseIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.store[id]
	if !ok {
		return nil, domain.ErrIntentConsumed
	}
	delete(m.store, id)
	cp := *it
	return &cp, nil
}

func (m *memIntentRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

func (m *memIntentRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// mockGateway lets tests script the provider's answers.
type mockGateway struct {
	CreatePreferenceFunc func(ctx context.Context, amountCents int64, currency, title, reference, callbackURL string) (*adapter.CheckoutPreference, error)
	GetPaymentFunc       func(ctx context.Context, externalTxID string) (*adapter.GatewayPayment, error)
}

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) CreatePreference(ctx context.Context, amountCents int64, currency, title, reference, callbackURL string) (*adapter.CheckoutPreference, error) {
	if m.CreatePreferenceFunc != nil {
		return m.CreatePreferenceFunc(ctx, amountCents, currency, title, reference, callbackURL)
	}
	return &adapter.CheckoutPreference{ID: "pref-1", RedirectURL: "https://gateway.example/checkout/" + reference}, nil
}

func (m *mockGateway) GetPayment(ctx context.Context, externalTxID string) (*adapter.GatewayPayment, error) {
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, externalTxID)
	}
	return nil, domain.ErrNotFound
}

// Compile-time checks keep the mocks honest against the ports.
var (
	_ repository.PaymentRepository           = (*memPaymentRepo)(nil)
	_ repository.CouponRepository            = (*memCouponRepo)(nil)
	_ repository.SubscriptionPlanRepository  = (*memPlanRepo)(nil)
	_ repository.HighlightPlanRepository     = (*memHighlightPlanRepo)(nil)
	_ repository.SubscriptionRepository      = (*memSubRepo)(nil)
	_ repository.ListingRepository           = (*memListingRepo)(nil)
	_ repository.SpecialAdRepository         = (*memSpecialAdRepo)(nil)
	_ repository.ProductionRequestRepository = (*memRequestRepo)(nil)
	_ repository.PurchaseIntentRepository    = (*memIntentRepo)(nil)
	_ repository.TransactionManager          = (*mockTxManager)(nil)
	_ adapter.PaymentGateway                 = (*mockGateway)(nil)
)
