package payment

import (
	"context"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	mppreference "github.com/mercadopago/sdk-go/pkg/preference"

	"classifieds-marketplace/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*MercadoPagoGateway)(nil)

// MercadoPagoGateway adapts the Mercado Pago SDK to the PaymentGateway
// port. Amounts cross this boundary as decimal units because that is
// what the provider wants; everything inside the service stays in
// integer centavos.
type MercadoPagoGateway struct {
	payments    mppayment.Client
	preferences mppreference.Client
}

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("mercadopago: access token is required")
	}
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: sdk config: %w", err)
	}
	return &MercadoPagoGateway{
		payments:    mppayment.NewClient(cfg),
		preferences: mppreference.NewClient(cfg),
	}, nil
}

func (g *MercadoPagoGateway) Name() string { return "mercadopago" }

func (g *MercadoPagoGateway) CreatePreference(ctx context.Context, amountCents int64, currency, title, reference, callbackURL string) (*adapter.CheckoutPreference, error) {
	req := mppreference.Request{
		Items: []mppreference.ItemRequest{
			{
				Title:      title,
				Quantity:   1,
				UnitPrice:  centsToUnits(amountCents),
				CurrencyID: currency,
			},
		},
		ExternalReference: reference,
		BackURLs: &mppreference.BackURLsRequest{
			Success: callbackURL,
			Pending: callbackURL,
			Failure: callbackURL,
		},
	}
	resp, err := g.preferences.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: create preference: %w", err)
	}
	return &adapter.CheckoutPreference{
		ID:          resp.ID,
		RedirectURL: resp.InitPoint,
	}, nil
}

func (g *MercadoPagoGateway) GetPayment(ctx context.Context, externalTxID string) (*adapter.GatewayPayment, error) {
	id, err := strconv.Atoi(externalTxID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: malformed payment id %q: %w", externalTxID, err)
	}
	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: get payment %d: %w", id, err)
	}
	return &adapter.GatewayPayment{
		ExternalTxID: strconv.Itoa(resp.ID),
		Status:       resp.Status,
		AmountCents:  unitsToCents(resp.TransactionAmount),
		Currency:     resp.CurrencyID,
		Method:       resp.PaymentMethodID,
		Reference:    resp.ExternalReference,
	}, nil
}

func centsToUnits(cents int64) float64 { return float64(cents) / 100 }

func unitsToCents(units float64) int64 { return int64(units*100 + 0.5) }
