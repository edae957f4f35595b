package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeParams describes a charge to create with the payment provider.
type ChargeParams struct {
	TicketID      uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	CustomerName  string
	CustomerEmail string
	Description   string
}

// Charge is the provider's answer to a create-charge call. PaymentURL and
// QRCode are optional depending on the payment method (VA, e-wallet, QRIS).
type Charge struct {
	ChargeID   string
	PaymentURL string
	QRCode     string
	Status     string
}

// WebhookResult is the provider's parsed webhook notification.
type WebhookResult struct {
	ChargeID string
	Status   string
	PaidAt   *time.Time
}

// Gateway abstracts an Indonesian payment provider. The platform only depends
// on this shape; provider specifics live behind it.
type Gateway interface {
	// Name identifies the provider, used for the webhook route and the
	// payments.provider column.
	Name() string
	// CreateCharge creates a charge and returns the provider's handle for it.
	CreateCharge(ctx context.Context, params ChargeParams) (*Charge, error)
	// HandleWebhook parses a provider notification body into a status change.
	HandleWebhook(payload []byte) (*WebhookResult, error)
}

// Registry maps provider names to gateways.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry creates a registry with the given gateways.
func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway)}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

// Get returns the gateway registered under name.
func (r *Registry) Get(name string) (Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("unknown payment provider %q", name)
	}
	return g, nil
}
