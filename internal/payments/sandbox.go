package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/utils"
)

// Sandbox is a development gateway: charges succeed instantly on creation of
// a fake payment URL, and webhooks are parsed from a plain JSON body. It lets
// the purchase and webhook paths run end to end without a provider account.
type Sandbox struct {
	baseURL string
}

// NewSandbox creates the sandbox gateway. baseURL is where fake payment pages
// are pretended to live.
func NewSandbox(baseURL string) *Sandbox {
	if baseURL == "" {
		baseURL = "https://sandbox.gatherly.local/pay"
	}
	return &Sandbox{baseURL: baseURL}
}

// Name implements Gateway.
func (s *Sandbox) Name() string { return "sandbox" }

// CreateCharge implements Gateway.
func (s *Sandbox) CreateCharge(ctx context.Context, params ChargeParams) (*Charge, error) {
	id, err := utils.RandomToken(12)
	if err != nil {
		return nil, err
	}
	chargeID := "sbx_" + id
	return &Charge{
		ChargeID:   chargeID,
		PaymentURL: fmt.Sprintf("%s/%s", s.baseURL, chargeID),
		QRCode:     "sandbox-qris:" + chargeID,
		Status:     models.PaymentStatusPending,
	}, nil
}

// sandboxWebhook is the notification body the sandbox accepts.
type sandboxWebhook struct {
	ChargeID string     `json:"charge_id"`
	Status   string     `json:"status"`
	PaidAt   *time.Time `json:"paid_at"`
}

// HandleWebhook implements Gateway.
func (s *Sandbox) HandleWebhook(payload []byte) (*WebhookResult, error) {
	var body sandboxWebhook
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("parse webhook: %w", err)
	}
	if body.ChargeID == "" {
		return nil, fmt.Errorf("webhook missing charge_id")
	}
	switch body.Status {
	case models.PaymentStatusPaid,
		models.PaymentStatusFailed,
		models.PaymentStatusExpired,
		models.PaymentStatusRefunded:
	default:
		return nil, fmt.Errorf("webhook has unknown status %q", body.Status)
	}
	paidAt := body.PaidAt
	if body.Status == models.PaymentStatusPaid && paidAt == nil {
		now := time.Now()
		paidAt = &now
	}
	return &WebhookResult{ChargeID: body.ChargeID, Status: body.Status, PaidAt: paidAt}, nil
}
