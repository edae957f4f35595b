package payments

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/backend/internal/models"
)

func TestSandboxCreateCharge(t *testing.T) {
	g := NewSandbox("")

	charge, err := g.CreateCharge(context.Background(), ChargeParams{
		TicketID: uuid.New(),
		Amount:   decimal.NewFromInt(150000),
		Currency: "IDR",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, charge.ChargeID)
	assert.Contains(t, charge.ChargeID, "sbx_")
	assert.Contains(t, charge.PaymentURL, charge.ChargeID)
	assert.NotEmpty(t, charge.QRCode)
	assert.Equal(t, models.PaymentStatusPending, charge.Status)
}

func TestSandboxChargeIDsAreUnique(t *testing.T) {
	g := NewSandbox("")
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		charge, err := g.CreateCharge(context.Background(), ChargeParams{TicketID: uuid.New()})
		require.NoError(t, err)
		assert.False(t, seen[charge.ChargeID])
		seen[charge.ChargeID] = true
	}
}

func TestSandboxHandleWebhook(t *testing.T) {
	g := NewSandbox("")

	t.Run("paid fills paid_at when missing", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"charge_id": "sbx_abc", "status": "paid"})
		result, err := g.HandleWebhook(body)
		require.NoError(t, err)
		assert.Equal(t, "sbx_abc", result.ChargeID)
		assert.Equal(t, models.PaymentStatusPaid, result.Status)
		require.NotNil(t, result.PaidAt)
		assert.WithinDuration(t, time.Now(), *result.PaidAt, time.Minute)
	})

	t.Run("failed has no paid_at", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"charge_id": "sbx_abc", "status": "failed"})
		result, err := g.HandleWebhook(body)
		require.NoError(t, err)
		assert.Nil(t, result.PaidAt)
	})

	t.Run("rejects missing charge_id", func(t *testing.T) {
		_, err := g.HandleWebhook([]byte(`{"status":"paid"}`))
		assert.Error(t, err)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := g.HandleWebhook([]byte(`{"charge_id":"sbx_abc","status":"maybe"}`))
		assert.Error(t, err)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		_, err := g.HandleWebhook([]byte(`not json`))
		assert.Error(t, err)
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(NewSandbox(""))

	g, err := registry.Get("sandbox")
	require.NoError(t, err)
	assert.Equal(t, "sandbox", g.Name())

	_, err = registry.Get("midtrans")
	assert.Error(t, err)
}
