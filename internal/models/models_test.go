package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionValid(t *testing.T) {
	now := time.Now()

	s := Session{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.Valid(now))

	expired := Session{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Valid(now))

	boundary := Session{ExpiresAt: now}
	assert.False(t, boundary.Valid(now))
}

func TestInvitationAcceptable(t *testing.T) {
	now := time.Now()

	pending := Invitation{Status: InvitationStatusPending, ExpiresAt: now.Add(24 * time.Hour)}
	assert.True(t, pending.Acceptable(now))

	expired := Invitation{Status: InvitationStatusPending, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, expired.Expired(now))
	assert.False(t, expired.Acceptable(now))

	for _, status := range []string{InvitationStatusAccepted, InvitationStatusRejected, InvitationStatusCancelled} {
		inv := Invitation{Status: status, ExpiresAt: now.Add(24 * time.Hour)}
		assert.False(t, inv.Acceptable(now), "status %s must be inert", status)
	}
}

func TestEventSoldOut(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		sold    int
		soldOut bool
	}{
		{"tickets remain", 100, 40, false},
		{"exactly sold out", 100, 100, true},
		{"oversold", 100, 101, true},
		{"unlimited capacity", 0, 5000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{TotalTickets: tt.total, TicketsSold: tt.sold}
			assert.Equal(t, tt.soldOut, e.SoldOut())
		})
	}
}
