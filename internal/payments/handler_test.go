package payments

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newWebhookRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, NewRegistry(NewSandbox("")), nil, token, zap.NewNop())
	r := gin.New()
	r.POST("/webhooks/payments/:provider", h.Webhook)
	return r
}

func TestWebhookRejectsMissingToken(t *testing.T) {
	r := newWebhookRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/sandbox",
		strings.NewReader(`{"charge_id":"sbx_x","status":"paid"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsWrongToken(t *testing.T) {
	r := newWebhookRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/sandbox",
		strings.NewReader(`{"charge_id":"sbx_x","status":"paid"}`))
	req.Header.Set(WebhookTokenHeader, "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsWhenNoTokenConfigured(t *testing.T) {
	// An empty configured token disables the endpoint rather than opening it.
	r := newWebhookRouter("")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/sandbox",
		strings.NewReader(`{"charge_id":"sbx_x","status":"paid"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookUnknownProvider(t *testing.T) {
	r := newWebhookRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/nope",
		strings.NewReader(`{}`))
	req.Header.Set(WebhookTokenHeader, "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookRejectsBadPayload(t *testing.T) {
	r := newWebhookRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/sandbox",
		strings.NewReader(`not json`))
	req.Header.Set(WebhookTokenHeader, "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
