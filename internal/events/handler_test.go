package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newCreateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, zap.NewNop())
	r := gin.New()
	r.POST("/organizations/:id/events", h.Create)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRejectsInvalidOrgID(t *testing.T) {
	r := newCreateRouter()
	w := postJSON(r, "/organizations/not-a-uuid/events",
		`{"name":"Launch","slug":"launch","date_time":"2026-09-01T19:00:00+07:00"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRejectsBadSlug(t *testing.T) {
	r := newCreateRouter()
	for _, slug := range []string{"Has Spaces", "x", "-leading", "émoji"} {
		w := postJSON(r, "/organizations/7f3c9a04-6f1e-4e7a-9b1c-2d5e8f0a1b2c/events",
			`{"name":"Launch","slug":"`+slug+`","date_time":"2026-09-01T19:00:00+07:00"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, "slug %q", slug)
	}
}

func TestCreateRejectsBadDateTime(t *testing.T) {
	r := newCreateRouter()
	w := postJSON(r, "/organizations/7f3c9a04-6f1e-4e7a-9b1c-2d5e8f0a1b2c/events",
		`{"name":"Launch","slug":"launch","date_time":"next tuesday"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRejectsNegativeCapacity(t *testing.T) {
	r := newCreateRouter()
	w := postJSON(r, "/organizations/7f3c9a04-6f1e-4e7a-9b1c-2d5e8f0a1b2c/events",
		`{"name":"Launch","slug":"launch","date_time":"2026-09-01T19:00:00+07:00","total_tickets":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
