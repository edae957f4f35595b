package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateRouter(t *testing.T, opts GateOptions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Gate(DefaultRouteTable(), opts))
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "forwarded") })
	return r
}

func get(r *gin.Engine, path string, sessionCookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: "session_token", Value: sessionCookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGateForwardsPublicPaths(t *testing.T) {
	r := gateRouter(t, GateOptions{})
	for _, path := range []string{"/", "/about", "/pricing", "/contact"} {
		assert.Equal(t, http.StatusOK, get(r, path, "").Code, "unauthenticated %s", path)
		assert.Equal(t, http.StatusOK, get(r, path, "tok").Code, "authenticated %s", path)
	}
}

func TestGateProtectedPaths(t *testing.T) {
	r := gateRouter(t, GateOptions{})
	paths := []string{"/dashboard", "/settings", "/scanner", "/analytics", "/events/create", "/events/abc/edit"}
	for _, path := range paths {
		w := get(r, path, "")
		require.Equal(t, http.StatusFound, w.Code, "unauthenticated %s", path)
		assert.Equal(t, "/sign-in?callbackUrl="+escapePath(path), w.Header().Get("Location"))

		assert.Equal(t, http.StatusOK, get(r, path, "tok").Code, "authenticated %s", path)
	}
}

func TestGateAuthPaths(t *testing.T) {
	r := gateRouter(t, GateOptions{})
	for _, path := range []string{"/sign-in", "/sign-up"} {
		w := get(r, path, "tok")
		require.Equal(t, http.StatusFound, w.Code, "authenticated %s", path)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))

		assert.Equal(t, http.StatusOK, get(r, path, "").Code, "unauthenticated %s", path)
	}
}

func TestGatePublicEventDetailForwardsAlways(t *testing.T) {
	r := gateRouter(t, GateOptions{})
	for _, path := range []string{"/events/abc123", "/events/jakarta-music-fest"} {
		assert.Equal(t, http.StatusOK, get(r, path, "").Code, "unauthenticated %s", path)
		assert.Equal(t, http.StatusOK, get(r, path, "tok").Code, "authenticated %s", path)
	}
}

func TestGateCallbackURLIsEscaped(t *testing.T) {
	r := gateRouter(t, GateOptions{})
	w := get(r, "/dashboard/revenue", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/sign-in?callbackUrl=%2Fdashboard%2Frevenue", w.Header().Get("Location"))
}

func TestGateValidatorUpgradesPresenceCheck(t *testing.T) {
	r := gateRouter(t, GateOptions{
		Validator: func(_ context.Context, token string) bool { return token == "live" },
	})
	// expired/unknown token behaves as unauthenticated, never as an error
	w := get(r, "/dashboard", "stale")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/sign-in?callbackUrl=")

	assert.Equal(t, http.StatusOK, get(r, "/dashboard", "live").Code)
}

func TestGateCustomCookieName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Gate(DefaultRouteTable(), GateOptions{CookieName: "gatherly_sid"}))
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "forwarded") })

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "gatherly_sid", Value: "tok"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateForwardsBearerClients(t *testing.T) {
	// API calls carry a Bearer token instead of the session cookie; the gate
	// must not bounce them into the browser redirect flow.
	r := gateRouter(t, GateOptions{})
	req := httptest.NewRequest(http.MethodGet, "/events/7f3c9a04/edit", nil)
	req.Header.Set("Authorization", "Bearer some-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func escapePath(p string) string {
	return url.QueryEscape(p)
}
