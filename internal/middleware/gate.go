package middleware

import (
	"context"
	"net/url"

	"github.com/gin-gonic/gin"
)

// Gate redirect targets.
const (
	DashboardPath = "/dashboard"
	SignInPath    = "/sign-in"
)

// SessionValidator checks a session token beyond mere presence (signature,
// expiry, revocation). It must never block on anything but its own I/O and
// must treat every failure as "not authenticated".
type SessionValidator func(ctx context.Context, token string) bool

// GateOptions configures the access gate.
type GateOptions struct {
	// CookieName is the session cookie to read. Defaults to "session_token".
	CookieName string
	// Validator, when set, upgrades the presence-only check to a real
	// session validation. When nil a non-empty cookie value counts as
	// authenticated and validity is delegated to the auth service.
	Validator SessionValidator
}

// Gate returns the route-protection middleware. For every request it
// classifies the path against table and then either forwards or redirects:
//
//	authenticated + auth route      -> 302 /dashboard
//	unauthenticated + protected     -> 302 /sign-in?callbackUrl=<path>
//	anything else                   -> forward
//
// The gate is stateless and never errors: a missing or malformed cookie is
// simply "not authenticated".
func Gate(table RouteTable, opts GateOptions) gin.HandlerFunc {
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = "session_token"
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		authed := isAuthenticated(c, cookieName, opts.Validator)

		switch Classify(table, path) {
		case RouteAuth:
			if authed {
				c.Redirect(302, DashboardPath)
				c.Abort()
				return
			}
		case RouteProtected:
			if !authed {
				c.Redirect(302, SignInPath+"?callbackUrl="+url.QueryEscape(path))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func isAuthenticated(c *gin.Context, cookieName string, validate SessionValidator) bool {
	// API clients authenticate with a Bearer token instead of the session
	// cookie; the JWT middleware behind the gate rejects bad tokens.
	if c.GetHeader("Authorization") != "" {
		return true
	}
	token, err := c.Cookie(cookieName)
	if err != nil || token == "" {
		return false
	}
	if validate != nil {
		return validate(c.Request.Context(), token)
	}
	return true
}
