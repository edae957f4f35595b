package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

const (
	// ContextUserID is the key for the authenticated user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for the authenticated user email in gin context.
	ContextUserEmail = "user_email"
	// ContextUserName is the key for the authenticated user name in gin context.
	ContextUserName = "user_name"
)

// TokenValidator validates an API bearer token and returns its identity claims.
type TokenValidator func(token string) (userID uuid.UUID, email, name string, err error)

// SessionStore looks up browser sessions for cookie-based API auth.
type SessionStore interface {
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
}

// JWT returns a middleware that authenticates API requests. It accepts a
// Bearer token first and falls back to the session cookie so the dashboard
// can call the API without holding a separate token.
func JWT(validate TokenValidator, sessions SessionStore, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = "session_token"
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(c, "invalid authorization header")
				c.Abort()
				return
			}
			userID, email, name, err := validate(parts[1])
			if err != nil {
				response.Unauthorized(c, "invalid or expired token")
				c.Abort()
				return
			}
			c.Set(ContextUserID, userID)
			c.Set(ContextUserEmail, email)
			c.Set(ContextUserName, name)
			c.Next()
			return
		}

		if sessions != nil {
			if token, err := c.Cookie(cookieName); err == nil && token != "" {
				s, err := sessions.GetSessionByToken(c.Request.Context(), token)
				if err == nil && s != nil && s.Valid(time.Now()) {
					c.Set(ContextUserID, s.UserID)
					c.Next()
					return
				}
			}
		}

		response.Unauthorized(c, "missing authorization")
		c.Abort()
	}
}
