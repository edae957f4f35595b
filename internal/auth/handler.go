package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
	"github.com/gatherly/backend/pkg/utils"
)

// CookieConfig describes the session cookie the handler issues.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// SignUpRequest is the body for POST /auth/sign-up.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SignInRequest is the body for POST /auth/sign-in.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the sign-in response with the API token.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	cookie CookieConfig
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, cookie CookieConfig, logger *zap.Logger) *Handler {
	if cookie.Name == "" {
		cookie.Name = "session_token"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = 7 * 24 * time.Hour
	}
	return &Handler{repo: repo, jwt: jwt, cookie: cookie, logger: logger}
}

// SignUp handles POST /auth/sign-up.
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	u, err := h.repo.Create(c.Request.Context(), req.Name, req.Email, hash)
	if err != nil {
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}
	response.Created(c, u.ToPublic())
}

// SignIn handles POST /auth/sign-in. On success it creates a session row,
// sets the session cookie for the web gate and returns a JWT for API calls.
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}

	u, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPassword(req.Password, u.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := utils.RandomToken(32)
	if err != nil {
		response.Internal(c, "failed to create session")
		return
	}
	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	session := &models.Session{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(h.cookie.TTL),
		IPAddress: &ip,
		UserAgent: &ua,
	}
	if err := h.repo.CreateSession(c.Request.Context(), session); err != nil {
		h.logger.Error("create session", zap.Error(err))
		response.Internal(c, "failed to create session")
		return
	}

	jwtToken, err := h.jwt.Generate(u.ID, u.Email, u.Name)
	if err != nil {
		response.Internal(c, "failed to issue token")
		return
	}

	c.SetCookie(h.cookie.Name, token, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
	response.OK(c, TokenResponse{Token: jwtToken, User: u.ToPublic()})
}

// SignOut handles POST /auth/sign-out: deletes the session and clears the cookie.
func (h *Handler) SignOut(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		if err := h.repo.DeleteSessionByToken(c.Request.Context(), token); err != nil {
			h.logger.Warn("delete session", zap.Error(err))
		}
	}
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.NoContent(c)
}

// Me handles GET /me for the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	u, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u.ToPublic())
}
