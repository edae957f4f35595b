// Package main runs the Gatherly HTTP server with WebSocket feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatherly/backend/config"
	"github.com/gatherly/backend/internal/analytics"
	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/emails"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/organizations"
	"github.com/gatherly/backend/internal/payments"
	"github.com/gatherly/backend/internal/realtime"
	"github.com/gatherly/backend/internal/tickets"
	"github.com/gatherly/backend/pkg/database"
	"github.com/gatherly/backend/pkg/queue"
	"github.com/gatherly/backend/pkg/redis"
	"github.com/gatherly/backend/pkg/response"
	"github.com/gatherly/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			PostersBucket:        cfg.AWS.PostersBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth and sessions
	authRepo := auth.NewRepository(pool)
	cookie := auth.CookieConfig{
		Name:   cfg.Session.CookieName,
		TTL:    time.Duration(cfg.Session.TTLHours) * time.Hour,
		Secure: cfg.Session.Secure,
	}
	authHandler := auth.NewHandler(authRepo, jwtService, cookie, logger)

	// Organizations, members, invitations, teams
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, authRepo, cfg.Session.CookieName)

	// Events and posters
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, orgRepo, s3Client, logger)

	// Tickets and check-in
	ticketRepo := tickets.NewRepository(pool)
	ticketHandler := tickets.NewHandler(ticketRepo, orgRepo, jobQueue, hub, logger)

	// Payments
	gatewayRegistry := payments.NewRegistry(payments.NewSandbox(""))
	paymentRepo := payments.NewRepository(pool)
	paymentHandler := payments.NewHandler(paymentRepo, ticketRepo, gatewayRegistry, jobQueue, cfg.Payments.WebhookToken, logger)

	// Analytics
	analyticsHandler := analytics.NewHandler(pool, eventRepo)

	// Email logs
	emailRepo := emails.NewRepository(pool)
	emailHandler := emails.NewHandler(emailRepo, ticketRepo, jobQueue)

	jwtValidate := func(token string) (uuid.UUID, string, string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, "", "", err
		}
		return claims.UserID, claims.Email, claims.Name, nil
	}
	wsValidate := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}
	wsAccess := func(eventID, userID uuid.UUID) bool {
		ev, err := eventRepo.GetByID(context.Background(), eventID)
		if err != nil {
			return false
		}
		return orgRepo.IsMember(context.Background(), ev.OrganizationID, userID)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Route gate: redirects browser navigation on auth/protected prefixes.
	router.Use(middleware.Gate(middleware.DefaultRouteTable(), middleware.GateOptions{
		CookieName: cfg.Session.CookieName,
		Validator:  authRepo.ValidateSessionToken,
	}))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/sign-up", authHandler.SignUp)
		authGroup.POST("/sign-in", authHandler.SignIn)
		authGroup.POST("/sign-out", authHandler.SignOut)
	}

	// Public event pages and the customer payment path
	public := router.Group("/public")
	{
		public.GET("/events", eventHandler.ListPublished)
		public.GET("/events/:slug", eventHandler.GetBySlug)
		public.POST("/tickets/:id/charge", paymentHandler.CreateCharge)
	}

	// Protected API (JWT or session cookie)
	api := router.Group("")
	api.Use(middleware.JWT(jwtValidate, authRepo, cfg.Session.CookieName))
	{
		api.GET("/me", authHandler.Me)

		// Organizations
		api.POST("/organizations", orgHandler.Create)
		api.GET("/organizations", orgHandler.ListMine)
		api.GET("/organizations/:id", organizations.RequireOrgRole(orgRepo), orgHandler.Get)
		api.DELETE("/organizations/:id", organizations.RequireOrgRole(orgRepo, models.MemberRoleOwner), orgHandler.Delete)
		api.POST("/organizations/:id/switch", organizations.RequireOrgRole(orgRepo), orgHandler.SwitchActive)
		api.GET("/organizations/:id/members", organizations.RequireOrgRole(orgRepo), orgHandler.ListMembers)

		// Invitations
		adminOnly := organizations.RequireOrgRole(orgRepo, models.MemberRoleOwner, models.MemberRoleAdmin)
		api.POST("/organizations/:id/invitations", adminOnly, orgHandler.Invite)
		api.GET("/organizations/:id/invitations", adminOnly, orgHandler.ListInvitations)
		api.DELETE("/organizations/:id/invitations/:invitationID", adminOnly, orgHandler.RevokeInvitation)
		api.POST("/invitations/:id/accept", orgHandler.AcceptInvitation)

		// Teams
		api.POST("/organizations/:id/teams", adminOnly, orgHandler.CreateTeam)
		api.GET("/organizations/:id/teams", organizations.RequireOrgRole(orgRepo), orgHandler.ListTeams)
		api.POST("/organizations/:id/teams/:teamID/members", adminOnly, orgHandler.AddTeamMember)
		api.DELETE("/organizations/:id/teams/:teamID", adminOnly, orgHandler.DeleteTeam)

		// Events
		api.POST("/organizations/:id/events", adminOnly, eventHandler.Create)
		api.GET("/organizations/:id/events", organizations.RequireOrgRole(orgRepo), eventHandler.ListByOrganization)
		eventAccess := eventHandler.RequireEventAccess()
		api.GET("/events/:id", eventAccess, eventHandler.Get)
		api.PATCH("/events/:id", eventAccess, eventHandler.Update)
		api.DELETE("/events/:id", eventAccess, eventHandler.Delete)
		api.POST("/events/:id/publish", eventAccess, eventHandler.Publish)
		api.POST("/events/:id/cancel", eventAccess, eventHandler.Cancel)

		// Posters
		api.POST("/events/:id/poster/presign", eventAccess, eventHandler.PresignPosterUpload)
		api.POST("/events/:id/poster", eventAccess, eventHandler.UploadPoster)
		api.PUT("/events/:id/poster", eventAccess, eventHandler.ConfirmPoster)
		api.DELETE("/events/:id/poster", eventAccess, eventHandler.DeletePoster)

		// Tickets and check-in
		api.POST("/events/:id/tickets", eventAccess, ticketHandler.Issue)
		api.GET("/events/:id/tickets", eventAccess, ticketHandler.ListByEvent)
		api.GET("/organizations/:id/tickets", organizations.RequireOrgRole(orgRepo), ticketHandler.ListByOrganization)
		api.POST("/tickets/check-in", ticketHandler.CheckIn)
		api.GET("/tickets/qr/:code", ticketHandler.Lookup)

		// Payments
		api.GET("/organizations/:id/payments", organizations.RequireOrgRole(orgRepo), paymentHandler.ListByOrganization)

		// Analytics
		api.GET("/organizations/:id/analytics", organizations.RequireOrgRole(orgRepo), analyticsHandler.OrgSummary)
		api.GET("/events/:id/analytics", eventAccess, analyticsHandler.EventSummary)
		api.GET("/events/:id/analytics/daily", eventAccess, analyticsHandler.DailySales)

		// Email logs
		api.GET("/events/:id/emails", eventAccess, emailHandler.ListByEvent)
		api.POST("/events/:id/emails/resend", eventAccess, emailHandler.Resend)
	}

	// Webhooks (no JWT; shared token validated in handler)
	router.POST("/webhooks/payments/:provider", paymentHandler.Webhook)

	// WebSocket check-in feed (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, wsValidate, wsAccess))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Expired sessions are swept in the background so the sessions table does
	// not grow without bound.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n, err := authRepo.DeleteExpiredSessions(sweepCtx); err == nil && n > 0 {
					logger.Info("expired sessions deleted", zap.Int64("count", n))
				}
			}
		}
	}()

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sweepCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
