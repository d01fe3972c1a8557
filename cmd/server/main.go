// Package main runs the Huddle HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/huddle-app/backend/config"
	"github.com/huddle-app/backend/internal/analytics"
	"github.com/huddle-app/backend/internal/auth"
	"github.com/huddle-app/backend/internal/authz"
	"github.com/huddle-app/backend/internal/engagement"
	"github.com/huddle-app/backend/internal/memberships"
	"github.com/huddle-app/backend/internal/middleware"
	"github.com/huddle-app/backend/internal/organizations"
	"github.com/huddle-app/backend/internal/profiles"
	"github.com/huddle-app/backend/internal/realtime"
	"github.com/huddle-app/backend/internal/rooms"
	"github.com/huddle-app/backend/internal/worker"
	"github.com/huddle-app/backend/pkg/database"
	"github.com/huddle-app/backend/pkg/queue"
	"github.com/huddle-app/backend/pkg/redis"
	"github.com/huddle-app/backend/pkg/response"
	"github.com/huddle-app/backend/pkg/storage"
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
			AvatarsBucket:        cfg.AWS.AvatarsBucket,
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

	// Auth (LinkedIn OAuth + session tokens)
	oauthProvider := auth.NewOAuthProvider(cfg.OAuth)
	profileRepo := profiles.NewRepository(pool)
	authHandler := auth.NewHandler(oauthProvider, profileRepo, jwtService, logger)

	// Profiles (engagement repo feeds the profile-views counter on /me)
	engagementRepo := engagement.NewRepository(pool)
	profileHandler := profiles.NewHandler(profileRepo, engagementRepo, s3Client, logger)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, profileRepo, logger)

	// Rooms
	roomRepo := rooms.NewRepository(pool)
	roomHandler := rooms.NewHandler(roomRepo, orgRepo, cfg, logger)
	roomAccess := rooms.RequireRoomAccess(roomRepo, orgRepo)

	// Memberships
	membershipRepo := memberships.NewRepository(pool)
	membershipHandler := memberships.NewHandler(membershipRepo, roomRepo, orgRepo, engagementRepo, hub, logger)

	// Engagement (async click recording through the job queue)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	engagementHandler := engagement.NewHandler(engagementRepo, roomRepo, jobQueue, logger)
	engagementProcessor := worker.NewEngagementProcessor(engagementRepo, jobQueue, hub, logger)

	// Analytics
	analyticsHandler := analytics.NewHandler(pool, membershipRepo, engagementRepo, hub, logger)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/login-url", authHandler.LoginURL)
		authGroup.GET("/callback", authHandler.Callback)
	}

	// Public: resolve a room by its join code before any membership exists
	router.GET("/rooms/code/:code", roomHandler.ResolveByCode)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Me
		api.GET("/me", profileHandler.Me)
		api.POST("/me/onboarding", profileHandler.CompleteOnboarding)
		api.PUT("/me", profileHandler.Update)
		api.POST("/me/avatar/upload-url", profileHandler.AvatarUploadURL)
		api.GET("/me/rooms", roomHandler.MyRooms)
		api.GET("/me/engagements/count", engagementHandler.MyCount)

		// Admin
		api.PATCH("/admin/users/:id/role", middleware.RequireCapability(authz.ManageOrganizations), profileHandler.UpdateRole)
		api.GET("/admin/analytics", middleware.RequireCapability(authz.ManageOrganizations), analyticsHandler.GetPlatform)

		// Organizations
		api.POST("/admin/organizations", middleware.RequireCapability(authz.ManageOrganizations), orgHandler.Create)
		api.GET("/admin/organizations", middleware.RequireCapability(authz.ManageOrganizations), orgHandler.List)
		api.PATCH("/admin/organizations/:id", middleware.RequireCapability(authz.ManageOrganizations), orgHandler.Update)
		api.POST("/admin/organizations/:id/organizers", middleware.RequireCapability(authz.ManageOrganizations), orgHandler.AddOrganizer)
		api.GET("/admin/organizations/:id/organizers", middleware.RequireCapability(authz.ManageOrganizations), orgHandler.ListOrganizers)

		// Rooms
		api.POST("/rooms", middleware.RequireCapability(authz.CreateRooms), roomHandler.Create)
		api.GET("/organizer/rooms", middleware.RequireCapability(authz.CreateRooms), roomHandler.ManagedRooms)
		api.GET("/rooms/:id", roomHandler.Get)
		api.PATCH("/rooms/:id", roomAccess, roomHandler.Update)
		api.GET("/rooms/:id/share", roomAccess, roomHandler.Share)
		api.GET("/rooms/:id/analytics", middleware.RequireCapability(authz.ViewAnalytics), roomAccess, analyticsHandler.GetByRoom)

		// Memberships
		api.POST("/rooms/:id/join", membershipHandler.Join)
		api.GET("/rooms/:id/members", membershipHandler.ListRoster)
		api.GET("/rooms/:id/members/all", roomAccess, membershipHandler.ListAll)
		api.GET("/rooms/:id/members/me", membershipHandler.MyMembership)
		api.PATCH("/memberships/:id/status", middleware.RequireCapability(authz.ApproveMembers), membershipHandler.SetStatus)

		// Engagement
		api.POST("/rooms/:id/engagements", engagementHandler.Record)
		api.GET("/rooms/:id/engagements/counts", roomAccess, engagementHandler.Counts)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", func(c *gin.Context) {
		realtime.ServeWs(hub, logger, jwtValidate)(c)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process engagement worker; run cmd/worker separately to scale it out.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go engagementProcessor.Run(workerCtx)
	logger.Info("engagement worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
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
