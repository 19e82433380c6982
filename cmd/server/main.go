// Package main runs the campus community HTTP server with WebSocket and graceful shutdown.
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

	"github.com/campushub/backend/config"
	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/blogs"
	"github.com/campushub/backend/internal/broadcasts"
	"github.com/campushub/backend/internal/colleges"
	"github.com/campushub/backend/internal/internships"
	"github.com/campushub/backend/internal/meetups"
	"github.com/campushub/backend/internal/mentorship"
	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/realtime"
	"github.com/campushub/backend/internal/registrations"
	"github.com/campushub/backend/internal/resumes"
	"github.com/campushub/backend/internal/tickets"
	"github.com/campushub/backend/internal/users"
	"github.com/campushub/backend/pkg/database"
	"github.com/campushub/backend/pkg/queue"
	"github.com/campushub/backend/pkg/redis"
	"github.com/campushub/backend/pkg/response"
	"github.com/campushub/backend/pkg/storage"
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
			ResumesBucket:        cfg.AWS.ResumesBucket,
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

	// Auth and profiles
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	userHandler := users.NewHandler(authRepo)

	// Meetups
	meetupRepo := meetups.NewRepository(pool)
	registrationRepo := registrations.NewRepository(pool)
	meetupHandler := meetups.NewHandler(meetupRepo, registrationRepo)

	// Registrations and tickets
	registrationHandler := registrations.NewHandler(registrationRepo, meetupRepo, authRepo, hub, logger)
	ticketHandler := tickets.NewHandler(registrationRepo)

	// Blogs
	blogRepo := blogs.NewRepository(pool)
	blogHandler := blogs.NewHandler(blogRepo)

	// Internships
	internshipRepo := internships.NewRepository(pool)
	internshipHandler := internships.NewHandler(internshipRepo)

	// Mentorship and feedback, with per-kind resubmission cooldowns
	mentorshipRepo := mentorship.NewRepository(pool)
	mentorshipGate := mentorship.NewKindCooldown(map[string]mentorship.CooldownGate{
		mentorship.KindMentorship: mentorship.NewRedisCooldown(rdb.Client, time.Duration(cfg.Cooldown.MentorshipMinutes)*time.Minute),
		mentorship.KindFeedback:   mentorship.NewRedisCooldown(rdb.Client, time.Duration(cfg.Cooldown.FeedbackMinutes)*time.Minute),
	})
	mentorshipHandler := mentorship.NewHandler(mentorshipRepo, mentorshipGate, logger)

	// Resumes (upload, analysis)
	var objects resumes.ObjectStore
	if s3Client != nil {
		objects = s3Client
	}
	var analyzer resumes.Analyzer
	if cfg.Analyzer.Endpoint != "" {
		analyzer = resumes.NewHTTPAnalyzer(cfg.Analyzer)
	}
	resumeHandler := resumes.NewHandler(authRepo, objects, analyzer, logger)

	// College directory proxy
	collegeHandler := colleges.NewHandler(colleges.NewClient(cfg.Colleges), logger)

	// Email broadcasts
	jobQueue := queue.NewQueue(rdb.Client, logger)
	broadcastRepo := broadcasts.NewRepository(pool)
	broadcastHandler := broadcasts.NewHandler(broadcastRepo, authRepo, jobQueue, logger)

	jwtValidate := func(token string) (uuid.UUID, string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, "", err
		}
		return claims.UserID, claims.Role, nil
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
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Public browse; meetup listing merges registration state when a bearer
	// token is present.
	router.GET("/meetups", middleware.OptionalJWT(jwtService), meetupHandler.List)
	router.GET("/meetups/:id", meetupHandler.GetByID)
	router.GET("/internships", internshipHandler.List)
	router.GET("/internships/:id", internshipHandler.GetByID)
	router.GET("/blogs", blogHandler.List)
	router.GET("/blogs/:id", blogHandler.GetByID)
	router.GET("/tickets/:token/validate", registrationHandler.ValidateToken)
	router.GET("/colleges/search", collegeHandler.Search)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Profile
		api.GET("/me", userHandler.Me)
		api.PATCH("/me", userHandler.UpdateMe)

		// Registration and tickets
		api.POST("/meetups/:id/register", registrationHandler.Register)
		api.GET("/meetups/:id/ticket", registrationHandler.MyTicket)
		api.GET("/tickets/:token/qr", ticketHandler.QR)

		// Blogs (author or admin for mutations)
		api.POST("/blogs", blogHandler.Create)
		api.PATCH("/blogs/:id", blogHandler.Update)
		api.DELETE("/blogs/:id", blogHandler.Delete)

		// Mentorship and feedback (cooldown-gated)
		api.POST("/mentorship", mentorshipHandler.CreateRequest)
		api.POST("/feedback", mentorshipHandler.CreateFeedback)

		// Resume
		api.POST("/resume", resumeHandler.Upload)
		api.GET("/resume", resumeHandler.Download)
		api.DELETE("/resume", resumeHandler.Delete)
		api.POST("/resume/analyze", resumeHandler.Analyze)

		// Admin
		admin := api.Group("", middleware.RequireRole(string(models.RoleAdmin)))
		{
			admin.POST("/meetups", meetupHandler.Create)
			admin.PATCH("/meetups/:id", meetupHandler.Update)
			admin.DELETE("/meetups/:id", meetupHandler.Delete)
			admin.GET("/meetups/:id/registrations", registrationHandler.ListByMeetup)
			admin.POST("/registrations/:id/toggle-checkin", registrationHandler.ToggleCheckIn)
			admin.POST("/meetups/:id/checkin", registrationHandler.CheckInByToken)

			admin.POST("/internships", internshipHandler.Create)
			admin.PATCH("/internships/:id", internshipHandler.Update)
			admin.DELETE("/internships/:id", internshipHandler.Delete)

			admin.GET("/users", userHandler.List)
			admin.PATCH("/users/:id/approve", userHandler.Approve)

			admin.GET("/mentorship", mentorshipHandler.List)
			admin.PATCH("/mentorship/:id", mentorshipHandler.UpdateStatus)

			admin.POST("/broadcasts", broadcastHandler.Create)
			admin.GET("/broadcasts", broadcastHandler.List)
			admin.GET("/broadcasts/:id/emails", broadcastHandler.ListEmails)
		}
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/meetups/:id/checkins/live", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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
