package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/database"
	"github.com/kizunalink/kizuna-backend/internal/attendance"
	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/billing"
	"github.com/kizunalink/kizuna-backend/internal/event"
	"github.com/kizunalink/kizuna-backend/internal/notification"
	"github.com/kizunalink/kizuna-backend/internal/profile"
	"github.com/kizunalink/kizuna-backend/internal/reports"
	"github.com/kizunalink/kizuna-backend/middleware"
	"github.com/kizunalink/kizuna-backend/utils"

	_ "github.com/kizunalink/kizuna-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Setup wires all handlers onto the router. The notification service is
// injected into the event and attendance services after construction so
// the engine never blocks on delivery.
func Setup(r *gin.Engine, cfg *config.Config, notifSvc notification.Service) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4173", "http://127.0.0.1:4173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Static("/uploads", cfg.UploadDir)

	redisClient := utils.NewRedisClient(cfg)
	storage := utils.NewLocalStorage(cfg)

	api := r.Group("/api")
	api.Use(middleware.RateLimiter(redisClient))
	api.Use(middleware.AuditMiddleware())

	// ===========================
	// Services
	// ===========================
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	authRepo := auth.NewRepository(database.DB)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	eventRepo := event.NewRepository(database.DB)
	attendanceRepo := attendance.NewRepository(database.DB)

	eventSvc := event.NewService(eventRepo, attendanceRepo, cfg, auditSvc)
	eventSvc.NotifSvc = notifSvc
	eventHandler := event.NewHandler(eventSvc, storage)

	attendanceSvc := attendance.NewService(attendanceRepo, eventRepo, auditSvc)
	attendanceSvc.NotifSvc = notifSvc
	attendanceHandler := attendance.NewHandler(attendanceSvc)

	reportSvc := reports.NewService(attendanceSvc, eventRepo, auditSvc)
	reportHandler := reports.NewHandler(reportSvc)

	profileSvc := profile.NewService(authRepo, cfg, auditSvc)
	profileHandler := profile.NewHandler(profileSvc, storage)

	billingRepo := billing.NewRepository(database.DB)
	billingSvc := billing.NewService(billingRepo, authRepo, cfg, auditSvc)
	billingHandler := billing.NewHandler(billingSvc)

	notifHandler := notification.NewHandler(notifSvc)

	// ===========================
	// Auth
	// ===========================
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.GET("/me", middleware.AuthMiddleware(authSvc), authHandler.Me)
	}

	// ===========================
	// Events
	// ===========================
	events := api.Group("/events")
	{
		events.GET("", eventHandler.ListEvents)
		events.GET("/:id", middleware.OptionalAuth(authSvc), eventHandler.GetEvent)

		authed := events.Group("")
		authed.Use(middleware.AuthMiddleware(authSvc))
		{
			authed.POST("", middleware.RequirePremium(), eventHandler.CreateEvent)
			authed.GET("/mine", eventHandler.MySchedule)
			authed.POST("/:id/cancel", eventHandler.CancelEvent)
			authed.POST("/:id/cover", eventHandler.UploadCover)

			authed.POST("/:id/attendance", attendanceHandler.Join)
			authed.DELETE("/:id/attendance", attendanceHandler.Withdraw)
			authed.GET("/:id/attendees", attendanceHandler.Roster)
			authed.GET("/:id/attendees/export", reportHandler.ExportRoster)
		}
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// ===========================
	// Profile
	// ===========================
	profileGroup := protected.Group("/profile")
	{
		profileGroup.GET("", profileHandler.GetProfile)
		profileGroup.PUT("", profileHandler.UpdateProfile)
		profileGroup.POST("/avatar", profileHandler.UploadAvatar)
	}

	// ===========================
	// Notifications
	// ===========================
	notifGroup := protected.Group("/notifications")
	{
		notifGroup.GET("", notifHandler.ListInApp)
		notifGroup.PATCH("/:id/read", notifHandler.MarkRead)
		notifGroup.POST("/device-tokens", notifHandler.RegisterDeviceToken)
		notifGroup.DELETE("/device-tokens", notifHandler.RemoveDeviceToken)
	}

	// ===========================
	// Billing
	// ===========================
	billingGroup := protected.Group("/billing")
	{
		billingGroup.POST("/premium/order", billingHandler.StartUpgrade)
		billingGroup.POST("/premium/verify", billingHandler.VerifyUpgrade)
		billingGroup.GET("/premium", billingHandler.ListUpgrades)
	}

	// ===========================
	// Audit Logs
	// ===========================
	auditRoutes := protected.Group("/auditlogs")
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}
}
