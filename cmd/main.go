package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/database"
	"github.com/kizunalink/kizuna-backend/internal/attendance"
	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/billing"
	"github.com/kizunalink/kizuna-backend/internal/event"
	"github.com/kizunalink/kizuna-backend/internal/notification"
	"github.com/kizunalink/kizuna-backend/routes"
	"github.com/kizunalink/kizuna-backend/utils"
)

// @title KizunaLink API
// @version 1.0
// @description Event lifecycle and reservation backend for KizunaLink.
// @BasePath /
func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	if err := utils.InitFirebase(cfg); err != nil {
		log.Printf("firebase init failed, push notifications disabled: %v", err)
	}

	log.Println("running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&event.Event{},
		&attendance.Attendance{},
		&auditlog.AuditLog{},
		&notification.NotificationLog{},
		&notification.InAppNotification{},
		&notification.FCMDeviceToken{},
		&billing.PremiumUpgrade{},
	); err != nil {
		log.Fatalf("db automigrate failed: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatalf("failed to create upload directory %s: %v", cfg.UploadDir, err)
	}

	// The dispatcher enqueues onto Kafka when brokers are configured and
	// delivers in-process otherwise; one service instance handles both.
	authRepo := auth.NewRepository(db)
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	notifSvc := notification.NewService(notification.NewRepository(db), authRepo, cfg, auditSvc)
	notifSvc.StartKafkaConsumer(context.Background())

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	routes.Setup(router, cfg, notifSvc)

	fmt.Printf("server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
