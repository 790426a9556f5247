package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/nomenalista/guestlist-backend/config"
	"github.com/nomenalista/guestlist-backend/database"
	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/auth"
	"github.com/nomenalista/guestlist-backend/internal/confirmation"
	"github.com/nomenalista/guestlist-backend/internal/event"
	"github.com/nomenalista/guestlist-backend/internal/guest"
	"github.com/nomenalista/guestlist-backend/internal/notification"
	"github.com/nomenalista/guestlist-backend/internal/promoter"
	"github.com/nomenalista/guestlist-backend/internal/reports"
	"github.com/nomenalista/guestlist-backend/routes"
	"github.com/nomenalista/guestlist-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Guest lists live in Redis; Postgres carries users, audit trail, and
	// notifications.
	rdb, err := utils.InitRedis(cfg)
	if err != nil {
		log.Fatalf("Redis init failed: %v", err)
	}

	producer := utils.InitKafka(cfg)
	defer producer.Close()

	if err := utils.InitFirebase(cfg.FCMCredentialsPath, cfg.FCMProjectID); err != nil {
		log.Printf("Firebase init failed, push notifications disabled: %v", err)
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&auditlog.AuditLog{},
		&notification.InAppNotification{},
		&notification.FCMDeviceToken{},
	); err != nil {
		log.Fatalf("DB AutoMigrate failed: %v", err)
	}

	// Repositories & services
	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, cfg)

	auditRepo := auditlog.NewRepository(db)
	auditSvc := auditlog.NewService(auditRepo)

	eventRepo := event.NewRepository(rdb)
	eventSvc := event.NewService(eventRepo, auditSvc)
	guestSvc := guest.NewService(eventRepo, auditSvc, producer, cfg)
	promoterSvc := promoter.NewService(eventRepo, authSvc, auditSvc, producer)
	confirmationSvc := confirmation.NewService(eventRepo, auditSvc, producer, cfg)

	notificationRepo := notification.NewRepository(db)
	notificationSvc := notification.NewService(notificationRepo)

	exporter := reports.NewGuestListExporter()
	reportsSvc := reports.NewService(eventRepo, exporter, auditSvc)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	go notification.StartKafkaConsumer(consumerCtx, cfg, notificationSvc)

	r := gin.Default()
	routes.SetupRoutes(r, cfg, routes.Handlers{
		Auth:         auth.NewHandler(authSvc),
		Event:        event.NewHandler(eventSvc),
		Guest:        guest.NewHandler(guestSvc),
		Promoter:     promoter.NewHandler(promoterSvc),
		Confirmation: confirmation.NewHandler(confirmationSvc),
		Notification: notification.NewHandler(notificationSvc),
		Reports:      reports.NewHandler(reportsSvc),
		AuditSvc:     auditSvc,
		AuthSvc:      authSvc,
	})

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
