package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/config"
	"github.com/sharath018/welfare-management-backend/database"
	"github.com/sharath018/welfare-management-backend/internal/application"
	"github.com/sharath018/welfare-management-backend/internal/auditlog"
	"github.com/sharath018/welfare-management-backend/internal/auth"
	"github.com/sharath018/welfare-management-backend/internal/beneficiary"
	"github.com/sharath018/welfare-management-backend/internal/donation"
	"github.com/sharath018/welfare-management-backend/internal/interview"
	"github.com/sharath018/welfare-management-backend/internal/notification"
	"github.com/sharath018/welfare-management-backend/internal/payment"
	"github.com/sharath018/welfare-management-backend/internal/project"
	"github.com/sharath018/welfare-management-backend/internal/recurringpayment"
	"github.com/sharath018/welfare-management-backend/internal/region"
	"github.com/sharath018/welfare-management-backend/internal/scheme"
	"github.com/sharath018/welfare-management-backend/routes"
	"github.com/sharath018/welfare-management-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Init Redis (OTP codes, reset tokens)
	if err := utils.InitRedis(); err != nil {
		log.Fatalf("❌ Redis init failed: %v", err)
	}

	// Init Kafka (notification event bus)
	utils.InitializeKafka()

	// Init Firebase push delivery; the platform runs without it
	log.Println("🔄 Initializing Firebase...")
	if err := utils.InitFirebase(); err != nil {
		log.Printf("⚠️ Firebase initialization failed: %v", err)
		log.Println("ℹ️ Continuing without Firebase (push notifications disabled)")
	} else if utils.IsFCMEnabled() {
		log.Println("✅ Firebase and FCM initialized successfully")
	} else {
		log.Println("⚠️ Firebase initialized but FCM client unavailable")
	}

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.UserRole{},
		&auth.User{},
		&auth.AdminScope{},
		&auditlog.AuditLog{},
		&region.Region{},
		&project.Project{},
		&scheme.Scheme{},
		&beneficiary.BeneficiaryProfile{},
		&application.Application{},
		&interview.Interview{},
		&payment.Payment{},
		&recurringpayment.RecurringPayment{},
		&donation.Donation{},
		&notification.InAppNotification{},
		&notification.NotificationLog{},
		&notification.FCMDeviceToken{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	// Seed roles & super admin
	if err := auth.SeedUserRoles(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed roles: %v", err))
	}
	if err := auth.SeedSuperAdminUser(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed Super Admin: %v", err))
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	svcs := routes.Setup(router, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Kafka consumer fans events out to in-app, push and email channels
	go notification.StartConsumer(ctx, svcs.Notification)

	// Periodic sweep advances scheduled → due → overdue
	go runSweepLoop(ctx, svcs.RecurringPayment, cfg.SweepIntervalMinutes)

	fmt.Printf("🚀 Server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		panic(fmt.Sprintf("Failed to start server: %v", err))
	}
}

func runSweepLoop(ctx context.Context, svc recurringpayment.Service, intervalMinutes int) {
	ticker := time.NewTicker(time.Duration(intervalMinutes) * time.Minute)
	defer ticker.Stop()

	// Run once at startup so a long downtime is corrected immediately
	if result, err := svc.RunOverdueSweep(ctx); err != nil {
		log.Printf("❌ Startup sweep failed: %v", err)
	} else {
		log.Printf("✅ Startup sweep: %d due, %d overdue", result.MarkedDue, result.MarkedOverdue)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("🔄 Sweep loop stopping")
			return
		case <-ticker.C:
			result, err := svc.RunOverdueSweep(ctx)
			if err != nil {
				log.Printf("❌ Scheduled sweep failed: %v", err)
				continue
			}
			if result.MarkedDue > 0 || result.MarkedOverdue > 0 {
				log.Printf("✅ Sweep: %d due, %d overdue", result.MarkedDue, result.MarkedOverdue)
			}
		}
	}
}
