package routes

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
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
	"github.com/sharath018/welfare-management-backend/internal/rbac"
	"github.com/sharath018/welfare-management-backend/internal/recurringpayment"
	"github.com/sharath018/welfare-management-backend/internal/region"
	"github.com/sharath018/welfare-management-backend/internal/reports"
	"github.com/sharath018/welfare-management-backend/internal/scheme"
	"github.com/sharath018/welfare-management-backend/internal/superadmin"
	"github.com/sharath018/welfare-management-backend/middleware"

	_ "github.com/sharath018/welfare-management-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services groups the long-lived services main.go needs after route setup
// (background consumers, the sweep ticker).
type Services struct {
	Notification     notification.Service
	RecurringPayment recurringpayment.Service
}

func Setup(r *gin.Engine, cfg *config.Config) *Services {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())
	api.Use(middleware.AuditMiddleware())

	// ========== Audit Log ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(database.DB)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	// ========== Regions ==========
	regionRepo := region.NewRepository(database.DB)
	regionSvc := region.NewService(regionRepo, auditSvc)
	regionHandler := region.NewHandler(regionSvc)

	// Scope resolution backs both middleware helpers and per-record checks
	resolver := rbac.NewResolver(regionSvc, cfg.ScopeIncludeDescendants)
	middleware.SetScopeResolver(resolver)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/otp/request", authHandler.RequestOTP)
		authGroup.POST("/otp/verify", authHandler.VerifyOTP)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.GET("/public-roles", authHandler.GetPublicRoles)
		authGroup.POST("/logout", middleware.AuthMiddleware(cfg, authSvc), authHandler.Logout)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	// ========== Admin account management ==========
	adminMgmt := protected.Group("/admin")
	adminMgmt.Use(middleware.RequirePermission(rbac.PermUsersManage))
	{
		adminMgmt.POST("/users", authHandler.CreateAdmin)
		adminMgmt.PUT("/users/:id/scope", authHandler.UpdateScope)
	}

	// ========== Regions ==========
	regionRoutes := protected.Group("/regions")
	{
		regionRoutes.GET("", regionHandler.ListRegions)
		regionRoutes.GET("/:id", regionHandler.GetRegion)
		regionRoutes.GET("/:id/hierarchy", regionHandler.GetHierarchy)

		regionWrite := regionRoutes.Group("")
		regionWrite.Use(middleware.RequirePermission(rbac.PermRegionsManage))
		{
			regionWrite.POST("", regionHandler.CreateRegion)
			regionWrite.PUT("/:id", regionHandler.UpdateRegion)
			regionWrite.PATCH("/:id/deactivate", regionHandler.DeactivateRegion)
		}
	}

	// ========== Projects ==========
	projectRepo := project.NewRepository(database.DB)
	projectSvc := project.NewService(projectRepo, auditSvc)
	projectHandler := project.NewHandler(projectSvc)

	projectRoutes := protected.Group("/projects")
	{
		projectRoutes.GET("", projectHandler.ListProjects)
		projectRoutes.GET("/:id", projectHandler.GetProject)
		projectRoutes.GET("/:id/summary", projectHandler.GetProjectSummary)

		projectWrite := projectRoutes.Group("")
		projectWrite.Use(middleware.RequireRoles(auth.RoleSuperAdmin, auth.RoleStateAdmin, auth.RoleDistrictAdmin))
		{
			projectWrite.POST("", projectHandler.CreateProject)
			projectWrite.PUT("/:id", projectHandler.UpdateProject)
			projectWrite.PATCH("/:id/archive", projectHandler.ArchiveProject)
		}
	}

	// ========== Schemes ==========
	schemeRepo := scheme.NewRepository(database.DB)
	schemeSvc := scheme.NewService(schemeRepo, auditSvc)
	schemeHandler := scheme.NewHandler(schemeSvc)

	schemeRoutes := protected.Group("/schemes")
	{
		schemeRoutes.GET("", schemeHandler.ListSchemes)
		schemeRoutes.GET("/open", schemeHandler.ListOpenSchemes)
		schemeRoutes.GET("/:id", schemeHandler.GetScheme)

		schemeWrite := schemeRoutes.Group("")
		schemeWrite.Use(middleware.RequireRoles(auth.RoleSuperAdmin, auth.RoleStateAdmin, auth.RoleDistrictAdmin))
		{
			schemeWrite.POST("", schemeHandler.CreateScheme)
			schemeWrite.PUT("/:id", schemeHandler.UpdateScheme)
			schemeWrite.PATCH("/:id/deactivate", schemeHandler.DeactivateScheme)
		}
	}

	// ========== Applications ==========
	// The beneficiary service is built first: applications copy the
	// beneficiary's region placement at creation.
	benRepo := beneficiary.NewRepository(database.DB)
	benSvc := beneficiary.NewService(benRepo, regionSvc, auditSvc)

	appRepo := application.NewRepository(database.DB)
	appSvc := application.NewService(appRepo, auditSvc, profileRegions{ben: benSvc})
	appHandler := application.NewHandler(appSvc)

	appRoutes := protected.Group("/applications")
	{
		appRoutes.POST("", middleware.RequirePermission(rbac.PermApplicationsWrite), appHandler.CreateApplication)
		appRoutes.GET("/mine", appHandler.ListMyApplications)

		appRead := appRoutes.Group("")
		appRead.Use(middleware.RequirePermission(rbac.PermApplicationsRead))
		{
			appRead.GET("", appHandler.ListApplications)
			appRead.GET("/:id", appHandler.GetApplication)
		}

		appReview := appRoutes.Group("")
		appReview.Use(middleware.RequirePermission(rbac.PermApplicationsReview))
		{
			appReview.PATCH("/:id/review", appHandler.MoveToReview)
			appReview.PATCH("/:id/approve", appHandler.ApproveApplication)
			appReview.PATCH("/:id/reject", appHandler.RejectApplication)
			appReview.PATCH("/:id/complete", appHandler.CompleteApplication)
		}

		// Cancellation is open to beneficiaries (own applications) and
		// writing admins; the handler enforces the owner-or-scope check
		appRoutes.PATCH("/:id/cancel",
			middleware.RequirePermission(rbac.PermApplicationsWrite), appHandler.CancelApplication)
	}

	// ========== Recurring payment schedules ==========
	rpRepo := recurringpayment.NewRepository(database.DB)
	rpSvc := recurringpayment.NewService(rpRepo, appSvc, auditSvc)
	rpHandler := recurringpayment.NewHandler(rpSvc, appSvc)

	rpRoutes := protected.Group("/recurring-payments")
	{
		rpRead := rpRoutes.Group("")
		rpRead.Use(middleware.RequirePermission(rbac.PermPaymentsRead))
		{
			rpRead.GET("", rpHandler.ListPayments)
			rpRead.GET("/:id", rpHandler.GetPayment)
			rpRead.GET("/forecast", rpHandler.GetBudgetForecast)
		}

		rpWrite := rpRoutes.Group("")
		rpWrite.Use(middleware.RequirePermission(rbac.PermSchedulesManage))
		{
			rpWrite.PATCH("/:id/record", rpHandler.RecordPayment)
			rpWrite.PUT("/:id", rpHandler.UpdatePayment)
			rpWrite.PATCH("/:id/cancel", rpHandler.CancelPayment)
			rpWrite.POST("/sweep", rpHandler.RunSweep)
		}
	}

	scheduleRoutes := protected.Group("/applications/:id/schedule")
	scheduleRoutes.Use(middleware.RequirePermission(rbac.PermSchedulesManage))
	{
		scheduleRoutes.POST("", rpHandler.GenerateSchedule)
		scheduleRoutes.DELETE("", rpHandler.CancelSchedule)
	}
	protected.GET("/applications/:id/payments",
		middleware.RequirePermission(rbac.PermPaymentsRead), rpHandler.ListByApplication)

	// ========== One-off payments ==========
	payRepo := payment.NewRepository(database.DB)
	paySvc := payment.NewService(payRepo, appSvc, auditSvc)
	payHandler := payment.NewHandler(paySvc, appSvc)

	payRoutes := protected.Group("/payments")
	{
		payRoutes.GET("", middleware.RequirePermission(rbac.PermPaymentsRead), payHandler.ListPayments)
		payRoutes.GET("/:id", middleware.RequirePermission(rbac.PermPaymentsRead), payHandler.GetPayment)

		payWrite := payRoutes.Group("")
		payWrite.Use(middleware.RequirePermission(rbac.PermPaymentsWrite))
		{
			payWrite.POST("", payHandler.CreatePayment)
			payWrite.PATCH("/:id/complete", payHandler.CompletePayment)
			payWrite.PATCH("/:id/fail", payHandler.FailPayment)
		}
	}

	// ========== Interviews ==========
	ivRepo := interview.NewRepository(database.DB)
	ivSvc := interview.NewService(ivRepo, appSvc, rpSvc, paySvc, authSvc, auditSvc)
	ivHandler := interview.NewHandler(ivSvc, appSvc)

	ivRoutes := protected.Group("/interviews")
	ivRoutes.Use(middleware.RequirePermission(rbac.PermInterviewsManage))
	{
		ivRoutes.GET("", ivHandler.ListInterviews)
		ivRoutes.POST("", ivHandler.ScheduleInterview)
		ivRoutes.GET("/:id", ivHandler.GetInterview)
		ivRoutes.PATCH("/:id/reschedule", ivHandler.RescheduleInterview)
		ivRoutes.PATCH("/:id/result", ivHandler.RecordResult)
		ivRoutes.PATCH("/:id/cancel", ivHandler.CancelInterview)
	}
	protected.GET("/applications/:id/interviews",
		middleware.RequirePermission(rbac.PermInterviewsManage), ivHandler.ListByApplication)

	// ========== Notifications ==========
	notifRepo := notification.NewRepository(database.DB)
	notifSvc := notification.NewService(notifRepo)
	notifHandler := notification.NewHandler(notifSvc)

	// Break the wiring cycle: schedule and interview events notify users
	rpSvc.SetNotifService(notifSvc)
	ivSvc.SetNotifService(notifSvc)

	notifRoutes := protected.Group("/notifications")
	{
		notifRoutes.GET("", notifHandler.ListMyNotifications)
		notifRoutes.GET("/unread-count", notifHandler.GetUnreadCount)
		notifRoutes.PATCH("/:id/read", notifHandler.MarkRead)
		notifRoutes.PATCH("/read-all", notifHandler.MarkAllRead)
		notifRoutes.POST("/device-tokens", notifHandler.RegisterDeviceToken)
		notifRoutes.DELETE("/device-tokens", notifHandler.UnregisterDeviceToken)
	}

	// ========== Beneficiary profiles ==========
	benHandler := beneficiary.NewHandler(benSvc)

	benRoutes := protected.Group("/beneficiaries")
	{
		benRoutes.GET("/me", benHandler.GetMyProfile)
		benRoutes.PUT("/me", benHandler.SaveMyProfile)

		benAdmin := benRoutes.Group("")
		benAdmin.Use(middleware.RequirePermission(rbac.PermApplicationsRead))
		{
			benAdmin.GET("", benHandler.ListBeneficiaries)
			benAdmin.GET("/:id", benHandler.GetBeneficiary)
		}
	}

	// ========== Donations ==========
	donRepo := donation.NewRepository(database.DB)
	donSvc := donation.NewService(donRepo, cfg, auditSvc)
	donHandler := donation.NewHandler(donSvc)

	donRoutes := protected.Group("/donations")
	{
		donRoutes.POST("", donHandler.StartDonation)
		donRoutes.POST("/verify", donHandler.VerifyPayment)
		donRoutes.GET("/mine", donHandler.ListMyDonations)
		donRoutes.GET("/:id/receipt", donHandler.GetReceipt)

		donAdmin := donRoutes.Group("")
		donAdmin.Use(middleware.RequirePermission(rbac.PermDonationsRead))
		{
			donAdmin.GET("", donHandler.ListDonations)
			donAdmin.GET("/stats", donHandler.GetDashboardStats)
			donAdmin.GET("/top-donors", donHandler.GetTopDonors)
		}
	}

	// ========== Reports ==========
	reportsRepo := reports.NewRepository(database.DB)
	reportsExporter := reports.NewReportExporter()
	reportsSvc := reports.NewService(reportsRepo, reportsExporter, auditSvc)
	reportsHandler := reports.NewHandler(reportsSvc)

	protected.GET("/reports/:type",
		middleware.RequirePermission(rbac.PermReportsCreate), reportsHandler.ExportReport)

	// ========== Audit logs ==========
	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RequirePermission(rbac.PermAuditRead))
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	// ========== Super admin ==========
	saRepo := superadmin.NewRepository(database.DB)
	saSvc := superadmin.NewService(saRepo, auditSvc)
	saHandler := superadmin.NewHandler(saSvc)

	saRoutes := protected.Group("/superadmin")
	saRoutes.Use(middleware.RequireRoles(auth.RoleSuperAdmin))
	{
		saRoutes.GET("/users", saHandler.ListAdminUsers)
		saRoutes.GET("/users/:id", saHandler.GetAdminUser)
		saRoutes.PATCH("/users/:id/status", saHandler.UpdateUserStatus)
		saRoutes.GET("/stats", saHandler.GetPlatformStats)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return &Services{
		Notification:     notifSvc,
		RecurringPayment: rpSvc,
	}
}

// profileRegions adapts the beneficiary service to the application package's
// region source: new applications inherit the profile's region chain.
type profileRegions struct {
	ben beneficiary.Service
}

func (p profileRegions) RegionPlacement(ctx context.Context, userID uint) (application.RegionPlacement, error) {
	profile, err := p.ben.GetProfile(ctx, userID)
	if err != nil {
		return application.RegionPlacement{}, err
	}
	return application.RegionPlacement{
		StateID:    profile.StateID,
		DistrictID: profile.DistrictID,
		AreaID:     profile.AreaID,
		UnitID:     profile.UnitID,
	}, nil
}
