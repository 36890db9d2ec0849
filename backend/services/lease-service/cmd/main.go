package main

import (
	"context"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/keystonepm/mono-repo/backend/shared/go-middleware"
	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/app"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/config"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/controllers"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/routes"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/services"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize lease-service:", err)
	}
	defer application.Close()

	if cfg.LDFlag_SeedDbWithTestData {
		if err := application.SeedAllTestData(context.Background()); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	userRepo := repositories.NewUserRepository(application.DB)
	landlordRepo := repositories.NewLandlordRepository(application.DB)
	tenantRepo := repositories.NewTenantRepository(application.DB)
	propRepo := repositories.NewPropertyRepository(application.DB)
	unitRepo := repositories.NewUnitRepository(application.DB)
	leaseRepo := repositories.NewLeaseRepository(application.DB)
	eventRepo := repositories.NewLeaseEventRepository(application.DB)
	notificationRepo := repositories.NewNotificationRepository(application.DB)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(reg)
	httpMetrics := middleware.NewHTTPMetrics(cfg.AppName, reg)

	// Nil interfaces disable a channel; typed nil pointers must not leak through.
	var emailSender services.EmailSender
	if sg := services.NewSendGridEmailSender(cfg); sg != nil {
		emailSender = sg
	} else {
		utils.Logger.Warn("SENDGRID_API_KEY not set, email notifications disabled")
	}
	var smsSender services.SMSSender
	if tw := services.NewTwilioSMSSender(cfg); tw != nil {
		smsSender = tw
	} else {
		utils.Logger.Warn("Twilio credentials not set, SMS notifications disabled")
	}

	notificationService := services.NewNotificationService(cfg, notificationRepo, userRepo, emailSender, smsSender, metrics)
	parties := services.NewPartyResolver(landlordRepo, tenantRepo)
	signingService := services.NewLeaseSigningService(leaseRepo, eventRepo, parties, notificationService, metrics)
	leaseService := services.NewLeaseService(
		leaseRepo,
		eventRepo,
		unitRepo,
		propRepo,
		tenantRepo,
		parties,
		signingService,
		notificationService,
	)
	expiryService := services.NewLeaseExpiryService(leaseRepo, parties, notificationService, metrics)

	healthController := controllers.NewHealthController(application.DB)
	leaseController := controllers.NewLeaseController(leaseService)
	signingController := controllers.NewSigningController(signingService)
	notificationController := controllers.NewNotificationController(notificationService)

	router := mux.NewRouter()
	router.Use(httpMetrics.Middleware)

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	controllers.RegisterSecuredRoutes(router, cfg.RSAPublicKey, leaseController, signingController, notificationController)

	c := cron.New(cron.WithLocation(time.UTC))
	_, expiryErr := c.AddFunc(cfg.LeaseExpiryCron, func() {
		if _, e := expiryService.RunExpiryCheck(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled lease expiry check failed")
		}
	})
	if expiryErr != nil {
		utils.Logger.WithError(expiryErr).Fatal("Failed to schedule lease expiry cron")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Platform"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("lease-service failed to start:", err)
	}
}
