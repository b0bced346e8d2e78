package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"globobook/internal/cache"
	"globobook/internal/config"
	"globobook/internal/database"
	"globobook/internal/middleware"
	"globobook/internal/modules/auth"
	"globobook/internal/modules/booking"
	"globobook/internal/modules/notification"
	"globobook/internal/modules/payment"
	jwtsvc "globobook/internal/pkg/jwt"
	"globobook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	statusCache := cache.New(cfg.RedisAddr, cfg.CacheTTL)

	provider := payment.NewProviderClient(
		cfg.PaymentBaseURL, cfg.PaymentAPIKey, cfg.PaymentWebhookSecret,
		cfg.CollabTimeout, cfg.WebhookTolerance, log.Printf,
	)
	emailClient := notification.NewClient(cfg.EmailBaseURL, cfg.EmailAPIKey, cfg.EmailFrom, cfg.CollabTimeout)
	dispatcher := notification.NewDispatcher(emailClient, log.Printf)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(j, cfg.StaffEmail, cfg.StaffPasswordHash)
	authHandler := auth.NewHandler(authService)

	bookingService := booking.NewService(bookingRepo, provider, statusCache, cfg, log.Printf)
	bookingHandler := booking.NewHandler(bookingService)

	reconciliation := payment.NewService(bookingRepo, bookingRepo, statusCache, payment.Templates{
		Confirmation: cfg.TemplateConfirmation,
		Failed:       cfg.TemplateFailed,
		StaffAlert:   cfg.TemplateStaffAlert,
	}, cfg.StaffAlertEmail, log.Printf)
	webhookHandler := payment.NewHandler(provider, reconciliation, dispatcher, log.Printf)

	r := gin.Default()
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		bookingHandler.RegisterPublicRoutes(v1)
		webhookHandler.RegisterPublicRoutes(v1)

		// staff (check-in)
		protected := v1.Group("/")
		protected.Use(middleware.StaffAuth(j))
		{
			bookingHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
