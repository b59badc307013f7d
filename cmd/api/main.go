package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"roomstay/internal/config"
	"roomstay/internal/database"
	"roomstay/internal/gateway"
	"roomstay/internal/middleware"
	"roomstay/internal/modules/auth"
	"roomstay/internal/modules/booking"
	"roomstay/internal/modules/catalog"
	"roomstay/internal/modules/notification"
	"roomstay/internal/modules/payment"
	"roomstay/internal/modules/refund"
	jwtsvc "roomstay/internal/pkg/jwt"
	"roomstay/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}
	cfg, err := config.LoadPaymentRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	loggerf := log.Printf

	gw := gateway.NewClient(gateway.ClientConfig{
		KeyID:         cfg.GatewayKeyID,
		KeySecret:     cfg.GatewayKeySecret,
		WebhookSecret: cfg.GatewayWebhookSecret,
		BaseURL:       cfg.GatewayBaseURL,
		Timeout:       cfg.GatewayTimeout,
	}, loggerf)

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	hub := notification.NewHub()
	notifService := notification.NewService(notification.NewRepository(db), hub, loggerf)
	notifHandler := notification.NewHandler(notifService, hub)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(roomRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingService := booking.NewService(bookingRepo, paymentRepo, roomRepo, notifService, loggerf)
	bookingHandler := booking.NewHandler(bookingService)

	paymentService := payment.NewService(paymentRepo, bookingRepo, gw, notifService, cfg, loggerf)
	paymentHandler := payment.NewHandler(paymentService, loggerf)

	refundService := refund.NewService(paymentRepo, bookingRepo, gw, notifService, cfg.RefundWindow, loggerf)
	refundHandler := refund.NewHandler(refundService, loggerf)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1) // gateway webhook, signature-checked

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterProtectedRoutes(protected)
			refundHandler.RegisterRoutes(protected)
			notifHandler.RegisterRoutes(protected)

			owner := protected.Group("/")
			owner.Use(middleware.RequireRole("owner"))
			{
				catalogHandler.RegisterOwnerRoutes(owner)
			}
		}
	}

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
