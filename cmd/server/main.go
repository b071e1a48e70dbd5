package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catering_orders/internal/config"
	"catering_orders/internal/database"
	"catering_orders/internal/handlers"
	"catering_orders/internal/middleware"
	"catering_orders/internal/migrations"
	"catering_orders/internal/pricing"
	"catering_orders/internal/redis"
	"catering_orders/internal/repository"
	"catering_orders/internal/reservation"
	"catering_orders/internal/services"
	"catering_orders/pkg/auth"
	"catering_orders/pkg/kafka"
	"catering_orders/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg := config.Load()
	appLog := logger.NewLogger("catering-orders")

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.LogSQL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db, migrations.AdminAccount{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Order and wallet events
	var events services.EventPublisher = kafka.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatal("Failed to start Kafka producer:", err)
		}
		defer producer.Close()
		events = producer
	} else {
		log.Println("KAFKA_BROKERS not set, events will not be published")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	txManager := database.NewTxManager(db, cfg.DBLockTimeout)
	resolver := pricing.NewResolver(pricing.Config{
		RoundingUnit:      decimal.NewFromInt(int64(cfg.PricingRoundingUnit)),
		HonorRoundingTier: cfg.PricingHonorRoundingTier,
	})
	guard := reservation.NewGuard(cfg.ReservationLeadDays)

	userService := services.NewUserService(userRepo)
	companyService := services.NewCompanyService(txManager, companyRepo, walletRepo, redisClient, time.Duration(cfg.CacheTTL)*time.Second, appLog)
	walletService := services.NewWalletService(txManager, walletRepo, userRepo, events, appLog)
	couponService := services.NewCouponService(discountRepo, time.Now)
	menuService := services.NewMenuService(menuRepo, userRepo, companyService, resolver, time.Now)
	orderService := services.NewOrderService(services.OrderServiceDeps{
		Tx:         txManager,
		Orders:     orderRepo,
		Users:      userRepo,
		Menus:      menuRepo,
		Coupons:    couponService,
		Calculator: services.NewPriceCalculator(orderRepo, userRepo, menuRepo, resolver, time.Now),
		Settlement: services.NewSettlementService(userRepo, companyRepo, walletRepo, orderRepo),
		Guard:      guard,
		Events:     events,
		Logger:     appLog,
	})

	// Initialize handlers
	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	if err := handlers.RegisterValidators(); err != nil {
		log.Fatal("Failed to register validators:", err)
	}

	// Setup routes
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: len(cfg.CORSOrigins) > 0 && cfg.CORSOrigins[0] != "*",
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimit, time.Duration(cfg.RateLimitWindow)*time.Second))

	handlers.SetupRoutes(router, handlers.Handlers{
		Auth:      handlers.NewAuthHandler(userService, tokens, appLog),
		Orders:    handlers.NewOrderHandler(orderService, appLog),
		Wallets:   handlers.NewWalletHandler(walletService, userService, appLog),
		Companies: handlers.NewCompanyHandler(companyService, userService, appLog),
		Discounts: handlers.NewDiscountHandler(couponService, appLog),
		Menus:     handlers.NewMenuHandler(menuService, appLog),
	}, tokens)

	// Start server
	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: router}
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
