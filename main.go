package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gate-access-backend/config"
	"gate-access-backend/controllers"
	"gate-access-backend/routes"
	"gate-access-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	if os.Getenv("OCR_API_KEY") == "" {
		log.Println("⚠️  OCR_API_KEY not set; only client-extracted IDs will resolve on /api/guard/scan")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	// Services
	userService := services.NewUserService(db)
	propertyService := services.NewPropertyService(db)
	bookingService := services.NewBookingService(db)
	accessService := services.NewAccessService(db)
	luggageService := services.NewLuggageService(db)
	paymentService := services.NewPaymentService(db, userService)
	ocrClient := services.NewOCRClient()

	// Controllers
	authController := controllers.NewAuthController(userService)
	userController := controllers.NewUserController(userService)
	propertyController := controllers.NewPropertyController(propertyService)
	bookingController := controllers.NewBookingController(bookingService)
	guardController := controllers.NewGuardController(accessService, luggageService, bookingService, ocrClient)
	luggageController := controllers.NewLuggageController(luggageService)
	billingController := controllers.NewBillingController(paymentService)
	logsController := controllers.NewLogsController(accessService, luggageService)

	router := routes.SetupRouter(
		db,
		authController,
		userController,
		propertyController,
		bookingController,
		guardController,
		luggageController,
		billingController,
		logsController,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
