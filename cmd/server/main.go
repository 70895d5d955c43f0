package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/azure-divers/booking-api/internal/config"
	"github.com/azure-divers/booking-api/internal/database"
	"github.com/azure-divers/booking-api/internal/handler"
	"github.com/azure-divers/booking-api/internal/queue"
	"github.com/azure-divers/booking-api/internal/repository"
	"github.com/azure-divers/booking-api/internal/router"
	"github.com/azure-divers/booking-api/internal/service"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the rate limiter and response cache
	// become passthroughs.
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	bookings := repository.NewBookingRepo(db)
	availability := repository.NewAvailabilityRepo(db)
	history := repository.NewHistoryRepo(db)
	contacts := repository.NewContactRepo(db)
	users := repository.NewUserRepo(db)

	svc := service.NewBookingService(db, bookings, availability, history)

	h := router.Handlers{
		Bookings:     handler.NewBookingHandler(svc),
		Availability: handler.NewAvailabilityHandler(availability),
		Contacts:     handler.NewContactHandler(contacts),
		Auth:         handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin),
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, cfg, rdb)

	// The consumer keeps its own reconnect loop alive for the process
	// lifetime; it never returns under normal operation.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests. Booking
	// transactions are short, so ten seconds is generous.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("server stopped")
}
