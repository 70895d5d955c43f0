package main // dbinit creates the schema, seeds availability and provisions the admin account

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/azure-divers/booking-api/internal/config"
	"github.com/azure-divers/booking-api/internal/database"
	"github.com/azure-divers/booking-api/internal/model"
	"github.com/azure-divers/booking-api/internal/repository"
)

const (
	seedDays        = 90
	seedSlotsPerDay = 20
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema creation failed: %v", err)
	}
	log.Println("schema ready")

	seeded, err := database.SeedAvailability(ctx, db, seedDays, seedSlotsPerDay)
	if err != nil {
		log.Fatalf("availability seeding failed: %v", err)
	}
	if seeded > 0 {
		log.Printf("seeded %d availability rows (%d slots/day)", seeded, seedSlotsPerDay)
	} else {
		log.Println("availability already seeded, skipping")
	}

	// Provision the initial admin account when credentials are supplied.
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin account")
		return
	}

	users := repository.NewUserRepo(db)
	id, err := users.Create(ctx, email, password, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			log.Printf("admin account %s already exists", email)
			return
		}
		log.Fatalf("admin account creation failed: %v", err)
	}
	log.Printf("created admin account %s (id=%d)", email, id)
}
