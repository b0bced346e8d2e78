package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"globobook/internal/config"
	"globobook/internal/database"
	"globobook/internal/modules/booking"
	"globobook/internal/repository"
)

// Sweeps PENDING bookings whose payment never arrived inside the
// configured window. Run from cron; the payment provider does not
// expire sessions on our schedule.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	svc := booking.NewService(repository.NewBookingRepository(db), nil, nil, cfg, log.Printf)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := svc.ExpirePending(ctx)
	if err != nil {
		log.Fatalf("expiry sweep failed: %v", err)
	}
	log.Printf("expiry sweep completed: expired=%d window=%s", n, cfg.PendingTTL)
}
