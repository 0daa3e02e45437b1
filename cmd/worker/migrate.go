package main

import (
	"context"
	"log"
	"time"

	"github.com/vinnesia/domainform-backend/config"
	"github.com/vinnesia/domainform-backend/internal/db"
	"github.com/vinnesia/domainform-backend/internal/logging"
)

// RunMigrate applies the embedded schema migrations.
func RunMigrate(_ []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, cfg.Database.PostgresDSN()); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
