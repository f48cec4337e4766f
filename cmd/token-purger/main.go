package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	authpostgres "github.com/Apurer/shelter-api/internal/domains/auth/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/shelter-api/internal/platform/postgres"
)

// Deletes refresh tokens past their expiry. Redis-backed deployments do not need it; keys carry a TTL.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("DATABASE_URL not set or connection failed; cannot purge refresh tokens")
	}

	purged, err := authpostgres.NewRefreshTokenStore(db).PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge refresh tokens: %v", err)
	}
	logger.Info("refresh token purge completed", slog.Int64("purged", purged))
}
