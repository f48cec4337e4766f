package api

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	authjwt "github.com/Apurer/shelter-api/internal/domains/auth/adapters/jwt"
	adoptionworkflows "github.com/Apurer/shelter-api/internal/platform/temporal/workflows/adoptions"
)

// Refresh token store backends.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	DatabaseURL       string
	RedisURL          string
	RefreshTokenStore string
	JWT               authjwt.Config
	SeedStaffPassword string
	TemporalAddress   string
	TemporalNamespace string
	TemporalTaskQueue string
	ConfirmAsync      bool
	ShutdownTimeout   time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		RefreshTokenStore: strings.ToLower(strings.TrimSpace(os.Getenv("REFRESH_TOKEN_STORE"))),
		JWT: authjwt.Config{
			AccessSecret:  strings.TrimSpace(os.Getenv("JWT_ACCESS_SECRET")),
			RefreshSecret: strings.TrimSpace(os.Getenv("JWT_REFRESH_SECRET")),
		},
		SeedStaffPassword: envDefault("SEED_STAFF_PASSWORD", "1234"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalTaskQueue: envDefault("TEMPORAL_TASK_QUEUE", adoptionworkflows.ConfirmationTaskQueue),
		ConfirmAsync:      isTruthy(os.Getenv("ADOPTION_CONFIRM_ASYNC")),
	}

	var err error
	if cfg.JWT.AccessTTL, err = durationEnv("JWT_ACCESS_TTL", authjwt.DefaultAccessTTL); err != nil {
		return Config{}, err
	}
	if cfg.JWT.RefreshTTL, err = durationEnv("JWT_REFRESH_TTL", authjwt.DefaultRefreshTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return Config{}, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if cfg.JWT.AccessSecret == cfg.JWT.RefreshSecret {
		return Config{}, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	switch cfg.RefreshTokenStore {
	case "", StoreRedis, StorePostgres, StoreMemory:
	default:
		return Config{}, fmt.Errorf("REFRESH_TOKEN_STORE must be one of redis, postgres, memory")
	}
	if cfg.RefreshTokenStore == StoreRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_STORE=redis requires REDIS_URL")
	}
	if cfg.RefreshTokenStore == StorePostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_STORE=postgres requires DATABASE_URL")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
