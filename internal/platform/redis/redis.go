package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connect parses a redis:// URL, dials, and pings.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// ConnectURL returns nil and a no-op cleanup when url is empty or unreachable, logging why.
func ConnectURL(ctx context.Context, url string, logger *slog.Logger) (*goredis.Client, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(url) == "" {
		return nil, func() {}
	}
	client, err := Connect(ctx, url)
	if err != nil {
		logger.Warn("redis unavailable", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("redis connection established")
	return client, func() { _ = client.Close() }
}
