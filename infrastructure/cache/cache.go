package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewCache connects the optional Redis client. A failed ping returns an
// error so callers can continue without caching features.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}
