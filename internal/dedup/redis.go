package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a processed update id is remembered.
// Telegram stops redelivering an update well within a day.
const DefaultTTL = 24 * time.Hour

// Redis is a Store backed by a shared Redis instance, for deployments
// running more than one webhook worker.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{
		client: client,
		ttl:    ttl,
	}, nil
}

func (r *Redis) Seen(ctx context.Context, updateID int) (bool, error) {
	// SET NX is the atomic mark-and-check.
	set, err := r.client.SetNX(ctx, updateKey(updateID), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark update: %w", err)
	}
	return !set, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func updateKey(updateID int) string {
	return fmt.Sprintf("update:seen:%d", updateID)
}
