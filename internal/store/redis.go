package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cardreader/internal/models"
)

const keyPrefix = "cardreader:batch:"

// Redis stores batches as JSON values that expire after the TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to url (redis://...) and checks the connection.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Save(ctx context.Context, b *models.Batch) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+b.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save batch %s: %w", b.ID, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (*models.Batch, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", id, err)
	}
	var b models.Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", id, err)
	}
	return &b, nil
}
