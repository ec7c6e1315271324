package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Scratch is a small key-value area with setItem/getItem/removeItem
// semantics. Values outlive a single request and expire after ttl.
type Scratch struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewScratch(client *redis.Client, prefix string, ttl time.Duration) *Scratch {
	return &Scratch{client: client, prefix: prefix, ttl: ttl}
}

// SetItem overwrites whatever is stored under key.
func (s *Scratch) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("scratch set %s: %w", key, err)
	}
	return nil
}

// GetItem returns the stored value and whether it was present.
func (s *Scratch) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("scratch get %s: %w", key, err)
	}
	return v, true, nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *Scratch) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("scratch remove %s: %w", key, err)
	}
	return nil
}
