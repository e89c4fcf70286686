package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisSlot struct {
	client *redis.Client
	prefix string
}

// NewRedisSlot returns a Slot backed by a Redis server at addr. Keys are
// stored as <prefix><key>.
func NewRedisSlot(addr, prefix string) (Slot, error) {
	if addr == "" {
		return nil, fmt.Errorf("opening redis slot: address must not be empty")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &redisSlot{client: client, prefix: prefix}, nil
}

func (s *redisSlot) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisSlot) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

func (s *redisSlot) Close() error {
	return s.client.Close()
}
