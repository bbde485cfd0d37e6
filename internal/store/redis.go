package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Redis stores each key as a string value under a common prefix.
type Redis struct {
	mu     sync.Mutex
	client *redis.Client
	prefix string
	owned  bool
	staged staging
	closed bool
}

// OpenRedis connects to url and verifies the server responds.
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	s := NewRedis(client, prefix)
	s.owned = true
	return s, nil
}

// NewRedis wraps an existing client. Close does not close the client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) key(k string) string {
	return s.prefix + k
}

// Get implements DocStore.
func (s *Redis) Get(ctx context.Context, key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	if raw, ok := s.staged.get(key); ok {
		return true, decode(key, raw, v)
	}

	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	return true, decode(key, raw, v)
}

// Set implements DocStore.
func (s *Redis) Set(_ context.Context, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.staged.set(key, v)
}

// Save writes staged keys in one MULTI/EXEC block.
func (s *Redis) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.staged.keys) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return s.staged.each(func(key string, raw []byte) error {
			pipe.Set(ctx, s.key(key), raw, 0)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("saving to redis: %w", err)
	}
	s.staged.reset()
	return nil
}

// Close implements DocStore. Unsaved values are discarded.
func (s *Redis) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.staged.reset()
	if s.owned {
		return s.client.Close()
	}
	return nil
}
