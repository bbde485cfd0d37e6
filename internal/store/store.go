// Package store persists the board as a small key/value document. Writes
// are staged until Save, so a snapshot lands as one unit.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/antopolskiy/taskt/internal/config"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// DocStore is a key/value document store with an explicit flush.
type DocStore interface {
	// Get decodes the value under key into v. It reports false when the key
	// is absent.
	Get(ctx context.Context, key string, v any) (bool, error)
	// Set stages v under key. Staged values are visible to Get but are not
	// durable until Save.
	Set(ctx context.Context, key string, v any) error
	// Save makes every staged value durable, in staging order.
	Save(ctx context.Context) error
	Close() error
}

// Reloader is implemented by stores that cache the document in memory and
// can re-read it after an external change.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config) (DocStore, error) {
	switch cfg.Store.Backend {
	case config.BackendJSON:
		return OpenJSONFile(cfg.StorePath())
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.StorePath())
	case config.BackendRedis:
		prefix := cfg.Store.RedisPrefix
		if prefix == "" {
			prefix = config.DefaultRedisPrefix
		}
		return OpenRedis(ctx, cfg.Store.RedisURL, prefix)
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalid, cfg.Store.Backend)
	}
}

// staging keeps values set since the last Save in first-set order.
type staging struct {
	keys []string
	vals map[string]json.RawMessage
}

func (s *staging) set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if s.vals == nil {
		s.vals = make(map[string]json.RawMessage)
	}
	if _, ok := s.vals[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.vals[key] = raw
	return nil
}

func (s *staging) get(key string) (json.RawMessage, bool) {
	raw, ok := s.vals[key]
	return raw, ok
}

func (s *staging) each(fn func(key string, raw []byte) error) error {
	for _, k := range s.keys {
		if err := fn(k, s.vals[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *staging) reset() {
	s.keys = nil
	s.vals = nil
}

func decode(key string, raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}
