// Package redisstore provides a Redis-backed implementation of the storage.Store interface.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Store keeps the snapshot under a single Redis key without expiry.
type Store struct {
	rdb *redis.Client
	key string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewWithClient(rdb, opts.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, key string) *Store {
	if key == "" {
		key = storage.DefaultKey
	}
	return &Store{rdb: rdb, key: key}
}

// LoadState reads the snapshot key.
func (s *Store) LoadState(ctx context.Context) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return data, nil
}

// SaveState overwrites the snapshot key.
func (s *Store) SaveState(ctx context.Context, data []byte) error {
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Health pings Redis.
func (s *Store) Health(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
