package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobextract/internal/domain"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore keeps checkpoints in Redis so several workers can share them.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis connects and verifies the connection with a PING.
func NewRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: opts.KeyPrefix}, nil
}

// Key returns the Redis key holding the fingerprint of location.
func Key(prefix, location string) string {
	return prefix + location
}

func (s *RedisStore) Seen(ctx context.Context, f domain.InputFile) (bool, error) {
	v, err := s.rdb.Get(ctx, Key(s.prefix, f.Location)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redisStore.Seen: %w", err)
	}
	return v == f.Fingerprint(), nil
}

func (s *RedisStore) Mark(ctx context.Context, files []domain.InputFile) error {
	if len(files) == 0 {
		return nil
	}
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, f := range files {
			p.Set(ctx, Key(s.prefix, f.Location), f.Fingerprint(), 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisStore.Mark: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
