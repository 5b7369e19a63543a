package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisDocument.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisDocument stores the document as one string value under Key.
type RedisDocument struct {
	rdb *redis.Client
	key string
}

// ConnectRedis opens a client and verifies it with a ping.
func ConnectRedis(ctx context.Context, o RedisOptions) (*RedisDocument, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("docstore/redis: ping %s: %w", o.Addr, err)
	}
	return NewRedisDocument(rdb, o.Key), nil
}

func NewRedisDocument(rdb *redis.Client, key string) *RedisDocument {
	return &RedisDocument{rdb: rdb, key: key}
}

func (d *RedisDocument) Name() string { return "redis" }

func (d *RedisDocument) Read(ctx context.Context) ([]byte, error) {
	b, err := d.rdb.Get(ctx, d.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("docstore/redis: get %s: %w", d.key, err)
	}
	return b, nil
}

// Write uses SET, which replaces the value atomically on the server.
func (d *RedisDocument) Write(ctx context.Context, data []byte) error {
	if err := d.rdb.Set(ctx, d.key, data, 0).Err(); err != nil {
		return fmt.Errorf("docstore/redis: set %s: %w", d.key, err)
	}
	return nil
}

func (d *RedisDocument) Close() error { return d.rdb.Close() }
