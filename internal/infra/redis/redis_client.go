package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"nexus-ai-chat/internal/config"
)

type Client interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LPush(ctx context.Context, key string, values ...interface{}) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Close() error
}

var _ Client = (*redClient)(nil)

type redClient struct {
	cli *redis.Client
}

func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redClient, error) {
	opts := &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &redClient{cli: c}, nil
}

func (c *redClient) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *redClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *redClient) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *redClient) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *redClient) LPush(ctx context.Context, key string, values ...interface{}) error {
	return c.cli.LPush(ctx, key, values...).Err()
}

func (c *redClient) LTrim(ctx context.Context, key string, start, stop int64) error {
	return c.cli.LTrim(ctx, key, start, stop).Err()
}

func (c *redClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.cli.LRange(ctx, key, start, stop).Result()
}

func (c *redClient) Close() error { return c.cli.Close() }

// IsNil reports whether err is the "key does not exist" reply.
func IsNil(err error) bool { return err == redis.Nil }
