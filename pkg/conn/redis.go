package conn

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yanun0323/errors"
)

const defaultRedisDialTimeout = 5 * time.Second

// RedisOption defines connection options for Redis.
type RedisOption struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"poolSize"`
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, option RedisOption) (*redis.Client, error) {
	if option.Addr == "" {
		return nil, errors.New("redis addr is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:        option.Addr,
		Password:    option.Password,
		DB:          option.DB,
		PoolSize:    option.PoolSize,
		DialTimeout: defaultRedisDialTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, defaultRedisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis").With("addr", option.Addr)
	}
	return client, nil
}
