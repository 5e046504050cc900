package cache

import (
	"context"
	stdErrors "errors"
	"time"

	"dateplanner-api/core/config"
	"dateplanner-api/core/constants"
	"dateplanner-api/core/logger"

	"github.com/redis/go-redis/v9"
)

// Cache is the key/value surface the services depend on.
type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error

	AddToTokenBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)

	// IncrementLoginAttempt bumps the failed-login counter for key and
	// returns the new count. The counter expires after the block window.
	IncrementLoginAttempt(ctx context.Context, key string) (int64, error)

	SaveOAuthNonce(ctx context.Context, nonce string) error
	// ConsumeOAuthNonce deletes the nonce and reports whether it existed.
	ConsumeOAuthNonce(ctx context.Context, nonce string) (bool, error)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Cache:NewRedisClient:Ping:Error", "error", err, "addr", cfg.Addr)
		return nil, err
	}

	logger.Info("Cache:NewRedisClient:Success", "addr", cfg.Addr)
	return client, nil
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if stdErrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

func (c *RedisCache) AddToTokenBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	return c.client.Set(ctx, constants.RedisKeyTokenBlacklist+token, "1", ttl).Err()
}

func (c *RedisCache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, constants.RedisKeyTokenBlacklist+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) IncrementLoginAttempt(ctx context.Context, key string) (int64, error) {
	fullKey := constants.RedisKeyLoginAttempt + key
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, constants.LoginBlockDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *RedisCache) SaveOAuthNonce(ctx context.Context, nonce string) error {
	return c.client.Set(ctx, constants.RedisKeyOAuthState+nonce, "1", constants.OAuthStateTTL).Err()
}

func (c *RedisCache) ConsumeOAuthNonce(ctx context.Context, nonce string) (bool, error) {
	_, err := c.client.GetDel(ctx, constants.RedisKeyOAuthState+nonce).Result()
	if stdErrors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
