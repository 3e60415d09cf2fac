package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quolldev/grantd/internal/issuer/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces authorization-code entries in a shared
// Redis deployment.
const DefaultKeyPrefix = "grantd:code:"

// RedisCodes implements Codes backed by Redis. Records are stored as
// JSON with a TTL equal to the code's remaining validity, so a cached
// entry can never outlive the code it describes.
type RedisCodes struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisOptions contains connection configuration for the code cache.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisCodes connects to Redis and verifies the connection.
func NewRedisCodes(ctx context.Context, opts RedisOptions) (*RedisCodes, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisCodesWithClient(client, opts.KeyPrefix), nil
}

// NewRedisCodesWithClient wraps a pre-configured client. Useful for
// testing with miniredis.
func NewRedisCodesWithClient(client redis.UniversalClient, keyPrefix string) *RedisCodes {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisCodes{client: client, keyPrefix: keyPrefix}
}

func (c *RedisCodes) key(clientID, code string) string {
	// Composite key: clientID || code, prefixed with the cache namespace.
	return c.keyPrefix + clientID + code
}

func (c *RedisCodes) Put(ctx context.Context, clientID, code string, record domain.AuthorizationCode) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal authorization code record: %w", err)
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return errors.New("authorization code record is already expired")
	}

	if err := c.client.Set(ctx, c.key(clientID, code), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache authorization code record: %w", err)
	}
	return nil
}

func (c *RedisCodes) Get(ctx context.Context, clientID, code string) (domain.AuthorizationCode, error) {
	data, err := c.client.Get(ctx, c.key(clientID, code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.AuthorizationCode{}, ErrNotFound
		}
		return domain.AuthorizationCode{}, fmt.Errorf("failed to read cached authorization code: %w", err)
	}

	var record domain.AuthorizationCode
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.AuthorizationCode{}, fmt.Errorf("failed to unmarshal cached authorization code: %w", err)
	}
	return record, nil
}

func (c *RedisCodes) Delete(ctx context.Context, clientID, code string) error {
	if err := c.client.Del(ctx, c.key(clientID, code)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached authorization code: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (c *RedisCodes) Close() error {
	return c.client.Close()
}

// Ping checks Redis connectivity (health check).
func (c *RedisCodes) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
