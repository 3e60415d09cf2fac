package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel issued-code events are published on.
const DefaultChannel = "grantd:events"

// message is the wire shape published to the channel.
type message struct {
	Event   string  `json:"event"`
	Payload Payload `json:"payload"`
}

// RedisSink publishes events on a Redis pub/sub channel so out-of-process
// listeners can react to issued codes.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, addr, password string, db int, channel string) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisSinkWithClient(client, channel), nil
}

// NewRedisSinkWithClient wraps a pre-configured client. Useful for
// testing with miniredis.
func NewRedisSinkWithClient(client redis.UniversalClient, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Deliver(ctx context.Context, event string, payload Payload) error {
	data, err := json.Marshal(message{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
