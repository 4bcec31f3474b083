// Package notify publishes triggered bills to a Redis channel so billing
// desks can follow new charges as they are raised.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"poms/pkg/domain"
)

// DefaultChannel carries one JSON message per bill.
const DefaultChannel = "poms:bills"

// Event is the published message body.
type Event struct {
	Type string      `json:"type"`
	Bill domain.Bill `json:"bill"`
}

// RedisNotifier publishes bills with PUBLISH.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
	logger  zerolog.Logger
}

// NewRedisNotifier wraps an existing client. An empty channel uses
// DefaultChannel.
func NewRedisNotifier(client redis.UniversalClient, channel string, logger zerolog.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// Dial parses a redis:// URL and pings the server.
func Dial(ctx context.Context, url, channel string, logger zerolog.Logger) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisNotifier(client, channel, logger), nil
}

// Channel returns the channel bills are published on.
func (n *RedisNotifier) Channel() string { return n.channel }

// NotifyBills publishes each bill. It stops at the first failure.
func (n *RedisNotifier) NotifyBills(ctx context.Context, bills []domain.Bill) error {
	for _, bill := range bills {
		data, err := json.Marshal(Event{Type: "bill.created", Bill: bill})
		if err != nil {
			return fmt.Errorf("marshal bill %d: %w", bill.ID, err)
		}
		if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
			return fmt.Errorf("publish bill %d: %w", bill.ID, err)
		}
		n.logger.Debug().Int("bill_id", bill.ID).Str("channel", n.channel).Msg("bill published")
	}
	return nil
}

// Close releases the client.
func (n *RedisNotifier) Close() error { return n.client.Close() }
