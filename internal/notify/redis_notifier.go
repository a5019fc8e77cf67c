package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NotificationChannel is the Redis pub/sub channel the admin UI subscribes
// to for toast messages.
const NotificationChannel = "admin_notifications"

// RedisNotifier publishes notifications on a Redis pub/sub channel.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(client *redis.Client) Notifier {
	return &RedisNotifier{client: client}
}

// Notify publishes the notification as JSON. Delivery is best-effort:
// subscribers that are not listening at publish time miss the message and
// that is acceptable for a toast surface.
func (s *RedisNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := s.client.Publish(ctx, NotificationChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
