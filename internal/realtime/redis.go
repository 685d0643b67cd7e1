package realtime

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel all change events go through.
const Channel = "glowmart.changes"

var _ Publisher = (*RedisPublisher)(nil)

// RedisPublisher fans change events through a Redis pub/sub channel.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher on the given Redis address.
func NewRedisPublisher(addr, password string, db int) *RedisPublisher {
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping verifies the Redis connection.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish sends one event to the change channel.
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	if err := p.client.Publish(ctx, Channel, data).Err(); err != nil {
		return errors.Wrap(err, "publish event")
	}
	return nil
}

// Subscribe delivers change events to the returned channel until ctx is
// cancelled. Malformed payloads are dropped.
func (p *RedisPublisher) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := p.client.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, errors.Wrap(err, "subscribe")
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
