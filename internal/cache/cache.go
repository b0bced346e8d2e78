package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"globobook/internal/domain"
)

// BookingCache fronts the booking-status read path the UI polls while
// waiting for the payment redirect to complete. A nil *BookingCache is
// a valid no-op cache, so callers never branch on configuration.
type BookingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr string, ttl time.Duration) *BookingCache {
	if addr == "" {
		return nil
	}
	return &BookingCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func key(idOrCode string) string { return "booking:" + idOrCode }

func (c *BookingCache) Get(ctx context.Context, idOrCode string) (*domain.Booking, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(idOrCode)).Bytes()
	if err != nil {
		return nil, false
	}
	var b domain.Booking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, false
	}
	return &b, true
}

func (c *BookingCache) Set(ctx context.Context, b *domain.Booking) error {
	if c == nil || b == nil {
		return nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key(b.ID), raw, c.ttl)
	pipe.Set(ctx, key(b.ConfirmationCode), raw, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate drops both lookup keys after a status transition.
func (c *BookingCache) Invalidate(ctx context.Context, idOrCodes ...string) error {
	if c == nil || len(idOrCodes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(idOrCodes))
	for _, k := range idOrCodes {
		if k != "" {
			keys = append(keys, key(k))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	err := c.client.Del(ctx, keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (c *BookingCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
