package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DayMarkers caches "username ordered on day" facts in front of the order store.
// Key format: order:<username>:<YYYY-MM-DD>, value is the order time in RFC3339.
type DayMarkers struct {
	client redis.Cmdable
}

func NewDayMarkers(client redis.Cmdable) *DayMarkers {
	return &DayMarkers{client: client}
}

// Get reports the cached order time for username on day.
func (m *DayMarkers) Get(ctx context.Context, username, day string) (time.Time, bool, error) {
	raw, err := m.client.Get(ctx, markerKey(username, day)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("day marker get: %w", err)
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("day marker %q: %w", raw, err)
	}
	return at, true, nil
}

// Set records the order time, expiring after ttl.
func (m *DayMarkers) Set(ctx context.Context, username, day string, at time.Time, ttl time.Duration) error {
	if err := m.client.Set(ctx, markerKey(username, day), at.Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("day marker set: %w", err)
	}
	return nil
}

func (m *DayMarkers) Delete(ctx context.Context, username, day string) error {
	if err := m.client.Del(ctx, markerKey(username, day)).Err(); err != nil {
		return fmt.Errorf("day marker delete: %w", err)
	}
	return nil
}

func markerKey(username, day string) string {
	return fmt.Sprintf("order:%s:%s", username, day)
}
