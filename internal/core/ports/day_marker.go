package ports

import (
	"context"
	"time"
)

// DayMarkerStore is a server-side cache of "username ordered on day". It is a
// fast path only; OrderRepository stays the source of truth.
type DayMarkerStore interface {
	Get(ctx context.Context, username, day string) (at time.Time, found bool, err error)
	Set(ctx context.Context, username, day string, at time.Time, ttl time.Duration) error
	Delete(ctx context.Context, username, day string) error
}
