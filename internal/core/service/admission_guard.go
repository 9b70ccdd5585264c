package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

const defaultStorageTimeout = 3 * time.Second

// AdmissionGuard enforces at most one accepted order per user per civil day.
// Markers on the client and in the cache can only deny; allowing always takes
// a round trip to the authoritative order store.
type AdmissionGuard struct {
	orders  ports.OrderRepository
	markers ports.DayMarkerStore
	clock   clock.Clock
	timeout time.Duration
	log     zerolog.Logger
}

// NewAdmissionGuard wires the guard. markers may be nil to disable the cache.
func NewAdmissionGuard(
	orders ports.OrderRepository,
	markers ports.DayMarkerStore,
	c clock.Clock,
	timeout time.Duration,
	log zerolog.Logger,
) *AdmissionGuard {
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &AdmissionGuard{
		orders:  orders,
		markers: markers,
		clock:   c,
		timeout: timeout,
		log:     log,
	}
}

// CheckAdmission decides whether username may place an order today. hint is
// the marker carried by the client, zero when absent; a same-day hint denies
// without touching storage, so it is only fit for read-only routing. A storage
// failure is returned as an error and must be treated as a denial.
func (g *AdmissionGuard) CheckAdmission(ctx context.Context, username string, hint time.Time) (domain.Admission, error) {
	now := g.clock.Now()
	if !hint.IsZero() && clock.SameDay(hint, now, now.Location()) {
		return domain.Deny(hint, domain.SourceTransport), nil
	}
	return g.ConfirmAdmission(ctx, username)
}

// ConfirmAdmission decides from the cache and the order store only. Actions
// that create orders must use it instead of CheckAdmission.
func (g *AdmissionGuard) ConfirmAdmission(ctx context.Context, username string) (domain.Admission, error) {
	day := clock.Day(g.clock.Now())

	if g.markers != nil {
		at, found, err := g.getMarker(ctx, username, day)
		if err != nil {
			g.log.Warn().Err(err).Str("username", username).Msg("day marker lookup failed, checking store")
		} else if found {
			return domain.Deny(at, domain.SourceCache), nil
		}
	}

	order, err := g.findActive(ctx, username, day)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return domain.Allow(), nil
	}
	if err != nil {
		return domain.Admission{}, fmt.Errorf("admission check %s: %w", username, err)
	}

	// Warm the cache so the next check skips the store.
	g.setMarker(ctx, username, order.CreatedAt)
	return domain.Deny(order.CreatedAt, domain.SourceStore), nil
}

// RecordOrder marks username as having ordered at at. It must only be called
// after the authoritative insert has committed. It returns the instant the
// marker expires, 23:59:59 of that civil day.
func (g *AdmissionGuard) RecordOrder(ctx context.Context, username string, at time.Time) time.Time {
	g.setMarker(ctx, username, at)
	return clock.EndOfDay(g.civil(at))
}

// Forget drops today's cached marker for username.
func (g *AdmissionGuard) Forget(ctx context.Context, username string) {
	if g.markers == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.markers.Delete(ctx, username, clock.Day(g.clock.Now())); err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("failed to delete day marker")
	}
}

func (g *AdmissionGuard) civil(t time.Time) time.Time {
	return t.In(g.clock.Now().Location())
}

func (g *AdmissionGuard) getMarker(ctx context.Context, username, day string) (time.Time, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.markers.Get(ctx, username, day)
}

func (g *AdmissionGuard) findActive(ctx context.Context, username, day string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.orders.FindActive(ctx, username, day)
}

func (g *AdmissionGuard) setMarker(ctx context.Context, username string, at time.Time) {
	if g.markers == nil {
		return
	}
	local := g.civil(at)
	// TTL counts from now: a warmed marker for an earlier order still has to
	// expire at the end of today.
	ttl := clock.UntilEndOfDay(g.clock.Now())
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.markers.Set(ctx, username, clock.Day(local), local, ttl); err != nil {
		g.log.Warn().Err(err).Str("username", username).Msg("failed to set day marker")
	}
}
