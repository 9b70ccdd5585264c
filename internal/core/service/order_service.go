package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

// OrderService accepts at most one order per orderer per civil day.
type OrderService struct {
	orders   ports.OrderRepository
	guard    *AdmissionGuard
	carrier  *SessionCarrier
	clock    clock.Clock
	calendar *clock.Calendar
	timeout  time.Duration
	log      zerolog.Logger
}

func NewOrderService(
	orders ports.OrderRepository,
	guard *AdmissionGuard,
	carrier *SessionCarrier,
	c clock.Clock,
	calendar *clock.Calendar,
	timeout time.Duration,
	log zerolog.Logger,
) *OrderService {
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &OrderService{
		orders:   orders,
		guard:    guard,
		carrier:  carrier,
		clock:    c,
		calendar: calendar,
		timeout:  timeout,
		log:      log,
	}
}

// Submit runs admission, the authoritative insert and then marks the day, in
// that order. A concurrent duplicate that slips past admission is caught by
// the store's uniqueness constraint and reported as DuplicateOrder.
func (s *OrderService) Submit(ctx context.Context, t ports.Transport, username string) (*domain.Order, domain.Outcome) {
	now := s.clock.Now()
	if s.calendar.IsClosed(now) {
		return nil, domain.Unauthorized(domain.MessageClosedDay, domain.ErrClosedDay)
	}

	// The client marker may be stale (canceled elsewhere), so never deny on it.
	adm, err := s.guard.ConfirmAdmission(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("admission check failed")
		return nil, domain.SystemError(err)
	}
	if !adm.Allowed {
		s.carrier.WriteOrderMarker(t, username, adm.LastOrderAt, clock.EndOfDay(now))
		return nil, domain.DuplicateOrder(adm.LastOrderAt)
	}

	order := &domain.Order{
		ID:        uuid.NewString(),
		Username:  username,
		OrderDate: clock.Day(now),
		CreatedAt: now,
	}

	if err := s.create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			return nil, s.conflict(ctx, t, username, err)
		}
		s.log.Error().Err(err).Str("username", username).Msg("failed to create order")
		return nil, domain.SystemError(err)
	}

	expires := s.guard.RecordOrder(ctx, username, order.CreatedAt)
	s.carrier.WriteOrderMarker(t, username, order.CreatedAt, expires)

	s.log.Info().Str("order_id", order.ID).Str("username", username).Str("order_date", order.OrderDate).Msg("order accepted")
	return order, domain.Proceed(DestinationOrderEntry, username, domain.PermissionOrderer)
}

// Cancel cancels today's active order. It returns domain.ErrOrderNotFound
// when there is nothing to cancel; the day markers are dropped either way so
// a device holding a stale marker can order again.
func (s *OrderService) Cancel(ctx context.Context, t ports.Transport, username string) error {
	now := s.clock.Now()

	cancelCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.orders.Cancel(cancelCtx, username, clock.Day(now), now)
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		return fmt.Errorf("cancel order: %w", err)
	}

	s.guard.Forget(ctx, username)
	s.carrier.ClearOrderMarker(t)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	s.log.Info().Str("username", username).Str("order_date", clock.Day(now)).Msg("order canceled")
	return nil
}

func (s *OrderService) create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.orders.Create(ctx, order)
}

// conflict resolves a uniqueness violation into the winning order's timestamp.
func (s *OrderService) conflict(ctx context.Context, t ports.Transport, username string, cause error) domain.Outcome {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	existing, err := s.orders.FindActive(lookupCtx, username, clock.Day(s.clock.Now()))
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("order conflict but no active order found")
		return domain.SystemError(fmt.Errorf("%w: %v", cause, err))
	}

	expires := s.guard.RecordOrder(ctx, username, existing.CreatedAt)
	s.carrier.WriteOrderMarker(t, username, existing.CreatedAt, expires)
	return domain.DuplicateOrder(existing.CreatedAt)
}
