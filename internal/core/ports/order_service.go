package ports

import (
	"context"

	"github.com/lunchorder/order-system/internal/core/domain"
)

// OrderService handles order submission under the once-per-day rule.
type OrderService interface {
	Submit(ctx context.Context, t Transport, username string) (*domain.Order, domain.Outcome)
	// Cancel cancels today's order for username, freeing the day.
	Cancel(ctx context.Context, t Transport, username string) error
}
