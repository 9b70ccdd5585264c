package ports

import (
	"context"
	"time"

	"github.com/lunchorder/order-system/internal/core/domain"
)

// OrderRepository is the authoritative store for orders. Implementations must
// reject a second non-canceled order for the same username and day with
// domain.ErrDuplicateOrder, including under concurrent inserts.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	// FindActive returns the non-canceled order for username on day
	// (YYYY-MM-DD), or domain.ErrOrderNotFound.
	FindActive(ctx context.Context, username, day string) (*domain.Order, error)
	// Cancel marks the active order for username on day as canceled.
	Cancel(ctx context.Context, username, day string, at time.Time) error
}
