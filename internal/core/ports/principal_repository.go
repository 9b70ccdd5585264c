package ports

import (
	"context"

	"github.com/lunchorder/order-system/internal/core/domain"
)

// PrincipalRepository defines persistence for user accounts.
type PrincipalRepository interface {
	// FindByUsername returns domain.ErrPrincipalNotFound when no account exists.
	FindByUsername(ctx context.Context, username string) (*domain.Principal, error)
	// Create returns domain.ErrPrincipalExists on a username collision.
	Create(ctx context.Context, p *domain.Principal) error
	Update(ctx context.Context, username string, update domain.PrincipalUpdate) error
}
