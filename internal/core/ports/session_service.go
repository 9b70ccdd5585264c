package ports

import (
	"context"

	"github.com/lunchorder/order-system/internal/core/domain"
)

// SessionService orchestrates session validation for every protected entry.
type SessionService interface {
	Root(ctx context.Context, t Transport) domain.Outcome
	Validate(ctx context.Context, t Transport) domain.Outcome
	Authorize(ctx context.Context, t Transport, allowed ...domain.Permission) domain.Outcome
	Login(ctx context.Context, t Transport, username, password string) domain.Outcome
	Logout(ctx context.Context, t Transport) domain.Outcome
}
