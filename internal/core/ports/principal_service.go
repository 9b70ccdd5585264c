package ports

import (
	"context"

	"github.com/lunchorder/order-system/internal/core/domain"
)

// ProvisionInput carries the fields needed to create an account.
type ProvisionInput struct {
	Username   string
	Password   string
	Permission domain.Permission
}

// PrincipalService provisions user accounts.
type PrincipalService interface {
	Provision(ctx context.Context, in ProvisionInput) (*domain.Principal, error)
}
