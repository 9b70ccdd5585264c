package service

import "github.com/lunchorder/order-system/internal/core/domain"

// Role entry points.
const (
	DestinationOrderEntry = "/users/order_complete"
	DestinationManager    = "/managers/orders"
	DestinationShop       = "/shops/orders"
	DestinationAdmin      = "/admin"
	DestinationError      = "/error"
)

var destinations = map[domain.Permission]string{
	domain.PermissionOrderer: DestinationOrderEntry,
	domain.PermissionManager: DestinationManager,
	domain.PermissionShop:    DestinationShop,
	domain.PermissionAdmin:   DestinationAdmin,
}

// DestinationFor maps a permission level to its entry point.
func DestinationFor(p domain.Permission) string {
	if d, ok := destinations[p]; ok {
		return d
	}
	return DestinationError
}

// Allows reports whether p is in allowed. An empty allowed set admits any
// known permission.
func Allows(p domain.Permission, allowed ...domain.Permission) bool {
	if len(allowed) == 0 {
		return p.Valid()
	}
	for _, a := range allowed {
		if a == p {
			return true
		}
	}
	return false
}
