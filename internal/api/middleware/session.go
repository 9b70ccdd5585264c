package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/lunchorder/order-system/internal/api/cookie"
	"github.com/lunchorder/order-system/internal/api/response"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

// Context keys set for downstream handlers.
const (
	KeyUsername   = "username"
	KeyPermission = "permission"
)

// RequireSession validates the cookie session and renews it.
func RequireSession(sessions ports.SessionService) echo.MiddlewareFunc {
	return RequirePermission(sessions)
}

// RequirePermission validates the session and admits only the listed
// permission levels. Anything else is rendered as the outcome, never
// redirected to another role's entry point.
func RequirePermission(sessions ports.SessionService, allowed ...domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			out := sessions.Authorize(c.Request().Context(), cookie.FromContext(c), allowed...)
			if out.Kind != domain.OutcomeProceed {
				return response.Outcome(c, out)
			}

			c.Set(KeyUsername, out.Subject)
			c.Set(KeyPermission, out.Permission)
			return next(c)
		}
	}
}
