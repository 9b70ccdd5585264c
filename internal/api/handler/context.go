package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lunchorder/order-system/internal/api/middleware"
	"github.com/lunchorder/order-system/internal/core/domain"
)

// ctxPrincipal reads the identity RequirePermission stored on the context.
// An empty username means the middleware did not run.
func ctxPrincipal(c echo.Context) (string, domain.Permission, error) {
	username, _ := c.Get(middleware.KeyUsername).(string)
	if username == "" {
		return "", 0, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	p, _ := c.Get(middleware.KeyPermission).(domain.Permission)
	return username, p, nil
}
