package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// View answers a role entry point. Rendering the page itself happens upstream.
//
// @Summary      Role entry point
// @Tags         session
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      401  {object}  response.OutcomeBody
// @Router       /users/order_complete [get]
// @Router       /managers/orders [get]
// @Router       /shops/orders [get]
// @Router       /admin [get]
func View(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		username, p, err := ctxPrincipal(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, viewResponse{View: name, Username: username, Permission: int(p)})
	}
}
