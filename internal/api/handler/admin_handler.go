package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lunchorder/order-system/internal/api/metrics"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

type AdminHandler struct {
	principals ports.PrincipalService
}

func NewAdminHandler(principals ports.PrincipalService) *AdminHandler {
	return &AdminHandler{principals: principals}
}

// Provision creates an account.
//
// @Summary      Provision a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      provisionRequest  true  "Account"
// @Success      201   {object}  principalResponse
// @Failure      400   {object}  response.ErrorBody
// @Failure      401   {object}  response.OutcomeBody
// @Failure      409   {object}  response.ErrorBody
// @Failure      422   {object}  response.ErrorBody
// @Router       /admin/users [post]
func (h *AdminHandler) Provision(c echo.Context) error {
	var req provisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	p, err := h.principals.Provision(c.Request().Context(), ports.ProvisionInput{
		Username:   req.Username,
		Password:   req.Password,
		Permission: domain.Permission(req.Permission),
	})
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalExists) {
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		}
		return err
	}

	metrics.PrincipalsProvisionedTotal.Inc()
	return c.JSON(http.StatusCreated, toPrincipalResponse(p))
}
