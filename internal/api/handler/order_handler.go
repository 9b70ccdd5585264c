package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lunchorder/order-system/internal/api/cookie"
	"github.com/lunchorder/order-system/internal/api/metrics"
	"github.com/lunchorder/order-system/internal/api/response"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

type OrderHandler struct {
	orders ports.OrderService
}

func NewOrderHandler(orders ports.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Submit places today's order for the signed-in orderer.
//
// @Summary      Place today's order
// @Tags         orders
// @Produce      json
// @Success      201  {object}  orderResponse
// @Failure      401  {object}  response.OutcomeBody
// @Failure      409  {object}  response.OutcomeBody
// @Failure      500  {object}  response.OutcomeBody
// @Router       /orders [post]
func (h *OrderHandler) Submit(c echo.Context) error {
	username, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	order, out := h.orders.Submit(c.Request().Context(), cookie.FromContext(c), username)
	metrics.OrderSubmissionsTotal.WithLabelValues(submissionResult(out)).Inc()
	if out.Kind != domain.OutcomeProceed {
		return response.Outcome(c, out)
	}

	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Cancel cancels today's order so another can be placed.
//
// @Summary      Cancel today's order
// @Tags         orders
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  response.OutcomeBody
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /orders/cancel [post]
func (h *OrderHandler) Cancel(c echo.Context) error {
	username, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.orders.Cancel(c.Request().Context(), cookie.FromContext(c), username); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return response.Error(c, http.StatusNotFound, "no order today")
		}
		return err
	}

	metrics.OrdersCanceledTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "canceled"})
}

func submissionResult(out domain.Outcome) string {
	switch {
	case out.Kind == domain.OutcomeProceed:
		return "accepted"
	case out.Kind == domain.OutcomeDuplicateOrder:
		return "duplicate"
	case errors.Is(out.Cause, domain.ErrClosedDay):
		return "closed"
	default:
		return "error"
	}
}
