package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lunchorder/order-system/internal/api/cookie"
	"github.com/lunchorder/order-system/internal/api/response"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Root resolves the caller's session into its entry point.
//
// @Summary      Resolve session
// @Description  Validates and renews the cookie session. Orderers who already ordered today get duplicate_order.
// @Tags         session
// @Produce      json
// @Success      200  {object}  response.OutcomeBody
// @Failure      401  {object}  response.OutcomeBody
// @Failure      409  {object}  response.OutcomeBody
// @Failure      500  {object}  response.OutcomeBody
// @Router       / [get]
func (h *SessionHandler) Root(c echo.Context) error {
	return response.Outcome(c, h.sessions.Root(c.Request().Context(), cookie.FromContext(c)))
}

// Login verifies credentials and starts a session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  response.OutcomeBody
// @Failure      400   {object}  response.ErrorBody
// @Failure      401   {object}  response.OutcomeBody
// @Failure      500   {object}  response.OutcomeBody
// @Router       /login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.Outcome(c, domain.Unauthorized(domain.MessageLoginFailed, domain.ErrInvalidCredentials))
	}

	out := h.sessions.Login(c.Request().Context(), cookie.FromContext(c), req.Username, req.Password)
	return response.Outcome(c, out)
}

// Logout clears the session cookies.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /logout [get]
func (h *SessionHandler) Logout(c echo.Context) error {
	out := h.sessions.Logout(c.Request().Context(), cookie.FromContext(c))
	return c.JSON(http.StatusOK, messageResponse{Message: out.Message})
}
