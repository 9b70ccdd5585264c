package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lunchorder/order-system/internal/api/response"
	"github.com/lunchorder/order-system/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps known domain
// errors to status codes, logs everything else and renders {"error": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = response.Error(c, code, msg)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "no order today"
	case errors.Is(err, domain.ErrDuplicateOrder):
		return http.StatusConflict, "already ordered today"
	case errors.Is(err, domain.ErrClosedDay):
		return http.StatusUnprocessableEntity, domain.MessageClosedDay
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized, domain.MessageUnauthorized
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.MessageLoginFailed
	case errors.Is(err, domain.ErrInvalidPrincipal):
		return http.StatusBadRequest, "invalid user"
	case errors.Is(err, domain.ErrPrincipalExists):
		return http.StatusConflict, "user already exists"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, domain.MessageSystemError
}
