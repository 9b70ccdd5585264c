// Package response renders domain outcomes and errors as JSON.
package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lunchorder/order-system/internal/api/metrics"
	"github.com/lunchorder/order-system/internal/core/domain"
)

// OutcomeBody is the envelope every orchestrated entry point returns.
type OutcomeBody struct {
	Outcome     string     `json:"outcome"`
	Destination string     `json:"destination,omitempty"`
	Message     string     `json:"message,omitempty"`
	LastOrderAt *time.Time `json:"last_order_at,omitempty"`
	Username    string     `json:"username,omitempty"`
	Permission  int        `json:"permission,omitempty"`
}

// ErrorBody is the canonical error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}

// StatusFor maps an outcome kind to its HTTP status.
func StatusFor(k domain.OutcomeKind) int {
	switch k {
	case domain.OutcomeProceed:
		return http.StatusOK
	case domain.OutcomeAuthenticate, domain.OutcomeExpired, domain.OutcomeUnauthorized:
		return http.StatusUnauthorized
	case domain.OutcomeDuplicateOrder:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the envelope for out. Cause is never rendered.
func Body(out domain.Outcome) OutcomeBody {
	body := OutcomeBody{
		Outcome:     out.Kind.String(),
		Destination: out.Destination,
		Message:     out.Message,
		Username:    out.Subject,
		Permission:  int(out.Permission),
	}
	if !out.LastOrderAt.IsZero() {
		at := out.LastOrderAt
		body.LastOrderAt = &at
	}
	return body
}

// Outcome writes out and counts it against the current route.
func Outcome(c echo.Context, out domain.Outcome) error {
	metrics.SessionOutcomesTotal.WithLabelValues(entry(c), out.Kind.String()).Inc()
	return c.JSON(StatusFor(out.Kind), Body(out))
}

func Error(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorBody{Error: msg})
}

func entry(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}
