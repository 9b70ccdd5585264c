package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lunchorder/order-system/internal/api/middleware"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

type stubSessionService struct {
	rootFn   func(ctx context.Context, t ports.Transport) domain.Outcome
	loginFn  func(ctx context.Context, t ports.Transport, username, password string) domain.Outcome
	logoutFn func(ctx context.Context, t ports.Transport) domain.Outcome
}

func (s *stubSessionService) Root(ctx context.Context, t ports.Transport) domain.Outcome {
	return s.rootFn(ctx, t)
}

func (s *stubSessionService) Validate(context.Context, ports.Transport) domain.Outcome {
	panic("unexpected Validate")
}

func (s *stubSessionService) Authorize(context.Context, ports.Transport, ...domain.Permission) domain.Outcome {
	panic("unexpected Authorize")
}

func (s *stubSessionService) Login(ctx context.Context, t ports.Transport, username, password string) domain.Outcome {
	return s.loginFn(ctx, t, username, password)
}

func (s *stubSessionService) Logout(ctx context.Context, t ports.Transport) domain.Outcome {
	return s.logoutFn(ctx, t)
}

type stubOrderService struct {
	submitFn func(ctx context.Context, t ports.Transport, username string) (*domain.Order, domain.Outcome)
	cancelFn func(ctx context.Context, t ports.Transport, username string) error
}

func (s *stubOrderService) Submit(ctx context.Context, t ports.Transport, username string) (*domain.Order, domain.Outcome) {
	return s.submitFn(ctx, t, username)
}

func (s *stubOrderService) Cancel(ctx context.Context, t ports.Transport, username string) error {
	return s.cancelFn(ctx, t, username)
}

type stubPrincipalService struct {
	provisionFn func(ctx context.Context, in ports.ProvisionInput) (*domain.Principal, error)
}

func (s *stubPrincipalService) Provision(ctx context.Context, in ports.ProvisionInput) (*domain.Principal, error) {
	return s.provisionFn(ctx, in)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// signedIn marks c as having passed RequirePermission.
func signedIn(c echo.Context, username string, p domain.Permission) {
	c.Set(middleware.KeyUsername, username)
	c.Set(middleware.KeyPermission, p)
}

func lunchtime() time.Time {
	return time.Date(2026, 10, 14, 11, 30, 0, 0, time.FixedZone("JST", 9*60*60))
}
