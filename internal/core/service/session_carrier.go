package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

// Transport entry names.
const (
	CookieSubject     = "sub"
	CookieToken       = "token"
	CookiePermission  = "permission"
	CookieExpires     = "expires"
	CookieLastOrderAt = "last_order_date"
)

// SessionLifetime is the default token lifetime. Cookies always expire with
// the token they carry.
const SessionLifetime = 30 * 24 * time.Hour

// orderMarkerSep joins the owning subject and the order time in the marker.
const orderMarkerSep = "|"

var sessionCookies = []string{CookieSubject, CookieToken, CookiePermission, CookieExpires}

// SessionCarrier moves a Session in and out of a Transport.
type SessionCarrier struct {
	clock clock.Clock
}

func NewSessionCarrier(c clock.Clock) *SessionCarrier {
	return &SessionCarrier{clock: c}
}

// Write sets all four session entries to expire together with the token.
func (sc *SessionCarrier) Write(t ports.Transport, s domain.Session) {
	until := s.ExpiresAt
	if until.IsZero() {
		until = sc.clock.Now().Add(SessionLifetime)
	}
	t.Set(CookieSubject, s.Subject, until)
	t.Set(CookieToken, s.Token, until)
	t.Set(CookiePermission, strconv.Itoa(int(s.Permission)), until)
	t.Set(CookieExpires, s.ExpiresAt.UTC().Format(time.RFC3339), until)
}

// Read reconstructs the session. A missing entry yields domain.ErrSessionAbsent;
// an unparsable one yields domain.ErrMalformedSession.
func (sc *SessionCarrier) Read(t ports.Transport) (domain.Session, error) {
	subject, p, err := sc.Peek(t)
	if err != nil {
		return domain.Session{}, err
	}

	token, ok := t.Get(CookieToken)
	if !ok || token == "" {
		return domain.Session{}, domain.ErrSessionAbsent
	}
	rawExpires, ok := t.Get(CookieExpires)
	if !ok || rawExpires == "" {
		return domain.Session{}, domain.ErrSessionAbsent
	}
	expiresAt, err := time.Parse(time.RFC3339, rawExpires)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: expires %q", domain.ErrMalformedSession, rawExpires)
	}

	return domain.Session{
		Subject:    subject,
		Token:      token,
		Permission: p,
		ExpiresAt:  expiresAt,
	}, nil
}

// Peek reads only the identity and permission entries.
func (sc *SessionCarrier) Peek(t ports.Transport) (string, domain.Permission, error) {
	subject, ok := t.Get(CookieSubject)
	if !ok || subject == "" {
		return "", 0, domain.ErrSessionAbsent
	}
	raw, ok := t.Get(CookiePermission)
	if !ok || raw == "" {
		return "", 0, domain.ErrSessionAbsent
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, fmt.Errorf("%w: permission %q", domain.ErrMalformedSession, raw)
	}
	return subject, domain.Permission(n), nil
}

// Clear removes every session entry and the day order marker.
func (sc *SessionCarrier) Clear(t ports.Transport) {
	for _, name := range sessionCookies {
		t.Delete(name)
	}
	t.Delete(CookieLastOrderAt)
}

// ReadOrderMarker returns the last accepted order time the client carries for
// username. A marker owned by another subject, or one that does not parse,
// is ignored.
func (sc *SessionCarrier) ReadOrderMarker(t ports.Transport, username string) (time.Time, bool) {
	raw, ok := t.Get(CookieLastOrderAt)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	i := strings.LastIndex(raw, orderMarkerSep)
	if i < 0 || raw[:i] != username {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, raw[i+len(orderMarkerSep):])
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

func (sc *SessionCarrier) WriteOrderMarker(t ports.Transport, username string, at, expires time.Time) {
	t.Set(CookieLastOrderAt, username+orderMarkerSep+at.Format(time.RFC3339), expires)
}

func (sc *SessionCarrier) ClearOrderMarker(t ports.Transport) {
	t.Delete(CookieLastOrderAt)
}
