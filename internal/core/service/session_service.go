package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

// CredentialMigrator schedules a legacy credential for re-hashing.
type CredentialMigrator interface {
	Enqueue(p domain.Principal)
}

// SessionConfig tunes a SessionService.
type SessionConfig struct {
	// TokenTTL is the sliding lifetime of an issued token. Defaults to SessionLifetime.
	TokenTTL time.Duration
	// StorageTimeout bounds each persistence call.
	StorageTimeout time.Duration
}

// SessionService validates, renews and establishes sessions and routes the
// resulting principal to its role destination.
type SessionService struct {
	principals ports.PrincipalRepository
	creds      *Credentials
	codec      *TokenCodec
	carrier    *SessionCarrier
	guard      *AdmissionGuard
	migrator   CredentialMigrator
	clock      clock.Clock
	cfg        SessionConfig
	log        zerolog.Logger
}

func NewSessionService(
	principals ports.PrincipalRepository,
	creds *Credentials,
	codec *TokenCodec,
	carrier *SessionCarrier,
	guard *AdmissionGuard,
	migrator CredentialMigrator,
	c clock.Clock,
	cfg SessionConfig,
	log zerolog.Logger,
) *SessionService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = SessionLifetime
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = defaultStorageTimeout
	}
	return &SessionService{
		principals: principals,
		creds:      creds,
		codec:      codec,
		carrier:    carrier,
		guard:      guard,
		migrator:   migrator,
		clock:      c,
		cfg:        cfg,
		log:        log,
	}
}

// Root is the flow behind GET /. An orderer who already ordered today is
// short-circuited to DuplicateOrder before any token work.
func (s *SessionService) Root(ctx context.Context, t ports.Transport) domain.Outcome {
	subject, p, err := s.carrier.Peek(t)
	switch {
	case errors.Is(err, domain.ErrMalformedSession):
		s.log.Warn().Err(err).Msg("malformed session cookies, clearing")
		s.carrier.Clear(t)
		return domain.Authenticate(domain.MessageWelcome, err)

	case err == nil && p.IsOrderer():
		hint, _ := s.carrier.ReadOrderMarker(t, subject)
		adm, err := s.guard.CheckAdmission(ctx, subject, hint)
		if err != nil {
			s.log.Error().Err(err).Str("username", subject).Msg("admission check failed")
			return domain.SystemError(err)
		}
		if !adm.Allowed {
			if adm.Source != domain.SourceTransport {
				s.carrier.WriteOrderMarker(t, subject, adm.LastOrderAt, clock.EndOfDay(s.clock.Now()))
			}
			return domain.DuplicateOrder(adm.LastOrderAt)
		}

	case err == nil:
		s.carrier.ClearOrderMarker(t)
	}

	return s.Validate(ctx, t)
}

// Validate checks the carried session and, when valid, renews the token for
// another full lifetime.
func (s *SessionService) Validate(_ context.Context, t ports.Transport) domain.Outcome {
	sess, err := s.carrier.Read(t)
	if errors.Is(err, domain.ErrSessionAbsent) {
		return domain.Authenticate(domain.MessageWelcome, err)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("malformed session cookies, clearing")
		s.carrier.Clear(t)
		return domain.Authenticate(domain.MessageWelcome, err)
	}

	// The cookie copy of the expiry can only make the session stricter.
	if s.clock.Now().After(sess.ExpiresAt) {
		s.carrier.Clear(t)
		return domain.Expired(domain.MessageTokenExpired)
	}

	claims, err := s.codec.Decode(sess.Token)
	if errors.Is(err, domain.ErrTokenExpired) {
		s.log.Info().Str("username", claims.Subject).Msg("session token expired")
		s.carrier.Clear(t)
		return domain.Expired(domain.MessageTokenExpired)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("event", "token_invalid").Str("cookie_subject", sess.Subject).Msg("rejected session token")
		s.carrier.Clear(t)
		return domain.Authenticate(domain.MessageWelcome, err)
	}
	if claims.Subject != sess.Subject || claims.Permission != sess.Permission {
		s.log.Warn().
			Str("event", "token_invalid").
			Str("cookie_subject", sess.Subject).
			Str("token_subject", claims.Subject).
			Int("cookie_permission", int(sess.Permission)).
			Int("token_permission", int(claims.Permission)).
			Msg("session cookies do not match token claims")
		s.carrier.Clear(t)
		return domain.Authenticate(domain.MessageWelcome, domain.ErrTokenSignatureInvalid)
	}

	return s.establish(t, claims.Subject, claims.Permission)
}

// Authorize validates the session and requires its permission to be in allowed.
func (s *SessionService) Authorize(ctx context.Context, t ports.Transport, allowed ...domain.Permission) domain.Outcome {
	out := s.Validate(ctx, t)
	if out.Kind != domain.OutcomeProceed {
		return out
	}
	if !Allows(out.Permission, allowed...) {
		s.log.Info().Str("username", out.Subject).Int("permission", int(out.Permission)).Msg("permission not allowed for entry point")
		return domain.Unauthorized(domain.MessageUnauthorized, domain.ErrNotAuthorized)
	}
	return out
}

// Login verifies credentials and establishes a fresh session. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, t ports.Transport, username, password string) domain.Outcome {
	if username == "" || password == "" {
		return domain.Unauthorized(domain.MessageLoginFailed, domain.ErrInvalidCredentials)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
	defer cancel()

	p, err := s.principals.FindByUsername(lookupCtx, username)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		s.creds.Reject(password)
		return domain.Unauthorized(domain.MessageLoginFailed, domain.ErrInvalidCredentials)
	}
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("principal lookup failed")
		return domain.SystemError(err)
	}

	ok, needsMigration := s.creds.Check(p, password)
	if !ok {
		s.log.Info().Str("username", username).Msg("credential mismatch")
		return domain.Unauthorized(domain.MessageLoginFailed, domain.ErrInvalidCredentials)
	}
	if needsMigration && s.migrator != nil {
		s.migrator.Enqueue(*p)
	}

	if !p.Permission.IsOrderer() {
		s.carrier.ClearOrderMarker(t)
	}

	out := s.establish(t, p.Username, p.Permission)
	if out.Kind == domain.OutcomeProceed {
		s.log.Info().Str("username", p.Username).Int("permission", int(p.Permission)).Msg("login")
	}
	return out
}

// Logout discards every client-held session entry.
func (s *SessionService) Logout(_ context.Context, t ports.Transport) domain.Outcome {
	s.carrier.Clear(t)
	return domain.Authenticate(domain.MessageWelcome, nil)
}

func (s *SessionService) establish(t ports.Transport, subject string, p domain.Permission) domain.Outcome {
	token, expiresAt, err := s.codec.Issue(subject, p, s.cfg.TokenTTL)
	if err != nil {
		s.log.Error().Err(err).Str("username", subject).Msg("failed to issue token")
		return domain.SystemError(err)
	}
	s.carrier.Write(t, domain.Session{
		Subject:    subject,
		Token:      token,
		Permission: p,
		ExpiresAt:  expiresAt,
	})
	// A marker left by another user on this client must not follow the new session.
	if _, ok := s.carrier.ReadOrderMarker(t, subject); !ok {
		s.carrier.ClearOrderMarker(t)
	}
	return domain.Proceed(DestinationFor(p), subject, p)
}
