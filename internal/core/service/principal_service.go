package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

// PrincipalService provisions accounts with hashed credentials.
type PrincipalService struct {
	repo  ports.PrincipalRepository
	creds *Credentials
	clock clock.Clock
	log   zerolog.Logger
}

func NewPrincipalService(repo ports.PrincipalRepository, creds *Credentials, c clock.Clock, log zerolog.Logger) *PrincipalService {
	return &PrincipalService{repo: repo, creds: creds, clock: c, log: log}
}

func (s *PrincipalService) Provision(ctx context.Context, in ports.ProvisionInput) (*domain.Principal, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" || !in.Permission.Valid() {
		return nil, domain.ErrInvalidPrincipal
	}

	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("provision %s: %w", username, err)
	}

	now := s.clock.Now().UTC()
	p := &domain.Principal{
		Username:     username,
		Permission:   in.Permission,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("provision %s: %w", username, err)
	}

	s.log.Info().Str("username", username).Int("permission", int(in.Permission)).Msg("principal provisioned")
	return p, nil
}
