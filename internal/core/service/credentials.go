package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lunchorder/order-system/internal/core/domain"
	"github.com/lunchorder/order-system/internal/core/ports"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// Credentials hashes and verifies passwords with bcrypt and migrates legacy
// plaintext credentials left by older schema versions.
type Credentials struct {
	repo  ports.PrincipalRepository
	cost  int
	dummy []byte
}

// NewCredentials returns a verifier using cost, or bcrypt.DefaultCost when
// cost is out of range.
func NewCredentials(repo ports.PrincipalRepository, cost int) *Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("lunch-order-dummy"), cost)
	return &Credentials{repo: repo, cost: cost, dummy: dummy}
}

func (c *Credentials) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. A malformed hash is a mismatch.
func (c *Credentials) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IsHashed reports whether stored is a bcrypt hash.
func IsHashed(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

// Check verifies plain against a principal's stored credential. needsMigration
// is true when the stored value is legacy plaintext.
func (c *Credentials) Check(p *domain.Principal, plain string) (ok, needsMigration bool) {
	if IsHashed(p.PasswordHash) {
		return c.Verify(plain, p.PasswordHash), false
	}
	if p.PasswordHash == "" || plain == "" {
		return false, false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(p.PasswordHash)) == 1, true
}

// Reject burns the same bcrypt work as a real comparison. Used when the
// username is unknown so timing does not reveal whether it exists.
func (c *Credentials) Reject(plain string) {
	_ = bcrypt.CompareHashAndPassword(c.dummy, []byte(plain))
}

// EnsureHashed re-hashes a legacy plaintext credential and persists it.
// It reports whether a migration happened; hashed principals are untouched.
func (c *Credentials) EnsureHashed(ctx context.Context, p *domain.Principal) (bool, error) {
	if IsHashed(p.PasswordHash) {
		return false, nil
	}
	hash, err := c.Hash(p.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("ensure hashed %s: %w", p.Username, err)
	}
	if err := c.repo.Update(ctx, p.Username, domain.SetPasswordHash{Hash: hash}); err != nil {
		return false, fmt.Errorf("ensure hashed %s: %w", p.Username, err)
	}
	p.PasswordHash = hash
	return true, nil
}
