package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

type cookie struct {
	value   string
	expires time.Time
}

type memTransport struct {
	entries map[string]cookie
}

func newMemTransport() *memTransport {
	return &memTransport{entries: make(map[string]cookie)}
}

func (m *memTransport) Get(name string) (string, bool) {
	c, ok := m.entries[name]
	return c.value, ok
}

func (m *memTransport) Set(name, value string, expires time.Time) {
	m.entries[name] = cookie{value: value, expires: expires}
}

func (m *memTransport) Delete(name string) {
	delete(m.entries, name)
}

// ---------------------------------------------------------------------------
// Principals
// ---------------------------------------------------------------------------

type stubPrincipalRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.Principal
	findErr   error
	updateErr error
	updates   []domain.PrincipalUpdate
}

func newStubPrincipalRepo() *stubPrincipalRepo {
	return &stubPrincipalRepo{users: make(map[string]*domain.Principal)}
}

func (r *stubPrincipalRepo) add(username, passwordHash string, p domain.Permission) {
	r.users[username] = &domain.Principal{Username: username, PasswordHash: passwordHash, Permission: p}
}

func (r *stubPrincipalRepo) FindByUsername(_ context.Context, username string) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubPrincipalRepo) Create(_ context.Context, p *domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[p.Username]; exists {
		return domain.ErrPrincipalExists
	}
	clone := *p
	r.users[p.Username] = &clone
	return nil
}

func (r *stubPrincipalRepo) Update(_ context.Context, username string, update domain.PrincipalUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[username]
	if !ok {
		return domain.ErrPrincipalNotFound
	}
	switch up := update.(type) {
	case domain.SetPasswordHash:
		u.PasswordHash = up.Hash
	case domain.SetPermission:
		u.Permission = up.Permission
	}
	r.updates = append(r.updates, update)
	return nil
}

// ---------------------------------------------------------------------------
// Orders: enforces the same uniqueness rule as the Mongo partial index.
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	mu        sync.Mutex
	orders    []*domain.Order
	findErr   error
	createErr error
	findCalls int
	onFind    func() // runs after the lookup, outside the lock
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{}
}

func (r *stubOrderRepo) activeLocked(username, day string) *domain.Order {
	for _, o := range r.orders {
		if o.Username == username && o.OrderDate == day && !o.Canceled {
			return o
		}
	}
	return nil
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.activeLocked(order.Username, order.OrderDate) != nil {
		return domain.ErrDuplicateOrder
	}
	clone := *order
	r.orders = append(r.orders, &clone)
	return nil
}

func (r *stubOrderRepo) FindActive(_ context.Context, username, day string) (*domain.Order, error) {
	r.mu.Lock()
	r.findCalls++
	err := r.findErr
	var found *domain.Order
	if o := r.activeLocked(username, day); o != nil {
		clone := *o
		found = &clone
	}
	onFind := r.onFind
	r.mu.Unlock()

	if onFind != nil {
		onFind()
	}
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrOrderNotFound
	}
	return found, nil
}

func (r *stubOrderRepo) Cancel(_ context.Context, username, day string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.activeLocked(username, day)
	if o == nil {
		return domain.ErrOrderNotFound
	}
	o.Canceled = true
	o.CanceledAt = &at
	return nil
}

func (r *stubOrderRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findCalls
}

func (r *stubOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// ---------------------------------------------------------------------------
// Day markers
// ---------------------------------------------------------------------------

type stubMarkers struct {
	mu     sync.Mutex
	marks  map[string]time.Time
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newStubMarkers() *stubMarkers {
	return &stubMarkers{marks: make(map[string]time.Time), ttls: make(map[string]time.Duration)}
}

func (m *stubMarkers) Get(_ context.Context, username, day string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return time.Time{}, false, m.getErr
	}
	at, ok := m.marks[username+"|"+day]
	return at, ok, nil
}

func (m *stubMarkers) Set(_ context.Context, username, day string, at time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.marks[username+"|"+day] = at
	m.ttls[username+"|"+day] = ttl
	return nil
}

func (m *stubMarkers) Delete(_ context.Context, username, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.marks, username+"|"+day)
	delete(m.ttls, username+"|"+day)
	return nil
}

// ---------------------------------------------------------------------------
// Migrator
// ---------------------------------------------------------------------------

type stubMigrator struct {
	queued []domain.Principal
}

func (m *stubMigrator) Enqueue(p domain.Principal) {
	m.queued = append(m.queued, p)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testKey = "service-test-secret-at-least-32-chars"

var discardLogger = zerolog.Nop()

func tokyo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(clock.DefaultTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

// lunchtime is 2026-10-14 11:30 in Tokyo.
func lunchtime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 10, 14, 11, 30, 0, 0, tokyo(t))
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

// fixture wires the whole core over in-memory stubs.
type fixture struct {
	clock      *clock.Fixed
	principals *stubPrincipalRepo
	orders     *stubOrderRepo
	markers    *stubMarkers
	migrator   *stubMigrator
	creds      *Credentials
	codec      *TokenCodec
	carrier    *SessionCarrier
	guard      *AdmissionGuard
	sessions   *SessionService
	orderSvc   *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:      clock.NewFixed(lunchtime(t)),
		principals: newStubPrincipalRepo(),
		orders:     newStubOrderRepo(),
		markers:    newStubMarkers(),
		migrator:   &stubMigrator{},
	}
	f.creds = NewCredentials(f.principals, bcrypt.MinCost)
	f.codec = NewTokenCodec([]byte(testKey), f.clock)
	f.carrier = NewSessionCarrier(f.clock)
	f.guard = NewAdmissionGuard(f.orders, f.markers, f.clock, time.Second, discardLogger)
	f.sessions = NewSessionService(f.principals, f.creds, f.codec, f.carrier, f.guard, f.migrator, f.clock, SessionConfig{}, discardLogger)
	f.orderSvc = NewOrderService(f.orders, f.guard, f.carrier, f.clock, nil, time.Second, discardLogger)

	f.principals.add("user1", mustHash(t, "user1"), domain.PermissionOrderer)
	f.principals.add("manager", mustHash(t, "manager"), domain.PermissionManager)
	f.principals.add("admin", mustHash(t, "admin"), domain.PermissionAdmin)
	return f
}

// login establishes a session for username in a fresh transport.
func (f *fixture) login(t *testing.T, username, password string) *memTransport {
	t.Helper()
	tr := newMemTransport()
	out := f.sessions.Login(context.Background(), tr, username, password)
	if out.Kind != domain.OutcomeProceed {
		t.Fatalf("login %s: expected proceed, got %v (%v)", username, out.Kind, out.Cause)
	}
	return tr
}
