package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/domain"
)

func assertCleared(t *testing.T, tr *memTransport) {
	t.Helper()
	for _, name := range []string{CookieSubject, CookieToken, CookiePermission, CookieExpires, CookieLastOrderAt} {
		if _, ok := tr.Get(name); ok {
			t.Errorf("expected %s cleared", name)
		}
	}
}

func TestRoot_NoSessionAsksToAuthenticate(t *testing.T) {
	f := newFixture(t)

	out := f.sessions.Root(context.Background(), newMemTransport())
	if out.Kind != domain.OutcomeAuthenticate || out.Message != domain.MessageWelcome {
		t.Fatalf("expected Authenticate(welcome), got %v %q", out.Kind, out.Message)
	}
	if f.orders.calls() != 0 {
		t.Fatal("anonymous root must not touch the order store")
	}
}

func TestLogin_OrdererRoutesToOrderEntry(t *testing.T) {
	f := newFixture(t)
	tr := newMemTransport()

	out := f.sessions.Login(context.Background(), tr, "user1", "user1")
	if out.Kind != domain.OutcomeProceed {
		t.Fatalf("expected proceed, got %v (%v)", out.Kind, out.Cause)
	}
	if out.Destination != DestinationOrderEntry || out.Subject != "user1" || out.Permission != domain.PermissionOrderer {
		t.Fatalf("unexpected outcome %+v", out)
	}

	for _, name := range []string{CookieSubject, CookieToken, CookiePermission, CookieExpires} {
		c, ok := tr.entries[name]
		if !ok {
			t.Fatalf("expected %s to be written", name)
		}
		if !c.expires.Equal(f.clock.Now().Add(SessionLifetime)) {
			t.Errorf("%s expires at %v", name, c.expires)
		}
	}
	if v, _ := tr.Get(CookieExpires); v != "2026-11-13T02:30:00Z" {
		t.Errorf("expires entry = %q", v)
	}
}

func TestLogin_RoutesEveryRole(t *testing.T) {
	f := newFixture(t)
	f.principals.add("shop", mustHash(t, "shop"), domain.PermissionShop)

	tests := []struct{ user, want string }{
		{"manager", DestinationManager},
		{"shop", DestinationShop},
		{"admin", DestinationAdmin},
	}
	for _, tt := range tests {
		out := f.sessions.Login(context.Background(), newMemTransport(), tt.user, tt.user)
		if out.Destination != tt.want {
			t.Errorf("%s routed to %q, want %q", tt.user, out.Destination, tt.want)
		}
	}
}

func TestRoot_OrdererWithOrderTodayIsDuplicate(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")

	order, out := f.orderSvc.Submit(context.Background(), tr, "user1")
	if out.Kind != domain.OutcomeProceed {
		t.Fatalf("submit: %v (%v)", out.Kind, out.Cause)
	}

	f.clock.Advance(time.Hour)
	got := f.sessions.Root(context.Background(), tr)
	if got.Kind != domain.OutcomeDuplicateOrder {
		t.Fatalf("expected duplicate order, got %v", got.Kind)
	}
	if !got.LastOrderAt.Equal(order.CreatedAt) {
		t.Fatalf("lastOrderAt = %v, want %v", got.LastOrderAt, order.CreatedAt)
	}
}

func TestRoot_DuplicateDetectedWithoutClientMarker(t *testing.T) {
	f := newFixture(t)
	phone := f.login(t, "user1", "user1")
	if _, out := f.orderSvc.Submit(context.Background(), phone, "user1"); out.Kind != domain.OutcomeProceed {
		t.Fatalf("submit: %v", out.Kind)
	}

	// Second device, no marker cookie, cache flushed.
	laptop := f.login(t, "user1", "user1")
	f.markers.marks = map[string]time.Time{}

	out := f.sessions.Root(context.Background(), laptop)
	if out.Kind != domain.OutcomeDuplicateOrder {
		t.Fatalf("expected duplicate from store, got %v", out.Kind)
	}
	if _, ok := laptop.Get(CookieLastOrderAt); !ok {
		t.Fatal("expected the marker to be propagated to the client")
	}
}

func TestLogin_MarkerFromPreviousUserIsDropped(t *testing.T) {
	f := newFixture(t)
	f.principals.add("user2", mustHash(t, "user2"), domain.PermissionOrderer)

	shared := f.login(t, "user1", "user1")
	if _, out := f.orderSvc.Submit(context.Background(), shared, "user1"); out.Kind != domain.OutcomeProceed {
		t.Fatalf("submit: %v", out.Kind)
	}

	if out := f.sessions.Login(context.Background(), shared, "user2", "user2"); out.Kind != domain.OutcomeProceed {
		t.Fatalf("login user2: %v", out.Kind)
	}
	if _, ok := shared.Get(CookieLastOrderAt); ok {
		t.Fatal("expected the previous user's marker removed on login")
	}

	out := f.sessions.Root(context.Background(), shared)
	if out.Kind != domain.OutcomeProceed || out.Subject != "user2" {
		t.Fatalf("expected user2 to proceed, got %v %q", out.Kind, out.Subject)
	}
	if !out.LastOrderAt.IsZero() {
		t.Fatalf("user1's order time leaked: %v", out.LastOrderAt)
	}
	if _, out := f.orderSvc.Submit(context.Background(), shared, "user2"); out.Kind != domain.OutcomeProceed {
		t.Fatalf("expected user2 order accepted, got %v", out.Kind)
	}
}

func TestRoot_IgnoresMarkerOwnedByAnotherUser(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	f.carrier.WriteOrderMarker(tr, "user2", f.clock.Now(), clock.EndOfDay(f.clock.Now()))

	out := f.sessions.Root(context.Background(), tr)
	if out.Kind != domain.OutcomeProceed || out.Destination != DestinationOrderEntry {
		t.Fatalf("expected proceed, got %v", out.Kind)
	}
	if f.orders.calls() != 1 {
		t.Fatalf("expected the store to decide, got %d lookups", f.orders.calls())
	}
	if _, ok := tr.Get(CookieLastOrderAt); ok {
		t.Fatal("expected the foreign marker removed")
	}
}

func TestRoot_NewDayAdmitsAgain(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	if _, out := f.orderSvc.Submit(context.Background(), tr, "user1"); out.Kind != domain.OutcomeProceed {
		t.Fatalf("submit: %v", out.Kind)
	}

	f.clock.Advance(24 * time.Hour)
	f.markers.marks = map[string]time.Time{}

	out := f.sessions.Root(context.Background(), tr)
	if out.Kind != domain.OutcomeProceed || out.Destination != DestinationOrderEntry {
		t.Fatalf("expected proceed on the next day, got %v", out.Kind)
	}
}

func TestRoot_ExpiredTokenClearsSession(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")

	// Re-issue a token that expired yesterday while the cookie copy still
	// claims far in the future.
	token, _, err := f.codec.Issue("user1", domain.PermissionOrderer, -24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tr.Set(CookieToken, token, f.clock.Now().Add(time.Hour))

	out := f.sessions.Root(context.Background(), tr)
	if out.Kind != domain.OutcomeExpired || out.Message != domain.MessageTokenExpired {
		t.Fatalf("expected Expired(token expired), got %v %q", out.Kind, out.Message)
	}
	if !out.RequiresLogin() {
		t.Fatal("expired should require login")
	}
	assertCleared(t, tr)
}

func TestValidate_PastExpiresEntryIsExpired(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	tr.Set(CookieExpires, f.clock.Now().Add(-time.Minute).UTC().Format(time.RFC3339), f.clock.Now().Add(time.Hour))

	out := f.sessions.Validate(context.Background(), tr)
	if out.Kind != domain.OutcomeExpired {
		t.Fatalf("expected Expired, got %v", out.Kind)
	}
	assertCleared(t, tr)
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")

	// Exactly at expiry the session is still valid.
	f.clock.Advance(SessionLifetime)
	if out := f.sessions.Validate(context.Background(), tr); out.Kind != domain.OutcomeProceed {
		t.Fatalf("expected proceed at the expiry instant, got %v", out.Kind)
	}

	tr = f.login(t, "user1", "user1")
	f.clock.Advance(SessionLifetime + time.Second)
	if out := f.sessions.Validate(context.Background(), tr); out.Kind != domain.OutcomeExpired {
		t.Fatalf("expected expired one second past expiry, got %v", out.Kind)
	}
}

func TestRoot_MalformedPermissionTreatedAsAbsent(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	tr.Set(CookiePermission, "abc", f.clock.Now().Add(time.Hour))

	out := f.sessions.Root(context.Background(), tr)
	if out.Kind != domain.OutcomeAuthenticate || out.Message != domain.MessageWelcome {
		t.Fatalf("expected Authenticate(welcome), got %v %q", out.Kind, out.Message)
	}
	if !errors.Is(out.Cause, domain.ErrMalformedSession) {
		t.Fatalf("expected malformed cause, got %v", out.Cause)
	}
	if f.orders.calls() != 0 {
		t.Fatal("malformed session must not reach the admission guard")
	}
	assertCleared(t, tr)
}

func TestRoot_AdminBypassesAdmission(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "admin", "admin")
	tr.Set(CookieLastOrderAt, f.clock.Now().Format(time.RFC3339), f.clock.Now().Add(time.Hour))

	out := f.sessions.Root(context.Background(), tr)
	if out.Kind != domain.OutcomeProceed || out.Destination != DestinationAdmin {
		t.Fatalf("expected proceed to admin, got %v %q", out.Kind, out.Destination)
	}
	if f.orders.calls() != 0 {
		t.Fatal("admin root must not consult the order store")
	}
	if _, ok := tr.Get(CookieLastOrderAt); ok {
		t.Fatal("expected stale order marker removed for non-orderer")
	}
}

func TestRoot_AdmissionStoreFailureIsSystemError(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	f.orders.findErr = errors.New("mongo unreachable")

	out := f.sessions.Root(context.Background(), tr)
	if out.Kind != domain.OutcomeSystemError {
		t.Fatalf("expected system error, got %v", out.Kind)
	}
}

func TestValidate_TamperedSubjectRejected(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	tr.Set(CookieSubject, "manager", f.clock.Now().Add(time.Hour))

	out := f.sessions.Validate(context.Background(), tr)
	if out.Kind != domain.OutcomeAuthenticate {
		t.Fatalf("expected Authenticate, got %v", out.Kind)
	}
	if !errors.Is(out.Cause, domain.ErrTokenSignatureInvalid) {
		t.Fatalf("expected signature cause, got %v", out.Cause)
	}
	assertCleared(t, tr)
}

func TestValidate_TamperedPermissionRejected(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	tr.Set(CookiePermission, "99", f.clock.Now().Add(time.Hour))

	out := f.sessions.Validate(context.Background(), tr)
	if out.Kind != domain.OutcomeAuthenticate {
		t.Fatalf("expected Authenticate, got %v", out.Kind)
	}
}

func TestValidate_ForeignKeyRejected(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")

	other := NewTokenCodec([]byte("another-secret-that-is-32-chars-long"), f.clock)
	forged, _, err := other.Issue("user1", domain.PermissionAdmin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tr.Set(CookieToken, forged, f.clock.Now().Add(time.Hour))
	tr.Set(CookiePermission, "99", f.clock.Now().Add(time.Hour))

	out := f.sessions.Validate(context.Background(), tr)
	if out.Kind != domain.OutcomeAuthenticate || !errors.Is(out.Cause, domain.ErrTokenSignatureInvalid) {
		t.Fatalf("expected signature rejection, got %v (%v)", out.Kind, out.Cause)
	}
}

func TestValidate_RenewsForFullLifetime(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	before, _ := tr.Get(CookieExpires)

	f.clock.Advance(10 * 24 * time.Hour)
	out := f.sessions.Validate(context.Background(), tr)
	if out.Kind != domain.OutcomeProceed {
		t.Fatalf("expected proceed, got %v", out.Kind)
	}

	after, _ := tr.Get(CookieExpires)
	if after == before {
		t.Fatal("expected the expiry to slide forward")
	}
	want := f.clock.Now().Add(SessionLifetime).UTC().Format(time.RFC3339)
	if after != want {
		t.Fatalf("renewed expires = %q, want %q", after, want)
	}
}

func TestLogin_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	f := newFixture(t)

	unknown := f.sessions.Login(context.Background(), newMemTransport(), "ghost", "whatever")
	wrong := f.sessions.Login(context.Background(), newMemTransport(), "user1", "nope")

	if unknown.Kind != domain.OutcomeUnauthorized || wrong.Kind != domain.OutcomeUnauthorized {
		t.Fatalf("expected unauthorized for both, got %v / %v", unknown.Kind, wrong.Kind)
	}
	if unknown.Message != wrong.Message || unknown.Message != domain.MessageLoginFailed {
		t.Fatalf("messages differ: %q vs %q", unknown.Message, wrong.Message)
	}
	if !errors.Is(unknown.Cause, domain.ErrInvalidCredentials) || !errors.Is(wrong.Cause, domain.ErrInvalidCredentials) {
		t.Fatal("expected ErrInvalidCredentials for both")
	}
}

func TestLogin_EmptyInput(t *testing.T) {
	f := newFixture(t)
	tr := newMemTransport()

	out := f.sessions.Login(context.Background(), tr, "", "")
	if out.Kind != domain.OutcomeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", out.Kind)
	}
	if len(tr.entries) != 0 {
		t.Fatal("failed login must not write session entries")
	}
}

func TestLogin_LookupFailureIsSystemError(t *testing.T) {
	f := newFixture(t)
	f.principals.findErr = errors.New("mongo unreachable")

	out := f.sessions.Login(context.Background(), newMemTransport(), "user1", "user1")
	if out.Kind != domain.OutcomeSystemError || out.Message != domain.MessageSystemError {
		t.Fatalf("expected system error, got %v %q", out.Kind, out.Message)
	}
}

func TestLogin_LegacyCredentialQueuedForMigration(t *testing.T) {
	f := newFixture(t)
	f.principals.add("legacy", "plaintext-pass", domain.PermissionOrderer)

	out := f.sessions.Login(context.Background(), newMemTransport(), "legacy", "plaintext-pass")
	if out.Kind != domain.OutcomeProceed {
		t.Fatalf("expected proceed, got %v", out.Kind)
	}
	if len(f.migrator.queued) != 1 || f.migrator.queued[0].Username != "legacy" {
		t.Fatalf("expected legacy principal queued, got %+v", f.migrator.queued)
	}

	f.sessions.Login(context.Background(), newMemTransport(), "user1", "user1")
	if len(f.migrator.queued) != 1 {
		t.Fatal("hashed credential must not be queued")
	}
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)

	user := f.login(t, "user1", "user1")
	out := f.sessions.Authorize(context.Background(), user, domain.PermissionAdmin)
	if out.Kind != domain.OutcomeUnauthorized || out.Message != domain.MessageUnauthorized {
		t.Fatalf("expected unauthorized, got %v %q", out.Kind, out.Message)
	}
	if !errors.Is(out.Cause, domain.ErrNotAuthorized) {
		t.Fatalf("unexpected cause %v", out.Cause)
	}

	admin := f.login(t, "admin", "admin")
	if out := f.sessions.Authorize(context.Background(), admin, domain.PermissionAdmin); out.Kind != domain.OutcomeProceed {
		t.Fatalf("expected admin allowed, got %v", out.Kind)
	}

	if out := f.sessions.Authorize(context.Background(), newMemTransport(), domain.PermissionAdmin); out.Kind != domain.OutcomeAuthenticate {
		t.Fatalf("expected authenticate without session, got %v", out.Kind)
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	tr := f.login(t, "user1", "user1")
	tr.Set(CookieLastOrderAt, f.clock.Now().Format(time.RFC3339), f.clock.Now().Add(time.Hour))

	out := f.sessions.Logout(context.Background(), tr)
	if out.Kind != domain.OutcomeAuthenticate || out.Message != domain.MessageWelcome {
		t.Fatalf("unexpected outcome %v %q", out.Kind, out.Message)
	}
	assertCleared(t, tr)
}
