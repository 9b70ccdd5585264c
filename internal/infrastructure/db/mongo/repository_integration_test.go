//go:build integration

package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lunchorder/order-system/internal/core/domain"
)

func setupDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	client, db, err := Connect(ctx, Config{URI: uri, Database: "lunch_test"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return db
}

func TestOrderRepository_OneActiveOrderPerDay(t *testing.T) {
	db := setupDatabase(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	at := time.Date(2026, 10, 14, 2, 30, 0, 0, time.UTC)
	first := &domain.Order{ID: "o1", Username: "user1", OrderDate: "2026-10-14", CreatedAt: at}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &domain.Order{ID: "o2", Username: "user1", OrderDate: "2026-10-14", CreatedAt: at.Add(time.Minute)}
	if err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrDuplicateOrder) {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}

	other := &domain.Order{ID: "o3", Username: "user1", OrderDate: "2026-10-15", CreatedAt: at.Add(24 * time.Hour)}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("next day should be accepted: %v", err)
	}

	got, err := repo.FindActive(ctx, "user1", "2026-10-14")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != "o1" || !got.CreatedAt.Equal(at) {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestOrderRepository_CancelFreesTheDay(t *testing.T) {
	db := setupDatabase(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	at := time.Date(2026, 10, 14, 2, 30, 0, 0, time.UTC)
	if err := repo.Create(ctx, &domain.Order{ID: "o1", Username: "user1", OrderDate: "2026-10-14", CreatedAt: at}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Cancel(ctx, "user1", "2026-10-14", at.Add(time.Minute)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := repo.FindActive(ctx, "user1", "2026-10-14"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected no active order, got %v", err)
	}
	if err := repo.Cancel(ctx, "user1", "2026-10-14", at); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on second cancel, got %v", err)
	}
	if err := repo.Create(ctx, &domain.Order{ID: "o2", Username: "user1", OrderDate: "2026-10-14", CreatedAt: at.Add(2 * time.Minute)}); err != nil {
		t.Fatalf("reorder after cancel: %v", err)
	}
}

func TestPrincipalRepository(t *testing.T) {
	db := setupDatabase(t)
	repo := NewPrincipalRepository(db)
	ctx := context.Background()
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	now := time.Now().UTC()
	p := &domain.Principal{Username: "user1", PasswordHash: "user1", Permission: domain.PermissionOrderer, CreatedAt: now, UpdatedAt: now}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, p); !errors.Is(err, domain.ErrPrincipalExists) {
		t.Fatalf("expected ErrPrincipalExists, got %v", err)
	}

	if err := repo.Update(ctx, "user1", domain.SetPasswordHash{Hash: "$2a$10$hashed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByUsername(ctx, "user1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.PasswordHash != "$2a$10$hashed" || got.Permission != domain.PermissionOrderer {
		t.Fatalf("unexpected principal %+v", got)
	}

	if _, err := repo.FindByUsername(ctx, "ghost"); !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
	if err := repo.Update(ctx, "ghost", domain.SetPermission{Permission: domain.PermissionAdmin}); !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}
