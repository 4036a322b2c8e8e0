package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/pulse/internal/adapters/sqlite"
	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

func TestPrincipalRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPrincipalRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &secondary.PrincipalRecord{ID: "auth|jordan", Email: "jordan@example.com", DisplayName: "Jordan"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "auth|jordan")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != "jordan@example.com" || got.DisplayName != "Jordan" {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestPrincipalRepository_DuplicateIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPrincipalRepository(db)
	ctx := context.Background()

	p := &secondary.PrincipalRecord{ID: "auth|1", Email: "a@example.com"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, p); !apperr.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestPrincipalRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPrincipalRepository(db)

	_, err := repo.GetByID(context.Background(), "auth|missing")
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPrincipalRepository_ListUnlinked(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPrincipalRepository(db)

	seedLinkedStaff(t, db, "STAFF-001", "auth|linked", "linked@example.com")
	seedPrincipal(t, db, "auth|free", "free@example.com")

	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List returned %d, want 2", len(all))
	}

	unlinked, err := repo.ListUnlinked(context.Background())
	if err != nil {
		t.Fatalf("ListUnlinked failed: %v", err)
	}
	if len(unlinked) != 1 || unlinked[0].ID != "auth|free" {
		t.Errorf("ListUnlinked = %+v, want only auth|free", unlinked)
	}
}
