package sqlite_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/pulse/internal/adapters/sqlite"
	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

func TestStaffRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "STAFF-001" {
		t.Errorf("GetNextID = %q, want STAFF-001", id)
	}

	err = repo.Create(ctx, &secondary.StaffRecord{
		ID:         id,
		Name:       "Jordan",
		Email:      "Jordan@Example.com",
		Title:      "Support Engineer",
		Department: "Support",
		Targets:    map[string]string{"tickets": "8"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Jordan" || got.Title != "Support Engineer" || got.Targets["tickets"] != "8" {
		t.Errorf("got %+v", got)
	}
	if got.LinkedPrincipalID != "" || got.LinkedAt != nil {
		t.Errorf("new staff should be unlinked, got %q", got.LinkedPrincipalID)
	}

	next, _ := repo.GetNextID(ctx)
	if next != "STAFF-002" {
		t.Errorf("GetNextID after create = %q, want STAFF-002", next)
	}
}

func TestStaffRepository_FindByEmailCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)

	seedStaff(t, db, "STAFF-001", "Jordan", "Jordan@Example.com")
	seedStaff(t, db, "STAFF-002", "Sam", "sam@example.com")

	got, err := repo.FindByEmail(context.Background(), " jordan@example.COM ")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "STAFF-001" {
		t.Errorf("FindByEmail = %+v, want STAFF-001", got)
	}
}

func TestStaffRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()

	seedLinkedStaff(t, db, "STAFF-001", "p1", "a@example.com")
	seedStaff(t, db, "STAFF-002", "B", "b@example.com")
	if _, err := db.Exec("UPDATE staff SET department = 'Sales' WHERE id = 'STAFF-002'"); err != nil {
		t.Fatal(err)
	}

	all, _ := repo.List(ctx, secondary.StaffFilters{})
	if len(all) != 2 {
		t.Errorf("List() = %d rows, want 2", len(all))
	}
	linked, _ := repo.List(ctx, secondary.StaffFilters{LinkedOnly: true})
	if len(linked) != 1 || linked[0].ID != "STAFF-001" {
		t.Errorf("List(LinkedOnly) = %+v", linked)
	}
	sales, _ := repo.List(ctx, secondary.StaffFilters{Department: "Sales"})
	if len(sales) != 1 || sales[0].ID != "STAFF-002" {
		t.Errorf("List(Sales) = %+v", sales)
	}
}

func TestStaffRepository_LinkIfUnlinked(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()

	seedStaff(t, db, "STAFF-001", "Jordan", "jordan@example.com")
	seedPrincipal(t, db, "p1", "jordan@example.com")
	seedPrincipal(t, db, "p2", "jordan@example.com")

	n, err := repo.LinkIfUnlinked(ctx, "STAFF-001", "p1")
	if err != nil || n != 1 {
		t.Fatalf("first link = %d, %v; want 1", n, err)
	}

	n, err = repo.LinkIfUnlinked(ctx, "STAFF-001", "p2")
	if err != nil || n != 0 {
		t.Fatalf("second link = %d, %v; want 0", n, err)
	}

	got, _ := repo.GetByID(ctx, "STAFF-001")
	if got.LinkedPrincipalID != "p1" {
		t.Errorf("linked principal = %q, want p1 (first link wins)", got.LinkedPrincipalID)
	}
	if got.LinkedAt == nil {
		t.Error("expected LinkedAt to be set")
	}

	byPrincipal, err := repo.GetByPrincipal(ctx, "p1")
	if err != nil || byPrincipal.ID != "STAFF-001" {
		t.Errorf("GetByPrincipal = %+v, %v", byPrincipal, err)
	}
}

func TestStaffRepository_LinkSamePrincipalTwiceIsZeroRows(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()

	seedStaff(t, db, "STAFF-001", "A", "x@example.com")
	seedStaff(t, db, "STAFF-002", "B", "x@example.com")
	seedPrincipal(t, db, "p1", "x@example.com")

	if n, err := repo.LinkIfUnlinked(ctx, "STAFF-001", "p1"); err != nil || n != 1 {
		t.Fatalf("first link = %d, %v", n, err)
	}
	// UNIQUE(linked_principal_id) rejects a second record for the same principal.
	n, err := repo.LinkIfUnlinked(ctx, "STAFF-002", "p1")
	if err != nil || n != 0 {
		t.Errorf("second record link = %d, %v; want 0, nil", n, err)
	}
}

func TestStaffRepository_ConcurrentLinkExactlyOneWins(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()

	seedStaff(t, db, "STAFF-001", "Jordan", "jordan@example.com")
	const callers = 8
	for i := 0; i < callers; i++ {
		seedPrincipal(t, db, fmt.Sprintf("p%d", i), "jordan@example.com")
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := repo.LinkIfUnlinked(ctx, "STAFF-001", fmt.Sprintf("p%d", i))
			if err != nil {
				t.Errorf("LinkIfUnlinked(p%d) error: %v", i, err)
				return
			}
			mu.Lock()
			wins += int(n)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("winning links = %d, want exactly 1", wins)
	}
}

func TestStaffRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)
	ctx := context.Background()

	seedLinkedStaff(t, db, "STAFF-001", "p1", "a@example.com")
	seedCheckIn(t, db, "CHK-1", "STAFF-001", "2025-01-10")
	now := time.Now().UTC()
	mustExec(t, db, `INSERT INTO analyses (id, check_in_id, score, blocker, reason, message, next_step, created_at)
		VALUES ('ANL-1', 'CHK-1', 'green', 'NONE', 'r', 'm', 'n', ?)`, now)
	mustExec(t, db, `INSERT INTO reports (id, staff_id, body, direction, report_date, created_at)
		VALUES ('RPT-1', 'STAFF-001', 'hi', 'from_staff', '2025-01-10', ?)`, now)
	mustExec(t, db, `INSERT INTO reminder_logs (id, staff_id, date, address, sent_at)
		VALUES ('REM-1', 'STAFF-001', '2025-01-10', 'a@example.com', ?)`, now)

	if err := repo.Delete(ctx, "STAFF-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, table := range []string{"staff", "check_ins", "analyses", "reports", "reminder_logs"} {
		if n := countRows(t, db, "SELECT COUNT(*) FROM "+table); n != 0 {
			t.Errorf("%s has %d rows after delete, want 0", table, n)
		}
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM principals"); n != 1 {
		t.Errorf("principal must survive staff deletion, got %d rows", n)
	}

	if err := repo.Delete(ctx, "STAFF-001"); !apperr.IsNotFound(err) {
		t.Errorf("second Delete error = %v, want not found", err)
	}
}

func TestStaffRepository_ListReminderEligible(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStaffRepository(db)

	seedLinkedStaff(t, db, "STAFF-001", "p1", "a@example.com")
	seedStaff(t, db, "STAFF-002", "No Account", "b@example.com")

	got, err := repo.ListReminderEligible(context.Background())
	if err != nil {
		t.Fatalf("ListReminderEligible failed: %v", err)
	}
	if len(got) != 1 || got[0].StaffID != "STAFF-001" || got[0].Address != "a@example.com" {
		t.Errorf("ListReminderEligible = %+v", got)
	}
}
