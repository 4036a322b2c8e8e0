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

func TestCheckInRepository_UpsertInsertsThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCheckInRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "Jordan", "jordan@example.com")

	first := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	stored, created, err := repo.Upsert(ctx, &secondary.CheckInRecord{
		ID:          "CHK-first",
		StaffID:     "STAFF-001",
		Date:        "2025-01-10",
		Metrics:     map[string]string{"tickets": "5"},
		Notes:       "blocked on deploy",
		SubmittedAt: first,
	})
	if err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if !created || stored.ID != "CHK-first" {
		t.Fatalf("first Upsert = %+v created=%v", stored, created)
	}

	second := first.Add(3 * time.Hour)
	stored, created, err = repo.Upsert(ctx, &secondary.CheckInRecord{
		ID:          "CHK-second",
		StaffID:     "STAFF-001",
		Date:        "2025-01-10",
		Metrics:     map[string]string{"tickets": "7"},
		Notes:       "deploy fixed",
		SubmittedAt: second,
	})
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if created {
		t.Error("second Upsert should update, not create")
	}
	if stored.ID != "CHK-first" {
		t.Errorf("id changed to %q; identity must be kept", stored.ID)
	}
	if stored.Metrics["tickets"] != "7" || stored.Notes != "deploy fixed" {
		t.Errorf("stored = %+v", stored)
	}
	if !stored.SubmittedAt.Equal(second) {
		t.Errorf("SubmittedAt = %v, want %v", stored.SubmittedAt, second)
	}
	if !stored.CreatedAt.Equal(first) {
		t.Errorf("CreatedAt = %v, want original %v", stored.CreatedAt, first)
	}

	if n := countRows(t, db, "SELECT COUNT(*) FROM check_ins"); n != 1 {
		t.Errorf("check_ins rows = %d, want 1", n)
	}
}

func TestCheckInRepository_ConcurrentUpsertSingleRow(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCheckInRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "Jordan", "")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := repo.Upsert(ctx, &secondary.CheckInRecord{
				ID:          fmt.Sprintf("CHK-%d", i),
				StaffID:     "STAFF-001",
				Date:        "2025-01-10",
				Metrics:     map[string]string{"tickets": fmt.Sprint(i)},
				SubmittedAt: time.Now(),
			})
			if err != nil {
				t.Errorf("Upsert %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if n := countRows(t, db, "SELECT COUNT(*) FROM check_ins WHERE staff_id = 'STAFF-001' AND date = '2025-01-10'"); n != 1 {
		t.Errorf("check_ins rows = %d, want 1", n)
	}
}

func TestCheckInRepository_UnknownStaff(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCheckInRepository(db)

	_, _, err := repo.Upsert(context.Background(), &secondary.CheckInRecord{
		ID: "CHK-1", StaffID: "STAFF-404", Date: "2025-01-10", SubmittedAt: time.Now(),
	})
	if !apperr.IsNotFound(err) {
		t.Errorf("Upsert error = %v, want not found", err)
	}
}

func TestCheckInRepository_ListAndFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCheckInRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "A", "")
	seedStaff(t, db, "STAFF-002", "B", "")
	seedCheckIn(t, db, "CHK-1", "STAFF-001", "2025-01-09")
	seedCheckIn(t, db, "CHK-2", "STAFF-001", "2025-01-10")
	seedCheckIn(t, db, "CHK-3", "STAFF-002", "2025-01-10")

	all, err := repo.List(ctx, secondary.CheckInFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Date != "2025-01-10" {
		t.Errorf("List() = %d rows, first date %q", len(all), all[0].Date)
	}

	mine, _ := repo.List(ctx, secondary.CheckInFilters{StaffID: "STAFF-001", From: "2025-01-10"})
	if len(mine) != 1 || mine[0].ID != "CHK-2" {
		t.Errorf("List(STAFF-001 from 01-10) = %+v", mine)
	}

	ids, err := repo.StaffIDsForDate(ctx, "2025-01-10")
	if err != nil || len(ids) != 2 {
		t.Errorf("StaffIDsForDate = %v, %v", ids, err)
	}
}

func TestCheckInRepository_ListUnanalyzed(t *testing.T) {
	db := setupTestDB(t)
	checkIns := sqlite.NewCheckInRepository(db)
	analyses := sqlite.NewAnalysisRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "A", "")
	seedCheckIn(t, db, "CHK-1", "STAFF-001", "2025-01-09")
	seedCheckIn(t, db, "CHK-2", "STAFF-001", "2025-01-10")

	err := analyses.Create(ctx, &secondary.AnalysisRecord{
		ID: "ANL-1", CheckInID: "CHK-1", Score: "green", Blocker: "NONE",
		Reason: "r", Message: "m", NextStep: "n", CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Create analysis failed: %v", err)
	}

	pending, err := checkIns.ListUnanalyzed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnanalyzed failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "CHK-2" {
		t.Errorf("ListUnanalyzed = %+v, want CHK-2", pending)
	}
}

func TestAnalysisRepository_UniquePerCheckIn(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAnalysisRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "A", "")
	seedCheckIn(t, db, "CHK-1", "STAFF-001", "2025-01-10")

	record := &secondary.AnalysisRecord{
		ID: "ANL-1", CheckInID: "CHK-1", Score: "yellow", Blocker: "SYSTEM",
		Reason: "r", Message: "m", NextStep: "n", Model: "test-model", CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := *record
	dup.ID = "ANL-2"
	if err := repo.Create(ctx, &dup); !apperr.IsConflict(err) {
		t.Errorf("duplicate Create error = %v, want conflict", err)
	}

	got, err := repo.GetByCheckIn(ctx, "CHK-1")
	if err != nil {
		t.Fatalf("GetByCheckIn failed: %v", err)
	}
	if got.ID != "ANL-1" || got.Score != "yellow" || got.Model != "test-model" {
		t.Errorf("got %+v", got)
	}
}

func TestAnalysisRepository_ConcurrentCreateOneRow(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAnalysisRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "A", "")
	seedCheckIn(t, db, "CHK-1", "STAFF-001", "2025-01-10")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, &secondary.AnalysisRecord{
				ID: fmt.Sprintf("ANL-%d", i), CheckInID: "CHK-1", Score: "green", Blocker: "NONE",
				Reason: "r", Message: "m", NextStep: "n", CreatedAt: time.Now(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case apperr.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 || conflicts != 5 {
		t.Errorf("created=%d conflicts=%d, want 1 and 5", created, conflicts)
	}
}

func TestAnalysisRepository_CheckConstraints(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAnalysisRepository(db)
	seedStaff(t, db, "STAFF-001", "A", "")
	seedCheckIn(t, db, "CHK-1", "STAFF-001", "2025-01-10")

	err := repo.Create(context.Background(), &secondary.AnalysisRecord{
		ID: "ANL-1", CheckInID: "CHK-1", Score: "blue", Blocker: "NONE",
		Reason: "r", Message: "m", NextStep: "n", CreatedAt: time.Now(),
	})
	if err == nil {
		t.Error("expected CHECK constraint to reject score blue")
	}
}
