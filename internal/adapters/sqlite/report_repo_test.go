package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/pulse/internal/adapters/sqlite"
	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

func seedReports(t *testing.T, repo *sqlite.ReportRepository) {
	t.Helper()
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	reports := []*secondary.ReportRecord{
		{ID: "RPT-1", StaffID: "STAFF-001", SenderPrincipalID: "p1", Body: "deploy blocked", Direction: "from_staff", ReportDate: "2025-01-10", CreatedAt: base},
		{ID: "RPT-2", StaffID: "STAFF-001", RecipientStaffID: "STAFF-001", SenderPrincipalID: "boss", Body: "on it", Direction: "from_manager", ReportDate: "2025-01-10", CreatedAt: base.Add(time.Minute)},
		{ID: "RPT-3", StaffID: "STAFF-002", SenderPrincipalID: "p2", Body: "all good", Direction: "from_staff", ReportDate: "2025-01-11", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range reports {
		if err := repo.Create(context.Background(), r); err != nil {
			t.Fatalf("Create %s failed: %v", r.ID, err)
		}
	}
}

func TestReportRepository_Lists(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewReportRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "A", "")
	seedStaff(t, db, "STAFF-002", "B", "")
	seedReports(t, repo)

	unread, err := repo.ListUnreadFromStaff(ctx)
	if err != nil {
		t.Fatalf("ListUnreadFromStaff failed: %v", err)
	}
	if len(unread) != 2 || unread[0].ID != "RPT-3" || unread[1].ID != "RPT-1" {
		t.Errorf("ListUnreadFromStaff = %v, want [RPT-3 RPT-1]", reportIDs(unread))
	}

	sent, _ := repo.ListSentByStaff(ctx, "STAFF-001")
	if len(sent) != 1 || sent[0].ID != "RPT-1" {
		t.Errorf("ListSentByStaff = %v", reportIDs(sent))
	}

	addressed, _ := repo.ListAddressedToStaff(ctx, "STAFF-001")
	if len(addressed) != 1 || addressed[0].ID != "RPT-2" || addressed[0].Read {
		t.Errorf("ListAddressedToStaff = %+v", addressed)
	}

	ids, _ := repo.StaffIDsForDate(ctx, "2025-01-10")
	if len(ids) != 1 || ids[0] != "STAFF-001" {
		t.Errorf("StaffIDsForDate = %v, want [STAFF-001] (manager notes do not count)", ids)
	}
}

func TestReportRepository_MarkReadIsOneWay(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewReportRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "A", "")
	seedStaff(t, db, "STAFF-002", "B", "")
	seedReports(t, repo)

	changed, err := repo.MarkRead(ctx, "RPT-1")
	if err != nil || !changed {
		t.Fatalf("first MarkRead = %v, %v", changed, err)
	}
	changed, err = repo.MarkRead(ctx, "RPT-1")
	if err != nil || changed {
		t.Errorf("second MarkRead = %v, %v; want no change", changed, err)
	}

	got, _ := repo.GetByID(ctx, "RPT-1")
	if !got.Read {
		t.Error("RPT-1 should be read")
	}

	unread, _ := repo.ListUnreadFromStaff(ctx)
	if len(unread) != 1 || unread[0].ID != "RPT-3" {
		t.Errorf("unread after mark = %v", reportIDs(unread))
	}
}

func TestReportRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewReportRepository(db)
	ctx := context.Background()
	seedStaff(t, db, "STAFF-001", "A", "")
	seedStaff(t, db, "STAFF-002", "B", "")
	seedReports(t, repo)

	if err := repo.Delete(ctx, "RPT-2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "RPT-2"); !apperr.IsNotFound(err) {
		t.Errorf("GetByID after delete = %v, want not found", err)
	}
	if err := repo.Delete(ctx, "RPT-2"); !apperr.IsNotFound(err) {
		t.Errorf("second Delete = %v, want not found", err)
	}
}

func reportIDs(reports []*secondary.ReportRecord) []string {
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	return ids
}
