package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

// ReportRepository implements secondary.ReportRepository with SQLite.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new SQLite report repository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create persists a new, unread report.
func (r *ReportRepository) Create(ctx context.Context, report *secondary.ReportRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, staff_id, recipient_staff_id, sender_principal_id, body, direction, read, report_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		report.ID,
		report.StaffID,
		nullString(report.RecipientStaffID),
		nullString(report.SenderPrincipalID),
		report.Body,
		report.Direction,
		report.ReportDate,
		report.CreatedAt.UTC(),
	)
	if isForeignKeyViolation(err) {
		return apperr.NotFound("staff %s not found", report.StaffID)
	}
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

const reportColumns = "id, staff_id, recipient_staff_id, sender_principal_id, body, direction, read, report_date, created_at"

func scanReport(row interface{ Scan(...any) error }) (*secondary.ReportRecord, error) {
	var (
		recipient, sender sql.NullString
		readInt           int
	)

	report := &secondary.ReportRecord{}
	err := row.Scan(&report.ID, &report.StaffID, &recipient, &sender, &report.Body, &report.Direction, &readInt, &report.ReportDate, &report.CreatedAt)
	if err != nil {
		return nil, err
	}

	report.RecipientStaffID = recipient.String
	report.SenderPrincipalID = sender.String
	report.Read = readInt == 1
	return report, nil
}

// GetByID retrieves a report by its ID.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*secondary.ReportRecord, error) {
	report, err := scanReport(r.db.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM reports WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("report %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// ListUnreadFromStaff retrieves unread staff-to-manager reports across all staff.
func (r *ReportRepository) ListUnreadFromStaff(ctx context.Context) ([]*secondary.ReportRecord, error) {
	return r.query(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE direction = 'from_staff' AND read = 0 ORDER BY created_at DESC, id")
}

// ListSentByStaff retrieves reports a staff member sent.
func (r *ReportRepository) ListSentByStaff(ctx context.Context, staffID string) ([]*secondary.ReportRecord, error) {
	return r.query(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE direction = 'from_staff' AND staff_id = ? ORDER BY created_at DESC, id",
		staffID)
}

// ListAddressedToStaff retrieves manager reports addressed to a staff member.
func (r *ReportRepository) ListAddressedToStaff(ctx context.Context, staffID string) ([]*secondary.ReportRecord, error) {
	return r.query(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE direction = 'from_manager' AND recipient_staff_id = ? ORDER BY created_at DESC, id",
		staffID)
}

func (r *ReportRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.ReportRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*secondary.ReportRecord
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// MarkRead flips read from 0 to 1. The WHERE clause makes unread -> read the only transition.
func (r *ReportRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE reports SET read = 1 WHERE id = ? AND read = 0", id)
	if err != nil {
		return false, fmt.Errorf("failed to mark report as read: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected == 1, nil
}

// Delete permanently removes a report.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("report %s not found", id)
	}
	return nil
}

// StaffIDsForDate returns the staff that sent a report dated date.
func (r *ReportRepository) StaffIDsForDate(ctx context.Context, date string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT staff_id FROM reports WHERE direction = 'from_staff' AND report_date = ?", date)
	if err != nil {
		return nil, fmt.Errorf("failed to list reporting staff: %w", err)
	}
	return scanStrings(rows)
}

// Ensure ReportRepository implements the interface
var _ secondary.ReportRepository = (*ReportRepository)(nil)
