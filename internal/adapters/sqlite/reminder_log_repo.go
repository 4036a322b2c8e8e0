package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

// ReminderLogRepository implements secondary.ReminderLogRepository with SQLite.
type ReminderLogRepository struct {
	db *sql.DB
}

// NewReminderLogRepository creates a new SQLite reminder log repository.
func NewReminderLogRepository(db *sql.DB) *ReminderLogRepository {
	return &ReminderLogRepository{db: db}
}

// Create appends a (staff, date) row. UNIQUE(staff_id, date) makes a second
// insert from an overlapping run fail as a conflict.
func (r *ReminderLogRepository) Create(ctx context.Context, log *secondary.ReminderLogRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO reminder_logs (id, staff_id, date, address, sent_at) VALUES (?, ?, ?, ?, ?)",
		log.ID, log.StaffID, log.Date, log.Address, log.SentAt.UTC(),
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("staff %s already reminded on %s", log.StaffID, log.Date)
	}
	if isForeignKeyViolation(err) {
		return apperr.NotFound("staff %s not found", log.StaffID)
	}
	if err != nil {
		return fmt.Errorf("failed to create reminder log: %w", err)
	}
	return nil
}

// StaffIDsForDate returns the staff already reminded on date.
func (r *ReminderLogRepository) StaffIDsForDate(ctx context.Context, date string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT staff_id FROM reminder_logs WHERE date = ?", date)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminded staff: %w", err)
	}
	return scanStrings(rows)
}

// Ensure ReminderLogRepository implements the interface
var _ secondary.ReminderLogRepository = (*ReminderLogRepository)(nil)

