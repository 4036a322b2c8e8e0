package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

// CheckInRepository implements secondary.CheckInRepository with SQLite.
type CheckInRepository struct {
	db *sql.DB
}

// NewCheckInRepository creates a new SQLite check-in repository.
func NewCheckInRepository(db *sql.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Upsert inserts or updates the check-in for (staff_id, date) in one statement.
// The id of an existing row is kept; only metrics, notes and submitted_at change.
func (r *CheckInRepository) Upsert(ctx context.Context, c *secondary.CheckInRecord) (*secondary.CheckInRecord, bool, error) {
	metrics, err := encodeMap(c.Metrics)
	if err != nil {
		return nil, false, err
	}

	var storedID string
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO check_ins (id, staff_id, date, metrics, notes, submitted_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(staff_id, date) DO UPDATE SET
			metrics = excluded.metrics,
			notes = excluded.notes,
			submitted_at = excluded.submitted_at
		 RETURNING id`,
		c.ID, c.StaffID, c.Date, metrics, nullString(c.Notes), c.SubmittedAt.UTC(), c.SubmittedAt.UTC(),
	).Scan(&storedID)
	if isForeignKeyViolation(err) {
		return nil, false, apperr.NotFound("staff %s not found", c.StaffID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert check-in: %w", err)
	}

	stored, err := r.GetByID(ctx, storedID)
	if err != nil {
		return nil, false, err
	}
	return stored, storedID == c.ID, nil
}

const checkInColumns = "c.id, c.staff_id, c.date, c.metrics, c.notes, c.submitted_at, c.created_at"

func scanCheckIn(row interface{ Scan(...any) error }) (*secondary.CheckInRecord, error) {
	var (
		metrics string
		notes   sql.NullString
	)

	c := &secondary.CheckInRecord{}
	if err := row.Scan(&c.ID, &c.StaffID, &c.Date, &metrics, &notes, &c.SubmittedAt, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Notes = notes.String
	var err error
	if c.Metrics, err = decodeMap(metrics); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a check-in by its ID.
func (r *CheckInRepository) GetByID(ctx context.Context, id string) (*secondary.CheckInRecord, error) {
	c, err := scanCheckIn(r.db.QueryRowContext(ctx,
		"SELECT "+checkInColumns+" FROM check_ins c WHERE c.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("check-in %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	return c, nil
}

// List retrieves check-ins matching the given filters, newest day first.
func (r *CheckInRepository) List(ctx context.Context, filters secondary.CheckInFilters) ([]*secondary.CheckInRecord, error) {
	query := "SELECT " + checkInColumns + " FROM check_ins c WHERE 1=1"
	args := []any{}

	if filters.StaffID != "" {
		query += " AND c.staff_id = ?"
		args = append(args, filters.StaffID)
	}

	if filters.From != "" {
		query += " AND c.date >= ?"
		args = append(args, filters.From)
	}

	if filters.To != "" {
		query += " AND c.date <= ?"
		args = append(args, filters.To)
	}

	query += " ORDER BY c.date DESC, c.staff_id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	return r.query(ctx, query, args...)
}

// ListUnanalyzed retrieves check-ins that have no analysis, oldest submission first.
func (r *CheckInRepository) ListUnanalyzed(ctx context.Context, limit int) ([]*secondary.CheckInRecord, error) {
	query := "SELECT " + checkInColumns + ` FROM check_ins c
		LEFT JOIN analyses a ON a.check_in_id = c.id
		WHERE a.id IS NULL
		ORDER BY c.submitted_at, c.id`
	args := []any{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return r.query(ctx, query, args...)
}

func (r *CheckInRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.CheckInRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []*secondary.CheckInRecord
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

// StaffIDsForDate returns the staff that have a check-in on date.
func (r *CheckInRepository) StaffIDsForDate(ctx context.Context, date string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT staff_id FROM check_ins WHERE date = ?", date)
	if err != nil {
		return nil, fmt.Errorf("failed to list submitted staff: %w", err)
	}
	return scanStrings(rows)
}

// Ensure CheckInRepository implements the interface
var _ secondary.CheckInRepository = (*CheckInRepository)(nil)

// AnalysisRepository implements secondary.AnalysisRepository with SQLite.
type AnalysisRepository struct {
	db *sql.DB
}

// NewAnalysisRepository creates a new SQLite analysis repository.
func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create persists a new analysis. UNIQUE(check_in_id) turns a duplicate into a conflict.
func (r *AnalysisRepository) Create(ctx context.Context, a *secondary.AnalysisRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analyses (id, check_in_id, score, blocker, reason, message, next_step, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CheckInID, a.Score, a.Blocker, a.Reason, a.Message, a.NextStep, nullString(a.Model), a.CreatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("check-in %s already analyzed", a.CheckInID)
	}
	if isForeignKeyViolation(err) {
		return apperr.NotFound("check-in %s not found", a.CheckInID)
	}
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// GetByCheckIn retrieves the analysis of a check-in.
func (r *AnalysisRepository) GetByCheckIn(ctx context.Context, checkInID string) (*secondary.AnalysisRecord, error) {
	var model sql.NullString
	a := &secondary.AnalysisRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, check_in_id, score, blocker, reason, message, next_step, model, created_at
		 FROM analyses WHERE check_in_id = ?`, checkInID,
	).Scan(&a.ID, &a.CheckInID, &a.Score, &a.Blocker, &a.Reason, &a.Message, &a.NextStep, &model, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("no analysis for check-in %s", checkInID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	a.Model = model.String
	return a, nil
}

// Ensure AnalysisRepository implements the interface
var _ secondary.AnalysisRepository = (*AnalysisRepository)(nil)
