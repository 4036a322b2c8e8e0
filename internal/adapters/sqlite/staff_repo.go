package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

// StaffRepository implements secondary.StaffRepository with SQLite.
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new SQLite staff repository.
func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create persists a new staff record.
func (r *StaffRepository) Create(ctx context.Context, s *secondary.StaffRecord) error {
	targets, err := encodeMap(s.Targets)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO staff (id, name, email, title, department, targets) VALUES (?, ?, ?, ?, ?, ?)",
		s.ID, s.Name, nullString(s.Email), nullString(s.Title), nullString(s.Department), targets,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("staff %s already exists", s.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

const staffColumns = "id, name, email, title, department, targets, linked_principal_id, linked_at, created_at, updated_at"

func scanStaff(row interface{ Scan(...any) error }) (*secondary.StaffRecord, error) {
	var (
		email, title, department, linked sql.NullString
		targets                          string
		linkedAt                         sql.NullTime
	)

	s := &secondary.StaffRecord{}
	err := row.Scan(&s.ID, &s.Name, &email, &title, &department, &targets, &linked, &linkedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.Email = email.String
	s.Title = title.String
	s.Department = department.String
	s.LinkedPrincipalID = linked.String
	if linkedAt.Valid {
		t := linkedAt.Time
		s.LinkedAt = &t
	}
	if s.Targets, err = decodeMap(targets); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a staff record by its ID.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*secondary.StaffRecord, error) {
	s, err := scanStaff(r.db.QueryRowContext(ctx, "SELECT "+staffColumns+" FROM staff WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("staff %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return s, nil
}

// GetByPrincipal retrieves the staff record linked to a principal.
func (r *StaffRepository) GetByPrincipal(ctx context.Context, principalID string) (*secondary.StaffRecord, error) {
	s, err := scanStaff(r.db.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM staff WHERE linked_principal_id = ?", principalID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("no staff record linked to principal %s", principalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by principal: %w", err)
	}
	return s, nil
}

// FindByEmail retrieves every staff record whose email matches, case-insensitively.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) ([]*secondary.StaffRecord, error) {
	return r.query(ctx,
		"SELECT "+staffColumns+" FROM staff WHERE email = ? COLLATE NOCASE ORDER BY id",
		strings.TrimSpace(email))
}

// List retrieves staff records matching the given filters.
func (r *StaffRepository) List(ctx context.Context, filters secondary.StaffFilters) ([]*secondary.StaffRecord, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE 1=1"
	args := []any{}

	if filters.Department != "" {
		query += " AND department = ?"
		args = append(args, filters.Department)
	}

	if filters.LinkedOnly {
		query += " AND linked_principal_id IS NOT NULL"
	}

	query += " ORDER BY id"

	return r.query(ctx, query, args...)
}

func (r *StaffRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.StaffRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var staff []*secondary.StaffRecord
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// Delete removes a staff record; check-ins, analyses, reports and reminder
// logs go with it through ON DELETE CASCADE.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM staff WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("staff %s not found", id)
	}
	return nil
}

// GetNextID returns the next available staff ID.
func (r *StaffRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("STAFF-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM staff", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next staff ID: %w", err)
	}

	return fmt.Sprintf("STAFF-%03d", maxID+1), nil
}

// LinkIfUnlinked is the compare-and-swap of identity linking: the null check
// and the write are one statement, so exactly one concurrent caller wins.
// A UNIQUE violation means the principal won a link to another record
// concurrently; it is reported as zero rows changed.
func (r *StaffRepository) LinkIfUnlinked(ctx context.Context, staffID, principalID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE staff SET linked_principal_id = ?, linked_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND linked_principal_id IS NULL`,
		principalID, staffID,
	)
	if isUniqueViolation(err) {
		return 0, nil
	}
	if isForeignKeyViolation(err) {
		return 0, apperr.NotFound("principal %s not found", principalID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to link staff: %w", err)
	}
	return result.RowsAffected()
}

// ListReminderEligible retrieves linked staff with the email of their account.
func (r *StaffRepository) ListReminderEligible(ctx context.Context) ([]*secondary.EligibleStaffRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.name, COALESCE(p.email, '')
		FROM staff s
		JOIN principals p ON p.id = s.linked_principal_id
		WHERE s.linked_principal_id IS NOT NULL
		ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible staff: %w", err)
	}
	defer rows.Close()

	var eligible []*secondary.EligibleStaffRecord
	for rows.Next() {
		e := &secondary.EligibleStaffRecord{}
		if err := rows.Scan(&e.StaffID, &e.Name, &e.Address); err != nil {
			return nil, fmt.Errorf("failed to scan eligible staff: %w", err)
		}
		e.Address = strings.TrimSpace(e.Address)
		eligible = append(eligible, e)
	}
	return eligible, rows.Err()
}

// Ensure StaffRepository implements the interface
var _ secondary.StaffRepository = (*StaffRepository)(nil)
