package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

// PrincipalRepository implements secondary.PrincipalRepository with SQLite.
type PrincipalRepository struct {
	db *sql.DB
}

// NewPrincipalRepository creates a new SQLite principal repository.
func NewPrincipalRepository(db *sql.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// Create registers a new principal.
func (r *PrincipalRepository) Create(ctx context.Context, p *secondary.PrincipalRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO principals (id, email, display_name) VALUES (?, ?, ?)",
		p.ID, p.Email, nullString(p.DisplayName),
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("principal %s already registered", p.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create principal: %w", err)
	}
	return nil
}

const principalColumns = "id, email, display_name, created_at"

func scanPrincipal(row interface{ Scan(...any) error }) (*secondary.PrincipalRecord, error) {
	var displayName sql.NullString
	p := &secondary.PrincipalRecord{}
	if err := row.Scan(&p.ID, &p.Email, &displayName, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.DisplayName = displayName.String
	return p, nil
}

// GetByID retrieves a principal by its ID.
func (r *PrincipalRepository) GetByID(ctx context.Context, id string) (*secondary.PrincipalRecord, error) {
	p, err := scanPrincipal(r.db.QueryRowContext(ctx,
		"SELECT "+principalColumns+" FROM principals WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("principal %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}
	return p, nil
}

// List retrieves all principals ordered by ID.
func (r *PrincipalRepository) List(ctx context.Context) ([]*secondary.PrincipalRecord, error) {
	return r.query(ctx, "SELECT "+principalColumns+" FROM principals ORDER BY id")
}

// ListUnlinked retrieves principals not linked to any staff record.
func (r *PrincipalRepository) ListUnlinked(ctx context.Context) ([]*secondary.PrincipalRecord, error) {
	return r.query(ctx, `SELECT `+principalColumns+` FROM principals p
		WHERE NOT EXISTS (SELECT 1 FROM staff s WHERE s.linked_principal_id = p.id)
		ORDER BY id`)
}

func (r *PrincipalRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.PrincipalRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}
	defer rows.Close()

	var principals []*secondary.PrincipalRecord
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan principal: %w", err)
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

// Ensure PrincipalRepository implements the interface
var _ secondary.PrincipalRepository = (*PrincipalRepository)(nil)
