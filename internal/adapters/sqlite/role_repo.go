package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

// RoleRepository implements secondary.RoleRepository with SQLite.
type RoleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new SQLite role repository.
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetRole returns the assigned role of a principal.
func (r *RoleRepository) GetRole(ctx context.Context, principalID string) (string, bool, error) {
	var role string
	err := r.db.QueryRowContext(ctx,
		"SELECT role FROM role_assignments WHERE principal_id = ?", principalID,
	).Scan(&role)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get role: %w", err)
	}
	return role, true, nil
}

// Assign sets the role of a principal. The singleton index on hr and
// executive_assistant rejects a second holder.
func (r *RoleRepository) Assign(ctx context.Context, principalID, role string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO role_assignments (principal_id, role) VALUES (?, ?)
		 ON CONFLICT(principal_id) DO UPDATE SET role = excluded.role, assigned_at = CURRENT_TIMESTAMP`,
		principalID, role,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("role %s is already held by another principal", role)
	}
	if isForeignKeyViolation(err) {
		return apperr.NotFound("principal %s not found", principalID)
	}
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// Revoke removes the role row of a principal.
func (r *RoleRepository) Revoke(ctx context.Context, principalID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM role_assignments WHERE principal_id = ?", principalID)
	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return nil
}

// HolderOf returns the principal holding role, or "" if none.
func (r *RoleRepository) HolderOf(ctx context.Context, role string) (string, error) {
	var principalID string
	err := r.db.QueryRowContext(ctx,
		"SELECT principal_id FROM role_assignments WHERE role = ? ORDER BY assigned_at LIMIT 1", role,
	).Scan(&principalID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find role holder: %w", err)
	}
	return principalID, nil
}

// CountRole returns the number of principals holding role.
func (r *RoleRepository) CountRole(ctx context.Context, role string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM role_assignments WHERE role = ?", role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count role: %w", err)
	}
	return count, nil
}

// Ensure RoleRepository implements the interface
var _ secondary.RoleRepository = (*RoleRepository)(nil)

// PermissionRepository implements secondary.PermissionRepository with SQLite.
type PermissionRepository struct {
	db *sql.DB
}

// NewPermissionRepository creates a new SQLite permission repository.
func NewPermissionRepository(db *sql.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// GetCanManageTeam returns the stored management flag of a principal.
func (r *PermissionRepository) GetCanManageTeam(ctx context.Context, principalID string) (bool, bool, error) {
	var canManage int
	err := r.db.QueryRowContext(ctx,
		"SELECT can_manage_team FROM permissions WHERE principal_id = ?", principalID,
	).Scan(&canManage)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to get permission: %w", err)
	}
	return canManage == 1, true, nil
}

// SetCanManageTeam creates or updates the permission row.
func (r *PermissionRepository) SetCanManageTeam(ctx context.Context, principalID string, canManage bool) error {
	value := 0
	if canManage {
		value = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (principal_id, can_manage_team) VALUES (?, ?)
		 ON CONFLICT(principal_id) DO UPDATE SET can_manage_team = excluded.can_manage_team, updated_at = CURRENT_TIMESTAMP`,
		principalID, value,
	)
	if isForeignKeyViolation(err) {
		return apperr.NotFound("principal %s not found", principalID)
	}
	if err != nil {
		return fmt.Errorf("failed to set permission: %w", err)
	}
	return nil
}

// Ensure PermissionRepository implements the interface
var _ secondary.PermissionRepository = (*PermissionRepository)(nil)
