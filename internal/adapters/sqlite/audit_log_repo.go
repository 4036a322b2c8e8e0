package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create persists a new audit entry.
func (r *AuditLogRepository) Create(ctx context.Context, log *secondary.AuditLogRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		nullString(log.ActorID),
		log.EntityType,
		log.EntityID,
		log.Action,
		nullString(log.FieldName),
		nullString(log.OldValue),
		nullString(log.NewValue),
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("audit log %s already exists", log.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

const auditColumns = "id, timestamp, actor_id, entity_type, entity_id, action, field_name, old_value, new_value"

func scanAudit(row interface{ Scan(...any) error }) (*secondary.AuditLogRecord, error) {
	var actorID, fieldName, oldValue, newValue sql.NullString

	record := &secondary.AuditLogRecord{}
	err := row.Scan(&record.ID,
		&record.Timestamp,
		&actorID,
		&record.EntityType,
		&record.EntityID,
		&record.Action,
		&fieldName,
		&oldValue,
		&newValue)
	if err != nil {
		return nil, err
	}
	record.ActorID = actorID.String
	record.FieldName = fieldName.String
	record.OldValue = oldValue.String
	record.NewValue = newValue.String
	return record, nil
}

// GetByID retrieves an audit entry by its ID.
func (r *AuditLogRepository) GetByID(ctx context.Context, id string) (*secondary.AuditLogRecord, error) {
	record, err := scanAudit(r.db.QueryRowContext(ctx, "SELECT "+auditColumns+" FROM audit_logs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("audit log %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}
	return record, nil
}

// List retrieves audit entries matching the given filters.
func (r *AuditLogRepository) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	query := "SELECT " + auditColumns + " FROM audit_logs WHERE 1=1"
	args := []any{}

	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}

	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}

	if filters.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filters.ActorID)
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	if !filters.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filters.Since.UTC().Format(time.DateTime))
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*secondary.AuditLogRecord
	for rows.Next() {
		record, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, record)
	}

	return logs, rows.Err()
}

// GetNextID returns the next available audit entry ID.
func (r *AuditLogRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("AUD-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM audit_logs", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next audit log ID: %w", err)
	}

	return fmt.Sprintf("AUD-%04d", maxID+1), nil
}

// PruneOlderThan deletes entries older than the given number of days.
func (r *AuditLogRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM audit_logs WHERE timestamp < datetime('now', ?)",
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit logs: %w", err)
	}

	count, _ := result.RowsAffected()
	return int(count), nil
}

// Ensure AuditLogRepository implements the interface
var _ secondary.AuditLogRepository = (*AuditLogRepository)(nil)
