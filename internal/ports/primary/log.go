package primary

import (
	"context"
	"time"
)

// AuditLogService defines the primary port for the audit trail.
type AuditLogService interface {
	// ListLogs retrieves log entries matching the given filters.
	ListLogs(ctx context.Context, access Access, filters LogFilters) ([]*LogEntry, error)

	// GetLog retrieves a single log entry by ID.
	GetLog(ctx context.Context, access Access, id string) (*LogEntry, error)

	// PruneLogs deletes log entries older than the specified number of days.
	PruneLogs(ctx context.Context, access Access, olderThanDays int) (int, error)
}

// LogEntry represents an audit entry at the port boundary.
type LogEntry struct {
	ID         string
	Timestamp  time.Time
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	FieldName  string // For updates only
	OldValue   string
	NewValue   string
}

// LogFilters contains filter options for querying logs.
type LogFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Since      time.Time
	Limit      int
}
