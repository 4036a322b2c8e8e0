package secondary

import "context"

// AuditWriter defines the interface for writing audit log entries.
// Implementations extract the acting principal from context.
type AuditWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error

	// LogAction logs a domain action (link, read) that is not a plain CRUD change.
	LogAction(ctx context.Context, entityType, entityID, action string) error
}
