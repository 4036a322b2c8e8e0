package sqlite

import (
	"context"
	"sync"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ctxutil"
	"github.com/example/pulse/internal/ports/secondary"
)

// auditIDAttempts bounds how often a writer re-reads the next id after losing
// it to another process sharing the database.
const auditIDAttempts = 5

// AuditWriterAdapter records audit entries through an AuditLogRepository.
// The actor is the principal carried in the context, empty for system work.
type AuditWriterAdapter struct {
	repo secondary.AuditLogRepository
	mu   sync.Mutex
}

// NewAuditWriterAdapter creates a new AuditWriterAdapter.
func NewAuditWriterAdapter(repo secondary.AuditLogRepository) *AuditWriterAdapter {
	return &AuditWriterAdapter{repo: repo}
}

func (w *AuditWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.append(ctx, secondary.AuditLogRecord{EntityType: entityType, EntityID: entityID, Action: "create"})
}

func (w *AuditWriterAdapter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.append(ctx, secondary.AuditLogRecord{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     "update",
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

func (w *AuditWriterAdapter) LogDelete(ctx context.Context, entityType, entityID string) error {
	return w.append(ctx, secondary.AuditLogRecord{EntityType: entityType, EntityID: entityID, Action: "delete"})
}

// LogAction records a domain action such as link or read.
func (w *AuditWriterAdapter) LogAction(ctx context.Context, entityType, entityID, action string) error {
	return w.append(ctx, secondary.AuditLogRecord{EntityType: entityType, EntityID: entityID, Action: action})
}

// append assigns the next sequential id and inserts the entry. Within the
// process the mutex orders writers; across processes a taken id surfaces as a
// Conflict and the id is read again.
func (w *AuditWriterAdapter) append(ctx context.Context, entry secondary.AuditLogRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry.ActorID = ctxutil.PrincipalFromContext(ctx)
	var err error
	for range auditIDAttempts {
		if entry.ID, err = w.repo.GetNextID(ctx); err != nil {
			return err
		}
		if err = w.repo.Create(ctx, &entry); !apperr.IsConflict(err) {
			return err
		}
	}
	return err
}

var _ secondary.AuditWriter = (*AuditWriterAdapter)(nil)
