package app

import (
	"context"
	"fmt"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/role"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// AuditLogServiceImpl implements the AuditLogService interface.
type AuditLogServiceImpl struct {
	logRepo secondary.AuditLogRepository
}

// NewAuditLogService creates a new AuditLogService with injected dependencies.
func NewAuditLogService(logRepo secondary.AuditLogRepository) *AuditLogServiceImpl {
	return &AuditLogServiceImpl{
		logRepo: logRepo,
	}
}

// ListLogs retrieves log entries matching the given filters.
func (s *AuditLogServiceImpl) ListLogs(ctx context.Context, access primary.Access, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	if err := deny(role.CanViewTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}

	records, err := s.logRepo.List(ctx, secondary.AuditLogFilters{
		EntityType: filters.EntityType,
		EntityID:   filters.EntityID,
		ActorID:    filters.ActorID,
		Action:     filters.Action,
		Since:      filters.Since,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	entries := make([]*primary.LogEntry, len(records))
	for i, r := range records {
		entries[i] = s.recordToLogEntry(r)
	}
	return entries, nil
}

// GetLog retrieves a single log entry by ID.
func (s *AuditLogServiceImpl) GetLog(ctx context.Context, access primary.Access, id string) (*primary.LogEntry, error) {
	if err := deny(role.CanViewTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}

	record, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recordToLogEntry(record), nil
}

// PruneLogs deletes log entries older than the specified number of days. Owners only.
func (s *AuditLogServiceImpl) PruneLogs(ctx context.Context, access primary.Access, olderThanDays int) (int, error) {
	if err := deny(role.CanAdministerRoles(toRoleAccess(access)).Error()); err != nil {
		return 0, err
	}
	if olderThanDays < 1 {
		return 0, apperr.Validation("retention must be at least 1 day, got %d", olderThanDays)
	}
	return s.logRepo.PruneOlderThan(ctx, olderThanDays)
}

func (s *AuditLogServiceImpl) recordToLogEntry(r *secondary.AuditLogRecord) *primary.LogEntry {
	return &primary.LogEntry{
		ID:         r.ID,
		Timestamp:  r.Timestamp,
		ActorID:    r.ActorID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		FieldName:  r.FieldName,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
	}
}

// Ensure AuditLogServiceImpl implements the interface
var _ primary.AuditLogService = (*AuditLogServiceImpl)(nil)
