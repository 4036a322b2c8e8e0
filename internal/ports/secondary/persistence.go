// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// PrincipalRepository defines the secondary port for the principal registry.
type PrincipalRepository interface {
	// Create registers a new principal. Returns a conflict error if the ID exists.
	Create(ctx context.Context, principal *PrincipalRecord) error

	// GetByID retrieves a principal by its ID.
	GetByID(ctx context.Context, id string) (*PrincipalRecord, error)

	// List retrieves all principals ordered by ID.
	List(ctx context.Context) ([]*PrincipalRecord, error)

	// ListUnlinked retrieves principals not linked to any staff record.
	ListUnlinked(ctx context.Context) ([]*PrincipalRecord, error)
}

// PrincipalRecord represents an authenticated identity as stored in persistence.
type PrincipalRecord struct {
	ID          string
	Email       string
	DisplayName string // Empty string means null
	CreatedAt   time.Time
}

// RoleRepository defines the secondary port for role assignments.
type RoleRepository interface {
	// GetRole returns the assigned role. found is false when no row exists.
	GetRole(ctx context.Context, principalID string) (role string, found bool, err error)

	// Assign sets the role of a principal, replacing any previous one.
	// Returns a conflict error when a singleton role is already held by someone else.
	Assign(ctx context.Context, principalID, role string) error

	// Revoke removes the role row so the principal falls back to staff.
	Revoke(ctx context.Context, principalID string) error

	// HolderOf returns the principal holding role, or "" if none.
	HolderOf(ctx context.Context, role string) (string, error)

	// CountRole returns the number of principals holding role.
	CountRole(ctx context.Context, role string) (int, error)
}

// PermissionRepository defines the secondary port for delegated permissions.
type PermissionRepository interface {
	// GetCanManageTeam returns the stored flag. found is false when no row exists.
	GetCanManageTeam(ctx context.Context, principalID string) (canManage bool, found bool, err error)

	// SetCanManageTeam creates or updates the permission row.
	SetCanManageTeam(ctx context.Context, principalID string, canManage bool) error
}

// StaffRepository defines the secondary port for staff record persistence.
type StaffRepository interface {
	// Create persists a new staff record.
	Create(ctx context.Context, staff *StaffRecord) error

	// GetByID retrieves a staff record by its ID.
	GetByID(ctx context.Context, id string) (*StaffRecord, error)

	// GetByPrincipal retrieves the staff record linked to a principal.
	GetByPrincipal(ctx context.Context, principalID string) (*StaffRecord, error)

	// FindByEmail retrieves every staff record whose email matches, case-insensitively.
	FindByEmail(ctx context.Context, email string) ([]*StaffRecord, error)

	// List retrieves staff records matching the given filters.
	List(ctx context.Context, filters StaffFilters) ([]*StaffRecord, error)

	// Delete removes a staff record and, by cascade, its dependent rows.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available staff ID.
	GetNextID(ctx context.Context) (string, error)

	// LinkIfUnlinked sets linked_principal_id only while it is still null.
	// Returns the number of rows changed (0 when another link won).
	LinkIfUnlinked(ctx context.Context, staffID, principalID string) (int64, error)

	// ListReminderEligible retrieves staff with a linked account and that account's email.
	ListReminderEligible(ctx context.Context) ([]*EligibleStaffRecord, error)
}

// StaffRecord represents a tracked employee as stored in persistence.
type StaffRecord struct {
	ID                string
	Name              string
	Email             string // Empty string means null
	Title             string // Empty string means null
	Department        string // Empty string means null
	Targets           map[string]string
	LinkedPrincipalID string // Empty string means unlinked
	LinkedAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StaffFilters contains filter options for querying staff.
type StaffFilters struct {
	Department string
	LinkedOnly bool
}

// EligibleStaffRecord is a linked staff record joined with its principal's address.
type EligibleStaffRecord struct {
	StaffID string
	Name    string
	Address string // Empty string when the principal has no usable email
}

// CheckInRepository defines the secondary port for check-in persistence.
type CheckInRepository interface {
	// Upsert inserts the check-in or, when (staff_id, date) exists, updates its
	// metrics, notes and submitted_at in place. Returns the stored row and
	// whether it was newly created.
	Upsert(ctx context.Context, checkIn *CheckInRecord) (*CheckInRecord, bool, error)

	// GetByID retrieves a check-in by its ID.
	GetByID(ctx context.Context, id string) (*CheckInRecord, error)

	// List retrieves check-ins matching the given filters, newest day first.
	List(ctx context.Context, filters CheckInFilters) ([]*CheckInRecord, error)

	// ListUnanalyzed retrieves check-ins that have no analysis, oldest first.
	ListUnanalyzed(ctx context.Context, limit int) ([]*CheckInRecord, error)

	// StaffIDsForDate returns the staff that have a check-in on date.
	StaffIDsForDate(ctx context.Context, date string) ([]string, error)
}

// CheckInRecord represents a daily submission as stored in persistence.
type CheckInRecord struct {
	ID          string
	StaffID     string
	Date        string
	Metrics     map[string]string
	Notes       string // Empty string means null
	SubmittedAt time.Time
	CreatedAt   time.Time
}

// CheckInFilters contains filter options for querying check-ins.
type CheckInFilters struct {
	StaffID string
	From    string // inclusive YYYY-MM-DD
	To      string // inclusive YYYY-MM-DD
	Limit   int
}

// AnalysisRepository defines the secondary port for analysis persistence.
type AnalysisRepository interface {
	// Create persists a new analysis. Returns a conflict error when the
	// check-in already has one.
	Create(ctx context.Context, analysis *AnalysisRecord) error

	// GetByCheckIn retrieves the analysis of a check-in.
	GetByCheckIn(ctx context.Context, checkInID string) (*AnalysisRecord, error)
}

// AnalysisRecord represents a scored check-in as stored in persistence.
type AnalysisRecord struct {
	ID        string
	CheckInID string
	Score     string
	Blocker   string
	Reason    string
	Message   string
	NextStep  string
	Model     string // Empty string means null
	CreatedAt time.Time
}

// ReportRepository defines the secondary port for the report mailbox.
type ReportRepository interface {
	// Create persists a new, unread report.
	Create(ctx context.Context, report *ReportRecord) error

	// GetByID retrieves a report by its ID.
	GetByID(ctx context.Context, id string) (*ReportRecord, error)

	// ListUnreadFromStaff retrieves unread staff-to-manager reports across all staff, newest first.
	ListUnreadFromStaff(ctx context.Context) ([]*ReportRecord, error)

	// ListSentByStaff retrieves reports a staff member sent, newest first.
	ListSentByStaff(ctx context.Context, staffID string) ([]*ReportRecord, error)

	// ListAddressedToStaff retrieves manager reports addressed to a staff member, newest first.
	ListAddressedToStaff(ctx context.Context, staffID string) ([]*ReportRecord, error)

	// MarkRead flips read from 0 to 1. Returns false when the report was already read.
	MarkRead(ctx context.Context, id string) (bool, error)

	// Delete permanently removes a report.
	Delete(ctx context.Context, id string) error

	// StaffIDsForDate returns the staff that sent a report dated date.
	StaffIDsForDate(ctx context.Context, date string) ([]string, error)
}

// ReportRecord represents a mailbox message as stored in persistence.
type ReportRecord struct {
	ID                string
	StaffID           string
	RecipientStaffID  string // Empty string means null
	SenderPrincipalID string // Empty string means null
	Body              string
	Direction         string // 'from_staff', 'from_manager'
	Read              bool
	ReportDate        string
	CreatedAt         time.Time
}

// ReminderLogRepository defines the secondary port for the reminder dedup log.
type ReminderLogRepository interface {
	// Create appends a (staff, date) row. Returns a conflict error when one exists.
	Create(ctx context.Context, log *ReminderLogRecord) error

	// StaffIDsForDate returns the staff already reminded on date.
	StaffIDsForDate(ctx context.Context, date string) ([]string, error)
}

// ReminderLogRecord represents one confirmed reminder.
type ReminderLogRecord struct {
	ID      string
	StaffID string
	Date    string
	Address string
	SentAt  time.Time
}

// AuditLogRepository defines the secondary port for audit log persistence.
type AuditLogRepository interface {
	// Create persists a new audit entry.
	Create(ctx context.Context, log *AuditLogRecord) error

	// GetByID retrieves an audit entry by its ID.
	GetByID(ctx context.Context, id string) (*AuditLogRecord, error)

	// List retrieves audit entries matching the given filters.
	List(ctx context.Context, filters AuditLogFilters) ([]*AuditLogRecord, error)

	// GetNextID returns the next available audit entry ID.
	GetNextID(ctx context.Context) (string, error)

	// PruneOlderThan deletes entries older than the given number of days.
	// Returns the number of deleted entries.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

// AuditLogRecord represents an audit entry as stored in persistence.
type AuditLogRecord struct {
	ID         string
	Timestamp  time.Time
	ActorID    string // Empty string means null
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete', 'link', 'read'
	FieldName  string // Empty string means null - for updates only
	OldValue   string // Empty string means null
	NewValue   string // Empty string means null
}

// AuditLogFilters contains filter options for querying audit entries.
type AuditLogFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Since      time.Time // zero means no lower bound
	Limit      int
}
