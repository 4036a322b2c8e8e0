package primary

import (
	"context"
	"time"
)

// ReportService defines the primary port for the manager/staff report mailbox.
type ReportService interface {
	// SubmitReport creates an unread report.
	SubmitReport(ctx context.Context, access Access, req SubmitReportRequest) (*Report, error)

	// ListUnreadForManager lists unread staff reports across all staff (managers only).
	ListUnreadForManager(ctx context.Context, access Access) ([]*Report, error)

	// ListForStaff lists reports sent by, and addressed to, one staff member, newest first.
	ListForStaff(ctx context.Context, access Access, staffID string) ([]*Report, error)

	// MarkRead marks one or more reports read. Only recipients may mark.
	// Returns the number of reports that changed from unread to read.
	MarkRead(ctx context.Context, access Access, reportIDs ...string) (int, error)

	// DeleteReport permanently removes a report.
	DeleteReport(ctx context.Context, access Access, reportID string) error
}

// SubmitReportRequest contains parameters for submitting a report.
type SubmitReportRequest struct {
	StaffID   string // sender for from_staff (empty means caller), recipient for from_manager
	Body      string
	Direction string // 'from_staff', 'from_manager'
}

// Report represents a mailbox message at the port boundary.
type Report struct {
	ID         string
	StaffID    string
	Body       string
	Direction  string
	Read       bool
	ReportDate string
	CreatedAt  time.Time
}
