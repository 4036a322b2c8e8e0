package primary

import (
	"context"
	"time"
)

// CheckInService defines the primary port for daily check-ins.
type CheckInService interface {
	// SubmitCheckIn upserts the check-in for (staff, date) and then runs analysis.
	// The check-in is stored even when analysis fails; see SubmitCheckInResponse.AnalysisError.
	SubmitCheckIn(ctx context.Context, access Access, req SubmitCheckInRequest) (*SubmitCheckInResponse, error)

	// GetCheckIn retrieves a check-in with its analysis, if any.
	GetCheckIn(ctx context.Context, access Access, checkInID string) (*CheckIn, error)

	// ListCheckIns lists check-ins (team viewers see all, staff their own).
	ListCheckIns(ctx context.Context, access Access, filters CheckInFilters) ([]*CheckIn, error)
}

// SubmitCheckInRequest contains parameters for submitting a check-in.
type SubmitCheckInRequest struct {
	StaffID string // empty means the caller's linked record
	Metrics map[string]string
	Notes   string
	Date    string // YYYY-MM-DD; empty means today in the organization timezone
}

// SubmitCheckInResponse contains the result of a submission.
type SubmitCheckInResponse struct {
	CheckIn       *CheckIn
	Created       bool // false when an existing row for the day was updated
	Analysis      *Analysis
	AnalysisError error // non-nil when the check-in is stored but pending analysis
}

// CheckInFilters contains filter options for listing check-ins.
type CheckInFilters struct {
	StaffID string
	From    string
	To      string
	Limit   int
}

// CheckIn represents a check-in at the port boundary.
type CheckIn struct {
	ID          string
	StaffID     string
	Date        string
	Metrics     map[string]string
	Notes       string
	SubmittedAt time.Time
	Analysis    *Analysis // nil while pending
}

// AnalysisService defines the primary port for check-in scoring.
type AnalysisService interface {
	// Analyze scores a stored check-in once. Safe to retry: an existing
	// analysis is returned with AlreadyAnalyzed set.
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// RunAnalysis is Analyze on behalf of a manager.
	RunAnalysis(ctx context.Context, access Access, checkInID string) (*AnalyzeResponse, error)

	// ListPending lists check-ins that have no analysis yet (managers only).
	ListPending(ctx context.Context, access Access, limit int) ([]*CheckIn, error)

	// RetryPending re-invokes analysis for up to limit pending check-ins (managers only).
	RetryPending(ctx context.Context, access Access, limit int) (*RetryPendingResponse, error)
}

// AnalyzeRequest contains parameters for scoring a check-in.
type AnalyzeRequest struct {
	CheckInID string
	Language  string // empty means the organization default
}

// AnalyzeResponse contains the stored analysis.
type AnalyzeResponse struct {
	Analysis        *Analysis
	AlreadyAnalyzed bool
}

// RetryPendingResponse summarizes a pending-analysis sweep.
type RetryPendingResponse struct {
	Attempted int
	Analyzed  int
	Failed    map[string]string // check-in id -> error
}

// Analysis represents a scored check-in at the port boundary.
type Analysis struct {
	ID        string
	CheckInID string
	Score     string
	Blocker   string
	Reason    string
	Message   string
	NextStep  string
	Model     string
	CreatedAt time.Time
}
