package primary

import "context"

// ReminderService defines the primary port for the daily reminder run.
type ReminderService interface {
	// Run reminds every linked staff member without a submission for date.
	// Safe to re-run: the reminder log admits one row per staff per day.
	Run(ctx context.Context, date string) (*RunSummary, error)

	// TriggerRun is Run started manually by a manager. Empty date means today.
	TriggerRun(ctx context.Context, access Access, date string) (*RunSummary, error)
}

// RunSummary reports what one reminder run did.
type RunSummary struct {
	Date             string
	Eligible         int
	AlreadySubmitted int
	AlreadyReminded  int
	Targeted         int
	Sent             int
	SkippedNoAddress int
	Failed           int
	Errors           map[string]string // staff id -> error
}
