// Package checkin contains the pure business logic for daily check-in submission.
// This is part of the Functional Core - no I/O, only pure functions.
package checkin

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/pulse/internal/core/role"
)

// DateLayout is the storage format of a calendar day.
const DateLayout = "2006-01-02"

// MaxNotesLength bounds the free-text notes of a single check-in.
const MaxNotesLength = 4000

// Today returns the calendar day containing now in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD day and returns it in canonical form.
func ParseDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return d.Format(DateLayout), nil
}

// Submission is the caller-supplied part of a check-in.
type Submission struct {
	StaffID string
	Metrics map[string]string
	Notes   string
	Date    string
}

// Validate checks a submission's shape. Date may be empty (caller fills in today).
func Validate(s Submission) error {
	if strings.TrimSpace(s.StaffID) == "" {
		return fmt.Errorf("staff id is required")
	}
	if len(s.Metrics) == 0 {
		return fmt.Errorf("at least one metric is required")
	}
	for name := range s.Metrics {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("metric names must not be empty")
		}
	}
	if utf8.RuneCountInString(s.Notes) > MaxNotesLength {
		return fmt.Errorf("notes exceed %d characters", MaxNotesLength)
	}
	if s.Date != "" {
		if _, err := ParseDate(s.Date); err != nil {
			return err
		}
	}
	return nil
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// OwnershipContext describes who is acting on which staff record's check-ins.
type OwnershipContext struct {
	Access        role.Access
	StaffID       string // target staff record
	CallerStaffID string // staff record linked to the caller, "" if unlinked
}

// CanSubmit evaluates whether the caller may submit a check-in for StaffID.
// Rule: managers submit for anyone; everyone else only for their own linked record.
func CanSubmit(ctx OwnershipContext) GuardResult {
	if ctx.Access.CanManageTeam {
		return GuardResult{Allowed: true}
	}
	if ctx.CallerStaffID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("principal %s is not linked to a staff record. Link first with: pulse link", ctx.Access.PrincipalID),
		}
	}
	if ctx.CallerStaffID != ctx.StaffID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("principal %s may only submit check-ins for %s", ctx.Access.PrincipalID, ctx.CallerStaffID),
		}
	}
	return GuardResult{Allowed: true}
}

// CanView evaluates whether the caller may read check-ins of StaffID.
// Rule: team viewers read anyone's; everyone else only their own.
func CanView(ctx OwnershipContext) GuardResult {
	if role.CanViewTeam(ctx.Access).Allowed {
		return GuardResult{Allowed: true}
	}
	if ctx.CallerStaffID != "" && ctx.CallerStaffID == ctx.StaffID {
		return GuardResult{Allowed: true}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("principal %s cannot view check-ins of %s", ctx.Access.PrincipalID, ctx.StaffID),
	}
}
