// Package report contains the pure business logic for the manager/staff report mailbox.
// This is part of the Functional Core - no I/O, only pure functions.
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/example/pulse/internal/core/role"
)

// Direction records who wrote a report.
type Direction string

const (
	FromStaff   Direction = "from_staff"
	FromManager Direction = "from_manager"
)

// MaxBodyLength bounds a report body.
const MaxBodyLength = 10000

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case FromStaff, FromManager:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q (want from_staff or from_manager)", s)
}

// ValidateBody checks a report body before it is stored.
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("report body must not be empty")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return fmt.Errorf("report body exceeds %d characters", MaxBodyLength)
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

// ActorContext identifies the caller of a mailbox operation.
type ActorContext struct {
	Access        role.Access
	CallerStaffID string // staff record linked to the caller, "" if unlinked
}

// SubmitContext provides context for report submission guards.
type SubmitContext struct {
	ActorContext
	Direction Direction
	StaffID   string // sender for from_staff, recipient for from_manager
}

// CanSubmit evaluates whether the caller may send a report.
// Rules: from_staff requires the caller to be linked to StaffID;
// from_manager requires team management rights.
func CanSubmit(ctx SubmitContext) GuardResult {
	switch ctx.Direction {
	case FromStaff:
		if ctx.CallerStaffID == "" || ctx.CallerStaffID != ctx.StaffID {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("principal %s can only send reports as its own linked staff record", ctx.Access.PrincipalID),
			}
		}
	case FromManager:
		if !ctx.Access.CanManageTeam {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("principal %s cannot message staff without team management rights", ctx.Access.PrincipalID),
			}
		}
	default:
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown direction %q", ctx.Direction)}
	}
	return GuardResult{Allowed: true}
}

// CanReadInbox evaluates whether the caller may list unread staff reports.
func CanReadInbox(ctx ActorContext) GuardResult {
	return GuardResult(role.CanManageTeam(ctx.Access))
}

// CanListForStaff evaluates whether the caller may list the thread of staffID.
// Rule: team viewers list anyone; staff list only their own.
func CanListForStaff(ctx ActorContext, staffID string) GuardResult {
	if role.CanViewTeam(ctx.Access).Allowed {
		return GuardResult{Allowed: true}
	}
	if ctx.CallerStaffID != "" && ctx.CallerStaffID == staffID {
		return GuardResult{Allowed: true}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("principal %s cannot list reports of %s", ctx.Access.PrincipalID, staffID),
	}
}

// MessageContext describes an existing report being acted on.
type MessageContext struct {
	ActorContext
	ReportID  string
	Direction Direction
	StaffID   string
}

// CanMarkRead evaluates whether the caller is a recipient of the report.
// Rules: managers receive from_staff reports; the addressed staff receives from_manager reports.
func CanMarkRead(ctx MessageContext) GuardResult {
	switch ctx.Direction {
	case FromStaff:
		if ctx.Access.CanManageTeam {
			return GuardResult{Allowed: true}
		}
	case FromManager:
		if ctx.CallerStaffID != "" && ctx.CallerStaffID == ctx.StaffID {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("principal %s is not a recipient of report %s", ctx.Access.PrincipalID, ctx.ReportID),
	}
}

// CanDelete evaluates whether the caller may retract a report.
// Rules: managers delete any report; staff retract only reports they sent.
func CanDelete(ctx MessageContext) GuardResult {
	if ctx.Access.CanManageTeam {
		return GuardResult{Allowed: true}
	}
	if ctx.Direction == FromStaff && ctx.CallerStaffID != "" && ctx.CallerStaffID == ctx.StaffID {
		return GuardResult{Allowed: true}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("principal %s cannot delete report %s", ctx.Access.PrincipalID, ctx.ReportID),
	}
}
