// Package identity contains the pure decision logic for binding a principal to a staff record.
// This is part of the Functional Core - no I/O, only pure functions.
package identity

import (
	"fmt"
	"strings"
)

// Outcome is the result code of a link attempt.
type Outcome string

const (
	OutcomeLinked             Outcome = "linked"
	OutcomeNoMatch            Outcome = "no_match"
	OutcomeMultipleMatches    Outcome = "multiple_matches"
	OutcomeAlreadyLinkedSelf  Outcome = "already_linked_self"
	OutcomeAlreadyLinkedOther Outcome = "already_linked_other"
	OutcomeRaceLost           Outcome = "race_lost"
	OutcomeSkippedOwner       Outcome = "skipped_owner"
)

// IsConflict reports whether the outcome should surface as a conflict to the caller.
func (o Outcome) IsConflict() bool {
	return o == OutcomeMultipleMatches || o == OutcomeAlreadyLinkedOther || o == OutcomeRaceLost
}

// Candidate is a staff record whose email matched the principal's.
type Candidate struct {
	StaffID           string
	LinkedPrincipalID string // "" when unlinked
}

// LinkInput contains pre-fetched state for Decide.
type LinkInput struct {
	PrincipalID    string
	IsOwner        bool
	CurrentStaffID string // staff record already linked to this principal, "" if none
	Matches        []Candidate
}

// Decision is the planned action for a link attempt.
// When Attempt is true the caller must perform the conditional write on StaffID;
// otherwise Outcome is final.
type Decision struct {
	Outcome Outcome
	StaffID string
	Attempt bool
}

// Decide evaluates a link attempt without mutating anything.
func Decide(in LinkInput) Decision {
	if in.IsOwner {
		return Decision{Outcome: OutcomeSkippedOwner}
	}
	if in.CurrentStaffID != "" {
		return Decision{Outcome: OutcomeAlreadyLinkedSelf, StaffID: in.CurrentStaffID}
	}

	switch len(in.Matches) {
	case 0:
		return Decision{Outcome: OutcomeNoMatch}
	case 1:
	default:
		return Decision{Outcome: OutcomeMultipleMatches}
	}

	match := in.Matches[0]
	switch match.LinkedPrincipalID {
	case "":
		return Decision{StaffID: match.StaffID, Attempt: true}
	case in.PrincipalID:
		return Decision{Outcome: OutcomeAlreadyLinkedSelf, StaffID: match.StaffID}
	default:
		return Decision{Outcome: OutcomeAlreadyLinkedOther, StaffID: match.StaffID}
	}
}

// AfterWrite resolves an attempted link from the number of rows the conditional write touched.
func AfterWrite(d Decision, rowsAffected int64) Decision {
	if rowsAffected == 0 {
		return Decision{Outcome: OutcomeRaceLost, StaffID: d.StaffID}
	}
	return Decision{Outcome: OutcomeLinked, StaffID: d.StaffID}
}

// NormalizeEmail lowercases and trims an address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs the minimal shape check applied before matching.
func ValidateEmail(email string) error {
	e := NormalizeEmail(email)
	at := strings.LastIndex(e, "@")
	if at <= 0 || at == len(e)-1 || strings.ContainsAny(e, " \t") {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}
