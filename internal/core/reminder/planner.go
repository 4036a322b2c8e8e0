// Package reminder contains the pure planning logic of the daily reminder run.
package reminder

import (
	"fmt"
	"sort"

	"github.com/example/pulse/internal/core/effects"
)

// EligibleStaff is a staff record with a linked account, pre-fetched by the caller.
type EligibleStaff struct {
	StaffID string
	Name    string
	Address string // notification address of the linked account, "" if unknown
}

// PlanInput contains pre-fetched data for plan generation.
// All values must be gathered by the caller - no I/O in the planner.
type PlanInput struct {
	Date      string
	Eligible  []EligibleStaff // E: staff with a linked account
	Submitted []string        // S: staff ids with a check-in or staff report on Date
	Reminded  []string        // R: staff ids already in the reminder log for Date
}

// Target is one staff member to remind, with the effect that reminds them.
type Target struct {
	StaffID string
	Name    string
	Address string
	Effect  effects.Effect
}

// Plan describes a reminder run before anything is sent.
type Plan struct {
	Date             string
	Eligible         int
	AlreadySubmitted int
	AlreadyReminded  int
	Targets          []Target // E - S - R with an address
	NoAddress        []Target // E - S - R without an address
}

// NothingToDo reports whether the run has no one to contact.
func (p Plan) NothingToDo() bool {
	return len(p.Targets) == 0
}

// GeneratePlan computes the target set E - S - R for one date.
// Each addressed target gets a notify-then-log composite so the log row is
// written only after a successful send.
func GeneratePlan(in PlanInput) Plan {
	submitted := toSet(in.Submitted)
	reminded := toSet(in.Reminded)

	plan := Plan{Date: in.Date}
	seen := make(map[string]bool, len(in.Eligible))

	for _, s := range in.Eligible {
		if seen[s.StaffID] {
			continue
		}
		seen[s.StaffID] = true
		plan.Eligible++

		switch {
		case submitted[s.StaffID]:
			plan.AlreadySubmitted++
			continue
		case reminded[s.StaffID]:
			plan.AlreadyReminded++
			continue
		}

		t := Target{StaffID: s.StaffID, Name: s.Name, Address: s.Address}
		if s.Address == "" {
			t.Effect = effects.LogEffect{
				Level:   "warn",
				Message: "no notification address, skipping reminder",
				Fields:  map[string]any{"staff_id": s.StaffID, "date": in.Date},
			}
			plan.NoAddress = append(plan.NoAddress, t)
			continue
		}

		t.Effect = effects.CompositeEffect{Effects: []effects.Effect{
			effects.NotifyEffect{
				StaffID: s.StaffID,
				Address: s.Address,
				Subject: Subject(in.Date),
				Body:    Body(s.Name, in.Date),
			},
			effects.PersistEffect{
				Entity:    effects.EntityReminderLog,
				Operation: "create",
				Data:      effects.ReminderLogData{StaffID: s.StaffID, Date: in.Date, Address: s.Address},
			},
		}}
		plan.Targets = append(plan.Targets, t)
	}

	sort.Slice(plan.Targets, func(i, j int) bool { return plan.Targets[i].StaffID < plan.Targets[j].StaffID })
	sort.Slice(plan.NoAddress, func(i, j int) bool { return plan.NoAddress[i].StaffID < plan.NoAddress[j].StaffID })
	return plan
}

// Subject is the reminder subject line for date.
func Subject(date string) string {
	return fmt.Sprintf("Reminder: your check-in for %s is missing", date)
}

// Body is the reminder text for one staff member.
func Body(name, date string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s,\n\nWe have not received your check-in for %s yet. "+
		"Please submit it with: pulse checkin submit\n\nThanks!", name, date)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
