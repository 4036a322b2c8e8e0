package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/example/pulse/internal/ports/primary"
)

// CheckInAdapter translates CLI operations to CheckInService and AnalysisService calls.
type CheckInAdapter struct {
	checkIns primary.CheckInService
	analyses primary.AnalysisService
	out      io.Writer
}

// NewCheckInAdapter creates a new CheckInAdapter.
func NewCheckInAdapter(checkIns primary.CheckInService, analyses primary.AnalysisService, out io.Writer) *CheckInAdapter {
	return &CheckInAdapter{
		checkIns: checkIns,
		analyses: analyses,
		out:      out,
	}
}

// Submit stores a check-in and prints its analysis, or why it is pending.
// A pending analysis is not an error: the check-in is stored.
func (a *CheckInAdapter) Submit(ctx context.Context, access primary.Access, req primary.SubmitCheckInRequest) (*primary.SubmitCheckInResponse, error) {
	resp, err := a.checkIns.SubmitCheckIn(ctx, access, req)
	if err != nil {
		return nil, err
	}

	verb := "stored"
	if !resp.Created {
		verb = "updated"
	}
	fmt.Fprintf(a.out, "✓ Check-in %s %s (%s, %s)\n", resp.CheckIn.ID, verb, resp.CheckIn.StaffID, resp.CheckIn.Date)

	if resp.AnalysisError != nil {
		fmt.Fprintf(a.out, "  Analysis pending: %v\n", resp.AnalysisError)
		fmt.Fprintln(a.out, "  A manager can retry with: pulse analysis retry-pending")
		return resp, nil
	}
	a.printAnalysis(resp.Analysis)
	return resp, nil
}

// List prints check-ins as a table.
func (a *CheckInAdapter) List(ctx context.Context, access primary.Access, filters primary.CheckInFilters) ([]*primary.CheckIn, error) {
	checkIns, err := a.checkIns.ListCheckIns(ctx, access, filters)
	if err != nil {
		return nil, err
	}

	if len(checkIns) == 0 {
		fmt.Fprintln(a.out, "No check-ins found.")
		return checkIns, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSTAFF\tDATE\tSCORE\tBLOCKER\tMETRICS")
	fmt.Fprintln(w, "--\t-----\t----\t-----\t-------\t-------")
	for _, c := range checkIns {
		score, blocker := "", "-"
		if c.Analysis != nil {
			score, blocker = c.Analysis.Score, c.Analysis.Blocker
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.StaffID, c.Date, colorizeScore(score), blocker, formatMetrics(c.Metrics))
	}
	w.Flush()
	return checkIns, nil
}

// Show prints one check-in with its analysis.
func (a *CheckInAdapter) Show(ctx context.Context, access primary.Access, checkInID string) (*primary.CheckIn, error) {
	c, err := a.checkIns.GetCheckIn(ctx, access, checkInID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nCheck-in: %s\n", c.ID)
	fmt.Fprintf(a.out, "Staff:     %s\n", c.StaffID)
	fmt.Fprintf(a.out, "Date:      %s\n", c.Date)
	fmt.Fprintf(a.out, "Metrics:   %s\n", formatMetrics(c.Metrics))
	fmt.Fprintf(a.out, "Notes:     %s\n", orDash(c.Notes))
	fmt.Fprintf(a.out, "Submitted: %s\n", c.SubmittedAt.Format("2006-01-02 15:04"))
	if c.Analysis == nil {
		fmt.Fprintf(a.out, "Score:     %s\n", colorizeScore(""))
	} else {
		a.printAnalysis(c.Analysis)
	}
	fmt.Fprintln(a.out)
	return c, nil
}

// Run scores one check-in on a manager's behalf.
func (a *CheckInAdapter) Run(ctx context.Context, access primary.Access, checkInID string) (*primary.AnalyzeResponse, error) {
	resp, err := a.analyses.RunAnalysis(ctx, access, checkInID)
	if err != nil {
		return nil, err
	}
	if resp.AlreadyAnalyzed {
		fmt.Fprintf(a.out, "Check-in %s was already analyzed.\n", checkInID)
	}
	a.printAnalysis(resp.Analysis)
	return resp, nil
}

// Pending prints check-ins still waiting for analysis.
func (a *CheckInAdapter) Pending(ctx context.Context, access primary.Access, limit int) ([]*primary.CheckIn, error) {
	pending, err := a.analyses.ListPending(ctx, access, limit)
	if err != nil {
		return nil, err
	}

	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No check-ins are waiting for analysis.")
		return pending, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSTAFF\tDATE\tSUBMITTED")
	fmt.Fprintln(w, "--\t-----\t----\t---------")
	for _, c := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.StaffID, c.Date, c.SubmittedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	return pending, nil
}

// RetryPending re-runs analysis for pending check-ins and prints the sweep summary.
func (a *CheckInAdapter) RetryPending(ctx context.Context, access primary.Access, limit int) (*primary.RetryPendingResponse, error) {
	resp, err := a.analyses.RetryPending(ctx, access, limit)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "Analyzed %d of %d pending check-ins\n", resp.Analyzed, resp.Attempted)
	ids := make([]string, 0, len(resp.Failed))
	for id := range resp.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(a.out, "  ✗ %s: %s\n", id, resp.Failed[id])
	}
	return resp, nil
}

func (a *CheckInAdapter) printAnalysis(an *primary.Analysis) {
	if an == nil {
		return
	}
	fmt.Fprintf(a.out, "Score:     %s\n", colorizeScore(an.Score))
	fmt.Fprintf(a.out, "Blocker:   %s\n", an.Blocker)
	fmt.Fprintf(a.out, "Reason:    %s\n", an.Reason)
	fmt.Fprintf(a.out, "Message:   %s\n", an.Message)
	fmt.Fprintf(a.out, "Next step: %s\n", an.NextStep)
}
