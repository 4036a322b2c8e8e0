package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/pulse/internal/ports/primary"
)

// ReportAdapter translates CLI operations to ReportService calls.
type ReportAdapter struct {
	service primary.ReportService
	out     io.Writer
}

// NewReportAdapter creates a new ReportAdapter.
func NewReportAdapter(service primary.ReportService, out io.Writer) *ReportAdapter {
	return &ReportAdapter{
		service: service,
		out:     out,
	}
}

// Send submits a report.
func (a *ReportAdapter) Send(ctx context.Context, access primary.Access, req primary.SubmitReportRequest) (*primary.Report, error) {
	r, err := a.service.SubmitReport(ctx, access, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Report %s sent (%s, %s)\n", r.ID, r.Direction, r.StaffID)
	return r, nil
}

// Inbox prints unread staff reports.
func (a *ReportAdapter) Inbox(ctx context.Context, access primary.Access) ([]*primary.Report, error) {
	reports, err := a.service.ListUnreadForManager(ctx, access)
	if err != nil {
		return nil, err
	}

	if len(reports) == 0 {
		fmt.Fprintln(a.out, "Inbox is empty.")
		return reports, nil
	}
	a.printTable(reports)
	return reports, nil
}

// List prints one staff member's thread, newest first.
func (a *ReportAdapter) List(ctx context.Context, access primary.Access, staffID string) ([]*primary.Report, error) {
	reports, err := a.service.ListForStaff(ctx, access, staffID)
	if err != nil {
		return nil, err
	}

	if len(reports) == 0 {
		fmt.Fprintln(a.out, "No reports found.")
		return reports, nil
	}
	a.printTable(reports)
	return reports, nil
}

// Read marks reports read.
func (a *ReportAdapter) Read(ctx context.Context, access primary.Access, ids ...string) (int, error) {
	changed, err := a.service.MarkRead(ctx, access, ids...)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(a.out, "✓ Marked %d of %d report(s) read\n", changed, len(ids))
	return changed, nil
}

// Delete removes a report.
func (a *ReportAdapter) Delete(ctx context.Context, access primary.Access, id string) error {
	if err := a.service.DeleteReport(ctx, access, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Report %s deleted\n", id)
	return nil
}

func (a *ReportAdapter) printTable(reports []*primary.Report) {
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, " \tID\tSTAFF\tDIRECTION\tDATE\tBODY")
	fmt.Fprintln(w, " \t--\t-----\t---------\t----\t----")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			unreadMarker(r.Read), r.ID, r.StaffID, r.Direction, r.ReportDate, truncate(r.Body, 60))
	}
	w.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
