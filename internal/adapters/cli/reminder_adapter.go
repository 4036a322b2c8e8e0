package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/example/pulse/internal/ports/primary"
)

// ReminderAdapter translates CLI operations to ReminderService calls.
type ReminderAdapter struct {
	service primary.ReminderService
	out     io.Writer
}

// NewReminderAdapter creates a new ReminderAdapter.
func NewReminderAdapter(service primary.ReminderService, out io.Writer) *ReminderAdapter {
	return &ReminderAdapter{
		service: service,
		out:     out,
	}
}

// Run triggers a reminder run and prints its summary.
func (a *ReminderAdapter) Run(ctx context.Context, access primary.Access, date string) (*primary.RunSummary, error) {
	summary, err := a.service.TriggerRun(ctx, access, date)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "Reminders for %s\n", summary.Date)
	fmt.Fprintf(a.out, "  eligible:          %d\n", summary.Eligible)
	fmt.Fprintf(a.out, "  already submitted: %d\n", summary.AlreadySubmitted)
	fmt.Fprintf(a.out, "  already reminded:  %d\n", summary.AlreadyReminded)
	fmt.Fprintf(a.out, "  sent:              %d\n", summary.Sent)
	if summary.SkippedNoAddress > 0 {
		fmt.Fprintf(a.out, "  no address:        %d\n", summary.SkippedNoAddress)
	}
	if summary.Failed > 0 {
		fmt.Fprintf(a.out, "  failed:            %d (retried on the next run)\n", summary.Failed)
		ids := make([]string, 0, len(summary.Errors))
		for id := range summary.Errors {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(a.out, "    ✗ %s: %s\n", id, summary.Errors[id])
		}
	}
	return summary, nil
}
