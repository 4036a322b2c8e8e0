package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/wire"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Exchange reports between staff and managers",
}

var reportSendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send a report",
	Long: `Send a report. Staff send to managers; managers send to one staff member
with --to.

Examples:
  pulse report send "Out sick today"
  pulse report send --to STAFF-002 "Great work on the backlog"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		to, _ := cmd.Flags().GetString("to")

		req := primary.SubmitReportRequest{
			Body:      strings.Join(args, " "),
			Direction: "from_staff",
		}
		if to != "" {
			req.StaffID = to
			req.Direction = "from_manager"
		}
		_, err = wire.ReportAdapter().Send(ctx, access, req)
		return err
	},
}

var reportInboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Show unread staff reports (managers only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		_, err = wire.ReportAdapter().Inbox(ctx, access)
		return err
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list [staff-id]",
	Short: "Show the report thread of a staff member (default: your own)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		var staffID string
		if len(args) == 1 {
			staffID = args[0]
		}
		_, err = wire.ReportAdapter().List(ctx, access, staffID)
		return err
	},
}

var reportReadCmd = &cobra.Command{
	Use:   "read [report-id...]",
	Short: "Mark reports addressed to you as read",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		_, err = wire.ReportAdapter().Read(ctx, access, args...)
		return err
	},
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete [report-id]",
	Short: "Delete a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		return wire.ReportAdapter().Delete(ctx, access, args[0])
	},
}

// ReportCmd returns the report command with all subcommands attached.
func ReportCmd() *cobra.Command {
	reportSendCmd.Flags().String("to", "", "Recipient staff id (managers only)")

	reportCmd.AddCommand(reportSendCmd)
	reportCmd.AddCommand(reportInboxCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportReadCmd)
	reportCmd.AddCommand(reportDeleteCmd)
	return reportCmd
}
