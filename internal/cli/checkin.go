package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/wire"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Submit and review daily check-ins",
}

var checkinSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit today's check-in",
	Long: `Submit a daily check-in. Submitting again for the same day updates it.

Examples:
  pulse checkin submit --metric tickets_closed=12 --notes "blocked on deploy"
  pulse checkin submit --metric calls=30 --date yesterday
  pulse checkin submit --staff STAFF-004 --metric calls=30   # managers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		staffID, _ := cmd.Flags().GetString("staff")
		metrics, _ := cmd.Flags().GetStringToString("metric")
		notes, _ := cmd.Flags().GetString("notes")
		date, err := dateFlag(cmd, "date")
		if err != nil {
			return err
		}

		_, err = wire.CheckInAdapter().Submit(ctx, access, primary.SubmitCheckInRequest{
			StaffID: staffID,
			Metrics: metrics,
			Notes:   notes,
			Date:    date,
		})
		return err
	},
}

var checkinListCmd = &cobra.Command{
	Use:   "list",
	Short: "List check-ins",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		staffID, _ := cmd.Flags().GetString("staff")
		limit, _ := cmd.Flags().GetInt("limit")
		loc := wire.Config().Location()
		from, err := resolveDate(mustString(cmd, "from"), time.Now(), loc)
		if err != nil {
			return err
		}
		to, err := resolveDate(mustString(cmd, "to"), time.Now(), loc)
		if err != nil {
			return err
		}

		_, err = wire.CheckInAdapter().List(ctx, access, primary.CheckInFilters{
			StaffID: staffID,
			From:    from,
			To:      to,
			Limit:   limit,
		})
		return err
	},
}

var checkinShowCmd = &cobra.Command{
	Use:   "show [check-in-id]",
	Short: "Show a check-in and its analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		_, err = wire.CheckInAdapter().Show(ctx, access, args[0])
		return err
	},
}

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Run and retry check-in analysis (managers only)",
}

var analysisRunCmd = &cobra.Command{
	Use:   "run [check-in-id]",
	Short: "Analyze one check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		_, err = wire.CheckInAdapter().Run(ctx, access, args[0])
		return err
	},
}

var analysisPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List check-ins waiting for analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		_, err = wire.CheckInAdapter().Pending(ctx, access, limit)
		return err
	},
}

var analysisRetryCmd = &cobra.Command{
	Use:   "retry-pending",
	Short: "Re-run analysis for check-ins waiting for it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		_, err = wire.CheckInAdapter().RetryPending(ctx, access, limit)
		return err
	},
}

// dateFlag resolves --date in the organization timezone.
func dateFlag(cmd *cobra.Command, name string) (string, error) {
	return resolveDate(mustString(cmd, name), time.Now(), wire.Config().Location())
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// CheckinCmd returns the checkin command with all subcommands attached.
func CheckinCmd() *cobra.Command {
	checkinSubmitCmd.Flags().String("staff", "", "Staff id (default: your linked record)")
	checkinSubmitCmd.Flags().StringToString("metric", nil, "Metric as name=value (repeatable)")
	checkinSubmitCmd.Flags().String("notes", "", "Free-text notes")
	checkinSubmitCmd.Flags().String("date", "", "Day of the check-in (YYYY-MM-DD or e.g. \"yesterday\"; default today)")

	checkinListCmd.Flags().String("staff", "", "Filter by staff id")
	checkinListCmd.Flags().String("from", "", "Earliest date")
	checkinListCmd.Flags().String("to", "", "Latest date")
	checkinListCmd.Flags().IntP("limit", "n", 50, "Maximum check-ins to show")

	checkinCmd.AddCommand(checkinSubmitCmd)
	checkinCmd.AddCommand(checkinListCmd)
	checkinCmd.AddCommand(checkinShowCmd)
	return checkinCmd
}

// AnalysisCmd returns the analysis command with all subcommands attached.
func AnalysisCmd() *cobra.Command {
	analysisPendingCmd.Flags().IntP("limit", "n", 50, "Maximum check-ins to show")
	analysisRetryCmd.Flags().IntP("limit", "n", 50, "Maximum check-ins to retry")

	analysisCmd.AddCommand(analysisRunCmd)
	analysisCmd.AddCommand(analysisPendingCmd)
	analysisCmd.AddCommand(analysisRetryCmd)
	return analysisCmd
}
