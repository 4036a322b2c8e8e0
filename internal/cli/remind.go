package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/wire"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send check-in reminders",
}

var remindRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Remind everyone who has not checked in (managers only)",
	Long: `Send one reminder to every linked staff member with neither a check-in
nor a report for the day. Safe to run again: nobody is reminded twice for
the same day, and failed sends are retried.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		date, err := dateFlag(cmd, "date")
		if err != nil {
			return err
		}
		_, err = wire.ReminderAdapter().Run(ctx, access, date)
		return err
	},
}

var remindDaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run reminders every day at the configured hour",
	Long: `Stay in the foreground and run the reminders once per day after
scheduler.hour in the organization timezone. Only one daemon per host runs
at a time (scheduler.lock_file). Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return wire.ReminderDaemon().Start(ctx)
	},
}

// RemindCmd returns the remind command with all subcommands attached.
func RemindCmd() *cobra.Command {
	remindRunCmd.Flags().String("date", "", "Day to remind for (YYYY-MM-DD or e.g. \"yesterday\"; default today)")

	remindCmd.AddCommand(remindRunCmd)
	remindCmd.AddCommand(remindDaemonCmd)
	return remindCmd
}
