package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/wire"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit trail",
	Long:  "View and prune the audit trail of changes to principals, roles, staff, check-ins and reports",
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = 50
		}
		since, err := sinceFlag(cmd)
		if err != nil {
			return err
		}

		entries, err := wire.AuditLogService().ListLogs(ctx, access, primary.LogFilters{
			EntityType: mustString(cmd, "type"),
			EntityID:   mustString(cmd, "entity"),
			ActorID:    mustString(cmd, "actor"),
			Action:     mustString(cmd, "action"),
			Since:      since,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}

		printLogEntries(entries)
		return nil
	},
}

var logPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old audit entries (owner only)",
	Long:  "Delete audit entries older than the specified number of days (default 30)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")

		count, err := wire.AuditLogService().PruneLogs(ctx, access, days)
		if err != nil {
			return fmt.Errorf("failed to prune logs: %w", err)
		}

		if count == 0 {
			fmt.Printf("No log entries older than %d days found.\n", days)
		} else {
			fmt.Printf("Pruned %d log entries older than %d days.\n", count, days)
		}
		return nil
	},
}

// sinceFlag turns --since into the start of that day in the organization timezone.
func sinceFlag(cmd *cobra.Command) (time.Time, error) {
	day, err := dateFlag(cmd, "since")
	if err != nil || day == "" {
		return time.Time{}, err
	}
	return time.ParseInLocation("2006-01-02", day, wire.Config().Location())
}

func printLogEntries(entries []*primary.LogEntry) {
	if len(entries) == 0 {
		fmt.Println("No log entries found.")
		return
	}

	// Oldest first
	for i := len(entries) - 1; i >= 0; i-- {
		printLogEntry(entries[i])
	}
}

func printLogEntry(entry *primary.LogEntry) {
	fmt.Printf("%s | %-20s | %s %s | %s/%s",
		entry.Timestamp.Local().Format(time.DateTime),
		orDash(entry.ActorID),
		getActionIcon(entry.Action),
		entry.Action,
		entry.EntityType,
		entry.EntityID,
	)

	if entry.Action == "update" && entry.FieldName != "" {
		fmt.Printf(" | %s: %s -> %s", entry.FieldName, entry.OldValue, entry.NewValue)
	}

	fmt.Println()
}

func getActionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return "*"
	}
}

// LogCmd returns the log command with all subcommands attached.
func LogCmd() *cobra.Command {
	logListCmd.Flags().IntP("limit", "n", 50, "Number of entries to show")
	logListCmd.Flags().String("type", "", "Filter by entity type (staff, check_in, report, role, ...)")
	logListCmd.Flags().String("entity", "", "Filter by entity id")
	logListCmd.Flags().String("actor", "", "Filter by acting principal")
	logListCmd.Flags().String("action", "", "Filter by action (create, update, delete, link, read)")
	logListCmd.Flags().String("since", "", "Only entries from this day on (YYYY-MM-DD or \"yesterday\")")

	logPruneCmd.Flags().Int("days", 30, "Delete entries older than N days")

	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logPruneCmd)
	return logCmd
}
