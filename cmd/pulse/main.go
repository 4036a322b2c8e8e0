package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/cli"
	"github.com/example/pulse/internal/version"
	"github.com/example/pulse/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "pulse",
		Short:   "pulse - daily check-ins, analysis and reminders for small teams",
		Version: version.String(),
		Long: `pulse collects daily check-ins from staff, scores each one with a language
model, routes reports between staff and managers, and reminds everyone who
has not checked in.`,
	}
	cli.Setup(rootCmd)

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.PrincipalCmd())
	rootCmd.AddCommand(cli.WhoamiCmd())
	rootCmd.AddCommand(cli.RoleCmd())
	rootCmd.AddCommand(cli.PermissionCmd())
	rootCmd.AddCommand(cli.StaffCmd())
	rootCmd.AddCommand(cli.LinkCmd())
	rootCmd.AddCommand(cli.CheckinCmd())
	rootCmd.AddCommand(cli.AnalysisCmd())
	rootCmd.AddCommand(cli.ReportCmd())
	rootCmd.AddCommand(cli.RemindCmd())
	rootCmd.AddCommand(cli.LogCmd())

	err := rootCmd.Execute()
	_ = wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
