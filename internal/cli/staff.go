package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/roster"
	"github.com/example/pulse/internal/wire"
)

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage the staff directory",
}

var staffCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Add a staff record",
	Long: `Add a staff record. The email is what an employee's login is matched
against when they link.

Examples:
  pulse staff create "Jordan Lee" --email jordan@example.com --title "Support Agent"
  pulse staff create "Sam Rivera" --email sam@example.com --target tickets_closed=40`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		title, _ := cmd.Flags().GetString("title")
		department, _ := cmd.Flags().GetString("department")
		targets, _ := cmd.Flags().GetStringToString("target")

		_, err = wire.StaffAdapter().Create(ctx, access, primary.CreateStaffRequest{
			Name:       args[0],
			Email:      email,
			Title:      title,
			Department: department,
			Targets:    targets,
		})
		return err
	},
}

var staffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		department, _ := cmd.Flags().GetString("department")
		linked, _ := cmd.Flags().GetBool("linked")

		_, err = wire.StaffAdapter().List(ctx, access, primary.StaffFilters{Department: department, LinkedOnly: linked})
		return err
	},
}

var staffShowCmd = &cobra.Command{
	Use:   "show [staff-id]",
	Short: "Show a staff record (default: your own)",
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
		_, err = wire.StaffAdapter().Show(ctx, access, staffID)
		return err
	},
}

var staffDeleteCmd = &cobra.Command{
	Use:   "delete [staff-id]",
	Short: "Delete a staff record with its check-ins, analyses and reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		return wire.StaffAdapter().Delete(ctx, access, args[0])
	},
}

var staffImportCmd = &cobra.Command{
	Use:   "import [roster-file]",
	Short: "Import staff from a YAML or TOML roster",
	Long: `Import staff from a roster file (.yaml, .yml or .toml).

Example roster.yaml:
  staff:
    - name: Jordan Lee
      email: jordan@example.com
      title: Support Agent
      targets:
        tickets_closed: "40"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		reqs, err := roster.Load(args[0])
		if err != nil {
			return err
		}
		_, err = wire.StaffAdapter().Import(ctx, access, reqs)
		return err
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link your login to your staff record",
	Long: `Link the acting principal to the staff record whose email matches its
verified email. Managers can pass --all to link every unlinked principal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		all, _ := cmd.Flags().GetBool("all")

		if all {
			access, err := Authenticate(ctx)
			if err != nil {
				return err
			}
			_, err = wire.StaffAdapter().LinkAll(ctx, access)
			return err
		}

		p, err := wire.PrincipalService().Authenticate(ctx, principalID())
		if err != nil {
			return err
		}
		res, err := wire.StaffAdapter().Link(ctx, p.ID, p.Email)
		if err != nil {
			return err
		}
		if res.Outcome == "multiple_matches" || res.Outcome == "already_linked_other" || res.Outcome == "race_lost" {
			return fmt.Errorf("link failed: %s", res.Outcome)
		}
		return nil
	},
}

// StaffCmd returns the staff command with all subcommands attached.
func StaffCmd() *cobra.Command {
	staffCreateCmd.Flags().String("email", "", "Work email, matched against logins when linking")
	staffCreateCmd.Flags().String("title", "", "Job title")
	staffCreateCmd.Flags().String("department", "", "Department")
	staffCreateCmd.Flags().StringToString("target", nil, "Daily target as metric=value (repeatable)")

	staffListCmd.Flags().String("department", "", "Filter by department")
	staffListCmd.Flags().Bool("linked", false, "Only staff linked to a login")

	staffCmd.AddCommand(staffCreateCmd)
	staffCmd.AddCommand(staffListCmd)
	staffCmd.AddCommand(staffShowCmd)
	staffCmd.AddCommand(staffDeleteCmd)
	staffCmd.AddCommand(staffImportCmd)
	return staffCmd
}

// LinkCmd returns the link command.
func LinkCmd() *cobra.Command {
	linkCmd.Flags().Bool("all", false, "Link every unlinked principal (managers only)")
	return linkCmd
}
