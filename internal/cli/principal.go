package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/wire"
)

var principalCmd = &cobra.Command{
	Use:   "principal",
	Short: "Manage authenticated principals",
}

var principalAddCmd = &cobra.Command{
	Use:   "add [principal-id]",
	Short: "Register a principal verified by the identity provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		link, _ := cmd.Flags().GetBool("link")

		p, err := wire.PrincipalService().Register(ctx, primary.RegisterPrincipalRequest{
			ID:          args[0],
			Email:       email,
			DisplayName: name,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Registered %s (%s)\n", p.ID, p.Email)

		if link {
			_, err := wire.StaffAdapter().Link(ctx, p.ID, p.Email)
			return err
		}
		return nil
	},
}

var principalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered principals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}

		principals, err := wire.PrincipalService().ListPrincipals(ctx, access)
		if err != nil {
			return err
		}
		if len(principals) == 0 {
			fmt.Println("No principals registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tMANAGES TEAM")
		fmt.Fprintln(w, "--\t-----\t----\t----\t------------")
		for _, p := range principals {
			a := wire.AccessService().Resolve(ctx, p.ID)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", p.ID, p.Email, orDash(p.DisplayName), a.Role, a.CanManageTeam)
		}
		return w.Flush()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the acting principal, its role and linked staff record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Principal:    %s\n", access.PrincipalID)
		fmt.Printf("Role:         %s\n", access.Role)
		fmt.Printf("Manages team: %t\n", access.CanManageTeam)

		if _, err := wire.StaffAdapter().Show(ctx, access, ""); err != nil {
			fmt.Printf("Staff:        %v\n", err)
		}
		return nil
	},
}

// PrincipalCmd returns the principal command with all subcommands attached.
func PrincipalCmd() *cobra.Command {
	principalAddCmd.Flags().String("email", "", "Verified email (required)")
	principalAddCmd.Flags().String("name", "", "Display name")
	principalAddCmd.Flags().Bool("link", false, "Link to the matching staff record right away")
	_ = principalAddCmd.MarkFlagRequired("email")

	principalCmd.AddCommand(principalAddCmd)
	principalCmd.AddCommand(principalListCmd)
	return principalCmd
}

// WhoamiCmd returns the whoami command.
func WhoamiCmd() *cobra.Command {
	return whoamiCmd
}
