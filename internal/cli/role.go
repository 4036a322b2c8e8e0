package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/wire"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage organization roles (owner only)",
	Long: `Manage organization roles.

Roles: owner, hr, executive_assistant, staff. A principal without an
assignment is staff. hr and executive_assistant have at most one holder.`,
}

var roleAssignCmd = &cobra.Command{
	Use:   "assign [principal-id] [role]",
	Short: "Assign a role to a principal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		if err := wire.RoleAdminService().AssignRole(ctx, access, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ %s is now %s\n", args[0], args[1])
		return nil
	},
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke [principal-id]",
	Short: "Return a principal to the staff role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		if err := wire.RoleAdminService().RevokeRole(ctx, access, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ %s is now staff\n", args[0])
		return nil
	},
}

var roleShowCmd = &cobra.Command{
	Use:   "show [principal-id]",
	Short: "Show a principal's effective access (default: yourself)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		target := access.PrincipalID
		if len(args) == 1 {
			target = args[0]
		}

		resolved, err := wire.RoleAdminService().ShowAccess(ctx, access, target)
		if err != nil {
			return err
		}
		fmt.Printf("Principal:    %s\n", resolved.PrincipalID)
		fmt.Printf("Role:         %s\n", resolved.Role)
		fmt.Printf("Manages team: %t\n", resolved.CanManageTeam)
		return nil
	},
}

var permissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Delegate team management (owner only)",
}

func setCanManageTeam(grant bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		access, err := Authenticate(ctx)
		if err != nil {
			return err
		}
		if err := wire.RoleAdminService().SetCanManageTeam(ctx, access, args[0], grant); err != nil {
			return err
		}
		if grant {
			fmt.Printf("✓ %s can now manage the team\n", args[0])
		} else {
			fmt.Printf("✓ %s can no longer manage the team\n", args[0])
		}
		return nil
	}
}

var permissionGrantCmd = &cobra.Command{
	Use:   "grant [principal-id]",
	Short: "Allow a principal to manage the team",
	Args:  cobra.ExactArgs(1),
	RunE:  setCanManageTeam(true),
}

var permissionRevokeCmd = &cobra.Command{
	Use:   "revoke [principal-id]",
	Short: "Withdraw team management from a principal",
	Args:  cobra.ExactArgs(1),
	RunE:  setCanManageTeam(false),
}

// RoleCmd returns the role command with all subcommands attached.
func RoleCmd() *cobra.Command {
	roleCmd.AddCommand(roleAssignCmd)
	roleCmd.AddCommand(roleRevokeCmd)
	roleCmd.AddCommand(roleShowCmd)
	return roleCmd
}

// PermissionCmd returns the permission command with all subcommands attached.
func PermissionCmd() *cobra.Command {
	permissionCmd.AddCommand(permissionGrantCmd)
	permissionCmd.AddCommand(permissionRevokeCmd)
	return permissionCmd
}
