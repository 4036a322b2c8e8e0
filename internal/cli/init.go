package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/config"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/wire"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pulse in the current directory",
	Long: `Write .pulse/config.yaml with defaults, create the database, and optionally
register the organization owner.

Examples:
  pulse init
  pulse init --owner auth0|alex --email alex@example.com`,
	// Runs before configuration exists, so the root hook is replaced.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}

		path, err := config.WriteDefault(dir)
		if err != nil {
			fmt.Printf("Keeping existing configuration (%v)\n", err)
		} else {
			fmt.Printf("✓ Wrote %s\n", path)
		}

		if err := wire.Init(dir); err != nil {
			return err
		}
		fmt.Printf("✓ Database ready at %s\n", wire.Config().DBPath)

		owner, _ := cmd.Flags().GetString("owner")
		if owner == "" {
			return nil
		}
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")

		ctx := NewContext()
		if _, err := wire.PrincipalService().Register(ctx, primary.RegisterPrincipalRequest{
			ID:          owner,
			Email:       email,
			DisplayName: name,
		}); err != nil {
			return err
		}
		if err := wire.RoleAdminService().BootstrapOwner(ctx, owner); err != nil {
			return err
		}
		fmt.Printf("✓ %s is the organization owner\n", owner)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  export PULSE_PRINCIPAL=" + owner)
		fmt.Println("  pulse staff create \"Jordan Lee\" --email jordan@example.com")
		return nil
	},
}

// InitCmd returns the init command.
func InitCmd() *cobra.Command {
	initCmd.Flags().String("owner", "", "Principal id to register as the organization owner")
	initCmd.Flags().String("email", "", "Verified email of the owner")
	initCmd.Flags().String("name", "", "Display name of the owner")
	return initCmd
}
