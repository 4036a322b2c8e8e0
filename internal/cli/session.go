// Package cli provides the cobra commands of pulse.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/ctxutil"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/wire"
)

// principalFlag holds --principal for the current invocation.
var principalFlag string

// Setup attaches the persistent --principal flag and the initialization hook to root.
func Setup(root *cobra.Command) {
	root.PersistentFlags().StringVar(&principalFlag, "principal", "", "Acting principal id (default $PULSE_PRINCIPAL)")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}
		return wire.Init(dir)
	}
}

// principalID returns the acting principal: the flag first, then configuration.
func principalID() string {
	if principalFlag != "" {
		return principalFlag
	}
	if cfg := wire.Config(); cfg != nil {
		return cfg.Principal
	}
	return ""
}

// NewContext creates a context.Background() with the acting principal embedded
// for the audit trail.
func NewContext() context.Context {
	ctx := context.Background()
	if id := principalID(); id != "" {
		return ctxutil.WithPrincipalID(ctx, id)
	}
	return ctx
}

// Authenticate verifies the acting principal and resolves its access afresh.
func Authenticate(ctx context.Context) (primary.Access, error) {
	p, err := wire.PrincipalService().Authenticate(ctx, principalID())
	if err != nil {
		return primary.Access{}, err
	}
	return wire.AccessService().Resolve(ctx, p.ID), nil
}
