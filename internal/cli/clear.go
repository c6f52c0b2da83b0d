package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every obligation, ledger entry, session event and meal",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "refusing to clear without --yes")
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if err := a.svc.ClearAll(ctx); err != nil {
					return err
				}
				a.log.Warn("all data cleared")
				return a.out.Success("All data cleared.")
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}
