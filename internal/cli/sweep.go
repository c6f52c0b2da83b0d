package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile overdue obligations and stale ledger entries",
		Long: `Finalize obligations past their due instant and forfeit recovery debt
from earlier weeks. Every other command does this implicitly; sweep only
reports what changed.

Example:
  repledger sweep --now 2026-10-19T00:00:00Z`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				report, err := a.svc.Sweep(ctx, a.clock.Now())
				if err != nil {
					return err
				}
				return a.out.Success(sweepView(report))
			})
		},
	}
}
