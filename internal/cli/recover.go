package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRecoverCommand creates the recover command.
func NewRecoverCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recover <count>",
		Short: "Pay down this week's recovery debt with extra reps",
		Long: `Apply reps to this week's open recovery debt, oldest debt first.
Debt from earlier weeks has already been forfeited and is not touched.

Example:
  repledger recover 25`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid count", err)
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				now := a.clock.Now()
				if err := a.svc.ApplyRecoveryFromExercise(ctx, now, count); err != nil {
					return err
				}
				status, err := a.svc.WeeklyRecoveryStatus(ctx, now)
				if err != nil {
					return err
				}
				return a.out.Success(weekView(status))
			})
		},
	}
}
