package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command group.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's obligations and this week's recovery debt",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "week",
		Short: "Sum this week's recovery ledger",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				status, err := a.svc.WeeklyRecoveryStatus(ctx, a.clock.Now())
				if err != nil {
					return err
				}
				return a.out.Success(weekView(status))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Count open obligations due today",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				status, err := a.svc.TodayObligationStatus(ctx, a.clock.Now())
				if err != nil {
					return err
				}
				return a.out.Success(todayView(status))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "open",
		Short: "List what is still owed today, oldest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				open, err := a.svc.TodayOpenObligations(ctx, a.clock.Now())
				if err != nil {
					return err
				}
				return a.out.Success(openView(open))
			})
		},
	})

	return cmd
}
