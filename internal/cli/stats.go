package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/repledger/internal/model"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize meal choices and exercise over the last week or month",
		Long: `Summarize skipped-meal calories per day, the ate/skipped ratio and
finished exercise sessions. A week is the seven local days ending today;
a month runs from the 1st through today.

Examples:
  repledger stats
  repledger stats --period month -o json`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParseStatsPeriod(period)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --period", err)
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				report, err := a.stats.Report(ctx, a.clock.Now(), p)
				if err != nil {
					return err
				}
				return a.out.Success(statsView(report))
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", string(model.StatsWeek), "week or month")
	return cmd
}
