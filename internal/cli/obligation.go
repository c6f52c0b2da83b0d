package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

// ObligationOptions holds flags for the obligation subcommands.
type ObligationOptions struct {
	*RootOptions
	MealID   string
	Exercise string
	Target   int
	Status   string
	Date     string
	Today    bool
	Finish   bool
}

// NewObligationCommand creates the obligation command group.
func NewObligationCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obligation",
		Short: "Create, list and update same-day exercise obligations",
	}
	cmd.AddCommand(newObligationCreateCommand(rootOpts))
	cmd.AddCommand(newObligationListCommand(rootOpts))
	cmd.AddCommand(newObligationUpdateCommand(rootOpts))
	cmd.AddCommand(newObligationProgressCommand(rootOpts))
	return cmd
}

func newObligationCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ObligationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open an obligation due at the end of today",
		Long: `Open an obligation due at the end of the current local day.

Example:
  repledger obligation create --meal meal-42 --exercise squat --target 20`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			exercise, err := model.ParseExerciseType(opts.Exercise)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --exercise", err)
			}
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				o, err := a.svc.CreateObligation(ctx, a.clock.Now(), opts.MealID, exercise, opts.Target)
				if err != nil {
					return err
				}
				return a.out.Success(obligationView(o))
			})
		},
	}

	cmd.Flags().StringVar(&opts.MealID, "meal", "manual", "meal record this obligation belongs to")
	cmd.Flags().StringVar(&opts.Exercise, "exercise", "squat", "exercise type (squat|situp|pushup)")
	cmd.Flags().IntVar(&opts.Target, "target", 20, "repetitions owed (values below 1 become 1)")
	return cmd
}

func newObligationListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ObligationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List obligations, oldest first",
		Long: `List obligations after reconciling overdue ones.

Examples:
  repledger obligation list
  repledger obligation list --status open --date 2026-10-15
  repledger obligation list --today`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Today && (opts.Status != "" || opts.Date != "") {
				return NewExitError(ExitCommandError, "--today cannot be combined with --status or --date")
			}
			var f store.ObligationFilter
			if opts.Status != "" {
				status := model.ObligationStatus(opts.Status)
				if !status.IsValid() {
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid --status %q (use open, completed or unmet)", opts.Status))
				}
				f.Status = status
			}
			if opts.Date != "" {
				if _, err := calendar.ParseDateKey(opts.Date, time.UTC); err != nil {
					return WrapExitError(ExitCommandError, "invalid --date (use YYYY-MM-DD)", err)
				}
				f.DueLocalDate = opts.Date
			}

			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				var obs []model.Obligation
				var err error
				if opts.Today {
					obs, err = a.svc.ListOpenDueToday(ctx, a.clock.Now())
				} else {
					obs, err = a.svc.ListObligations(ctx, a.clock.Now(), f)
				}
				if err != nil {
					return err
				}
				return a.out.Success(obligationsView(obs))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "only this status (open|completed|unmet)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "only obligations due on this local date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.Today, "today", false, "only open obligations due today")
	return cmd
}

func newObligationUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ObligationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <obligation-id>",
		Short: "Change the exercise and target of an open obligation",
		Long: `Change the exercise and target of an open obligation. Finalized or
unknown obligations are left untouched.

Example:
  repledger obligation update 0192... --exercise pushup --target 15`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exercise, err := model.ParseExerciseType(opts.Exercise)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --exercise", err)
			}
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				now := a.clock.Now()
				if err := a.svc.UpdateTarget(ctx, now, args[0], exercise, opts.Target); err != nil {
					return err
				}
				o, err := a.svc.GetObligation(ctx, now, args[0])
				if err != nil {
					return err
				}
				return a.out.Success(obligationView(o))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Exercise, "exercise", "squat", "exercise type (squat|situp|pushup)")
	cmd.Flags().IntVar(&opts.Target, "target", 20, "repetitions owed (values below 1 become 1)")
	return cmd
}

func newObligationProgressCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ObligationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "progress <obligation-id> <count>",
		Short: "Credit reps to an obligation and report the leftover",
		Long: `Credit reps to an obligation. Reps beyond what it still needs are
reported as leftover. With --finish the session is closed out: an end event
is logged and the leftover pays down this week's recovery debt.

Examples:
  repledger obligation progress 0192... 12
  repledger obligation progress 0192... 30 --finish`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid count", err)
			}
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				apply := a.svc.ApplyObligationProgress
				if opts.Finish {
					apply = a.svc.FinishSession
				}
				leftover, err := apply(ctx, a.clock.Now(), args[0], count)
				if err != nil {
					return err
				}
				return a.out.Success(leftoverView{Leftover: leftover})
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Finish, "finish", false, "end the session and apply the leftover to recovery debt")
	return cmd
}
