package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/repledger/internal/meals"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

// MealOptions holds flags for the meal record command.
type MealOptions struct {
	*RootOptions
	Food       string
	Calories   int
	Confidence int
	Decision   string
	Exercise   string
	Reps       int
	Limit      int
}

// NewMealCommand creates the meal command group.
func NewMealCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Record meal decisions and show skipped-calorie savings",
	}
	cmd.AddCommand(newMealRecordCommand(rootOpts))
	cmd.AddCommand(newMealSavingsCommand(rootOpts))
	cmd.AddCommand(newMealListCommand(rootOpts))
	return cmd
}

func newMealRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MealOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an eaten or skipped meal",
		Long: `Record a meal decision. An eaten meal opens one obligation for today
sized from its calories; a skipped meal counts toward savings.

Examples:
  repledger meal record --food "Pizza slice" --calories 285 --decision ate
  repledger meal record --food Donut --calories 250 --decision skipped`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := model.ParseMealChoice(opts.Decision)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --decision", err)
			}
			choice := meals.Choice{
				FoodName:          opts.Food,
				EstimatedCalories: opts.Calories,
				Confidence:        opts.Confidence,
				Decision:          decision,
				TargetReps:        opts.Reps,
			}
			if opts.Exercise != "" {
				if choice.Exercise, err = model.ParseExerciseType(opts.Exercise); err != nil {
					return WrapExitError(ExitCommandError, "invalid --exercise", err)
				}
			}

			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				res, err := a.meals.RecordChoice(ctx, a.clock.Now(), choice)
				if err != nil {
					return err
				}
				return a.out.Success(mealView(res))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Food, "food", "", "food name")
	cmd.Flags().IntVar(&opts.Calories, "calories", 0, "estimated calories")
	cmd.Flags().IntVar(&opts.Confidence, "confidence", 0, "estimate confidence, 0-100")
	cmd.Flags().StringVar(&opts.Decision, "decision", "", "ate or skipped")
	cmd.Flags().StringVar(&opts.Exercise, "exercise", "", "exercise for the obligation (default from config)")
	cmd.Flags().IntVar(&opts.Reps, "reps", 0, "override the recommended reps")
	return cmd
}

func newMealSavingsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "savings",
		Short: "Total skipped calories for today, this week and this month",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				sum, err := a.meals.Savings(ctx, a.clock.Now())
				if err != nil {
					return err
				}
				return a.out.Success(savingsView(sum))
			})
		},
	}
}

func newMealListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MealOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded meals, newest first",
		Long: `List recorded meals, newest first, with the obligation each eaten
meal opened.

Examples:
  repledger meal list --limit 10
  repledger meal list --decision skipped`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := store.MealFilter{Limit: max(0, opts.Limit)}
			if opts.Decision != "" {
				choice, err := model.ParseMealChoice(opts.Decision)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --decision", err)
				}
				f.Choice = choice
			}
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				list, err := a.meals.List(ctx, f)
				if err != nil {
					return err
				}
				return a.out.Success(mealsView(list))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Decision, "decision", "", "only ate or skipped meals")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "at most this many meals (0 for all)")
	return cmd
}
