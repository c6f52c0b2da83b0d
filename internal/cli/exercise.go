package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/repledger/internal/catalog"
)

// NewExerciseCommand creates the exercise command group.
func NewExerciseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise",
		Short: "Show the supported exercises",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List exercises with their energy per rep and default reps",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
			return out.Success(exercisesView(catalog.All()))
		},
	})
	return cmd
}
