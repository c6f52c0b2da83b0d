package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/repledger/internal/model"
)

// SessionOptions holds flags for the session subcommands.
type SessionOptions struct {
	*RootOptions
	Count int
}

// NewSessionCommand creates the session command group.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record and restore exercise session state",
	}
	cmd.AddCommand(newSessionRecordCommand(rootOpts))
	cmd.AddCommand(newSessionRestoreCommand(rootOpts))
	cmd.AddCommand(newSessionLogCommand(rootOpts))
	return cmd
}

func newSessionRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <obligation-id> <start|pause|resume|end>",
		Short: "Append a session event",
		Long: `Append a session lifecycle event. A failed write is logged and the
event is still reported, since the obligation keeps the authoritative count.

Example:
  repledger session record 0192... pause --count 14`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventType, err := model.ParseSessionEventType(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid event type", err)
			}
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				ev := a.svc.RecordEvent(ctx, a.clock.Now(), args[0], eventType, opts.Count)
				return a.out.Success(eventView(ev))
			})
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 0, "reps completed when the event happened")
	return cmd
}

func newSessionRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <obligation-id>",
		Short: "Show where an interrupted session should resume",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				state, err := a.svc.RestoreState(ctx, a.clock.Now(), args[0])
				if err != nil {
					return err
				}
				return a.out.Success(restoreView(state))
			})
		},
	}
}

func newSessionLogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log <obligation-id>",
		Short: "List every session event of an obligation in the order recorded",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				events, err := a.svc.SessionLog(ctx, a.clock.Now(), args[0])
				if err != nil {
					return err
				}
				return a.out.Success(eventsView(events))
			})
		},
	}
}
