package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/repledger/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Long: `Run the JSON API and the Prometheus /metrics endpoint until
interrupted.

Example:
  repledger serve --addr 127.0.0.1:8080`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				return runServe(ctx, opts, a, cmd)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config)")
	return cmd
}

func runServe(parent context.Context, opts *ServeOptions, a *app, cmd *cobra.Command) error {
	addr := opts.Addr
	if addr == "" {
		addr = a.cfg.HTTP.Addr
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			a.log.WithField("signal", sig).Info("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	handler := api.NewHandler(a.svc, a.meals, a.stats, a.clock)
	server := api.NewServer(addr, api.NewRouter(handler, a.metrics, a.registry))

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", addr)
	if err := server.Serve(ctx); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	a.log.Info("server stopped gracefully")
	return nil
}
