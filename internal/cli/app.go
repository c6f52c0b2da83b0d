package cli

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/config"
	"github.com/roach88/repledger/internal/logging"
	"github.com/roach88/repledger/internal/meals"
	"github.com/roach88/repledger/internal/metrics"
	"github.com/roach88/repledger/internal/recovery"
	"github.com/roach88/repledger/internal/stats"
	"github.com/roach88/repledger/internal/store"
)

// app is everything a command needs, built from the global flags.
type app struct {
	cfg      config.Config
	store    *store.Store
	svc      *recovery.Service
	meals    *meals.Recorder
	stats    *stats.Reporter
	metrics  *metrics.Manager
	registry *prometheus.Registry
	clock    calendar.Clock
	log      *logrus.Entry
	out      *OutputFormatter
	closeLog func() error
}

func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid timezone", err)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logger := logrus.StandardLogger()
	closeLog := logging.Setup(logger, logging.Params{
		Level:  level,
		File:   cfg.Log.File,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
	entry := logrus.NewEntry(logger)

	st, err := store.Open(cfg.Database)
	if err != nil {
		_ = closeLog()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewManager("repledger", "", reg)
	svc := recovery.NewService(st, recovery.Options{
		Location:    loc,
		Logger:      entry,
		Metrics:     m,
		CacheSizeMB: cfg.Cache.SizeMB,
	})

	var clock calendar.Clock = calendar.SystemClock{}
	if opts.Now != "" {
		at, err := time.Parse(time.RFC3339Nano, opts.Now)
		if err != nil {
			st.Close()
			_ = closeLog()
			return nil, WrapExitError(ExitCommandError, "invalid --now", err)
		}
		clock = calendar.FixedClock{At: at}
	}

	a := &app{
		cfg:      cfg,
		store:    st,
		svc:      svc,
		meals:    meals.NewRecorder(st, svc, recovery.UUIDGenerator{}, cfg.DefaultExercise(), entry, m),
		stats:    stats.NewReporter(st, loc, entry),
		metrics:  m,
		registry: reg,
		clock:    clock,
		log:      entry.WithField("component", "cli"),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		closeLog: closeLog,
	}
	a.out.VerboseLog("database: %s (timezone %s)", cfg.Database, loc)
	return a, nil
}

func (a *app) Close() error {
	return multierr.Append(a.store.Close(), a.closeLog())
}

// withApp opens the app, runs fn and closes the app again.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			err = multierr.Append(err, closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, a)
}
