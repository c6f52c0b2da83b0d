package recovery

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repledger/internal/metrics"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
	"github.com/roach88/repledger/internal/testutil"
)

type fixture struct {
	svc     *Service
	repo    *flakyRepo
	store   *store.Store
	metrics *metrics.Manager
	logs    *test.Hook
}

func newFixture(t *testing.T) *fixture {
	return newFixtureIn(t, time.UTC)
}

func newFixtureIn(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "recovery.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	m := metrics.NewTestManager()
	repo := &flakyRepo{Store: st}

	svc := NewService(repo, Options{
		Location: loc,
		IDs:      testutil.NewSequentialIDGenerator("id"),
		Logger:   logrus.NewEntry(logger),
		Metrics:  m,
	})
	return &fixture{svc: svc, repo: repo, store: st, metrics: m, logs: hook}
}

// at returns an instant in October 2026, UTC.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

func (f *fixture) create(t *testing.T, now time.Time, target int) string {
	t.Helper()
	o, err := f.svc.CreateObligation(context.Background(), now, "meal", "squat", target)
	require.NoError(t, err)
	return o.ID
}

func (f *fixture) obligation(t *testing.T, id string) model.Obligation {
	t.Helper()
	o, err := f.store.GetObligation(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (f *fixture) ledger(t *testing.T) []model.LedgerEntry {
	t.Helper()
	entries, err := f.store.ListLedgerEntries(context.Background(), store.LedgerFilter{})
	require.NoError(t, err)
	return entries
}
