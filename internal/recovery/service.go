package recovery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/metrics"
)

// Options configures a Service. Zero fields get defaults.
type Options struct {
	// Location is the user's local zone. Defaults to time.Local.
	Location *time.Location

	// IDs generates record ids. Defaults to UUIDGenerator.
	IDs IDGenerator

	// Logger receives operational logs. Defaults to the logrus standard logger.
	Logger *logrus.Entry

	// Metrics receives ledger counters. Defaults to a private registry.
	Metrics *metrics.Manager

	// CacheSizeMB sizes the last-known status cache. Defaults to 1.
	CacheSizeMB int
}

// Service is the obligation store, session log, sweep, progress allocator
// and aggregate queries over one user's data.
//
// Thread-safety: Service holds no mutable state of its own beyond the status
// cache, which is safe for concurrent use. Ordering of calls within one
// session is the caller's responsibility.
type Service struct {
	repo    Repository
	loc     *time.Location
	ids     IDGenerator
	log     *logrus.Entry
	metrics *metrics.Manager
	cache   *statusCache
}

// NewService creates a Service over repo.
func NewService(repo Repository, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.IDs == nil {
		opts.IDs = UUIDGenerator{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewManager("repledger", "recovery", prometheus.NewRegistry())
	}
	log := opts.Logger.WithField("component", "recovery")

	return &Service{
		repo:    repo,
		loc:     opts.Location,
		ids:     opts.IDs,
		log:     log,
		metrics: opts.Metrics,
		cache:   newStatusCache(opts.CacheSizeMB, log),
	}
}

// Location returns the zone the service derives day and week keys in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// local converts now into the service zone.
func (s *Service) local(now time.Time) time.Time {
	return now.In(s.loc)
}

// Today returns the local date key of now.
func (s *Service) Today(now time.Time) string {
	return calendar.DateKey(s.local(now))
}

// CurrentWeek returns the Monday date key of the week containing now.
func (s *Service) CurrentWeek(now time.Time) string {
	return calendar.WeekStartKey(s.local(now))
}

func (s *Service) storageFailed(op string) {
	s.metrics.CounterStorageErrors.WithLabelValues(op).Inc()
}
