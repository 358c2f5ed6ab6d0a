package usecase

import (
	"context"
	"fmt"
	"time"

	"flightboard-scraper/internal/domain/entity"
	"flightboard-scraper/internal/domain/repository"
	"flightboard-scraper/pkg/logger"
	"flightboard-scraper/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// SnapshotWriter keeps a copy of the parsed records of a run
type SnapshotWriter interface {
	SaveFlights(name string, date time.Time, records []*entity.FlightRecord) error
}

// RunReport summarizes one invocation
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Inserted   int
	Matched    int
	Modified   int
	Unmatched  int
	Skipped    int
}

// ScrapeRunner runs fetch, normalize, reconcile and persist once
type ScrapeRunner struct {
	board        repository.BoardSource
	normalizer   *FlightNormalizer
	reconciler   *Reconciler
	snapshots    SnapshotWriter
	clock        clockwork.Clock
	metrics      *metrics.Metrics
	logger       logger.Logger
	storeTimeout time.Duration
}

// NewScrapeRunner creates a new scrape runner. snapshots may be nil.
func NewScrapeRunner(
	board repository.BoardSource,
	normalizer *FlightNormalizer,
	reconciler *Reconciler,
	snapshots SnapshotWriter,
	clock clockwork.Clock,
	metrics *metrics.Metrics,
	logger logger.Logger,
	storeTimeout time.Duration,
) *ScrapeRunner {
	return &ScrapeRunner{
		board:        board,
		normalizer:   normalizer,
		reconciler:   reconciler,
		snapshots:    snapshots,
		clock:        clock,
		metrics:      metrics,
		logger:       logger,
		storeTimeout: storeTimeout,
	}
}

// Run performs one scrape. Any collaborator failure aborts the run; inserts
// and updates already applied stay in the store.
func (s *ScrapeRunner) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: s.clock.Now(),
	}
	log := s.logger.With("run_id", report.RunID)
	log.Info("Starting scrape run", "referenceNow", report.StartedAt)

	defer func() {
		s.metrics.RunDuration.Observe(s.clock.Since(report.StartedAt).Seconds())
	}()

	delayedRows, err := s.board.Rows(ctx, entity.Yesterday)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("fetch").Inc()
		return report, fmt.Errorf("fetch yesterday board: %w", err)
	}

	todayRows, err := s.board.Rows(ctx, entity.Today)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("fetch").Inc()
		return report, fmt.Errorf("fetch today board: %w", err)
	}

	today := s.normalizer.NormalizeBoard(todayRows, report.StartedAt, entity.Today)
	s.observeBoard(entity.Today, today)
	report.Skipped += len(today.Skipped)
	s.saveSnapshot(log, "flight_data", report.StartedAt, today.Records)

	storeCtx := ctx
	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}

	inserted, err := s.reconciler.ApplyInserts(storeCtx, PlanInserts(today.Records))
	report.Inserted = inserted
	s.metrics.FlightsInserted.Add(float64(inserted))
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("insert").Inc()
		return report, fmt.Errorf("insert today's flights: %w", err)
	}

	if len(delayedRows) > 0 {
		delayed := s.normalizer.NormalizeBoard(delayedRows, report.StartedAt, entity.Yesterday)
		s.observeBoard(entity.Yesterday, delayed)
		report.Skipped += len(delayed.Skipped)

		summary, err := s.reconciler.ApplyUpdates(storeCtx, PlanUpdates(delayed.Records))
		report.Matched = summary.Matched
		report.Modified = summary.Modified
		report.Unmatched = summary.Unmatched
		s.metrics.UpdatesMatched.Add(float64(summary.Matched))
		s.metrics.UpdatesUnmatched.Add(float64(summary.Unmatched))
		if err != nil {
			s.metrics.ErrorsCount.WithLabelValues("update").Inc()
			return report, fmt.Errorf("update delayed flights: %w", err)
		}

		s.saveSnapshot(log, "delayed_flight_data", report.StartedAt, delayed.Records)
	}

	report.FinishedAt = s.clock.Now()
	s.metrics.LastSuccess.Set(float64(report.FinishedAt.Unix()))

	log.Info("Scrape run completed",
		"inserted", report.Inserted,
		"matched", report.Matched,
		"modified", report.Modified,
		"unmatched", report.Unmatched,
		"skipped", report.Skipped)

	return report, nil
}

func (s *ScrapeRunner) observeBoard(day entity.BoardDay, result NormalizeResult) {
	s.metrics.RowsParsed.WithLabelValues(string(day)).Add(float64(len(result.Records)))
	s.metrics.RowsSkipped.WithLabelValues(string(day)).Add(float64(len(result.Skipped)))
}

// saveSnapshot never fails the run; snapshots are a debugging aid
func (s *ScrapeRunner) saveSnapshot(log logger.Logger, name string, date time.Time, records []*entity.FlightRecord) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SaveFlights(name, date, records); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("snapshot").Inc()
		log.Warn("Failed to save flight snapshot", "name", name, "error", err)
	}
}
