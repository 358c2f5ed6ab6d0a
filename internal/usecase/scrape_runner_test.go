package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightboard-scraper/internal/domain/entity"
	"flightboard-scraper/pkg/logger"
	"flightboard-scraper/pkg/metrics"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedSnapshot struct {
	name    string
	date    time.Time
	records []*entity.FlightRecord
}

type recordingSnapshots struct {
	saved []savedSnapshot
	err   error
}

func (r *recordingSnapshots) SaveFlights(name string, date time.Time, records []*entity.FlightRecord) error {
	r.saved = append(r.saved, savedSnapshot{name: name, date: date, records: records})
	return r.err
}

type runnerFixture struct {
	runner    *ScrapeRunner
	store     *memoryFlightStore
	snapshots *recordingSnapshots
	metrics   *metrics.Metrics
	now       time.Time
}

func newRunnerFixture(t *testing.T, board *staticBoard) *runnerFixture {
	t.Helper()
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, vancouver(t))
	log := logger.NewNopLogger()
	f := &runnerFixture{
		store:     &memoryFlightStore{},
		snapshots: &recordingSnapshots{},
		metrics:   metrics.NewMetrics("test"),
		now:       now,
	}
	f.runner = NewScrapeRunner(
		board,
		newTestNormalizer(t),
		NewReconciler(f.store, log),
		f.snapshots,
		clockwork.NewFakeClockAt(now),
		f.metrics,
		log,
		time.Second,
	)
	return f
}

func TestScrapeRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts today and updates yesterday", func(t *testing.T) {
		board := &staticBoard{rows: map[entity.BoardDay][]entity.BoardRow{
			entity.Today: boardRows(t,
				row("arrival", "10:00 AM", "WS101", "Calgary", "WestJet", "1"),
				delayed("departure", "10:30 AM", "11:10 AM", "AC103", "Toronto", "Air Canada", "3"),
				gateless("arrival", "11:00 AM", "PD105", "Ottawa", "Porter"),
			),
			entity.Yesterday: boardRows(t,
				delayed("arrival", "11:45 PM", "12:30 AM", "WS197", "Calgary", "WestJet", "4"),
				row("arrival", "9:00 PM", "AC221", "Toronto", "Air Canada", "5"),
				delayed("arrival", "10:00 PM", "10:40 PM", "PD999", "Ottawa", "Porter", "6"),
			),
		}}
		f := newRunnerFixture(t, board)

		// WS197 was stored by yesterday's run
		scheduled := time.Date(2024, 1, 2, 7, 45, 0, 0, time.UTC)
		_, err := f.store.Insert(ctx, flight("WS197", scheduled, nil))
		require.NoError(t, err)

		report, err := f.runner.Run(ctx)
		require.NoError(t, err)

		assert.NotEmpty(t, report.RunID)
		assert.Equal(t, f.now, report.StartedAt)
		assert.Equal(t, f.now, report.FinishedAt)
		assert.Equal(t, 2, report.Inserted)
		assert.Equal(t, 1, report.Matched)
		assert.Equal(t, 1, report.Modified)
		assert.Equal(t, 1, report.Unmatched)
		assert.Equal(t, 1, report.Skipped)

		assert.Len(t, f.store.docs, 3)
		stored := f.store.find("WS197", scheduled)
		require.NotNil(t, stored.ActualTimestamp)
		assert.Equal(t, time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC), *stored.ActualTimestamp)

		require.Len(t, f.snapshots.saved, 2)
		assert.Equal(t, "flight_data", f.snapshots.saved[0].name)
		assert.Len(t, f.snapshots.saved[0].records, 2)
		assert.Equal(t, "delayed_flight_data", f.snapshots.saved[1].name)
		assert.Len(t, f.snapshots.saved[1].records, 3)

		assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.FlightsInserted))
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.UpdatesMatched))
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.UpdatesUnmatched))
		assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.RowsParsed.WithLabelValues("today")))
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RowsSkipped.WithLabelValues("today")))
		assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.RowsParsed.WithLabelValues("yesterday")))
		assert.Equal(t, float64(f.now.Unix()), testutil.ToFloat64(f.metrics.LastSuccess))
	})

	t.Run("rerun inserts again and leaves updates unmodified", func(t *testing.T) {
		board := &staticBoard{rows: map[entity.BoardDay][]entity.BoardRow{
			entity.Today: boardRows(t, row("arrival", "10:00 AM", "WS101", "Calgary", "WestJet", "1")),
			entity.Yesterday: boardRows(t,
				delayed("arrival", "8:00 PM", "8:20 PM", "WS197", "Calgary", "WestJet", "4")),
		}}
		f := newRunnerFixture(t, board)
		_, err := f.store.Insert(ctx, flight("WS197", time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC), nil))
		require.NoError(t, err)

		first, err := f.runner.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Modified)

		second, err := f.runner.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Inserted)
		assert.Equal(t, 1, second.Matched)
		assert.Zero(t, second.Modified)
		assert.NotEqual(t, first.RunID, second.RunID)
		assert.Len(t, f.store.docs, 3)
	})

	t.Run("no yesterday table skips the update phase", func(t *testing.T) {
		board := &staticBoard{rows: map[entity.BoardDay][]entity.BoardRow{
			entity.Today: boardRows(t, row("arrival", "10:00 AM", "WS101", "Calgary", "WestJet", "1")),
		}}
		f := newRunnerFixture(t, board)

		report, err := f.runner.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Inserted)
		assert.Zero(t, f.store.updates)
		require.Len(t, f.snapshots.saved, 1)
		assert.Equal(t, "flight_data", f.snapshots.saved[0].name)
	})

	t.Run("fetch failure aborts before writing", func(t *testing.T) {
		f := newRunnerFixture(t, &staticBoard{err: errors.New("status 503")})

		report, err := f.runner.Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 503")
		assert.NotNil(t, report)
		assert.Empty(t, f.store.docs)
		assert.Empty(t, f.snapshots.saved)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ErrorsCount.WithLabelValues("fetch")))
		assert.Zero(t, testutil.ToFloat64(f.metrics.LastSuccess))
	})

	t.Run("insert failure aborts before updates", func(t *testing.T) {
		board := &staticBoard{rows: map[entity.BoardDay][]entity.BoardRow{
			entity.Today: boardRows(t, row("arrival", "10:00 AM", "WS101", "Calgary", "WestJet", "1")),
			entity.Yesterday: boardRows(t,
				delayed("arrival", "8:00 PM", "8:20 PM", "WS197", "Calgary", "WestJet", "4")),
		}}
		f := newRunnerFixture(t, board)
		f.store.insertErr = errors.New("connection reset")

		_, err := f.runner.Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert today's flights")
		assert.Zero(t, f.store.updates)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ErrorsCount.WithLabelValues("insert")))
	})

	t.Run("update failure is returned with partial report", func(t *testing.T) {
		board := &staticBoard{rows: map[entity.BoardDay][]entity.BoardRow{
			entity.Today: boardRows(t, row("arrival", "10:00 AM", "WS101", "Calgary", "WestJet", "1")),
			entity.Yesterday: boardRows(t,
				delayed("arrival", "8:00 PM", "8:20 PM", "WS197", "Calgary", "WestJet", "4")),
		}}
		f := newRunnerFixture(t, board)
		f.store.updateErr = errors.New("not primary")

		report, err := f.runner.Run(ctx)
		require.Error(t, err)
		assert.Equal(t, 1, report.Inserted)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ErrorsCount.WithLabelValues("update")))
		assert.Len(t, f.snapshots.saved, 1)
	})

	t.Run("snapshot failure does not fail the run", func(t *testing.T) {
		board := &staticBoard{rows: map[entity.BoardDay][]entity.BoardRow{
			entity.Today: boardRows(t, row("arrival", "10:00 AM", "WS101", "Calgary", "WestJet", "1")),
		}}
		f := newRunnerFixture(t, board)
		f.snapshots.err = errors.New("disk full")

		report, err := f.runner.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Inserted)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ErrorsCount.WithLabelValues("snapshot")))
	})
}
