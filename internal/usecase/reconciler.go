package usecase

import (
	"context"
	"fmt"
	"time"

	"flightboard-scraper/internal/domain/entity"
	"flightboard-scraper/internal/domain/repository"
	"flightboard-scraper/pkg/logger"
)

// InsertIntent stores a record of the current board as a new document
type InsertIntent struct {
	Record *entity.FlightRecord
}

// UpdateIntent sets the actual timestamp of the stored record with Key
type UpdateIntent struct {
	Key             entity.NaturalKey
	ActualTimestamp time.Time
}

// UpdateResult is the applied outcome of one intent
type UpdateResult struct {
	Intent  UpdateIntent
	Outcome entity.UpdateOutcome
}

// UpdateSummary aggregates the outcomes of an update phase
type UpdateSummary struct {
	Results   []UpdateResult
	Matched   int
	Modified  int
	Unmatched int
}

// PlanInserts returns one intent per record. Nothing is de-duplicated
// against the store, so rerunning a board inserts it again.
func PlanInserts(records []*entity.FlightRecord) []InsertIntent {
	intents := make([]InsertIntent, 0, len(records))
	for _, record := range records {
		intents = append(intents, InsertIntent{Record: record})
	}
	return intents
}

// PlanUpdates returns one intent per record carrying an actual timestamp
func PlanUpdates(records []*entity.FlightRecord) []UpdateIntent {
	var intents []UpdateIntent
	for _, record := range records {
		if !record.IsDelayed() {
			continue
		}
		intents = append(intents, UpdateIntent{
			Key:             record.Key(),
			ActualTimestamp: *record.ActualTimestamp,
		})
	}
	return intents
}

// Reconciler applies insert and update intents through the flight store
type Reconciler struct {
	flightRecordRepo repository.FlightRecordRepository
	logger           logger.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(flightRecordRepo repository.FlightRecordRepository, logger logger.Logger) *Reconciler {
	return &Reconciler{
		flightRecordRepo: flightRecordRepo,
		logger:           logger,
	}
}

// ApplyInserts writes the intents and returns the number of inserted documents
func (r *Reconciler) ApplyInserts(ctx context.Context, intents []InsertIntent) (int, error) {
	if len(intents) == 0 {
		return 0, nil
	}

	records := make([]*entity.FlightRecord, 0, len(intents))
	for _, intent := range intents {
		records = append(records, intent.Record)
	}

	inserted, err := r.flightRecordRepo.Insert(ctx, records...)
	if err != nil {
		return inserted, err
	}

	r.logger.Info("Inserted flights", "count", inserted)
	return inserted, nil
}

// ApplyUpdates attempts each intent once. A missing stored record is counted
// as unmatched; a store failure stops the phase and is returned along with
// the outcomes applied so far.
func (r *Reconciler) ApplyUpdates(ctx context.Context, intents []UpdateIntent) (UpdateSummary, error) {
	summary := UpdateSummary{
		Results: make([]UpdateResult, 0, len(intents)),
	}

	for _, intent := range intents {
		outcome, err := r.flightRecordRepo.UpdateActual(ctx, intent.Key, intent.ActualTimestamp)
		if err != nil {
			return summary, fmt.Errorf("reconcile %s scheduled %s: %w",
				intent.Key.FlightNum, intent.Key.ScheduledTimestamp.Format(time.RFC3339), err)
		}

		summary.Results = append(summary.Results, UpdateResult{Intent: intent, Outcome: outcome})
		summary.Modified += int(outcome.Modified)
		if outcome.Matched > 0 {
			summary.Matched++
		} else {
			summary.Unmatched++
			r.logger.Info("No stored flight for delayed record",
				"flightNum", intent.Key.FlightNum,
				"scheduled", intent.Key.ScheduledTimestamp)
		}
	}

	r.logger.Info("Updated delayed flights",
		"matched", summary.Matched,
		"modified", summary.Modified,
		"unmatched", summary.Unmatched)

	return summary, nil
}
