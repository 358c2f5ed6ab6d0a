package repository

import (
	"context"
	"time"

	"flightboard-scraper/internal/domain/entity"
)

// FlightRecordRepository defines the persistence primitives the reconciler needs
type FlightRecordRepository interface {
	// Insert stores every record as a new document and returns how many were written
	Insert(ctx context.Context, records ...*entity.FlightRecord) (int, error)
	// UpdateActual sets the actual timestamp of the single record matching key
	UpdateActual(ctx context.Context, key entity.NaturalKey, actual time.Time) (entity.UpdateOutcome, error)
	EnsureIndexes(ctx context.Context) error
}
