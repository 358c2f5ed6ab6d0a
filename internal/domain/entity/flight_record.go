// internal/domain/entity/flight_record.go
package entity

import (
	"time"
)

// FlightType classifies a board row
type FlightType string

const (
	Arrival   FlightType = "arrival"
	Departure FlightType = "departure"
)

// FlightRecord is one normalized row of the arrivals/departures board.
// Gate and ActualTimestamp are nil when the board does not show them.
type FlightRecord struct {
	FlightNum          string
	Airline            string
	SrcDest            string
	Gate               *string
	Type               FlightType
	ScheduledTimestamp time.Time
	ActualTimestamp    *time.Time
}

// Key returns the natural key used to find the persisted copy of the record
func (r *FlightRecord) Key() NaturalKey {
	return NaturalKey{
		FlightNum:          r.FlightNum,
		ScheduledTimestamp: r.ScheduledTimestamp,
	}
}

// IsDelayed reports whether the board showed a separate actual time
func (r *FlightRecord) IsDelayed() bool {
	return r.ActualTimestamp != nil
}

// NaturalKey identifies a flight within one day of schedule.
// Flight numbers repeat across days, so the scheduled instant is part of the key.
type NaturalKey struct {
	FlightNum          string
	ScheduledTimestamp time.Time
}

// UpdateOutcome is the store's answer to a keyed update.
// Matched is 0 or 1; Modified is 0 when the stored value was already equal.
type UpdateOutcome struct {
	Matched  int64
	Modified int64
}
