package usecase

import (
	"fmt"
	"time"

	"flightboard-scraper/internal/domain/entity"
	"flightboard-scraper/pkg/logger"
	"flightboard-scraper/pkg/utils"
)

// SkipError reports a board row dropped from the batch
type SkipError struct {
	Index int
	Day   entity.BoardDay
	Err   error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped %s row %d: %v", e.Day, e.Index, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// NormalizeResult holds the records of one board and the rows that were skipped
type NormalizeResult struct {
	Records []*entity.FlightRecord
	Skipped []*SkipError
}

// FlightNormalizer turns board rows into flight records
type FlightNormalizer struct {
	extractor *utils.RowExtractor
	resolver  *utils.TimestampResolver
	logger    logger.Logger
}

// NewFlightNormalizer creates a new flight normalizer
func NewFlightNormalizer(extractor *utils.RowExtractor, resolver *utils.TimestampResolver, logger logger.Logger) *FlightNormalizer {
	return &FlightNormalizer{
		extractor: extractor,
		resolver:  resolver,
		logger:    logger,
	}
}

// Normalize converts one row. Rows of the yesterday board resolve their
// actual time with the midnight rollover correction.
func (n *FlightNormalizer) Normalize(row entity.BoardRow, referenceNow time.Time, day entity.BoardDay) (*entity.FlightRecord, error) {
	fields, err := n.extractor.Extract(row)
	if err != nil {
		return nil, err
	}

	dateLabel := n.dateLabel(referenceNow, day)

	scheduled, err := n.resolver.Resolve(utils.TimestampQuery{
		DateLabel:    dateLabel,
		ClockTime:    fields.ScheduledTime,
		ReferenceNow: referenceNow,
	})
	if err != nil {
		return nil, fmt.Errorf("scheduled time of %s: %w", fields.FlightNumber, err)
	}

	record := &entity.FlightRecord{
		FlightNum:          fields.FlightNumber,
		Airline:            fields.Airline,
		SrcDest:            fields.Route,
		Type:               fields.Type,
		ScheduledTimestamp: scheduled,
	}

	if fields.Gate != "" {
		gate := fields.Gate
		record.Gate = &gate
	}

	if fields.HasActualTime() {
		actual, err := n.resolver.Resolve(utils.TimestampQuery{
			DateLabel:           dateLabel,
			ClockTime:           fields.ActualTime,
			ReferenceNow:        referenceNow,
			ActualForDelayedRow: day == entity.Yesterday,
			ScheduledClock:      fields.ScheduledTime,
		})
		if err != nil {
			return nil, fmt.Errorf("actual time of %s: %w", fields.FlightNumber, err)
		}
		record.ActualTimestamp = &actual
	}

	return record, nil
}

// NormalizeBoard converts every row of a board, isolating per-row failures
func (n *FlightNormalizer) NormalizeBoard(rows []entity.BoardRow, referenceNow time.Time, day entity.BoardDay) NormalizeResult {
	result := NormalizeResult{
		Records: make([]*entity.FlightRecord, 0, len(rows)),
	}

	for i, row := range rows {
		record, err := n.Normalize(row, referenceNow, day)
		if err != nil {
			skip := &SkipError{Index: i, Day: day, Err: err}
			n.logger.Warn("Skipping board row", "board", day, "row", i, "error", err)
			result.Skipped = append(result.Skipped, skip)
			continue
		}
		result.Records = append(result.Records, record)
	}

	n.logger.Info("Board normalized",
		"board", day,
		"rows", len(rows),
		"records", len(result.Records),
		"skipped", len(result.Skipped))

	return result
}

// dateLabel is the board's label for the day the table covers
func (n *FlightNormalizer) dateLabel(referenceNow time.Time, day entity.BoardDay) string {
	local := referenceNow.In(n.resolver.Location())
	if day == entity.Yesterday {
		local = local.AddDate(0, 0, -1)
	}
	return n.resolver.DateLabel(local)
}
