package utils

import (
	"fmt"

	"flightboard-scraper/internal/domain/entity"
	"flightboard-scraper/pkg/logger"
)

// RowExtractor pulls the text fields out of a board row by position and class
type RowExtractor struct {
	logger logger.Logger
}

// NewRowExtractor creates a new row extractor
func NewRowExtractor(logger logger.Logger) *RowExtractor {
	return &RowExtractor{
		logger: logger,
	}
}

// Extract returns the raw fields of one row. A missing required field
// yields an error wrapping ErrMalformedRow; the caller skips the row.
func (e *RowExtractor) Extract(row entity.BoardRow) (*entity.RawFields, error) {
	fields := &entity.RawFields{}

	switch {
	case row.HasClass(classDeparture):
		fields.Type = entity.Departure
	case row.HasClass(classArrival):
		fields.Type = entity.Arrival
	default:
		return nil, malformed("arrival/departure class")
	}

	scheduled, err := e.scheduledTime(row)
	if err != nil {
		return nil, err
	}
	fields.ScheduledTime = scheduled

	// Only delayed flights have the bubble
	if bubble, ok := row.Find("div", classBubble); ok {
		times := bubble.FindAll("div", "")
		if len(times) < 2 || times[1].Text() == "" {
			return nil, malformed("actual time")
		}
		fields.ActualTime = times[1].Text()
	}

	gate, ok := row.Find("td", classGate)
	if !ok {
		return nil, malformed("gate")
	}
	fields.Gate = gate.Text()

	airline, ok := row.Find("span", "")
	if !ok || airline.Text() == "" {
		return nil, malformed("airline")
	}
	fields.Airline = airline.Text()

	cells := row.FindAll("td", "")
	if len(cells) < 3 {
		return nil, malformed("flight number and route cells")
	}
	fields.FlightNumber = cells[1].Text()
	fields.Route = cells[2].Text()
	if fields.FlightNumber == "" {
		return nil, malformed("flight number")
	}
	if fields.Route == "" {
		return nil, malformed("route")
	}

	e.logger.Debug("Row extracted",
		"flightNumber", fields.FlightNumber,
		"type", fields.Type,
		"scheduled", fields.ScheduledTime,
		"actual", fields.ActualTime)

	return fields, nil
}

// scheduledTime reads the first div of the row. When the row opens with the
// delay bubble, the scheduled time is the bubble's first entry.
func (e *RowExtractor) scheduledTime(row entity.BoardRow) (string, error) {
	div, ok := row.Find("div", "")
	if !ok {
		return "", malformed("scheduled time")
	}
	if div.HasClass(classBubble) {
		inner := div.FindAll("div", "")
		if len(inner) == 0 {
			return "", malformed("scheduled time")
		}
		div = inner[0]
	}
	if div.Text() == "" {
		return "", malformed("scheduled time")
	}
	return div.Text(), nil
}

func malformed(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedRow, field)
}
