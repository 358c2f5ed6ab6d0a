package utils

import "errors"

var (
	// ErrMalformedRow marks a board row missing a required field
	ErrMalformedRow = errors.New("malformed row")
	// ErrInvalidTimestamp marks a date or clock text that cannot be resolved to an instant
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// Layouts as rendered by the board
const (
	DATE_LABEL_LAYOUT = "Mon Jan 02"
	CLOCK_LAYOUT      = "3:04 PM"
)

// Markup classes of the board table
const (
	classArrival   = "arrival"
	classDeparture = "departure"
	classBubble    = "bubble"
	classGate      = "ft-gate"
)
