package utils

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DefaultFutureWindow = 7 * 24 * time.Hour
	DefaultPastWindow   = 366 * 24 * time.Hour
)

var dateLabelLayouts = []string{
	DATE_LABEL_LAYOUT,
	"Mon Jan 2",
	"Jan 02",
	"Jan 2",
}

var clockLayouts = []string{
	CLOCK_LAYOUT,
	"3:04PM",
}

// TimestampQuery describes one board time to resolve
type TimestampQuery struct {
	// DateLabel is weekday, month and day without a year, e.g. "Mon Jan 01"
	DateLabel string
	// ClockTime is a 12-hour clock with AM/PM marker, e.g. "11:45 PM"
	ClockTime string
	// ReferenceNow is the scrape instant, used for year inference only
	ReferenceNow time.Time
	// ActualForDelayedRow is set when ClockTime is the actual time of a prior-day row
	ActualForDelayedRow bool
	// ScheduledClock is the row's scheduled clock time, consulted with ActualForDelayedRow
	ScheduledClock string
}

// TimestampResolver turns year-less, zone-less board times into UTC instants
type TimestampResolver struct {
	location     *time.Location
	futureWindow time.Duration
	pastWindow   time.Duration
}

// NewTimestampResolver creates a resolver for the board's local timezone.
// Non-positive windows fall back to the defaults.
func NewTimestampResolver(location *time.Location, futureWindow, pastWindow time.Duration) *TimestampResolver {
	if futureWindow <= 0 {
		futureWindow = DefaultFutureWindow
	}
	if pastWindow <= 0 {
		pastWindow = DefaultPastWindow
	}
	return &TimestampResolver{
		location:     location,
		futureWindow: futureWindow,
		pastWindow:   pastWindow,
	}
}

// Location returns the board's local timezone
func (r *TimestampResolver) Location() *time.Location {
	return r.location
}

// DateLabel formats t the way the board labels a day
func (r *TimestampResolver) DateLabel(t time.Time) string {
	return t.In(r.location).Format(DATE_LABEL_LAYOUT)
}

// Resolve returns the UTC instant for the query. The year is the one among
// the reference year and its neighbours that lands inside the accepted
// window around ReferenceNow, closest to it.
func (r *TimestampResolver) Resolve(q TimestampQuery) (time.Time, error) {
	month, day, err := parseDateLabel(q.DateLabel)
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, err := parseClock(q.ClockTime)
	if err != nil {
		return time.Time{}, err
	}

	// A delayed prior-day flight keeps yesterday's label; an actual time
	// earlier on the clock than the schedule crossed midnight.
	dayShift := 0
	if q.ActualForDelayedRow {
		schedHour, schedMinute, err := parseClock(q.ScheduledClock)
		if err != nil {
			return time.Time{}, err
		}
		if hour*60+minute < schedHour*60+schedMinute {
			dayShift = 1
		}
	}

	now := q.ReferenceNow.In(r.location)

	var (
		best      time.Time
		bestDelta time.Duration
		found     bool
	)
	for _, year := range []int{now.Year() - 1, now.Year(), now.Year() + 1} {
		if !dayExists(year, month, day) {
			continue
		}

		local := time.Date(year, month, day+dayShift, hour, minute, 0, 0, r.location)
		delta := local.Sub(now)
		if delta > r.futureWindow || delta < -r.pastWindow {
			continue
		}

		if !found || absDuration(delta) < bestDelta {
			best, bestDelta, found = local, absDuration(delta), true
		}
	}

	if !found {
		return time.Time{}, fmt.Errorf("%w: %q %q is outside the window around %s",
			ErrInvalidTimestamp, q.DateLabel, q.ClockTime, now.Format(time.RFC3339))
	}

	return best.UTC(), nil
}

func parseDateLabel(label string) (time.Month, int, error) {
	label = strings.Join(strings.Fields(label), " ")
	for _, layout := range dateLabelLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t.Month(), t.Day(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: unrecognized date label %q", ErrInvalidTimestamp, label)
}

func parseClock(clock string) (int, int, error) {
	clock = strings.ToUpper(strings.Join(strings.Fields(clock), " "))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: unrecognized clock time %q", ErrInvalidTimestamp, clock)
}

// dayExists rejects dates that time.Date would normalize, such as Feb 29 of a common year
func dayExists(year int, month time.Month, day int) bool {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Month() == month && t.Day() == day
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
