package entity

// BoardDay selects one of the two tables published on the board page
type BoardDay string

const (
	Today     BoardDay = "today"
	Yesterday BoardDay = "yesterday"
)

// BoardRow is the narrow view of a markup node the row extractor needs.
// Find and FindAll search descendants; an empty class matches any element of the tag.
type BoardRow interface {
	Find(tag, class string) (BoardRow, bool)
	FindAll(tag, class string) []BoardRow
	HasClass(class string) bool
	Text() string
}

// RawFields holds the text pulled out of a single board row before any
// timestamp resolution. ActualTime and Gate are empty when not shown.
type RawFields struct {
	Type          FlightType
	ScheduledTime string
	ActualTime    string
	Airline       string
	FlightNumber  string
	Route         string
	Gate          string
}

// HasActualTime reports whether the row carried a delay bubble
func (f *RawFields) HasActualTime() bool {
	return f.ActualTime != ""
}
