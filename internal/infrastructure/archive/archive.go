// Package archive keeps on-disk snapshots of each run: the raw board page and
// the parsed flight records, one JSON line per run.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flightboard-scraper/internal/domain/entity"
)

const (
	pageDir  = "html"
	dataDir  = "pages"
	dayStamp = "2006-01-02"
)

type snapshotFlight struct {
	FlightNum          string     `json:"flight_num"`
	Airline            string     `json:"airline"`
	SrcDest            string     `json:"src_dest"`
	Gate               *string    `json:"gate,omitempty"`
	Type               string     `json:"type"`
	ScheduledTimestamp time.Time  `json:"scheduled_timestamp"`
	ActualTimestamp    *time.Time `json:"actual_timestamp,omitempty"`
}

type snapshotLine struct {
	Date    string           `json:"date"`
	Flights []snapshotFlight `json:"flights"`
}

// Writer stores snapshots under a base directory
type Writer struct {
	dir string
}

// NewWriter creates a snapshot writer rooted at dir
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// SavePage writes the fetched board markup to html/<date>.html, replacing an earlier copy of the same day
func (w *Writer) SavePage(date time.Time, body []byte) error {
	dir := filepath.Join(w.dir, pageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create page archive: %w", err)
	}

	path := filepath.Join(dir, date.Format(dayStamp)+".html")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write page snapshot: %w", err)
	}
	return nil
}

// SaveFlights appends the records as one line of pages/<name>.jsonl
func (w *Writer) SaveFlights(name string, date time.Time, records []*entity.FlightRecord) error {
	dir := filepath.Join(w.dir, dataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create flight archive: %w", err)
	}

	line := snapshotLine{
		Date:    date.Format(dayStamp),
		Flights: make([]snapshotFlight, 0, len(records)),
	}
	for _, r := range records {
		line.Flights = append(line.Flights, snapshotFlight{
			FlightNum:          r.FlightNum,
			Airline:            r.Airline,
			SrcDest:            r.SrcDest,
			Gate:               r.Gate,
			Type:               string(r.Type),
			ScheduledTimestamp: r.ScheduledTimestamp,
			ActualTimestamp:    r.ActualTimestamp,
		})
	}

	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("encode flight snapshot: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, name+".jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open flight snapshot: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write flight snapshot: %w", err)
	}
	return nil
}
