package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"flightboard-scraper/internal/domain/entity"
	"flightboard-scraper/pkg/logger"
	"flightboard-scraper/pkg/utils"

	"github.com/stretchr/testify/require"
)

// memoryFlightStore mimics the single-document update semantics of the Mongo store
type memoryFlightStore struct {
	docs      []*entity.FlightRecord
	insertErr error
	updateErr error
	updates   int
}

func (m *memoryFlightStore) Insert(_ context.Context, records ...*entity.FlightRecord) (int, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	for _, r := range records {
		stored := *r
		m.docs = append(m.docs, &stored)
	}
	return len(records), nil
}

func (m *memoryFlightStore) UpdateActual(_ context.Context, key entity.NaturalKey, actual time.Time) (entity.UpdateOutcome, error) {
	m.updates++
	if m.updateErr != nil {
		return entity.UpdateOutcome{}, m.updateErr
	}
	for _, doc := range m.docs {
		if doc.FlightNum != key.FlightNum || !doc.ScheduledTimestamp.Equal(key.ScheduledTimestamp) {
			continue
		}
		if doc.ActualTimestamp != nil && doc.ActualTimestamp.Equal(actual) {
			return entity.UpdateOutcome{Matched: 1}, nil
		}
		value := actual
		doc.ActualTimestamp = &value
		return entity.UpdateOutcome{Matched: 1, Modified: 1}, nil
	}
	return entity.UpdateOutcome{}, nil
}

func (m *memoryFlightStore) EnsureIndexes(_ context.Context) error {
	return nil
}

func (m *memoryFlightStore) find(flightNum string, scheduled time.Time) *entity.FlightRecord {
	for _, doc := range m.docs {
		if doc.FlightNum == flightNum && doc.ScheduledTimestamp.Equal(scheduled) {
			return doc
		}
	}
	return nil
}

// staticBoard serves rows parsed from fixed markup
type staticBoard struct {
	rows map[entity.BoardDay][]entity.BoardRow
	err  error
}

func (b *staticBoard) Rows(_ context.Context, day entity.BoardDay) ([]entity.BoardRow, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.rows[day], nil
}

func vancouver(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Vancouver")
	require.NoError(t, err)
	return loc
}

func newTestNormalizer(t *testing.T) *FlightNormalizer {
	t.Helper()
	log := logger.NewNopLogger()
	return NewFlightNormalizer(
		utils.NewRowExtractor(log),
		utils.NewTimestampResolver(vancouver(t), 0, 0),
		log,
	)
}

func boardRows(t *testing.T, rows ...string) []entity.BoardRow {
	t.Helper()
	page := fmt.Sprintf(`<html><body><table id="board"><tbody>%s</tbody></table></body></html>`, strings.Join(rows, "\n"))
	doc, err := utils.ParseBoardDocument(strings.NewReader(page))
	require.NoError(t, err)
	return doc.TableRows("board")
}

func row(class, scheduled, flight, route, airline, gate string) string {
	return fmt.Sprintf(`<tr class="%s"><td><div>%s</div></td><td>%s</td><td>%s</td><td><span>%s</span></td><td class="ft-gate">%s</td></tr>`,
		class, scheduled, flight, route, airline, gate)
}

func delayed(class, scheduled, actual, flight, route, airline, gate string) string {
	return fmt.Sprintf(`<tr class="%s"><td><div class="bubble"><div>%s</div><div>%s</div></div></td><td>%s</td><td>%s</td><td><span>%s</span></td><td class="ft-gate">%s</td></tr>`,
		class, scheduled, actual, flight, route, airline, gate)
}

func gateless(class, scheduled, flight, route, airline string) string {
	return fmt.Sprintf(`<tr class="%s"><td><div>%s</div></td><td>%s</td><td>%s</td><td><span>%s</span></td></tr>`,
		class, scheduled, flight, route, airline)
}
