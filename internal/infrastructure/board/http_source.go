package board

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"flightboard-scraper/internal/domain/entity"
	"flightboard-scraper/internal/domain/repository"
	"flightboard-scraper/pkg/logger"
	"flightboard-scraper/pkg/utils"

	"github.com/jonboulle/clockwork"
)

// PageArchiver keeps a copy of the fetched page
type PageArchiver interface {
	SavePage(date time.Time, body []byte) error
}

// HTTPBoardSource fetches the board page once and serves both day tables from it
type HTTPBoardSource struct {
	url        string
	tableIDs   map[entity.BoardDay]string
	httpClient *http.Client
	archiver   PageArchiver
	clock      clockwork.Clock
	logger     logger.Logger

	document *utils.BoardDocument
}

// NewHTTPBoardSource creates a board source. archiver may be nil.
func NewHTTPBoardSource(url, todayTable, yesterdayTable string, timeout time.Duration, archiver PageArchiver, clock clockwork.Clock, logger logger.Logger) repository.BoardSource {
	return &HTTPBoardSource{
		url: url,
		tableIDs: map[entity.BoardDay]string{
			entity.Today:     todayTable,
			entity.Yesterday: yesterdayTable,
		},
		httpClient: &http.Client{
			Timeout: timeout,
		},
		archiver: archiver,
		clock:    clock,
		logger:   logger,
	}
}

// Rows returns the arrival and departure rows of the day's table
func (s *HTTPBoardSource) Rows(ctx context.Context, day entity.BoardDay) ([]entity.BoardRow, error) {
	tableID, ok := s.tableIDs[day]
	if !ok {
		return nil, fmt.Errorf("unknown board day %q", day)
	}

	if s.document == nil {
		document, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.document = document
	}

	rows := s.document.TableRows(tableID)
	if rows == nil {
		s.logger.Info("Board table not found", "board", day, "table", tableID)
	}
	return rows, nil
}

func (s *HTTPBoardSource) fetch(ctx context.Context) (*utils.BoardDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create board request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("board request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read board page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board page error: status %d", resp.StatusCode)
	}

	s.logger.Info("Board page fetched", "url", s.url, "bytes", len(body))

	if s.archiver != nil {
		if err := s.archiver.SavePage(s.clock.Now(), body); err != nil {
			s.logger.Warn("Failed to archive board page", "error", err)
		}
	}

	return utils.ParseBoardDocument(bytes.NewReader(body))
}
