package repository

import (
	"context"

	"flightboard-scraper/internal/domain/entity"
)

// BoardSource provides the rows of one day's table of the board.
// A missing table yields an empty slice, not an error.
type BoardSource interface {
	Rows(ctx context.Context, day entity.BoardDay) ([]entity.BoardRow, error)
}
