package repository

import (
	"context"

	"flightboard-scraper/internal/domain/entity"
)

// TimezoneRepository defines the interface for timezone operations
type TimezoneRepository interface {
	GetByAirportCode(ctx context.Context, code string) (*entity.Timezone, error)
}
