package utils

import (
	"context"
	"fmt"
	"time"

	"flightboard-scraper/internal/domain/repository"
	"flightboard-scraper/pkg/logger"
)

// LoadSiteLocation returns the board's timezone. When a timezone registry is
// available the airport's entry wins; otherwise, or when the lookup fails,
// the fallback IANA name is used.
func LoadSiteLocation(ctx context.Context, timezoneRepo repository.TimezoneRepository, airportCode, fallback string, log logger.Logger) (*time.Location, error) {
	if timezoneRepo != nil && airportCode != "" {
		airport, err := timezoneRepo.GetByAirportCode(ctx, airportCode)
		if err == nil && airport.TzName != "" {
			location, err := time.LoadLocation(airport.TzName)
			if err == nil {
				log.Info("Site timezone loaded from registry", "airport", airportCode, "timezone", airport.TzName)
				return location, nil
			}
			log.Warn("Error loading registry timezone", "timezone", airport.TzName, "error", err)
		} else if err != nil {
			log.Warn("Airport timezone lookup failed", "airport", airportCode, "error", err)
		}
	}

	location, err := time.LoadLocation(fallback)
	if err != nil {
		return nil, fmt.Errorf("error loading site location %s: %w", fallback, err)
	}
	return location, nil
}
