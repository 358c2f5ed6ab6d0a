package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightboard-scraper/internal/domain/repository"
	"flightboard-scraper/internal/infrastructure/archive"
	"flightboard-scraper/internal/infrastructure/board"
	"flightboard-scraper/internal/infrastructure/config"
	"flightboard-scraper/internal/infrastructure/persistence"
	flightRepo "flightboard-scraper/internal/interface/repository"
	"flightboard-scraper/internal/usecase"
	"flightboard-scraper/pkg/logger"
	"flightboard-scraper/pkg/metrics"
	"flightboard-scraper/pkg/utils"

	"github.com/jonboulle/clockwork"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Scrape run failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("Starting flight board scraper", "version", cfg.AppVersion, "url", cfg.BoardURL)

	clock := clockwork.NewRealClock()
	runMetrics := metrics.NewMetrics("flightboard")

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}()

	flightRecordRepo := flightRepo.NewMongoFlightRecordRepository(
		persistence.GetCollection(mongoClient, cfg.MongoDB, cfg.MongoCollection))
	if err := flightRecordRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	location, err := loadLocation(ctx, cfg, log)
	if err != nil {
		return err
	}

	var (
		pageArchiver board.PageArchiver
		snapshots    usecase.SnapshotWriter
	)
	if cfg.ArchiveDir != "" {
		writer := archive.NewWriter(cfg.ArchiveDir)
		pageArchiver = writer
		snapshots = writer
	}

	boardSource := board.NewHTTPBoardSource(cfg.BoardURL, cfg.BoardTodayTable, cfg.BoardYesterdayTable,
		cfg.HTTPTimeout, pageArchiver, clock, log)

	normalizer := usecase.NewFlightNormalizer(
		utils.NewRowExtractor(log),
		utils.NewTimestampResolver(location, cfg.FutureWindow, cfg.PastWindow),
		log,
	)
	reconciler := usecase.NewReconciler(flightRecordRepo, log)
	runner := usecase.NewScrapeRunner(boardSource, normalizer, reconciler, snapshots, clock, runMetrics, log, cfg.StoreTimeout)

	_, runErr := runner.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := runMetrics.Push(pushCtx, cfg.PushgatewayURL, "flightboard_scraper"); err != nil {
			log.Warn("Failed to push metrics", "error", err)
		}
	}

	return runErr
}

// loadLocation resolves the board timezone, consulting the airport registry when configured
func loadLocation(ctx context.Context, cfg *config.Config, log logger.Logger) (*time.Location, error) {
	var timezoneRepo repository.TimezoneRepository
	if cfg.PostgresURI != "" {
		db, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Warn("Timezone registry unavailable", "error", err)
		} else {
			defer persistence.ClosePostgresDB(db)
			timezoneRepo = flightRepo.NewGormTimezoneRepository(db)
		}
	}

	return utils.LoadSiteLocation(ctx, timezoneRepo, cfg.AirportCode, cfg.SiteTimezone, log)
}
