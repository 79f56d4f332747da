// Command etl runs the mobility data pipeline: ingest the provider feeds,
// consolidate them into the snapshot history, and aggregate the star schema.
//
// Phases can be run individually for resumption after a partial failure:
//
//	go run ./cmd/etl -phases consolidate,aggregate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/couchcryptid/mobility-data-etl/internal/adapter/duck"
	httpadapter "github.com/couchcryptid/mobility-data-etl/internal/adapter/http"
	"github.com/couchcryptid/mobility-data-etl/internal/adapter/opendata"
	"github.com/couchcryptid/mobility-data-etl/internal/adapter/staging"
	"github.com/couchcryptid/mobility-data-etl/internal/config"
	"github.com/couchcryptid/mobility-data-etl/internal/domain"
	"github.com/couchcryptid/mobility-data-etl/internal/observability"
	"github.com/couchcryptid/mobility-data-etl/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		slog.Error("etl failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	phasesFlag := flag.String("phases", "ingest,consolidate,aggregate",
		"comma-separated phases to run, in pipeline order")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	runDate := cfg.RunDate
	if runDate.IsZero() {
		runDate = domain.Today()
	}

	// One store handle per run, released on every exit path.
	db, err := duck.Open(cfg.DuckDBPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	fetcher := opendata.NewClient(cfg.FetchTimeout, cfg.FetchMaxElapsed, logger)
	rawStore := staging.NewStore(cfg.RawDataDir)
	store := duck.NewStore(db, logger)
	builder := duck.NewBuilder(db, logger)

	p := pipeline.New(fetcher, rawStore, db, store, builder, pipeline.FeedURLs{
		Cities: cfg.CitiesURL,
		Paris:  cfg.ParisURL,
		Nantes: cfg.NantesURL,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional operational endpoints for the duration of the run.
	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := runPhases(ctx, p, *phasesFlag, runDate, logger)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	return runErr
}

func runPhases(ctx context.Context, p *pipeline.Pipeline, phases string, runDate time.Time, logger *slog.Logger) error {
	if phases == "ingest,consolidate,aggregate" {
		return p.Run(ctx, runDate)
	}

	var errs []error
	for _, phase := range strings.Split(phases, ",") {
		switch strings.TrimSpace(phase) {
		case "ingest":
			if err := p.RunIngest(ctx, runDate); err != nil {
				errs = append(errs, fmt.Errorf("ingest: %w", err))
			}
		case "consolidate":
			if err := p.RunConsolidate(ctx, runDate); err != nil {
				errs = append(errs, fmt.Errorf("consolidate: %w", err))
			}
		case "aggregate":
			if err := p.RunAggregate(ctx); err != nil {
				errs = append(errs, fmt.Errorf("aggregate: %w", err))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown phase %q", phase))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info("requested phases complete", "phases", phases)
	return nil
}
