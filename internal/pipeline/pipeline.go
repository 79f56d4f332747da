// Package pipeline sequences the three ETL phases: ingest, consolidate,
// aggregate. One run covers one snapshot date.
//
// Failures are isolated per source feed and per build step: a broken provider
// payload fails that provider's consolidation only, and already-committed
// entity kinds stay committed. Phase errors are joined and reported to the
// caller, which decides whether later runs retry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/mobility-data-etl/internal/domain"
	"github.com/couchcryptid/mobility-data-etl/internal/observability"
)

// Staged payload names, one file per feed per run date.
const (
	CitiesFile = "french_cities_data.json"
	ParisFile  = "paris_realtime_bicycle_data.json"
	NantesFile = "nantes_realtime_bicycle_data.json"
)

// Fetcher retrieves one raw feed payload.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RawStore stages raw payloads by run date.
type RawStore interface {
	Write(date time.Time, name string, payload []byte) error
	Read(date time.Time, name string) ([]byte, error)
}

// Provisioner ensures target tables exist before a phase writes to them.
type Provisioner interface {
	ProvisionConsolidated(ctx context.Context) error
	ProvisionStar(ctx context.Context) error
}

// ConsolidationStore appends canonical rows to the snapshot history.
type ConsolidationStore interface {
	UpsertCities(ctx context.Context, cities []domain.City) error
	UpsertStations(ctx context.Context, stations []domain.Station) error
	UpsertStatements(ctx context.Context, statements []domain.StationStatement) error
}

// StarBuilder rebuilds the dimension and fact tables.
type StarBuilder interface {
	BuildDimCity(ctx context.Context) (int64, error)
	BuildDimStation(ctx context.Context) (int64, error)
	BuildFactStatements(ctx context.Context) (written, dropped int64, err error)
}

// FeedURLs addresses the three provider feeds.
type FeedURLs struct {
	Cities string
	Paris  string
	Nantes string
}

// Pipeline wires the phases to their collaborators.
type Pipeline struct {
	fetcher     Fetcher
	staging     RawStore
	provisioner Provisioner
	store       ConsolidationStore
	builder     StarBuilder
	urls        FeedURLs
	logger      *slog.Logger
	metrics     *observability.Metrics

	phasesDone atomic.Int32
}

// New creates a Pipeline with the given collaborators and observability.
func New(fetcher Fetcher, staging RawStore, provisioner Provisioner, store ConsolidationStore,
	builder StarBuilder, urls FeedURLs, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		staging:     staging,
		provisioner: provisioner,
		store:       store,
		builder:     builder,
		urls:        urls,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once at least one phase has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.phasesDone.Load() == 0 {
		return errors.New("no pipeline phase has completed yet")
	}
	return nil
}

// Run executes ingest, consolidate, and aggregate in order for one snapshot
// date. A failed phase does not stop the remaining ones: consolidation can
// work from previously staged payloads, and aggregation is rebuildable from
// whatever history exists. All phase errors are joined.
func (p *Pipeline) Run(ctx context.Context, date time.Time) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.logger.Info("etl run starting", "snapshot_date", date.Format("2006-01-02"))

	var errs []error
	if err := p.RunIngest(ctx, date); err != nil {
		errs = append(errs, fmt.Errorf("ingest: %w", err))
	}
	if err := p.RunConsolidate(ctx, date); err != nil {
		errs = append(errs, fmt.Errorf("consolidate: %w", err))
	}
	if err := p.RunAggregate(ctx); err != nil {
		errs = append(errs, fmt.Errorf("aggregate: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		p.logger.Error("etl run finished with errors", "error", err)
		return err
	}
	p.logger.Info("etl run complete")
	return nil
}

// RunIngest fetches the three feeds and stages them under the run date.
// Each feed's failure is isolated; the others still land on disk.
func (p *Pipeline) RunIngest(ctx context.Context, date time.Time) error {
	defer p.observePhase("ingest", time.Now())

	feeds := []struct {
		source string
		url    string
		file   string
	}{
		{"cities", p.urls.Cities, CitiesFile},
		{"paris", p.urls.Paris, ParisFile},
		{"nantes", p.urls.Nantes, NantesFile},
	}

	var errs []error
	for _, f := range feeds {
		payload, err := p.fetcher.Fetch(ctx, f.url)
		if err != nil {
			p.metrics.SourceErrors.WithLabelValues(f.source).Inc()
			p.logger.Error("feed fetch failed", "source", f.source, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", f.source, err))
			continue
		}
		if err := p.staging.Write(date, f.file, payload); err != nil {
			p.metrics.SourceErrors.WithLabelValues(f.source).Inc()
			p.logger.Error("staging write failed", "source", f.source, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", f.source, err))
			continue
		}
		p.logger.Info("feed staged", "source", f.source, "bytes", len(payload))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.phasesDone.Add(1)
	return nil
}

// RunConsolidate parses the staged payloads and appends canonical rows for
// the run date. Provisioning failure aborts the phase; source failures are
// isolated per feed and per entity kind.
func (p *Pipeline) RunConsolidate(ctx context.Context, date time.Time) error {
	defer p.observePhase("consolidate", time.Now())

	if err := p.provisioner.ProvisionConsolidated(ctx); err != nil {
		return err
	}

	var errs []error
	if err := p.consolidateCities(ctx, date); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, p.consolidateProvider(ctx, date, "paris", ParisFile, domain.ParseParis)...)
	errs = append(errs, p.consolidateProvider(ctx, date, "nantes", NantesFile, domain.ParseNantes)...)

	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.phasesDone.Add(1)
	return nil
}

func (p *Pipeline) consolidateCities(ctx context.Context, date time.Time) error {
	payload, err := p.staging.Read(date, CitiesFile)
	if err != nil {
		p.metrics.SourceErrors.WithLabelValues("cities").Inc()
		return fmt.Errorf("cities: %w", err)
	}

	cities, err := domain.ParseCities(payload, date)
	if err != nil {
		p.metrics.SourceErrors.WithLabelValues("cities").Inc()
		return err
	}

	if err := p.store.UpsertCities(ctx, cities); err != nil {
		p.metrics.SourceErrors.WithLabelValues("cities").Inc()
		return err
	}
	p.metrics.RowsConsolidated.WithLabelValues("city").Add(float64(len(cities)))
	return nil
}

// consolidateProvider runs one real-time provider's two consolidation steps:
// stations, then statements. A parse failure fails both (fail-fast on
// malformed payloads); a station upsert failure does not block statements.
func (p *Pipeline) consolidateProvider(ctx context.Context, date time.Time, source, file string,
	parse func([]byte, time.Time) ([]domain.Station, []domain.StationStatement, error)) []error {

	payload, err := p.staging.Read(date, file)
	if err != nil {
		p.metrics.SourceErrors.WithLabelValues(source).Inc()
		return []error{fmt.Errorf("%s: %w", source, err)}
	}

	stations, statements, err := parse(payload, date)
	if err != nil {
		p.metrics.SourceErrors.WithLabelValues(source).Inc()
		return []error{err}
	}

	var errs []error
	if err := p.store.UpsertStations(ctx, stations); err != nil {
		p.metrics.SourceErrors.WithLabelValues(source).Inc()
		errs = append(errs, fmt.Errorf("%s stations: %w", source, err))
	} else {
		p.metrics.RowsConsolidated.WithLabelValues("station").Add(float64(len(stations)))
	}
	if err := p.store.UpsertStatements(ctx, statements); err != nil {
		p.metrics.SourceErrors.WithLabelValues(source).Inc()
		errs = append(errs, fmt.Errorf("%s statements: %w", source, err))
	} else {
		p.metrics.RowsConsolidated.WithLabelValues("statement").Add(float64(len(statements)))
	}
	return errs
}

// RunAggregate rebuilds the star schema from the consolidated history.
// Build steps are isolated from each other; empty history is a no-op inside
// each builder, never a truncation.
func (p *Pipeline) RunAggregate(ctx context.Context) error {
	defer p.observePhase("aggregate", time.Now())

	if err := p.provisioner.ProvisionStar(ctx); err != nil {
		return err
	}

	var errs []error
	if rows, err := p.builder.BuildDimCity(ctx); err != nil {
		errs = append(errs, err)
	} else {
		p.metrics.RowsAggregated.WithLabelValues("dim_city").Add(float64(rows))
	}
	if rows, err := p.builder.BuildDimStation(ctx); err != nil {
		errs = append(errs, err)
	} else {
		p.metrics.RowsAggregated.WithLabelValues("dim_station").Add(float64(rows))
	}
	if written, dropped, err := p.builder.BuildFactStatements(ctx); err != nil {
		errs = append(errs, err)
	} else {
		p.metrics.RowsAggregated.WithLabelValues("fact_station_statement").Add(float64(written))
		p.metrics.FactRowsDropped.Add(float64(dropped))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.phasesDone.Add(1)
	return nil
}

func (p *Pipeline) observePhase(phase string, start time.Time) {
	p.metrics.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}
