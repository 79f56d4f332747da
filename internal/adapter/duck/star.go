package duck

import (
	"context"
	"fmt"
	"log/slog"
)

// Builder rebuilds the star schema from the consolidated history. Dimensions
// hold only the latest snapshot per natural key; the fact table joins every
// stored availability reading against its station and city.
//
// Empty history is never an error: a build step with zero input rows is a
// no-op that leaves the existing derived table untouched.
type Builder struct {
	db  *DB
	log *slog.Logger
}

// NewBuilder creates a star-schema builder over an open warehouse handle.
func NewBuilder(db *DB, logger *slog.Logger) *Builder {
	return &Builder{db: db, log: logger}
}

// BuildDimCity replaces dim_city rows from the latest city snapshot.
// Returns the number of rows written.
func (b *Builder) BuildDimCity(ctx context.Context) (int64, error) {
	empty, err := b.historyEmpty(ctx, "consolidate_city")
	if err != nil {
		return 0, fmt.Errorf("build dim_city: %w", err)
	}
	if empty {
		b.log.Info("city history empty, leaving dim_city untouched")
		return 0, nil
	}

	res, err := b.db.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO dim_city (id, name, nb_inhabitants)
		SELECT id, name, nb_inhabitants
		FROM consolidate_city
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM consolidate_city)`)
	if err != nil {
		return 0, fmt.Errorf("build dim_city: %w", err)
	}

	rows, _ := res.RowsAffected()
	b.log.Info("built dim_city", "rows", rows)
	return rows, nil
}

// BuildDimStation replaces dim_station rows from the latest station snapshot,
// all providers combined.
func (b *Builder) BuildDimStation(ctx context.Context) (int64, error) {
	empty, err := b.historyEmpty(ctx, "consolidate_station")
	if err != nil {
		return 0, fmt.Errorf("build dim_station: %w", err)
	}
	if empty {
		b.log.Info("station history empty, leaving dim_station untouched")
		return 0, nil
	}

	res, err := b.db.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO dim_station
			(id, code, name, city_name, city_id, address, longitude, latitude, status, capacity)
		SELECT id, code, name, city_name, city_id, address, longitude, latitude, status, capacity
		FROM consolidate_station
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM consolidate_station)`)
	if err != nil {
		return 0, fmt.Errorf("build dim_station: %w", err)
	}

	rows, _ := res.RowsAffected()
	b.log.Info("built dim_station", "rows", rows)
	return rows, nil
}

// factJoin resolves each statement to its station's most recent available
// snapshot (per station id, not the global maximum: a statement whose station
// predates the latest snapshot must not be dropped) and to any known city id.
const factJoin = `
	FROM consolidate_station_statement st
	JOIN (
		SELECT s.id, s.city_id
		FROM consolidate_station s
		WHERE s.snapshot_date = (
			SELECT MAX(s2.snapshot_date) FROM consolidate_station s2 WHERE s2.id = s.id
		)
	) sl ON st.station_id = sl.id
	JOIN (SELECT DISTINCT id FROM consolidate_city) c ON sl.city_id = c.id`

// BuildFactStatements rebuilds fact_station_statement from the full statement
// history. Statements with no matching station or city are dropped with
// inner-join semantics; the dropped count is returned and logged as a
// warning, never an error. Returns (written, dropped).
func (b *Builder) BuildFactStatements(ctx context.Context) (int64, int64, error) {
	var total int64
	if err := b.db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM consolidate_station_statement`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("build fact_station_statement: count: %w", err)
	}
	if total == 0 {
		b.log.Info("statement history empty, leaving fact_station_statement untouched")
		return 0, 0, nil
	}

	var matched int64
	if err := b.db.db.QueryRowContext(ctx, `SELECT COUNT(*)`+factJoin).Scan(&matched); err != nil {
		return 0, 0, fmt.Errorf("build fact_station_statement: count matches: %w", err)
	}

	// Identical (station_id, last_statement_time) observations across snapshot
	// dates collapse to the most recent snapshot before the upsert.
	res, err := b.db.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO fact_station_statement
			(station_id, city_id, docks_available, bicycles_available, last_statement_time, snapshot_date)
		SELECT st.station_id, sl.city_id, st.docks_available, st.bicycles_available,
			st.last_statement_time, st.snapshot_date`+factJoin+`
		QUALIFY row_number() OVER (
			PARTITION BY st.station_id, st.last_statement_time
			ORDER BY st.snapshot_date DESC
		) = 1`)
	if err != nil {
		return 0, 0, fmt.Errorf("build fact_station_statement: %w", err)
	}

	written, _ := res.RowsAffected()
	dropped := total - matched
	if dropped > 0 {
		b.log.Warn("dropped statements with no matching station or city",
			"dropped", dropped, "total", total)
	}
	b.log.Info("built fact_station_statement", "rows", written, "dropped", dropped)
	return written, dropped, nil
}

func (b *Builder) historyEmpty(ctx context.Context, table string) (bool, error) {
	var n int64
	if err := b.db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
