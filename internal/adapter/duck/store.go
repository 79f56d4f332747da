package duck

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/mobility-data-etl/internal/domain"
)

// Store appends canonical rows to the consolidated history. Each upsert call
// covers one entity kind inside one transaction: any concurrent reader sees
// either all of the kind's rows for the snapshot or none.
//
// INSERT OR REPLACE on the (natural key, snapshot_date) primary key makes
// same-day re-runs idempotent and lets the last row win on duplicate keys,
// while rows from other snapshot dates are never touched.
type Store struct {
	db  *DB
	log *slog.Logger
}

// NewStore creates a consolidation store over an open warehouse handle.
func NewStore(db *DB, logger *slog.Logger) *Store {
	return &Store{db: db, log: logger}
}

// UpsertCities writes one snapshot of City rows.
func (s *Store) UpsertCities(ctx context.Context, cities []domain.City) error {
	if len(cities) == 0 {
		return nil
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert cities: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO consolidate_city
		(id, name, nb_inhabitants, snapshot_date) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("upsert cities: prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range cities {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Population, c.SnapshotDate); err != nil {
			return fmt.Errorf("upsert city %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert cities: commit: %w", err)
	}
	s.log.Info("consolidated cities", "rows", len(cities), "snapshot_date", cities[0].SnapshotDate.Format("2006-01-02"))
	return nil
}

// UpsertStations writes one snapshot of Station rows.
func (s *Store) UpsertStations(ctx context.Context, stations []domain.Station) error {
	if len(stations) == 0 {
		return nil
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert stations: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO consolidate_station
		(id, code, name, city_name, city_id, address, longitude, latitude, status, capacity, snapshot_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("upsert stations: prepare: %w", err)
	}
	defer stmt.Close()

	for _, st := range stations {
		_, err := stmt.ExecContext(ctx, st.ID, st.Code, st.Name, st.CityName, st.CityID,
			st.Address, st.Longitude, st.Latitude, string(st.Status), st.Capacity, st.SnapshotDate)
		if err != nil {
			return fmt.Errorf("upsert station %s: %w", st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert stations: commit: %w", err)
	}
	s.log.Info("consolidated stations", "rows", len(stations), "snapshot_date", stations[0].SnapshotDate.Format("2006-01-02"))
	return nil
}

// UpsertStatements writes one snapshot of StationStatement rows.
func (s *Store) UpsertStatements(ctx context.Context, statements []domain.StationStatement) error {
	if len(statements) == 0 {
		return nil
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert statements: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO consolidate_station_statement
		(station_id, docks_available, bicycles_available, last_statement_time, snapshot_date)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("upsert statements: prepare: %w", err)
	}
	defer stmt.Close()

	for _, st := range statements {
		_, err := stmt.ExecContext(ctx, st.StationID, st.DocksAvailable, st.BicyclesAvailable,
			st.LastStatementTime, st.SnapshotDate)
		if err != nil {
			return fmt.Errorf("upsert statement for station %s: %w", st.StationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert statements: commit: %w", err)
	}
	s.log.Info("consolidated statements", "rows", len(statements), "snapshot_date", statements[0].SnapshotDate.Format("2006-01-02"))
	return nil
}
