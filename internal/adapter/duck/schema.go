package duck

import (
	"context"
	"fmt"
)

// Statement is one named, independently idempotent DDL statement. The schema
// is an explicit ordered list rather than a SQL script split on delimiters,
// which breaks as soon as a literal contains one.
type Statement struct {
	Name string
	SQL  string
}

// ConsolidateSchema declares the snapshot-history tables. Column lists and
// types are a fixed contract shared with downstream analytics.
var ConsolidateSchema = []Statement{
	{
		Name: "consolidate_city",
		SQL: `CREATE TABLE IF NOT EXISTS consolidate_city (
			id VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			nb_inhabitants INTEGER,
			snapshot_date DATE NOT NULL,
			PRIMARY KEY (id, snapshot_date)
		)`,
	},
	{
		Name: "consolidate_station",
		SQL: `CREATE TABLE IF NOT EXISTS consolidate_station (
			id VARCHAR NOT NULL,
			code VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			city_name VARCHAR NOT NULL,
			city_id VARCHAR NOT NULL,
			address VARCHAR,
			longitude DOUBLE NOT NULL,
			latitude DOUBLE NOT NULL,
			status VARCHAR NOT NULL,
			capacity INTEGER NOT NULL,
			snapshot_date DATE NOT NULL,
			PRIMARY KEY (id, snapshot_date)
		)`,
	},
	{
		Name: "consolidate_station_statement",
		SQL: `CREATE TABLE IF NOT EXISTS consolidate_station_statement (
			station_id VARCHAR NOT NULL,
			docks_available INTEGER NOT NULL,
			bicycles_available INTEGER NOT NULL,
			last_statement_time TIMESTAMP NOT NULL,
			snapshot_date DATE NOT NULL,
			PRIMARY KEY (station_id, snapshot_date)
		)`,
	},
}

// StarSchema declares the derived dimension and fact tables. They are
// disposable caches over the consolidated history, never sources of truth.
var StarSchema = []Statement{
	{
		Name: "dim_city",
		SQL: `CREATE TABLE IF NOT EXISTS dim_city (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			nb_inhabitants INTEGER
		)`,
	},
	{
		Name: "dim_station",
		SQL: `CREATE TABLE IF NOT EXISTS dim_station (
			id VARCHAR PRIMARY KEY,
			code VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			city_name VARCHAR NOT NULL,
			city_id VARCHAR NOT NULL,
			address VARCHAR,
			longitude DOUBLE NOT NULL,
			latitude DOUBLE NOT NULL,
			status VARCHAR NOT NULL,
			capacity INTEGER NOT NULL
		)`,
	},
	{
		Name: "fact_station_statement",
		SQL: `CREATE TABLE IF NOT EXISTS fact_station_statement (
			station_id VARCHAR NOT NULL,
			city_id VARCHAR NOT NULL,
			docks_available INTEGER NOT NULL,
			bicycles_available INTEGER NOT NULL,
			last_statement_time TIMESTAMP NOT NULL,
			snapshot_date DATE NOT NULL,
			PRIMARY KEY (station_id, last_statement_time)
		)`,
	},
}

// Provision executes the given DDL statements in order. Every statement is
// CREATE IF NOT EXISTS, so provisioning twice neither errors nor touches
// existing data.
func (d *DB) Provision(ctx context.Context, statements []Statement) error {
	for _, stmt := range statements {
		if _, err := d.db.ExecContext(ctx, stmt.SQL); err != nil {
			return fmt.Errorf("provision %s: %w", stmt.Name, err)
		}
		d.log.Debug("provisioned table", "table", stmt.Name)
	}
	return nil
}

// ProvisionConsolidated ensures the snapshot-history tables exist.
func (d *DB) ProvisionConsolidated(ctx context.Context) error {
	return d.Provision(ctx, ConsolidateSchema)
}

// ProvisionStar ensures the dimension and fact tables exist.
func (d *DB) ProvisionStar(ctx context.Context) error {
	return d.Provision(ctx, StarSchema)
}
