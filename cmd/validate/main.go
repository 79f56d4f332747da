// Command validate performs integrity checks across a populated warehouse:
// dimension tables must mirror the latest consolidated snapshot, and every
// fact row must resolve to a known station and city.
//
// Usage:
//
//	go run ./cmd/validate -db data/duckdb/mobility_analysis.duckdb
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/duckdb/duckdb-go/v2"
)

// check is one named integrity query; it passes when the query returns zero.
type check struct {
	name string
	sql  string
}

var checks = []check{
	{
		name: "dim_city matches latest city snapshot",
		sql: `SELECT abs(
			(SELECT COUNT(*) FROM dim_city) -
			(SELECT COUNT(*) FROM consolidate_city
			 WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM consolidate_city)))`,
	},
	{
		name: "dim_station matches latest station snapshot",
		sql: `SELECT abs(
			(SELECT COUNT(*) FROM dim_station) -
			(SELECT COUNT(*) FROM consolidate_station
			 WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM consolidate_station)))`,
	},
	{
		name: "fact station ids resolve to consolidated stations",
		sql: `SELECT COUNT(*) FROM fact_station_statement f
			WHERE NOT EXISTS (SELECT 1 FROM consolidate_station s WHERE s.id = f.station_id)`,
	},
	{
		name: "fact city ids resolve to consolidated cities",
		sql: `SELECT COUNT(*) FROM fact_station_statement f
			WHERE NOT EXISTS (SELECT 1 FROM consolidate_city c WHERE c.id = f.city_id)`,
	},
	{
		name: "fact rows never exceed statement history",
		sql: `SELECT CASE WHEN
			(SELECT COUNT(*) FROM fact_station_statement) >
			(SELECT COUNT(*) FROM consolidate_station_statement)
			THEN 1 ELSE 0 END`,
	},
	{
		name: "station statuses are valid",
		sql:  `SELECT COUNT(*) FROM consolidate_station WHERE status NOT IN ('OPEN', 'CLOSED')`,
	},
	{
		name: "availability counts are non-negative",
		sql: `SELECT COUNT(*) FROM consolidate_station_statement
			WHERE docks_available < 0 OR bicycles_available < 0`,
	},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	dbPath := flag.String("db", "data/duckdb/mobility_analysis.duckdb", "path to the DuckDB warehouse")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		return fmt.Errorf("warehouse not found: %w", err)
	}

	db, err := sql.Open("duckdb", *dbPath+"?access_mode=read_only")
	if err != nil {
		return fmt.Errorf("open warehouse: %w", err)
	}
	defer db.Close()

	failed := 0
	for _, c := range checks {
		var violations int64
		if err := db.QueryRow(c.sql).Scan(&violations); err != nil {
			fmt.Printf("ERROR %s: %v\n", c.name, err)
			failed++
			continue
		}
		if violations != 0 {
			fmt.Printf("FAIL  %s: %d violations\n", c.name, violations)
			failed++
			continue
		}
		fmt.Printf("PASS  %s\n", c.name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	fmt.Printf("all %d checks passed\n", len(checks))
	return nil
}
