// Command genmock writes mock provider payloads into the staging directory so
// the consolidate and aggregate phases can run offline. The payloads use the
// exact raw shapes of the three feeds, including the quirks the adapters must
// handle: numeric Paris station codes, the localized renting flag, and the
// Nantes results envelope.
//
// Usage:
//
//	go run ./cmd/genmock -raw-dir data/raw_data -date 2024-04-26
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/couchcryptid/mobility-data-etl/internal/adapter/staging"
	"github.com/couchcryptid/mobility-data-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawDir := flag.String("raw-dir", "data/raw_data", "staging directory root")
	dateStr := flag.String("date", "", "run date (YYYY-MM-DD), required")
	flag.Parse()

	if *dateStr == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -date")
	}
	date, err := time.Parse("2006-01-02", *dateStr)
	if err != nil {
		return fmt.Errorf("invalid -date: %w", err)
	}

	store := staging.NewStore(*rawDir)

	files := []struct {
		name string
		data any
	}{
		{pipeline.CitiesFile, mockCities()},
		{pipeline.ParisFile, mockParis()},
		{pipeline.NantesFile, mockNantes(date)},
	}

	for _, f := range files {
		payload, err := json.MarshalIndent(f.data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", f.name, err)
		}
		if err := store.Write(date, f.name, payload); err != nil {
			return err
		}
		fmt.Printf("wrote %s for %s\n", f.name, *dateStr)
	}
	return nil
}

func mockCities() []map[string]any {
	return []map[string]any{
		{"code": "75056", "nom": "Paris", "population": 2145906},
		{"code": "44109", "nom": "Nantes", "population": 318808},
		{"code": "92012", "nom": "Boulogne-Billancourt", "population": 121583},
		// Small commune without a published population.
		{"code": "04049", "nom": "Castellet-lès-Sausses"},
	}
}

func mockParis() []map[string]any {
	return []map[string]any{
		{
			// Numeric station code, as some exports produce.
			"stationcode":                 16107,
			"name":                        "Benjamin Godard - Victor Hugo",
			"nom_arrondissement_communes": "Paris",
			"code_insee_commune":          "75056",
			"coordonnees_geo":             map[string]float64{"lon": 2.275725, "lat": 48.865983},
			"is_renting":                  "OUI",
			"capacity":                    35,
			"numdocksavailable":           21,
			"numbikesavailable":           14,
		},
		{
			"stationcode":                 "9020",
			"name":                        "Toudouze - Clauzel",
			"nom_arrondissement_communes": "Paris",
			"code_insee_commune":          "75056",
			"coordonnees_geo":             map[string]float64{"lon": 2.337394, "lat": 48.879296},
			"is_renting":                  "NON",
			"capacity":                    21,
			"numdocksavailable":           18,
			"numbikesavailable":           2,
		},
		{
			"stationcode":                 "21010",
			"name":                        "Place de la Libération",
			"nom_arrondissement_communes": "Boulogne-Billancourt",
			"code_insee_commune":          "92012",
			"coordonnees_geo":             map[string]float64{"lon": 2.249256, "lat": 48.839591},
			"is_renting":                  "OUI",
			"capacity":                    27,
			"numdocksavailable":           5,
			"numbikesavailable":           22,
		},
	}
}

func mockNantes(date time.Time) map[string]any {
	lastUpdate := date.Add(7*time.Hour + 42*time.Minute).Format(time.RFC3339)
	return map[string]any{
		"results": []map[string]any{
			{
				"number":                85,
				"name":                  "00085 - GARE MARITIME",
				"address":               "Quai Ernest Renaud",
				"position":              map[string]float64{"lon": -1.571667, "lat": 47.210256},
				"bike_stands":           20,
				"available_bike_stands": 11,
				"available_bikes":       9,
				"last_update":           lastUpdate,
			},
			{
				"number":                102,
				"name":                  "00102 - BOURSE",
				"address":               "Place de la Bourse",
				"position":              map[string]float64{"lon": -1.558929, "lat": 47.214903},
				"bike_stands":           25,
				"available_bike_stands": 3,
				"available_bikes":       22,
				"last_update":           lastUpdate,
			},
		},
	}
}
