package domain

import (
	"encoding/json"
	"time"
)

// The Nantes feed serves a single municipality, so city identity is constant.
const (
	nantesCityName = "Nantes"
	nantesCityID   = "44109" // INSEE code for Nantes
)

// rawNantesEnvelope is the JCDecaux-style wrapper around station records.
type rawNantesEnvelope struct {
	Results []rawNantesStation `json:"results"`
}

// rawNantesStation is one record of the Nantes Métropole availability export.
type rawNantesStation struct {
	Number     *flexString `json:"number"`
	Name       *string     `json:"name"`
	Address    *string     `json:"address"`
	Position   *rawGeoPair `json:"position"`
	BikeStands *int        `json:"bike_stands"`
	Available  *int        `json:"available_bike_stands"`
	Bikes      *int        `json:"available_bikes"`
	LastUpdate *string     `json:"last_update"`
}

// ParseNantes maps the Nantes payload to Station and StationStatement rows.
// The provider exposes no renting flag, so every station is recorded OPEN,
// and statement timestamps come from the provider's last_update field.
func ParseNantes(payload []byte, runDate time.Time) ([]Station, []StationStatement, error) {
	var env rawNantesEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, nil, formatErr("nantes", "payload", -1, err)
	}
	if env.Results == nil {
		return nil, nil, formatErr("nantes", "results", -1, nil)
	}

	stations := make([]Station, 0, len(env.Results))
	statements := make([]StationStatement, 0, len(env.Results))
	for i, r := range env.Results {
		if err := r.validate(i); err != nil {
			return nil, nil, err
		}

		lastUpdate, err := time.Parse(time.RFC3339, *r.LastUpdate)
		if err != nil {
			return nil, nil, formatErr("nantes", "last_update", i, err)
		}

		id := string(*r.Number)
		stations = append(stations, Station{
			ID:           id,
			Code:         id,
			Name:         *r.Name,
			CityName:     nantesCityName,
			CityID:       nantesCityID,
			Address:      r.Address,
			Longitude:    *r.Position.Lon,
			Latitude:     *r.Position.Lat,
			Status:       StatusOpen,
			Capacity:     *r.BikeStands,
			SnapshotDate: runDate,
		})
		statements = append(statements, StationStatement{
			StationID:         id,
			DocksAvailable:    *r.Available,
			BicyclesAvailable: *r.Bikes,
			LastStatementTime: lastUpdate,
			SnapshotDate:      runDate,
		})
	}
	return stations, statements, nil
}

func (r *rawNantesStation) validate(i int) error {
	switch {
	case r.Number == nil || *r.Number == "":
		return formatErr("nantes", "number", i, nil)
	case r.Name == nil:
		return formatErr("nantes", "name", i, nil)
	case r.Position == nil || r.Position.Lon == nil || r.Position.Lat == nil:
		return formatErr("nantes", "position", i, nil)
	case r.BikeStands == nil:
		return formatErr("nantes", "bike_stands", i, nil)
	case r.Available == nil:
		return formatErr("nantes", "available_bike_stands", i, nil)
	case r.Bikes == nil:
		return formatErr("nantes", "available_bikes", i, nil)
	case r.LastUpdate == nil:
		return formatErr("nantes", "last_update", i, nil)
	}
	return nil
}
