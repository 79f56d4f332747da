package domain

import (
	"encoding/json"
	"time"
)

// parisAffirmative is the provider's localized "yes" token for is_renting.
// Exact match only; anything else (including null) means the station is closed.
const parisAffirmative = "OUI"

// rawParisStation is one record of the Vélib' real-time export. The feed is a
// flat JSON array mixing station identity and availability.
type rawParisStation struct {
	StationCode *flexString `json:"stationcode"`
	Name        *string     `json:"name"`
	CityName    *string     `json:"nom_arrondissement_communes"`
	CityCode    *flexString `json:"code_insee_commune"`
	Geo         *rawGeoPair `json:"coordonnees_geo"`
	IsRenting   *string     `json:"is_renting"`
	Capacity    *int        `json:"capacity"`
	Docks       *int        `json:"numdocksavailable"`
	Bikes       *int        `json:"numbikesavailable"`
}

// rawGeoPair is the nested coordinate object used by the Paris export.
type rawGeoPair struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

// ParseParis maps the Vélib' payload to Station and StationStatement rows.
// Each raw record splits into one row of each kind, sharing the coerced
// string station id. Statements are stamped with the run date: the provider
// does not expose a trusted per-record update time.
func ParseParis(payload []byte, runDate time.Time) ([]Station, []StationStatement, error) {
	var raws []rawParisStation
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, nil, formatErr("paris", "payload", -1, err)
	}

	stations := make([]Station, 0, len(raws))
	statements := make([]StationStatement, 0, len(raws))
	for i, r := range raws {
		if err := r.validate(i); err != nil {
			return nil, nil, err
		}

		id := string(*r.StationCode)
		stations = append(stations, Station{
			ID:           id,
			Code:         id,
			Name:         *r.Name,
			CityName:     *r.CityName,
			CityID:       string(*r.CityCode),
			Address:      nil, // the Paris export carries no street address
			Longitude:    *r.Geo.Lon,
			Latitude:     *r.Geo.Lat,
			Status:       parisStatus(r.IsRenting),
			Capacity:     *r.Capacity,
			SnapshotDate: runDate,
		})
		statements = append(statements, StationStatement{
			StationID:         id,
			DocksAvailable:    *r.Docks,
			BicyclesAvailable: *r.Bikes,
			LastStatementTime: runDate,
			SnapshotDate:      runDate,
		})
	}
	return stations, statements, nil
}

func (r *rawParisStation) validate(i int) error {
	switch {
	case r.StationCode == nil || *r.StationCode == "":
		return formatErr("paris", "stationcode", i, nil)
	case r.Name == nil:
		return formatErr("paris", "name", i, nil)
	case r.CityName == nil:
		return formatErr("paris", "nom_arrondissement_communes", i, nil)
	case r.CityCode == nil:
		return formatErr("paris", "code_insee_commune", i, nil)
	case r.Geo == nil || r.Geo.Lon == nil || r.Geo.Lat == nil:
		return formatErr("paris", "coordonnees_geo", i, nil)
	case r.Capacity == nil:
		return formatErr("paris", "capacity", i, nil)
	case r.Docks == nil:
		return formatErr("paris", "numdocksavailable", i, nil)
	case r.Bikes == nil:
		return formatErr("paris", "numbikesavailable", i, nil)
	}
	return nil
}

// parisStatus translates the localized renting flag into the status enum.
func parisStatus(isRenting *string) StationStatus {
	if isRenting != nil && *isRenting == parisAffirmative {
		return StatusOpen
	}
	return StatusClosed
}
