package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// rawCommune is one record of the geo.api.gouv.fr communes export.
type rawCommune struct {
	Code       *string `json:"code"`
	Nom        *string `json:"nom"`
	Population *int    `json:"population"`
}

// ParseCities maps the communes reference payload to City rows stamped with
// the run date. A record missing its code or label fails the whole payload.
func ParseCities(payload []byte, runDate time.Time) ([]City, error) {
	var raws []rawCommune
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, formatErr("cities", "payload", -1, err)
	}

	cities := make([]City, 0, len(raws))
	for i, r := range raws {
		if r.Code == nil || *r.Code == "" {
			return nil, formatErr("cities", "code", i, nil)
		}
		if r.Nom == nil {
			return nil, formatErr("cities", "nom", i, nil)
		}
		cities = append(cities, City{
			ID:           *r.Code,
			Name:         *r.Nom,
			Population:   r.Population,
			SnapshotDate: runDate,
		})
	}
	return cities, nil
}

// flexString accepts a JSON string or number and stores it as a string.
// Paris station codes switch between the two across exports.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("empty value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
