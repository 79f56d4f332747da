package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRunDate = time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)

func TestParseParis(t *testing.T) {
	t.Run("splits one record into station and statement", func(t *testing.T) {
		payload := []byte(`[{
			"stationcode": "16107",
			"name": "Benjamin Godard - Victor Hugo",
			"nom_arrondissement_communes": "Paris",
			"code_insee_commune": "75056",
			"coordonnees_geo": {"lon": 2.275725, "lat": 48.865983},
			"is_renting": "OUI",
			"capacity": 35,
			"numdocksavailable": 21,
			"numbikesavailable": 14
		}]`)

		stations, statements, err := ParseParis(payload, testRunDate)
		require.NoError(t, err)
		require.Len(t, stations, 1)
		require.Len(t, statements, 1)

		st := stations[0]
		assert.Equal(t, "16107", st.ID)
		assert.Equal(t, "16107", st.Code)
		assert.Equal(t, "Benjamin Godard - Victor Hugo", st.Name)
		assert.Equal(t, "Paris", st.CityName)
		assert.Equal(t, "75056", st.CityID)
		assert.Nil(t, st.Address)
		assert.Equal(t, 2.275725, st.Longitude)
		assert.Equal(t, 48.865983, st.Latitude)
		assert.Equal(t, StatusOpen, st.Status)
		assert.Equal(t, 35, st.Capacity)
		assert.Equal(t, testRunDate, st.SnapshotDate)

		want := StationStatement{
			StationID:         "16107",
			DocksAvailable:    21,
			BicyclesAvailable: 14,
			LastStatementTime: testRunDate,
			SnapshotDate:      testRunDate,
		}
		if diff := cmp.Diff(want, statements[0]); diff != "" {
			t.Errorf("statement mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("coerces numeric station code to string", func(t *testing.T) {
		payload := []byte(`[{
			"stationcode": 16107,
			"name": "n",
			"nom_arrondissement_communes": "Paris",
			"code_insee_commune": 75056,
			"coordonnees_geo": {"lon": 1.0, "lat": 2.0},
			"is_renting": "OUI",
			"capacity": 10,
			"numdocksavailable": 1,
			"numbikesavailable": 2
		}]`)

		stations, _, err := ParseParis(payload, testRunDate)
		require.NoError(t, err)
		assert.Equal(t, "16107", stations[0].ID)
		assert.Equal(t, "75056", stations[0].CityID)
	})

	t.Run("renting flag maps to status", func(t *testing.T) {
		cases := []struct {
			name   string
			flag   string // raw JSON for is_renting, "" omits the field
			status StationStatus
		}{
			{"affirmative token", `"OUI"`, StatusOpen},
			{"negative token", `"NON"`, StatusClosed},
			{"lowercase is not exact match", `"oui"`, StatusClosed},
			{"unexpected token", `"MAYBE"`, StatusClosed},
			{"null", `null`, StatusClosed},
			{"missing", ``, StatusClosed},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				record := `{
					"stationcode": "1",
					"name": "n",
					"nom_arrondissement_communes": "Paris",
					"code_insee_commune": "75056",
					"coordonnees_geo": {"lon": 1.0, "lat": 2.0},
					"capacity": 10,
					"numdocksavailable": 1,
					"numbikesavailable": 2`
				if tc.flag != "" {
					record += `, "is_renting": ` + tc.flag
				}
				record += `}`

				stations, _, err := ParseParis([]byte(`[`+record+`]`), testRunDate)
				require.NoError(t, err)
				assert.Equal(t, tc.status, stations[0].Status)
			})
		}
	})

	t.Run("missing required field fails the whole payload", func(t *testing.T) {
		// Second record lacks coordinates: nothing from the payload survives.
		payload := []byte(`[
			{"stationcode": "1", "name": "a", "nom_arrondissement_communes": "Paris",
			 "code_insee_commune": "75056", "coordonnees_geo": {"lon": 1.0, "lat": 2.0},
			 "capacity": 10, "numdocksavailable": 1, "numbikesavailable": 2},
			{"stationcode": "2", "name": "b", "nom_arrondissement_communes": "Paris",
			 "code_insee_commune": "75056",
			 "capacity": 10, "numdocksavailable": 1, "numbikesavailable": 2}
		]`)

		stations, statements, err := ParseParis(payload, testRunDate)
		require.Error(t, err)
		assert.Nil(t, stations)
		assert.Nil(t, statements)

		var sfe *SourceFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, "paris", sfe.Source)
		assert.Equal(t, "coordonnees_geo", sfe.Field)
		assert.Equal(t, 1, sfe.Index)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, _, err := ParseParis([]byte(`{not json`), testRunDate)
		var sfe *SourceFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, "payload", sfe.Field)
	})
}
