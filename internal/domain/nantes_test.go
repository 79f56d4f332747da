package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNantes(t *testing.T) {
	t.Run("unwraps the results envelope", func(t *testing.T) {
		payload := []byte(`{"results": [{
			"number": 85,
			"name": "00085 - GARE MARITIME",
			"address": "Quai Ernest Renaud",
			"position": {"lon": -1.571667, "lat": 47.210256},
			"bike_stands": 20,
			"available_bike_stands": 11,
			"available_bikes": 9,
			"last_update": "2024-04-26T07:42:00+02:00"
		}]}`)

		stations, statements, err := ParseNantes(payload, testRunDate)
		require.NoError(t, err)
		require.Len(t, stations, 1)
		require.Len(t, statements, 1)

		st := stations[0]
		assert.Equal(t, "85", st.ID)
		assert.Equal(t, "Nantes", st.CityName)
		assert.Equal(t, "44109", st.CityID)
		require.NotNil(t, st.Address)
		assert.Equal(t, "Quai Ernest Renaud", *st.Address)
		assert.Equal(t, StatusOpen, st.Status)
		assert.Equal(t, 20, st.Capacity)

		stmt := statements[0]
		assert.Equal(t, "85", stmt.StationID)
		assert.Equal(t, 11, stmt.DocksAvailable)
		assert.Equal(t, 9, stmt.BicyclesAvailable)
		expected := time.Date(2024, 4, 26, 7, 42, 0, 0, time.FixedZone("", 2*3600))
		assert.True(t, stmt.LastStatementTime.Equal(expected))
		assert.Equal(t, testRunDate, stmt.SnapshotDate)
	})

	t.Run("address may be absent", func(t *testing.T) {
		payload := []byte(`{"results": [{
			"number": 1, "name": "n",
			"position": {"lon": 1.0, "lat": 2.0},
			"bike_stands": 5, "available_bike_stands": 1, "available_bikes": 4,
			"last_update": "2024-04-26T08:00:00Z"
		}]}`)

		stations, _, err := ParseNantes(payload, testRunDate)
		require.NoError(t, err)
		assert.Nil(t, stations[0].Address)
	})

	t.Run("missing envelope fails", func(t *testing.T) {
		_, _, err := ParseNantes([]byte(`{"rows": []}`), testRunDate)
		var sfe *SourceFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, "nantes", sfe.Source)
		assert.Equal(t, "results", sfe.Field)
	})

	t.Run("bad last_update fails the payload", func(t *testing.T) {
		payload := []byte(`{"results": [{
			"number": 1, "name": "n",
			"position": {"lon": 1.0, "lat": 2.0},
			"bike_stands": 5, "available_bike_stands": 1, "available_bikes": 4,
			"last_update": "yesterday"
		}]}`)

		_, _, err := ParseNantes(payload, testRunDate)
		var sfe *SourceFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, "last_update", sfe.Field)
	})

	t.Run("missing counts fail the payload", func(t *testing.T) {
		payload := []byte(`{"results": [{
			"number": 1, "name": "n",
			"position": {"lon": 1.0, "lat": 2.0},
			"bike_stands": 5, "available_bikes": 4,
			"last_update": "2024-04-26T08:00:00Z"
		}]}`)

		_, _, err := ParseNantes(payload, testRunDate)
		var sfe *SourceFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, "available_bike_stands", sfe.Field)
	})

	t.Run("empty results is valid", func(t *testing.T) {
		stations, statements, err := ParseNantes([]byte(`{"results": []}`), testRunDate)
		require.NoError(t, err)
		assert.Empty(t, stations)
		assert.Empty(t, statements)
	})
}
