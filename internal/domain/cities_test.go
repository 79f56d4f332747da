package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCities(t *testing.T) {
	t.Run("maps code, label, and population", func(t *testing.T) {
		payload := []byte(`[
			{"code": "44109", "nom": "Nantes", "population": 318808},
			{"code": "04049", "nom": "Castellet-lès-Sausses"}
		]`)

		cities, err := ParseCities(payload, testRunDate)
		require.NoError(t, err)
		require.Len(t, cities, 2)

		assert.Equal(t, "44109", cities[0].ID)
		assert.Equal(t, "Nantes", cities[0].Name)
		require.NotNil(t, cities[0].Population)
		assert.Equal(t, 318808, *cities[0].Population)
		assert.Equal(t, testRunDate, cities[0].SnapshotDate)

		// No population fallback: absent stays nil.
		assert.Nil(t, cities[1].Population)
	})

	t.Run("missing code fails the whole payload", func(t *testing.T) {
		payload := []byte(`[
			{"code": "44109", "nom": "Nantes"},
			{"nom": "Sans Code"}
		]`)

		cities, err := ParseCities(payload, testRunDate)
		require.Error(t, err)
		assert.Nil(t, cities)

		var sfe *SourceFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, "cities", sfe.Source)
		assert.Equal(t, "code", sfe.Field)
		assert.Equal(t, 1, sfe.Index)
	})

	t.Run("missing label fails", func(t *testing.T) {
		_, err := ParseCities([]byte(`[{"code": "44109"}]`), testRunDate)
		var sfe *SourceFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, "nom", sfe.Field)
	})
}

func TestToday(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 15, 10, 30, 0, time.UTC))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC), Today())
}
