package aemet

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/horaria_08019.json")
	require.NoError(t, err)
	return data
}

func TestDecodeForecast_Fixture(t *testing.T) {
	days, err := DecodeForecast(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, days, 2)

	d := days[0]
	assert.Equal(t, "2025-06-01T00:00:00", d.Date)

	require.Len(t, d.Sky, 2, "empty sky entries are skipped")
	assert.Equal(t, domain.Sky{Period: "21", Code: "15n", Description: "Muy nuboso con lluvia en la montaña"}, d.Sky[1])

	v, ok := d.ValueFor(domain.SeriesPrecipitation, "21")
	require.True(t, ok)
	assert.InDelta(t, tracePrecipitation, v, 1e-9)

	v, ok = d.ValueFor(domain.SeriesPrecipitation, "22")
	require.True(t, ok)
	assert.InDelta(t, 2.4, v, 1e-9)

	v, ok = d.ValueFor(domain.SeriesStormProbability, "1901")
	require.True(t, ok, "numeric values decode like strings")
	assert.InDelta(t, 10.0, v, 1e-9)

	v, ok = d.ValueFor(domain.SeriesTemperature, "22")
	require.True(t, ok)
	assert.InDelta(t, 21.0, v, 1e-9)
}

func TestDecodeForecast_MergesWindAndGust(t *testing.T) {
	days, err := DecodeForecast(loadFixture(t))
	require.NoError(t, err)

	wind := days[0].Wind
	require.Len(t, wind, 2)

	assert.Equal(t, "20", wind[0].Period)
	assert.Equal(t, []string{"SO"}, wind[0].Directions)
	assert.Equal(t, []float64{15}, wind[0].Speeds)
	require.NotNil(t, wind[0].Gust)
	assert.InDelta(t, 28.0, *wind[0].Gust, 1e-9)

	assert.Equal(t, "21", wind[1].Period)
	assert.Equal(t, []float64{9}, wind[1].Speeds)
	assert.Nil(t, wind[1].Gust)
}

func TestDecodeForecast_GustBeforeSpeed(t *testing.T) {
	payload := `[{"prediccion":{"dia":[{"fecha":"2025-06-01T00:00:00","vientoAndRachaMax":[
		{"value":"40","periodo":"03"},
		{"direccion":["N"],"velocidad":["20"],"periodo":"03"}
	]}]}}]`

	days, err := DecodeForecast([]byte(payload))
	require.NoError(t, err)
	require.Len(t, days[0].Wind, 1)

	w := days[0].Wind[0]
	assert.Equal(t, []float64{20}, w.Speeds)
	require.NotNil(t, w.Gust)
	assert.InDelta(t, 40.0, *w.Gust, 1e-9)
}

func TestDecodeForecast_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `<html>maintenance</html>`},
		{"empty list", `[]`},
		{"object instead of list", `{"prediccion":{}}`},
		{"non numeric temperature", `[{"prediccion":{"dia":[{"fecha":"2025-06-01T00:00:00","temperatura":[{"value":"hot","periodo":"10"}]}]}}]`},
		{"non numeric speed", `[{"prediccion":{"dia":[{"fecha":"2025-06-01T00:00:00","vientoAndRachaMax":[{"direccion":["N"],"velocidad":["fast"],"periodo":"10"}]}]}}]`},
		{"boolean value", `[{"prediccion":{"dia":[{"fecha":"2025-06-01T00:00:00","nieve":[{"value":true,"periodo":"10"}]}]}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeForecast([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, errMalformed)
		})
	}
}

func TestDecodeForecast_NoDays(t *testing.T) {
	days, err := DecodeForecast([]byte(`[{"prediccion":{"dia":[]}}]`))
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   text
		want float64
	}{
		{"0", 0},
		{" 12 ", 12},
		{"-3.5", -3.5},
		{"Ip", tracePrecipitation},
		{"ip", tracePrecipitation},
	}
	for _, tt := range tests {
		got, err := parseValue(tt.in)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
	}
}

func TestDecodeForecast_CarriesOnlyReportedSeries(t *testing.T) {
	days, err := DecodeForecast(loadFixture(t))
	require.NoError(t, err)

	data, err := json.Marshal(days[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "06:18", "sun times are not part of the forecast model")
	assert.NotContains(t, string(data), "21:20")
}
