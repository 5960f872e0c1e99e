package domain

import "time"

// forecastDateLayout is the layout of AEMET "fecha" timestamps.
const forecastDateLayout = "2006-01-02T15:04:05"

// Series identifies a single-valued forecast series.
type Series int

const (
	SeriesPrecipitation Series = iota
	SeriesPrecipitationProbability
	SeriesStormProbability
	SeriesSnow
	SeriesSnowProbability
	SeriesTemperature
	SeriesApparentTemperature
	SeriesRelativeHumidity
)

// Reading is one value of a series at a period marker.
type Reading struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// Wind is the wind forecast at a period marker. Gust is nil when the
// provider published no gust for the marker.
type Wind struct {
	Period     string    `json:"period"`
	Directions []string  `json:"directions,omitempty"`
	Speeds     []float64 `json:"speeds,omitempty"`
	Gust       *float64  `json:"gust,omitempty"`
}

// AverageSpeed returns the first published speed.
func (w Wind) AverageSpeed() (float64, bool) {
	if len(w.Speeds) == 0 {
		return 0, false
	}
	return w.Speeds[0], true
}

// Sky is the sky state at a period marker.
type Sky struct {
	Period      string `json:"period"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// ForecastDay holds one calendar day of forecast series for a location.
// Markers are unique within a series but not sorted.
type ForecastDay struct {
	Date string `json:"date"`

	Sky                      []Sky     `json:"sky,omitempty"`
	Precipitation            []Reading `json:"precipitation,omitempty"`
	PrecipitationProbability []Reading `json:"precipitation_probability,omitempty"`
	Wind                     []Wind    `json:"wind,omitempty"`
	StormProbability         []Reading `json:"storm_probability,omitempty"`
	Snow                     []Reading `json:"snow,omitempty"`
	SnowProbability          []Reading `json:"snow_probability,omitempty"`
	Temperature              []Reading `json:"temperature,omitempty"`
	ApparentTemperature      []Reading `json:"apparent_temperature,omitempty"`
	RelativeHumidity         []Reading `json:"relative_humidity,omitempty"`
}

func (d ForecastDay) series(s Series) []Reading {
	switch s {
	case SeriesPrecipitation:
		return d.Precipitation
	case SeriesPrecipitationProbability:
		return d.PrecipitationProbability
	case SeriesStormProbability:
		return d.StormProbability
	case SeriesSnow:
		return d.Snow
	case SeriesSnowProbability:
		return d.SnowProbability
	case SeriesTemperature:
		return d.Temperature
	case SeriesApparentTemperature:
		return d.ApparentTemperature
	case SeriesRelativeHumidity:
		return d.RelativeHumidity
	default:
		return nil
	}
}

// ValueFor returns the value of series s at marker. A missing series or
// marker is reported with ok=false and is not an error.
func (d ForecastDay) ValueFor(s Series, marker string) (float64, bool) {
	for _, r := range d.series(s) {
		if r.Period == marker {
			return r.Value, true
		}
	}
	return 0, false
}

// WindFor returns the wind entry for the hour marker, falling back to the
// quarter marker.
func (d ForecastDay) WindFor(hour string, quarter Quarter) (Wind, bool) {
	if w, ok := d.windAt(hour); ok {
		return w, true
	}
	return d.windAt(string(quarter))
}

func (d ForecastDay) windAt(marker string) (Wind, bool) {
	for _, w := range d.Wind {
		if w.Period == marker {
			return w, true
		}
	}
	return Wind{}, false
}

// SkyFor returns the sky state at marker.
func (d ForecastDay) SkyFor(marker string) (Sky, bool) {
	for _, s := range d.Sky {
		if s.Period == marker {
			return s, true
		}
	}
	return Sky{}, false
}

// CalendarDate returns the day's date as YYYY-MM-DD, or ok=false when Date
// is not an AEMET timestamp.
func (d ForecastDay) CalendarDate() (string, bool) {
	t, err := time.Parse(forecastDateLayout, d.Date)
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}
