package aemet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
)

// tracePrecipitation is the amount reported for "Ip" (inapreciable) values.
const tracePrecipitation = 0.1

var errMalformed = errors.New("malformed forecast payload")

// AEMET API response types.

// metadata is the first-step response pointing at the forecast payload.
type metadata struct {
	Description string `json:"descripcion"`
	Status      int    `json:"estado"`
	DataURL     string `json:"datos"`
}

type forecast struct {
	Name       string     `json:"nombre"`
	Province   string     `json:"provincia"`
	Prediction prediction `json:"prediccion"`
}

type prediction struct {
	Days []day `json:"dia"`
}

type day struct {
	Date                     string  `json:"fecha"`
	Sky                      []sky   `json:"estadoCielo"`
	Precipitation            []entry `json:"precipitacion"`
	PrecipitationProbability []entry `json:"probPrecipitacion"`
	Wind                     []wind  `json:"vientoAndRachaMax"`
	StormProbability         []entry `json:"probTormenta"`
	Snow                     []entry `json:"nieve"`
	SnowProbability          []entry `json:"probNieve"`
	Temperature              []entry `json:"temperatura"`
	ApparentTemperature      []entry `json:"sensTermica"`
	RelativeHumidity         []entry `json:"humedadRelativa"`
}

type entry struct {
	Value  text `json:"value"`
	Period text `json:"periodo"`
}

type sky struct {
	Value       text   `json:"value"`
	Period      text   `json:"periodo"`
	Description string `json:"descripcion"`
}

// wind is either a speed entry (direccion + velocidad) or a gust entry
// (value) for a period.
type wind struct {
	Directions []text `json:"direccion"`
	Speeds     []text `json:"velocidad"`
	Value      *text  `json:"value"`
	Period     text   `json:"periodo"`
}

// text accepts JSON strings and numbers; AEMET mixes both for the same field.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: value %s is neither string nor number", errMalformed, data)
	}
	*t = text(n.String())
	return nil
}

// DecodeForecast parses a second-step AEMET hourly forecast payload into
// forecast days. Entries with an empty value are skipped.
func DecodeForecast(data []byte) ([]domain.ForecastDay, error) {
	var payload []forecast
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty forecast list", errMalformed)
	}

	raw := payload[0].Prediction.Days
	days := make([]domain.ForecastDay, 0, len(raw))
	for i, d := range raw {
		fd, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("day %d (%s): %w", i, d.Date, err)
		}
		days = append(days, fd)
	}
	return days, nil
}

func (d day) toDomain() (domain.ForecastDay, error) {
	fd := domain.ForecastDay{Date: d.Date}

	for _, s := range d.Sky {
		if s.Value == "" {
			continue
		}
		fd.Sky = append(fd.Sky, domain.Sky{
			Period:      string(s.Period),
			Code:        string(s.Value),
			Description: s.Description,
		})
	}

	series := []struct {
		name string
		in   []entry
		out  *[]domain.Reading
	}{
		{"precipitacion", d.Precipitation, &fd.Precipitation},
		{"probPrecipitacion", d.PrecipitationProbability, &fd.PrecipitationProbability},
		{"probTormenta", d.StormProbability, &fd.StormProbability},
		{"nieve", d.Snow, &fd.Snow},
		{"probNieve", d.SnowProbability, &fd.SnowProbability},
		{"temperatura", d.Temperature, &fd.Temperature},
		{"sensTermica", d.ApparentTemperature, &fd.ApparentTemperature},
		{"humedadRelativa", d.RelativeHumidity, &fd.RelativeHumidity},
	}
	for _, s := range series {
		vals, err := readings(s.in)
		if err != nil {
			return domain.ForecastDay{}, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.out = vals
	}

	w, err := mergeWind(d.Wind)
	if err != nil {
		return domain.ForecastDay{}, fmt.Errorf("vientoAndRachaMax: %w", err)
	}
	fd.Wind = w

	return fd, nil
}

func readings(entries []entry) ([]domain.Reading, error) {
	var out []domain.Reading
	for _, e := range entries {
		if strings.TrimSpace(string(e.Value)) == "" {
			continue
		}
		v, err := parseValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", e.Period, err)
		}
		out = append(out, domain.Reading{Period: string(e.Period), Value: v})
	}
	return out, nil
}

// mergeWind folds speed and gust entries sharing a period into one Wind,
// keeping the order in which periods first appear.
func mergeWind(entries []wind) ([]domain.Wind, error) {
	var out []domain.Wind
	index := make(map[string]int)

	for _, e := range entries {
		period := string(e.Period)
		i, ok := index[period]
		if !ok {
			out = append(out, domain.Wind{Period: period})
			i = len(out) - 1
			index[period] = i
		}
		w := &out[i]

		for _, dir := range e.Directions {
			w.Directions = append(w.Directions, string(dir))
		}
		for _, s := range e.Speeds {
			v, err := parseValue(s)
			if err != nil {
				return nil, fmt.Errorf("period %s speed: %w", period, err)
			}
			w.Speeds = append(w.Speeds, v)
		}
		if e.Value != nil && strings.TrimSpace(string(*e.Value)) != "" {
			v, err := parseValue(*e.Value)
			if err != nil {
				return nil, fmt.Errorf("period %s gust: %w", period, err)
			}
			w.Gust = &v
		}
	}
	return out, nil
}

func parseValue(t text) (float64, error) {
	s := strings.TrimSpace(string(t))
	if strings.EqualFold(s, "Ip") {
		return tracePrecipitation, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q is not numeric", errMalformed, s)
	}
	return v, nil
}
