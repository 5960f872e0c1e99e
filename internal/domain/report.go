package domain

import (
	"bytes"
	"encoding/json"
)

// Alert is a classified reading with the mitigations it triggered.
type Alert struct {
	Value   float64
	Level   RiskLevel
	Actions Actions
}

// TemperatureAlert carries both temperature ladders for one reading.
type TemperatureAlert struct {
	Value       float64
	High        RiskLevel
	Low         RiskLevel
	HighActions Actions
	LowActions  Actions
}

// HourReport is the forecast assessment for one requested hour. A nil
// section means the forecast had no data for that hour or quarter.
type HourReport struct {
	Timestamp string

	Sky                      *Sky
	WindAverage              *Alert
	WindGust                 *Alert
	Precipitation            *Alert
	PrecipitationProbability *float64
	StormProbability         *float64
	Snow                     *Alert
	SnowProbability          *float64
	Temperature              *TemperatureAlert
	ApparentTemperature      *float64
	RelativeHumidity         *float64
}

// hourJSON is the wire layout of an HourReport.
type hourJSON struct {
	Sky                      *string    `json:"sky,omitempty"`
	WindAverage              *float64   `json:"wind_average,omitempty"`
	WindAverageAlert         *RiskLevel `json:"wind_average_alert,omitempty"`
	WindAverageMeasures      Actions    `json:"wind_average_measures,omitempty"`
	WindGust                 *float64   `json:"wind_gust,omitempty"`
	WindGustAlert            *RiskLevel `json:"wind_gust_alert,omitempty"`
	WindGustMeasures         Actions    `json:"wind_gust_measures,omitempty"`
	PrecipitationProbability *float64   `json:"precipitation_probability,omitempty"`
	Precipitation            *float64   `json:"precipitation,omitempty"`
	PrecipitationAlert       *RiskLevel `json:"precipitation_alert,omitempty"`
	PrecipitationMeasures    Actions    `json:"precipitation_measures,omitempty"`
	StormProbability         *float64   `json:"storm_probability,omitempty"`
	Snow                     *float64   `json:"snow,omitempty"`
	SnowAlert                *RiskLevel `json:"snow_alert,omitempty"`
	SnowMeasures             Actions    `json:"snow_measures,omitempty"`
	SnowProbability          *float64   `json:"snow_probability,omitempty"`
	Temperature              *float64   `json:"temperature,omitempty"`
	HighTemperatureAlert     *RiskLevel `json:"high_temperature_alert,omitempty"`
	LowTemperatureAlert      *RiskLevel `json:"low_temperature_alert,omitempty"`
	HighTemperatureMeasures  Actions    `json:"high_temperature_measures,omitempty"`
	LowTemperatureMeasures   Actions    `json:"low_temperature_measures,omitempty"`
	ApparentTemperature      *float64   `json:"apparent_temperature,omitempty"`
	RelativeHumidity         *float64   `json:"relative_humidity,omitempty"`
}

// MarshalJSON flattens the report into fixed per-metric keys.
func (h HourReport) MarshalJSON() ([]byte, error) {
	var out hourJSON
	if h.Sky != nil {
		sky := h.Sky.Description
		if sky == "" {
			sky = h.Sky.Code
		}
		out.Sky = &sky
	}
	if a := h.WindAverage; a != nil {
		out.WindAverage, out.WindAverageAlert, out.WindAverageMeasures = &a.Value, &a.Level, a.Actions
	}
	if a := h.WindGust; a != nil {
		out.WindGust, out.WindGustAlert, out.WindGustMeasures = &a.Value, &a.Level, a.Actions
	}
	if a := h.Precipitation; a != nil {
		out.Precipitation, out.PrecipitationAlert, out.PrecipitationMeasures = &a.Value, &a.Level, a.Actions
	}
	if a := h.Snow; a != nil {
		out.Snow, out.SnowAlert, out.SnowMeasures = &a.Value, &a.Level, a.Actions
	}
	if t := h.Temperature; t != nil {
		out.Temperature = &t.Value
		out.HighTemperatureAlert, out.LowTemperatureAlert = &t.High, &t.Low
		out.HighTemperatureMeasures, out.LowTemperatureMeasures = t.HighActions, t.LowActions
	}
	out.PrecipitationProbability = h.PrecipitationProbability
	out.StormProbability = h.StormProbability
	out.SnowProbability = h.SnowProbability
	out.ApparentTemperature = h.ApparentTemperature
	out.RelativeHumidity = h.RelativeHumidity
	return json.Marshal(out)
}

// EventReport is the transient weather-risk view of one event. Hours are in
// ascending order.
type EventReport struct {
	EventID      int
	Participants []string
	Hours        []HourReport
}

// participantsKey is the top-level key holding participant names.
const participantsKey = "participants"

// MarshalJSON writes the participants followed by one object per hour keyed
// by its timestamp, preserving hour order.
func (r EventReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	participants := r.Participants
	if participants == nil {
		participants = []string{}
	}
	if err := writeMember(&buf, participantsKey, participants); err != nil {
		return nil, err
	}
	for _, h := range r.Hours {
		buf.WriteByte(',')
		if err := writeMember(&buf, h.Timestamp, h); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
