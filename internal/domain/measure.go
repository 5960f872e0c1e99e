package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Condition names the alerted metric a measure reacts to. Values match the
// condition strings stored in the event catalog.
type Condition string

const (
	ConditionWind            Condition = "Vent"
	ConditionWindGust        Condition = "Vent Max"
	ConditionPrecipitation   Condition = "Precipitacio"
	ConditionSnow            Condition = "Neu"
	ConditionHighTemperature Condition = "Temperatura Alta"
	ConditionLowTemperature  Condition = "Temperatura Baixa"
)

var conditions = map[string]Condition{
	string(ConditionWind):            ConditionWind,
	string(ConditionWindGust):        ConditionWindGust,
	string(ConditionPrecipitation):   ConditionPrecipitation,
	string(ConditionSnow):            ConditionSnow,
	string(ConditionHighTemperature): ConditionHighTemperature,
	string(ConditionLowTemperature):  ConditionLowTemperature,
}

// ParseCondition maps a stored condition string to a Condition. Matching is
// exact; "vent" is not "Vent".
func ParseCondition(s string) (Condition, bool) {
	c, ok := conditions[s]
	return c, ok
}

// UnmarshalJSON rejects unknown condition strings.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseCondition(s)
	if !ok {
		return fmt.Errorf("unknown condition %q", s)
	}
	*c = parsed
	return nil
}

// Measure is one configured mitigation: when Condition reaches RiskLevel,
// take Action.
type Measure struct {
	Condition Condition `json:"condition"`
	RiskLevel RiskLevel `json:"risk_level"`
	Action    string    `json:"action"`
}

// Actions is an ordered list of recommended actions. A nil Actions is the
// "no actions" result and is omitted from reports.
type Actions []string

// MarshalJSON numbers the entries in order: {"action_1": ..., "action_2": ...}.
func (a Actions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, action := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		value, err := json.Marshal(action)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"action_` + strconv.Itoa(i+1) + `":`)
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResolveMitigations returns, in catalog order, every action whose measure
// matches both condition and level. It returns nil, false when none match
// or when level is not applicable.
func ResolveMitigations(measures []Measure, condition Condition, level RiskLevel) (Actions, bool) {
	if !level.Applicable() {
		return nil, false
	}
	var actions Actions
	for _, m := range measures {
		if m.Condition == condition && m.RiskLevel == level {
			actions = append(actions, m.Action)
		}
	}
	return actions, len(actions) > 0
}
