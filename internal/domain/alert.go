package domain

import (
	"encoding/json"
	"strconv"
)

// RiskLevel is a 1 (lowest) to 5 (highest) classification of a reading.
type RiskLevel int

// RiskNotApplicable means the metric's ladder does not apply to the reading.
const RiskNotApplicable RiskLevel = -1

// notApplicableLabel is how RiskNotApplicable is serialized.
const notApplicableLabel = "N/A"

// Applicable reports whether l is a real level.
func (l RiskLevel) Applicable() bool {
	return l >= 1 && l <= 5
}

func (l RiskLevel) String() string {
	if !l.Applicable() {
		return notApplicableLabel
	}
	return strconv.Itoa(int(l))
}

// MarshalJSON writes levels as numbers and RiskNotApplicable as "N/A".
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	if !l.Applicable() {
		return json.Marshal(notApplicableLabel)
	}
	return []byte(strconv.Itoa(int(l))), nil
}

// ladder holds the four cutoffs separating levels 1..5.
type ladder [4]float64

var (
	windAverageLadder = ladder{10, 14, 18, 22}
	windGustLadder    = ladder{18, 21, 27, 33}
	rainLadder        = ladder{0, 0.5, 1, 5}
	snowLadder        = ladder{0, 0.5, 1, 5}
	heatLadder        = ladder{25, 28, 30, 35}
	coldLadder        = ladder{5, 2, 0, -5}
)

// heatFloor is the temperature at or below which heat alerts do not apply.
const heatFloor = 5

// atMost returns the first level whose cutoff is >= v.
func (l ladder) atMost(v float64) RiskLevel {
	for i, cutoff := range l {
		if v <= cutoff {
			return RiskLevel(i + 1)
		}
	}
	return 5
}

// amount classifies accumulations: exactly the first cutoff is level 1, the
// remaining cutoffs are exclusive upper bounds.
func (l ladder) amount(v float64) RiskLevel {
	if v == l[0] {
		return 1
	}
	for i, cutoff := range l[1:] {
		if v < cutoff {
			return RiskLevel(i + 2)
		}
	}
	return 5
}

// descending walks a falling ladder: above the first cutoff is level 1, the
// remaining cutoffs are inclusive lower bounds.
func (l ladder) descending(v float64) RiskLevel {
	if v > l[0] {
		return 1
	}
	for i, cutoff := range l[1:] {
		if v >= cutoff {
			return RiskLevel(i + 2)
		}
	}
	return 5
}

// ClassifyWindAverage classifies average wind speed in km/h.
func ClassifyWindAverage(v float64) RiskLevel { return windAverageLadder.atMost(v) }

// ClassifyWindGust classifies maximum gust speed in km/h.
func ClassifyWindGust(v float64) RiskLevel { return windGustLadder.atMost(v) }

// ClassifyRain classifies hourly precipitation in mm.
func ClassifyRain(v float64) RiskLevel { return rainLadder.amount(v) }

// ClassifySnow classifies hourly snowfall in cm.
func ClassifySnow(v float64) RiskLevel { return snowLadder.amount(v) }

// ClassifyHighTemperature classifies heat risk. Readings at or below 5°C
// return RiskNotApplicable.
func ClassifyHighTemperature(v float64) RiskLevel {
	if v <= heatFloor {
		return RiskNotApplicable
	}
	return heatLadder.atMost(v)
}

// ClassifyLowTemperature classifies cold risk.
func ClassifyLowTemperature(v float64) RiskLevel { return coldLadder.descending(v) }
