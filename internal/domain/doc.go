// Package domain models scheduled outdoor events, AEMET hourly forecasts and
// the weather-risk alerts derived from them.
//
// # Data Source
//
// Forecasts come from the AEMET OpenData "predicción horaria por municipio"
// product. Each forecast day carries one series per metric; every entry is
// tagged with a period marker that is either a two-digit hour ("00".."23")
// or a quarter-period code covering six hours.
//
// # Period Markers
//
// Hourly series (precipitation, snow, temperature, apparent temperature,
// relative humidity, sky state) are keyed by hour. Probability series
// (precipitation, storm, snow) are keyed by quarter:
//
//	"0107" night    requested hours 22..23 and 00..03
//	"0713" morning  requested hours 04..09
//	"1319" midday   requested hours 10..15
//	"1901" evening  requested hours 16..21
//
// The requested-hour ranges deliberately lead the nominal code windows so an
// event is assessed against the quarter it is heading into. See [QuarterFor].
//
// # Risk Levels
//
// Each alerted metric maps to an integer level 1 (lowest) to 5 (highest) by
// walking a fixed ascending ladder:
//
//	Wind average (km/h):  <=10 | <=14 | <=18 | <=22 | >22
//	Wind gust (km/h):     <=18 | <=21 | <=27 | <=33 | >33
//	Rain (mm/h):          ==0  | <0.5 | <1   | <5   | >=5
//	Snow (cm/h):          ==0  | <0.5 | <1   | <5   | >=5
//	High temp (°C):       <=25 | <=28 | <=30 | <=35 | >35   (only above 5)
//	Low temp (°C):        >5   | >=2  | >=0  | >=-5 | <-5
//
// High temperature at or below 5°C is [RiskNotApplicable]. Probabilities and
// humidity are reported, never alerted on.
//
// # Mitigations
//
// Each event carries a catalog of [Measure] values: a [Condition], the level
// it triggers at and a free-text action. For every alerted metric the actions
// whose condition and level both match exactly are attached to the hour.
package domain
