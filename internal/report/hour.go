package report

import "github.com/couchcryptid/event-weather-risk-service/internal/domain"

// assembleHour builds the hour record for one period of day. Sections are
// only set when the forecast has a value for the hour or quarter.
func assembleHour(day domain.ForecastDay, date string, p domain.Period, measures []domain.Measure) domain.HourReport {
	h := domain.HourReport{Timestamp: date + "T" + p.Hour}

	if sky, ok := day.SkyFor(p.Hour); ok {
		h.Sky = &sky
	}

	if wind, ok := day.WindFor(p.Hour, p.Quarter); ok {
		if speed, ok := wind.AverageSpeed(); ok {
			h.WindAverage = classify(speed, domain.ClassifyWindAverage, measures, domain.ConditionWind)
		}
		if wind.Gust != nil {
			h.WindGust = classify(*wind.Gust, domain.ClassifyWindGust, measures, domain.ConditionWindGust)
		}
	}

	h.PrecipitationProbability = lookup(day, domain.SeriesPrecipitationProbability, string(p.Quarter))
	if v, ok := day.ValueFor(domain.SeriesPrecipitation, p.Hour); ok {
		h.Precipitation = classify(v, domain.ClassifyRain, measures, domain.ConditionPrecipitation)
	}

	h.StormProbability = lookup(day, domain.SeriesStormProbability, string(p.Quarter))

	if v, ok := day.ValueFor(domain.SeriesSnow, p.Hour); ok {
		h.Snow = classify(v, domain.ClassifySnow, measures, domain.ConditionSnow)
	}
	h.SnowProbability = lookup(day, domain.SeriesSnowProbability, string(p.Quarter))

	if v, ok := day.ValueFor(domain.SeriesTemperature, p.Hour); ok {
		t := &domain.TemperatureAlert{
			Value: v,
			High:  domain.ClassifyHighTemperature(v),
			Low:   domain.ClassifyLowTemperature(v),
		}
		t.HighActions, _ = domain.ResolveMitigations(measures, domain.ConditionHighTemperature, t.High)
		t.LowActions, _ = domain.ResolveMitigations(measures, domain.ConditionLowTemperature, t.Low)
		h.Temperature = t
	}

	h.ApparentTemperature = lookup(day, domain.SeriesApparentTemperature, p.Hour)
	h.RelativeHumidity = lookup(day, domain.SeriesRelativeHumidity, p.Hour)

	return h
}

func classify(v float64, ladder func(float64) domain.RiskLevel, measures []domain.Measure, c domain.Condition) *domain.Alert {
	level := ladder(v)
	actions, _ := domain.ResolveMitigations(measures, c, level)
	return &domain.Alert{Value: v, Level: level, Actions: actions}
}

func lookup(day domain.ForecastDay, s domain.Series, marker string) *float64 {
	v, ok := day.ValueFor(s, marker)
	if !ok {
		return nil
	}
	return &v
}
