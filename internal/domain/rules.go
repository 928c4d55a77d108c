package domain

import "fmt"

// Rule thresholds. These are fixed; callers cannot override them per run.
const (
	TempCritical   = 42.0 // °C
	TempHigh       = 38.0 // °C
	HumidityDanger = 20.0 // %
	WindStorm      = 85.0 // km/h
	// WindGale is near the lower edge of Beaufort force 8 (gale, 62-74 km/h).
	WindGale = 65.0 // km/h

	PersistentHeatTemp  = 40.0 // °C, strictly exceeded on every day of the window
	PersistentStormWind = 50.0 // km/h, strictly exceeded on every day of the window

	// PersistenceWindowSize is the number of consecutive days a persistence
	// rule looks at. Shorter windows never produce persistence alerts.
	PersistenceWindowSize = 3
)

// EvaluateDaily classifies a single day against the instantaneous
// thresholds. It returns nil when no rule fires. The checks run in a fixed
// priority order and the first match wins; heat is checked before wind.
func EvaluateDaily(day DayRecord) *Alert {
	switch {
	case day.TMax >= TempCritical:
		return &Alert{
			Type:    AlertHeatwaveCritical,
			Level:   LevelCritical,
			Message: fmt.Sprintf("Critical temperature detected: %v°C exceeds safety limit.", day.TMax),
			Date:    day.Date,
		}
	case day.TMax >= TempHigh && day.RHum < HumidityDanger:
		return &Alert{
			Type:    AlertDryHeatRisk,
			Level:   LevelHigh,
			Message: fmt.Sprintf("Dangerous dry heat: %v°C with only %v%% humidity.", day.TMax, day.RHum),
			Date:    day.Date,
		}
	case day.WSpd >= WindStorm:
		return &Alert{
			Type:    AlertSevereStorm,
			Level:   LevelCritical,
			Message: fmt.Sprintf("Severe storm conditions: wind speed %v km/h exceeds storm limit.", day.WSpd),
			Date:    day.Date,
		}
	case day.WSpd >= WindGale:
		return &Alert{
			Type:    AlertStrongWind,
			Level:   LevelHigh,
			Message: fmt.Sprintf("Strong wind advisory: wind speed %v km/h at gale force.", day.WSpd),
			Date:    day.Date,
		}
	default:
		return nil
	}
}

// EvaluatePersistent checks the trailing window for multi-day patterns.
// It returns nil unless the window holds at least PersistenceWindowSize
// days; only the most recent PersistenceWindowSize days are considered.
// Heat persistence is checked before storm persistence.
func EvaluatePersistent(window []DayRecord) *Alert {
	if len(window) < PersistenceWindowSize {
		return nil
	}
	recent := window[len(window)-PersistenceWindowSize:]
	last := recent[len(recent)-1]

	if allDays(recent, func(d DayRecord) bool { return d.TMax > PersistentHeatTemp }) {
		return &Alert{
			Type:  AlertPersistentHeatwave,
			Level: LevelExtreme,
			Message: fmt.Sprintf("Extreme Heatwave: Temperature > %v°C for %d consecutive days.",
				PersistentHeatTemp, PersistenceWindowSize),
			Date: last.Date,
		}
	}

	if allDays(recent, func(d DayRecord) bool { return d.WSpd > PersistentStormWind }) {
		return &Alert{
			Type:  AlertLongDurationStorm,
			Level: LevelHigh,
			Message: fmt.Sprintf("Long-duration storm: wind speed > %v km/h for %d consecutive days.",
				PersistentStormWind, PersistenceWindowSize),
			Date: last.Date,
		}
	}

	return nil
}

func allDays(days []DayRecord, pred func(DayRecord) bool) bool {
	for _, d := range days {
		if !pred(d) {
			return false
		}
	}
	return true
}
