package domain

import "fmt"

// AlertType is the symbolic code of the rule that produced an alert.
type AlertType string

const (
	AlertHeatwaveCritical   AlertType = "HEATWAVE_CRITICAL"
	AlertDryHeatRisk        AlertType = "DRY_HEAT_RISK"
	AlertSevereStorm        AlertType = "SEVERE_STORM_EVENT"
	AlertStrongWind         AlertType = "STRONG_WIND_ADVISORY"
	AlertPersistentHeatwave AlertType = "PERSISTENT_HEATWAVE"
	AlertLongDurationStorm  AlertType = "LONG_DURATION_STORM"
)

// AlertLevel is the severity of an alert. The zero value is not a valid level.
type AlertLevel int

// Levels are declared in ascending severity so they compare with < and >.
const (
	LevelLow AlertLevel = iota + 1
	LevelModerate
	LevelHigh
	LevelExtreme
	LevelCritical
)

var levelNames = map[AlertLevel]string{
	LevelLow:      "LOW",
	LevelModerate: "MODERATE",
	LevelHigh:     "HIGH",
	LevelExtreme:  "EXTREME",
	LevelCritical: "CRITICAL",
}

func (l AlertLevel) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("AlertLevel(%d)", int(l))
}

// Valid reports whether l is one of the declared levels.
func (l AlertLevel) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ParseAlertLevel converts a level name such as "EXTREME" to an AlertLevel.
func ParseAlertLevel(s string) (AlertLevel, error) {
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown alert level %q", s)
}

// MarshalText encodes the level by name so JSON carries "CRITICAL", not 5.
func (l AlertLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("marshal alert level: invalid value %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *AlertLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseAlertLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
