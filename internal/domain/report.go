package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// StatusSuccess is the status tag of a report built from a successful run.
const StatusSuccess = "success"

// ForecastReport is the envelope returned to consumers of annotated forecasts.
type ForecastReport struct {
	Status string              `json:"status"`
	Source string              `json:"source"`
	Data   []EnrichedDayRecord `json:"data"`
}

// NewReport wraps annotated days in a success envelope tagged with the
// provenance of the forecast.
func NewReport(source string, data []EnrichedDayRecord) ForecastReport {
	if data == nil {
		data = []EnrichedDayRecord{}
	}
	return ForecastReport{Status: StatusSuccess, Source: source, Data: data}
}

// Summary counts the alerts in an annotated forecast.
type Summary struct {
	Days     int
	Alerts   int
	MaxLevel AlertLevel // zero when Alerts == 0
	ByType   map[AlertType]int
}

// Summarize tallies alerts and finds the most severe level present.
func Summarize(records []EnrichedDayRecord) Summary {
	s := Summary{Days: len(records), ByType: make(map[AlertType]int)}
	for _, r := range records {
		if r.Alert == nil {
			continue
		}
		s.Alerts++
		s.ByType[r.Alert.Type]++
		if r.Alert.Level > s.MaxLevel {
			s.MaxLevel = r.Alert.Level
		}
	}
	return s
}

// SerializeReport marshals a report into an OutputEvent keyed by the
// forecast run it was built from.
func SerializeReport(key []byte, report ForecastReport) (OutputEvent, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize forecast report: %w", err)
	}

	summary := Summarize(report.Data)
	maxLevel := "NONE"
	if summary.MaxLevel.Valid() {
		maxLevel = summary.MaxLevel.String()
	}

	return OutputEvent{
		Key:   key,
		Value: data,
		Headers: map[string]string{
			"source":       report.Source,
			"alert_count":  strconv.Itoa(summary.Alerts),
			"max_level":    maxLevel,
			"annotated_at": clock.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
