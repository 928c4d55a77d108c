package domain

import (
	"context"
	"time"
)

// DayRecord is one day of model output.
type DayRecord struct {
	Date string  `json:"date"`
	TMax float64 `json:"tmax"` // °C
	RHum float64 `json:"rhum"` // percent
	WSpd float64 `json:"wspd"` // km/h
}

// Alert is the result of a rule firing for a day or a window of days.
type Alert struct {
	Type    AlertType  `json:"type"`
	Level   AlertLevel `json:"level"`
	Message string     `json:"message"`
	Date    string     `json:"date"`
}

// EnrichedDayRecord is a DayRecord with its resolved alert attached.
// Alert is nil when no rule fired; it serializes as "alert": null.
type EnrichedDayRecord struct {
	DayRecord
	Alert *Alert `json:"alert"`
}

// RawEvent represents an unprocessed message from the source topic.
// Value holds one complete forecast run.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
