package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports a forecast record that violates the input contract.
// Index is the zero-based position of the record in the document; Field is
// the JSON key at fault, or empty when the record as a whole is malformed.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("forecast record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("forecast record %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// rawDay mirrors DayRecord with pointer fields so that a missing or null
// measurement is distinguishable from a legitimate zero.
type rawDay struct {
	Date string   `json:"date" validate:"required"`
	TMax *float64 `json:"tmax" validate:"required"`
	RHum *float64 `json:"rhum" validate:"required"`
	WSpd *float64 `json:"wspd" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON keys rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseForecast decodes a JSON array of day objects into DayRecords. Each
// record must carry a non-empty date and numeric tmax, rhum and wspd; values
// are never coerced. Unknown keys are ignored. Keys match case-insensitively
// as encoding/json does, so "TMax" is read as tmax. The first offending
// record is reported as a *ValidationError.
func ParseForecast(data []byte) ([]DayRecord, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("parse forecast: %w", err)
	}
	// A top-level null decodes without error but leaves the slice nil.
	if elems == nil {
		return nil, errors.New("parse forecast: expected a JSON array, got null")
	}

	days := make([]DayRecord, 0, len(elems))
	for i, elem := range elems {
		day, err := parseDay(i, elem)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func parseDay(index int, elem json.RawMessage) (DayRecord, error) {
	var raw rawDay
	if err := json.Unmarshal(elem, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return DayRecord{}, &ValidationError{Index: index, Reason: "expected a JSON object, got " + typeErr.Value}
			}
			return DayRecord{}, &ValidationError{
				Index:  index,
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return DayRecord{}, &ValidationError{Index: index, Reason: err.Error()}
	}

	// A JSON null element decodes into an all-zero rawDay and is caught here.
	if err := validate.Struct(raw); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return DayRecord{}, &ValidationError{
				Index:  index,
				Field:  fieldErrs[0].Field(),
				Reason: "missing required value",
			}
		}
		return DayRecord{}, fmt.Errorf("validate forecast record %d: %w", index, err)
	}

	return DayRecord{
		Date: raw.Date,
		TMax: *raw.TMax,
		RHum: *raw.RHum,
		WSpd: *raw.WSpd,
	}, nil
}
