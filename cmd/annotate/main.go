// Command annotate runs the alert rules over a forecast document and writes
// the annotated result as the API's JSON envelope or as a CSV table.
//
// Usage:
//
//	go run ./cmd/annotate \
//	  -in data/simulated_output/forecast_data.json \
//	  -format csv \
//	  -out alerts.csv
//
// Reading from stdin and writing to stdout is the default. A summary of the
// alerts raised is printed to stderr.
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/couchcryptid/forecast-alert-service/internal/domain"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

var csvHeader = []string{"Date", "Max Temp (C)", "Humidity (%)", "Wind (km/h)", "Alert Type", "Alert Level"}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "forecast JSON file (default stdin)")
	out := fs.String("out", "", "output file (default stdout)")
	format := fs.String("format", formatJSON, "output format: json or csv")
	sourceTag := fs.String("source", "LSTM_Model_v1", "source tag reported in the JSON envelope")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *format != formatJSON && *format != formatCSV {
		fmt.Fprintf(stderr, "unknown format %q (want json or csv)\n", *format)
		return 2
	}

	data, err := readInput(*in, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	records, err := domain.AnnotateDocument(data)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			fmt.Fprintf(stderr, "invalid forecast: %v\n", vErr)
		} else {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
		}
		return 1
	}

	err = writeOutput(*out, stdout, func(w io.Writer) error {
		if *format == formatCSV {
			return writeCSV(w, records)
		}
		return writeJSON(w, domain.NewReport(*sourceTag, records))
	})
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: write output: %v\n", err)
		return 1
	}

	printSummary(stderr, domain.Summarize(records))
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forecast: %w", err)
	}
	return data, nil
}

// writeOutput runs write against stdout, or against the file at path when one
// is given. The file is closed before returning so a failed flush is reported.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, report domain.ForecastReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeCSV(w io.Writer, records []domain.EnrichedDayRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		alertType, alertLevel := "None", "None"
		if r.Alert != nil {
			alertType = string(r.Alert.Type)
			alertLevel = r.Alert.Level.String()
		}
		row := []string{
			r.Date,
			formatFloat(r.TMax),
			formatFloat(r.RHum),
			formatFloat(r.WSpd),
			alertType,
			alertLevel,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printSummary(w io.Writer, s domain.Summary) {
	if s.Alerts == 0 {
		fmt.Fprintf(w, "%d days, no alerts\n", s.Days)
		return
	}
	fmt.Fprintf(w, "%d days, %d alerts, max level %s\n", s.Days, s.Alerts, s.MaxLevel)

	types := make([]domain.AlertType, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-22s %d\n", t, s.ByType[t])
	}
}
