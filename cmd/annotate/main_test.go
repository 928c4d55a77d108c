package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testForecast = `[
	{"date":"2026-07-10","tmax":35,"rhum":45,"wspd":12},
	{"date":"2026-07-11","tmax":39.5,"rhum":12,"wspd":18},
	{"date":"2026-07-12","tmax":30,"rhum":55,"wspd":90.2}
]`

func runCmd(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_JSONFromStdin(t *testing.T) {
	code, out, errOut := runCmd(t, testForecast)
	require.Equal(t, 0, code, errOut)

	var report struct {
		Status string `json:"status"`
		Source string `json:"source"`
		Data   []struct {
			Date  string `json:"date"`
			Alert *struct {
				Type  string `json:"type"`
				Level string `json:"level"`
			} `json:"alert"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "success", report.Status)
	assert.Equal(t, "LSTM_Model_v1", report.Source)
	require.Len(t, report.Data, 3)
	assert.Nil(t, report.Data[0].Alert)
	require.NotNil(t, report.Data[1].Alert)
	assert.Equal(t, "DRY_HEAT_RISK", report.Data[1].Alert.Type)
	require.NotNil(t, report.Data[2].Alert)
	assert.Equal(t, "SEVERE_STORM_EVENT", report.Data[2].Alert.Type)

	assert.Contains(t, errOut, "3 days, 2 alerts, max level CRITICAL")
}

func TestRun_CSVToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "forecast.json")
	out := filepath.Join(dir, "alerts.csv")
	require.NoError(t, os.WriteFile(in, []byte(testForecast), 0o600))

	code, stdout, errOut := runCmd(t, "", "-in", in, "-out", out, "-format", "csv")
	require.Equal(t, 0, code, errOut)
	assert.Empty(t, stdout)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	want := "Date,Max Temp (C),Humidity (%),Wind (km/h),Alert Type,Alert Level\n" +
		"2026-07-10,35,45,12,None,None\n" +
		"2026-07-11,39.5,12,18,DRY_HEAT_RISK,HIGH\n" +
		"2026-07-12,30,55,90.2,SEVERE_STORM_EVENT,CRITICAL\n"
	assert.Equal(t, want, string(got))
}

func TestRun_SourceTag(t *testing.T) {
	code, out, _ := runCmd(t, `[]`, "-source", "ECMWF_ens")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"status":"success","source":"ECMWF_ens","data":[]}`, out)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "malformed json", stdin: `[{`, wantCode: 1, wantErr: "FATAL"},
		{name: "missing field", stdin: `[{"date":"2026-07-10","tmax":35,"rhum":45}]`, wantCode: 1, wantErr: `invalid forecast: forecast record 0: field "wspd"`},
		{name: "missing input file", args: []string{"-in", "/nonexistent/forecast.json"}, wantCode: 1, wantErr: "read forecast"},
		{name: "unknown format", stdin: `[]`, args: []string{"-format", "xml"}, wantCode: 2, wantErr: "unknown format"},
		{name: "unknown flag", args: []string{"-bogus"}, wantCode: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCmd(t, tt.stdin, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tt.wantErr)
		})
	}
}

func TestRun_OutputWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}

	for _, format := range []string{"json", "csv"} {
		t.Run(format, func(t *testing.T) {
			code, out, errOut := runCmd(t, testForecast, "-out", "/dev/full", "-format", format)
			assert.Equal(t, 1, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, "FATAL: write output")
			assert.NotContains(t, errOut, "days,", "summary must not follow a failed write")
		})
	}
}

func TestRun_OutputDirectoryMissing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "alerts.csv")

	code, _, errOut := runCmd(t, testForecast, "-out", out, "-format", "csv")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "create output")
}
