package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifeclock/internal/config"
	"github.com/tartampluch/go-lifeclock/internal/engine"
)

var printNow = engine.FixedClock(time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC))

func decodePrint(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))
	return path
}

func TestRunPrint_Flags(t *testing.T) {
	var buf bytes.Buffer
	err := runPrint(&buf, printOptions{Birthday: "1990-06-15"}, printNow)
	require.NoError(t, err)

	out := decodePrint(t, &buf)
	assert.Equal(t, "1990-06-15", out["birthday"])
	assert.EqualValues(t, config.DefaultLifetime, out["lifetime"])
	assert.EqualValues(t, 33, out["age_years"])
	assert.EqualValues(t, 407, out["elapsed_months"])
	assert.EqualValues(t, 12418, out["elapsed_days"])
	assert.EqualValues(t, 16801, out["remaining_days_total"])

	next, ok := out["until_next_birthday"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 12, next["hours"])
}

func TestRunPrint_TOMLFile(t *testing.T) {
	path := writeFile(t, "settings.toml", "birthday = \"2000-02-29\"\nlifetime = 50\nopacity = 70\n")

	var buf bytes.Buffer
	require.NoError(t, runPrint(&buf, printOptions{ConfigPath: path}, printNow))

	out := decodePrint(t, &buf)
	assert.Equal(t, "2000-02-29", out["birthday"])
	assert.EqualValues(t, 50, out["lifetime"])
	assert.Equal(t, "2050-02-28T00:00:00Z", out["end_of_life"])
}

func TestRunPrint_LegacyJSONWithOverrides(t *testing.T) {
	path := writeFile(t, "config.json", `{"birthday":"1980-01-01","lifetime":80,"opacity":85,"window_pos":{"x":10,"y":20}}`)

	var buf bytes.Buffer
	require.NoError(t, runPrint(&buf, printOptions{ConfigPath: path, Birthday: "1990-06-15", Lifetime: 90}, printNow))

	out := decodePrint(t, &buf)
	assert.Equal(t, "1990-06-15", out["birthday"], "Flag wins over the file")
	assert.EqualValues(t, 90, out["lifetime"])
}

func TestRunPrint_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts printOptions
		want error
	}{
		{"No birthday", printOptions{}, engine.ErrBirthdayMissing},
		{"Bad birthday", printOptions{Birthday: "06/15/1990"}, engine.ErrInvalidBirthday},
		{"Lifetime out of range", printOptions{Birthday: "1990-06-15", Lifetime: 200}, nil},
		{"Missing file", printOptions{ConfigPath: filepath.Join(t.TempDir(), "none.toml")}, nil},
		{"Unknown extension", printOptions{ConfigPath: "settings.yaml"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runPrint(&buf, tt.opts, printNow)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Zero(t, buf.Len(), "Nothing is printed on error")
		})
	}
}
