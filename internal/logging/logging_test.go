package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input  string
		expect slog.Level
	}{
		{input: "", expect: slog.LevelInfo},
		{input: "debug", expect: slog.LevelDebug},
		{input: " Warn ", expect: slog.LevelWarn},
		{input: "warning", expect: slog.LevelWarn},
		{input: "ERROR", expect: slog.LevelError},
	}
	for _, testCase := range testCases {
		level, err := ParseLevel(testCase.input)
		require.NoError(t, err, testCase.input)
		assert.Equal(t, testCase.expect, level, testCase.input)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "files", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "files=2")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Debug("phase", "phase", "parse")
	record := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "phase", record["msg"])
	assert.Equal(t, "parse", record["phase"])
	assert.Contains(t, record, "timestamp")
	assert.NotContains(t, record, "time")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("info", "xml", nil)
	assert.Error(t, err)
	_, err = New("loud", FormatText, nil)
	assert.Error(t, err)
}
