package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		l := New(&bytes.Buffer{}, in, FormatJSON)
		assert.Equal(t, want, l.GetLevel(), "level %q", in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", FormatJSON)
	l.Debug().Msg("hidden")
	l.Info().Int("batch", 2).Msg("processed batch")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "processed batch", entry["message"])
	assert.EqualValues(t, 2, entry["batch"])
	assert.Contains(t, entry, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", FormatConsole)
	l.Warn().Msg("Skipping row 4 - missing name or category")
	assert.Contains(t, buf.String(), "Skipping row 4 - missing name or category")
	assert.Contains(t, buf.String(), "WRN")
}
