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
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := New(tt.level, FormatJSON, &bytes.Buffer{})
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", FormatJSON, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("file", "cr1-01.html").Msg("Processing")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Processing", entry["message"])
	assert.Equal(t, "cr1-01.html", entry["file"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", FormatConsole, &buf)

	log.Info().Int("count", 3).Msg("Found new transcripts")

	assert.Contains(t, buf.String(), "Found new transcripts")
	assert.Contains(t, buf.String(), "count=3")
}
