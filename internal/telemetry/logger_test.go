package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}

	for in, expected := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, expected, ParseLevel(in))
		})
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depcheck.log")

	logger, closer, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Debug().Str("requirement", "Goals").Msg("Current version is unknown")
	logger.Trace().Msg("filtered out")
	require.NoError(t, closer.Close())
	assert.ErrorIs(t, closer.Close(), os.ErrClosed)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"requirement":"Goals"`)
	assert.Contains(t, string(content), `"level":"debug"`)
	assert.NotContains(t, string(content), "filtered out")
}

func TestNewLogger_Defaults(t *testing.T) {
	logger, closer, err := NewLogger(DefaultLoggingConfig())
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	// stderr stays usable after the logger is released
	require.NoError(t, closer.Close())
	require.NoError(t, closer.Close())
	_, err = os.Stderr.Write(nil)
	assert.NoError(t, err)
}

func TestNewLogger_BadOutput(t *testing.T) {
	_, closer, err := NewLogger(LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "depcheck.log")})
	assert.Error(t, err)
	assert.NoError(t, closer.Close())
}
