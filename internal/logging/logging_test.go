package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), tt.input)
	}
}

func TestLogPath_UnderStateDir(t *testing.T) {
	path := LogPath("/projects/novel")
	assert.Equal(t, filepath.Join("/projects/novel", StateDirName, "logs", "loreindex.log"), path)
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	// Given: a logger writing to a temp project dir, no stderr mirror
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.WriteToStderr = false

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)

	// When: a structured record is logged
	logger.Info("indexed", slog.String("path", "notes/ideas.md"))
	cleanup()

	// Then: the log file contains the JSON record
	data, err := os.ReadFile(LogPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"indexed"`)
	assert.Contains(t, string(data), `"path":"notes/ideas.md"`)
}

func TestRotatingWriter_RotatesAtSizeLimit(t *testing.T) {
	// Given: a writer with a 1MB limit
	dir := t.TempDir()
	path := filepath.Join(dir, "loreindex.log")
	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	// When: more than 1MB is written
	line := strings.Repeat("x", 1024)
	for i := 0; i < 1100; i++ {
		_, err := w.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}

	// Then: a rotated file exists alongside the current one
	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "expected rotated log file")
}
