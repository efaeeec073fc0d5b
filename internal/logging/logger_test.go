package logging

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Logger setup, levels, component loggers
// =============================================================================

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	return out
}

func TestInitWritesJSONFile(t *testing.T) {
	Shutdown()
	dir := t.TempDir()
	Init(Config{LogDir: dir, Level: "info"})
	defer Shutdown()

	Logger().Info("epoch built", "generation", 3)
	Logger().Debug("hidden")

	recs := readRecords(t, filepath.Join(dir, LogFile))
	require.Len(t, recs, 1)
	assert.Equal(t, "epoch built", recs[0]["msg"])
	assert.Equal(t, float64(3), recs[0]["generation"])
}

func TestInitWithoutDirDiscards(t *testing.T) {
	Shutdown()
	Init(Config{})
	defer Shutdown()

	require.NotNil(t, Logger())
	Logger().Info("nowhere")
}

func TestForComponentBeforeInit(t *testing.T) {
	Shutdown()
	log := ForComponent(CompIndex)

	dir := t.TempDir()
	Init(Config{LogDir: dir, Level: "debug"})
	defer Shutdown()

	log.Debug("rebuild", "items", 4)

	recs := readRecords(t, filepath.Join(dir, LogFile))
	require.Len(t, recs, 1)
	assert.Equal(t, CompIndex, recs[0]["component"])
	assert.Equal(t, float64(4), recs[0]["items"])
}

func TestForComponentWithAttrs(t *testing.T) {
	Shutdown()
	dir := t.TempDir()
	Init(Config{LogDir: dir})
	defer Shutdown()

	ForComponent(CompSocket).With("conn", "c1").Info("accepted")

	recs := readRecords(t, filepath.Join(dir, LogFile))
	require.Len(t, recs, 1)
	assert.Equal(t, CompSocket, recs[0]["component"])
	assert.Equal(t, "c1", recs[0]["conn"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestDebugFromEnv(t *testing.T) {
	t.Setenv("SEEK_DEBUG", "1")
	assert.True(t, DebugFromEnv())
	t.Setenv("SEEK_DEBUG", "")
	assert.False(t, DebugFromEnv())
}
