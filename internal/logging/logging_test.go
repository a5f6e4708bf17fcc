package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONLines(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Init(root))
	t.Cleanup(func() { Close() })

	Info("flag added", "id", "abc", "score", 80)
	Debug("detail")
	require.NoError(t, Close())

	data, err := os.ReadFile(filepath.Join(root, ConfigDir, LogFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "flag added", entry["msg"])
	require.Equal(t, "abc", entry["id"])
	require.Equal(t, float64(80), entry["score"])
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(LevelEnv, "warn")
	require.Equal(t, slog.LevelWarn, levelFromEnv())

	t.Setenv(LevelEnv, "loud")
	require.Equal(t, slog.LevelDebug, levelFromEnv())

	t.Setenv(LevelEnv, "")
	require.Equal(t, slog.LevelDebug, levelFromEnv())
}

func TestLoggerBeforeInitDiscards(t *testing.T) {
	require.NoError(t, Close())
	require.NotPanics(t, func() {
		Warn("nobody hears this")
		Logger().Info("still fine", "k", "v")
	})
}
