package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewSplitsLevels(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "debug", Dir: dir})
	require.NoError(t, err)

	logger.WithField("kind", "InsertOperation").Debug("applied operation")
	logger.Info("integrated remote batch")
	logger.Trace("dropped by level")
	logger.WithField("version", 3).Warn("rejected operation")
	require.NoError(t, logger.Close())

	warnings := readEntries(t, filepath.Join(dir, logFileName))
	require.Len(t, warnings, 1)
	require.Equal(t, "rejected operation", warnings[0]["msg"])
	require.Equal(t, "warning", warnings[0]["level"])
	require.EqualValues(t, 3, warnings[0]["version"])

	debug := readEntries(t, filepath.Join(dir, debugLogFileName))
	require.Len(t, debug, 2)
	require.Equal(t, "applied operation", debug[0]["msg"])
	require.Equal(t, "InsertOperation", debug[0]["kind"])
	require.Equal(t, "integrated remote batch", debug[1]["msg"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", Dir: t.TempDir()})
	require.ErrorContains(t, err, "log level")
}

func TestNewCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	logger, err := New(Config{Dir: dir})
	require.NoError(t, err)
	defer logger.Close()

	_, err = os.Stat(filepath.Join(dir, logFileName))
	require.NoError(t, err)
}
