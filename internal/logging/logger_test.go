package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/coinfeed/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "coinfeed.log")

	logger, err := New(config.LogConfig{Path: path, Level: "info"}, false)
	require.NoError(t, err)
	logger.Info("hello")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
	require.NotContains(t, string(data), "hidden")
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coinfeed.log")

	logger, err := New(config.LogConfig{Path: path, Level: "warn"}, true)
	require.NoError(t, err)
	logger.Debug("visible")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "visible")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Path: filepath.Join(t.TempDir(), "x.log"), Level: "loud"}, false)
	require.Error(t, err)
}

func TestNewWithoutPathIsNop(t *testing.T) {
	logger, err := New(config.LogConfig{}, true)
	require.NoError(t, err)
	require.NotNil(t, logger)
}
