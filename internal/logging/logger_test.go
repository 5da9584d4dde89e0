package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToInfo(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	defer logger.Sync()
	assert.False(t, logger.Core().Enabled(-1), "debug should be disabled by default") // -1 is zap's debug level
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}

func TestNewWritesToFileWhenDirSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := New(Options{Level: "debug", Dir: dir})
	require.NoError(t, err)

	logger.Info("hello from the test")
	logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "docmanager.log"))
	require.NoError(t, err, "log directory should be created with the file inside")
	assert.Contains(t, string(data), "hello from the test")
}

func TestNopDiscardsEverything(t *testing.T) {
	logger := Nop()
	logger.Error("goes nowhere")
	assert.NoError(t, logger.Sync())
}
