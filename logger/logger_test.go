package logger

import (
	"os"
	"path/filepath"
	"testing"

	"cryptopusher/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestNewWritesFile
func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pusher.log")

	log, err := New(config.LogConfig{Level: "debug", Format: "json", OutputFile: path, Environment: "prod"})
	require.NoError(t, err)

	log.Info("price updated")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"price updated"`)
	assert.Contains(t, string(raw), `"service":"cryptopusher"`)
}

// go test -v --run TestNewInvalidLevel
func TestNewInvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
