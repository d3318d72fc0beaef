package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesToFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(path, "info"))
	Log.Debugw("hidden")
	Log.Infow("level started", "level", 3)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level started")
	assert.Contains(t, string(data), "INFO")
	assert.NotContains(t, string(data), "hidden")
}

func TestInitRejectsBadLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })
	assert.Error(t, Init(filepath.Join(t.TempDir(), "x.log"), "loud"))
}

func TestDefaultIsNop(t *testing.T) {
	assert.NotPanics(t, func() { zap.NewNop().Sugar().Info("x"); Named("arena").Debug("ok") })
}
