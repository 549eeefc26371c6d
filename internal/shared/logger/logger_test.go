package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOptions_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.log")

	log, err := NewWithOptions("market-service", "prod", Options{File: path})
	require.NoError(t, err)
	log.Info("market opened")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"market opened"`)
	assert.Contains(t, string(b), `"service":"market-service"`)
}

func TestNew_Local(t *testing.T) {
	log, err := New("wallet-service", "local")
	require.NoError(t, err)
	assert.NotNil(t, log)
}
