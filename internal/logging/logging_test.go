package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "awx-monitor.log")

	closer, err := Setup(path, "debug")
	require.NoError(t, err)
	t.Cleanup(func() {
		closer.Close()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	log.Debug().Str("k", "v").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestSetupLevelFallback(t *testing.T) {
	closer, err := Setup("", "loud")
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
