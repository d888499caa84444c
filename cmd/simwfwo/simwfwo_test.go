package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wfwo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeframe: 250\nmax_alexa: 2\nfpr: 0.1\n"), 0600))

	require.NoError(t, flag.Set("config", path))
	require.NoError(t, flag.Set("t", "500"))
	require.NoError(t, flag.Set("z", "false"))
	t.Cleanup(func() {
		flag.Set("config", "")
	})

	cfg, err := config()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Timeframe, "flag wins over file")
	assert.Equal(t, 2, cfg.MaxAlexa, "file wins over default")
	assert.Equal(t, 0.1, cfg.FPR)
	assert.False(t, cfg.Lazy)
	assert.Equal(t, 1.0, cfg.Probability)
}
