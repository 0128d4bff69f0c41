package explore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 3, cfg.MaxConsecutiveErrors)
	assert.Equal(t, 30*time.Second, cfg.ToolTimeout)
	assert.Equal(t, 2, cfg.MaxToolRetries)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.TracingEnabled)
	require.NoError(t, cfg.validate())
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codefusion.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"max_iterations: 25\ntool_timeout: 5s\ncache_size: 7\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxIterations)
	assert.Equal(t, 5*time.Second, cfg.ToolTimeout)
	assert.Equal(t, 7, cfg.CacheSize)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.MaxConsecutiveErrors)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codefusion.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_iterations: 25\n"), 0o644))
	t.Setenv("CODEFUSION_MAX_ITERATIONS", "4")
	t.Setenv("CODEFUSION_TOTAL_TIMEOUT", "90s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxIterations)
	assert.Equal(t, 90*time.Second, cfg.TotalTimeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codefusion.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_iterations: -1\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "max_iterations")
}

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
