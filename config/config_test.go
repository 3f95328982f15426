package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg := LoadFromEnv()

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 0.7, cfg.SpikeThreshold)
	assert.Equal(t, 0.99, cfg.DecayRate)
	assert.Equal(t, 10, cfg.MaxCascadeDepth)
	assert.Equal(t, PersistenceMemory, cfg.PersistenceMode)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvOverride(t *testing.T) {
	t.Setenv("NEUROGRAPHITE_SPIKE_THRESHOLD", "0.5")
	t.Setenv("NEUROGRAPHITE_PERSISTENCE_MODE", "file")

	cfg := LoadFromEnv()
	assert.Equal(t, 0.5, cfg.SpikeThreshold)
	assert.Equal(t, PersistenceFile, cfg.PersistenceMode)
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	cfg := LoadFromEnv()
	cfg.SpikeThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = LoadFromEnv()
	cfg.MaxCascadeDepth = 0
	assert.Error(t, cfg.Validate())

	cfg = LoadFromEnv()
	cfg.PersistenceMode = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestLoadOverrideFileMissingIsNotError(t *testing.T) {
	cfg := LoadFromEnv()
	err := cfg.LoadOverrideFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
}

func TestLoadOverrideFileMergesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decay_rate: 0.8\n"), 0o644))

	cfg := LoadFromEnv()
	require.NoError(t, cfg.LoadOverrideFile(path))
	assert.Equal(t, 0.8, cfg.DecayRate)
}
