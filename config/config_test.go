package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "executor.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeTemp(t, `
Chain = "a7"
Optimistic = true
EnableAnchor = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a7", cfg.Chain)
	assert.True(t, cfg.Optimistic)
	assert.False(t, cfg.EnableAnchor)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeTemp(t, `Optimistic = true`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig.Chain, cfg.Chain)
	assert.True(t, cfg.Optimistic)
	assert.Equal(t, DefaultConfig.EnableAnchor, cfg.EnableAnchor)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeTemp(t, `Bogus = "nope"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_ScheduleResolvesChainName(t *testing.T) {
	cfg := DefaultConfig
	cfg.Chain = "dev"
	sched, err := cfg.Schedule()
	require.NoError(t, err)
	assert.NotNil(t, sched)
}

func TestConfig_ScheduleRejectsUnknownChain(t *testing.T) {
	cfg := DefaultConfig
	cfg.Chain = "testnet-9000"
	_, err := cfg.Schedule()
	assert.Error(t, err)
}
