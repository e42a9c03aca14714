package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Console)
	assert.True(t, cfg.Elevation.ConfirmPrompts)
	assert.Equal(t, DefaultCleanupSequence, cfg.Cleanup.Sequence)
	assert.NotNil(t, cfg.ExternalTools.Paths)
}

func TestCleanupSequence_FallsBackToDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cleanup.Sequence = nil
	assert.Equal(t, DefaultCleanupSequence, cfg.CleanupSequence())

	cfg.Cleanup.Sequence = []string{"flush_dns"}
	assert.Equal(t, []string{"flush_dns"}, cfg.CleanupSequence())

	// The returned slice is a copy.
	seq := cfg.CleanupSequence()
	seq[0] = "mutated"
	assert.Equal(t, []string{"flush_dns"}, cfg.Cleanup.Sequence)
}

func TestExternalToolPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.ExternalToolPath("bleachbit"))

	cfg.ExternalTools.Paths["bleachbit"] = "/opt/bleachbit/bleachbit"
	assert.Equal(t, "/opt/bleachbit/bleachbit", cfg.ExternalToolPath("bleachbit"))
}

func TestLoader_MissingFileYieldsDefaults(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "sweep.json"))
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, DefaultCleanupSequence, cfg.Cleanup.Sequence)
	assert.Equal(t, filepath.Join(cfg.DataDir, "tools.json"), cfg.ToolsFile)
	assert.Equal(t, filepath.Join(cfg.DataDir, "tool_usage.json"), cfg.UsageFile)
	assert.Equal(t, filepath.Join(cfg.DataDir, "external_tool_paths.json"), cfg.ExternalTools.FallbacksFile)
	assert.Equal(t, filepath.Join(cfg.DataDir, "sweep.log"), cfg.Logging.File)
}

func TestLoader_ReadsFileAndKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"data_dir": "`+dir+`",
		"logging": {"level": "debug"},
		"cleanup": {"sequence": ["flush_dns", "clear_temp_files"]}
	}`), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"flush_dns", "clear_temp_files"}, cfg.Cleanup.Sequence)
	// Unset values keep their defaults, paths fill in under data_dir.
	assert.True(t, cfg.Elevation.ConfirmPrompts)
	assert.Equal(t, filepath.Join(dir, "tools.json"), cfg.ToolsFile)
}

func TestLoader_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}
