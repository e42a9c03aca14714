package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callan/sweep/internal/config"
	"github.com/callan/sweep/pkg/registry"
)

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func TestLaunchTool_RequiresName(t *testing.T) {
	svc := NewExternalToolService(config.DefaultConfig())
	result := svc.LaunchTool(context.Background(), "")
	assert.False(t, result.Success)
	assert.Equal(t, "Tool name is required", result.Message)
}

func TestLaunchTool_NotFoundMessage(t *testing.T) {
	svc := NewExternalToolService(config.DefaultConfig())
	result := svc.LaunchTool(context.Background(), "bleachbit")
	assert.False(t, result.Success)
	assert.Equal(t, "bleachbit not found. Configure path in settings.", result.Message)
}

func TestLaunchTool_ConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	exe := writeExecutable(t, dir, "bleachbit")

	cfg := config.DefaultConfig()
	cfg.ExternalTools.Paths = map[string]string{"bleachbit": exe}

	svc := NewExternalToolService(cfg)
	result := svc.LaunchTool(context.Background(), "bleachbit")
	assert.True(t, result.Success)
	assert.Equal(t, "bleachbit launched", result.Message)
}

func TestLaunchTool_ConfiguredPathMissingFallsBack(t *testing.T) {
	dir := t.TempDir()
	exe := writeExecutable(t, dir, "everything")

	fallbacksPath := filepath.Join(dir, "fallbacks.json")
	require.NoError(t, os.WriteFile(fallbacksPath, []byte(`{
		"everything": ["/nonexistent/everything", "${SWEEP_TEST_DIR}/everything"]
	}`), 0o644))
	t.Setenv("SWEEP_TEST_DIR", dir)

	cfg := config.DefaultConfig()
	cfg.ExternalTools.Paths = map[string]string{"everything": filepath.Join(dir, "gone")}
	cfg.ExternalTools.FallbacksFile = fallbacksPath

	svc := NewExternalToolService(cfg)
	result := svc.LaunchTool(context.Background(), "everything")
	assert.True(t, result.Success)
	assert.Equal(t, exe, svc.resolveFallback("everything"))
}

func TestLoadFallbacks_InvalidFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallbacks.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	cfg := config.DefaultConfig()
	cfg.ExternalTools.FallbacksFile = path

	svc := NewExternalToolService(cfg)
	assert.Empty(t, svc.fallbacks)
}

func TestRegister_DispatchesThroughServiceSet(t *testing.T) {
	dir := t.TempDir()
	exe := writeExecutable(t, dir, "treesize")

	cfg := config.DefaultConfig()
	cfg.ExternalTools.Paths = map[string]string{"treesize": exe}

	set := registry.NewServiceSet()
	NewExternalToolService(cfg).Register(set)

	fn, ok := set.Lookup("external", "launch_tool")
	require.True(t, ok)

	// Positional form.
	out, err := fn(context.Background(), []interface{}{"treesize"}, nil)
	require.NoError(t, err)
	result, ok := out.(registry.ExecutionResult)
	require.True(t, ok)
	assert.True(t, result.Success)

	// Keyword form.
	out, err = fn(context.Background(), nil, map[string]interface{}{"tool_name": "treesize"})
	require.NoError(t, err)
	assert.True(t, out.(registry.ExecutionResult).Success)
}
