// Package services hosts the service implementations the engine dispatches
// to. The OS-maintenance services (cleanup, optimization, process control)
// belong to the host application; it registers them into a
// registry.ServiceSet at startup. The external-tool launcher lives here
// because the plugin adapter depends on its resolution logic.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"

	"github.com/callan/sweep/internal/config"
	"github.com/callan/sweep/pkg/registry"
)

// ExternalToolService launches third-party utilities. A tool resolves to
// the user-configured executable path first; failing that, candidate
// install locations from the fallbacks file are probed in order.
type ExternalToolService struct {
	cfg       *config.Config
	fallbacks map[string][]string
}

// NewExternalToolService creates the launcher and reads the fallback path
// registry. A missing or unreadable fallbacks file just means no fallback
// probing.
func NewExternalToolService(cfg *config.Config) *ExternalToolService {
	s := &ExternalToolService{cfg: cfg}
	s.fallbacks = loadFallbacks(cfg.ExternalTools.FallbacksFile)
	return s
}

func loadFallbacks(path string) map[string][]string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Unable to read external tool fallbacks")
		}
		return nil
	}
	var fallbacks map[string][]string
	if err := json.Unmarshal(data, &fallbacks); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Invalid external tool fallbacks file")
		return nil
	}
	return fallbacks
}

// LaunchTool starts an external tool by id.
func (s *ExternalToolService) LaunchTool(ctx context.Context, name string) registry.ExecutionResult {
	if name == "" {
		return registry.ExecutionResult{Success: false, Message: "Tool name is required"}
	}

	if path := s.cfg.ExternalToolPath(name); path != "" {
		if _, err := os.Stat(path); err == nil {
			return s.startProcess(ctx, path, name)
		}
	}

	if path := s.resolveFallback(name); path != "" {
		return s.startProcess(ctx, path, name)
	}

	return registry.ExecutionResult{
		Success: false,
		Message: fmt.Sprintf("%s not found. Configure path in settings.", name),
	}
}

// resolveFallback probes candidate install locations for the first that
// exists, expanding environment variables in each candidate.
func (s *ExternalToolService) resolveFallback(name string) string {
	for _, candidate := range s.fallbacks[name] {
		expanded := os.ExpandEnv(candidate)
		if _, err := os.Stat(expanded); err == nil {
			return expanded
		}
	}
	return ""
}

func (s *ExternalToolService) startProcess(ctx context.Context, path, name string) registry.ExecutionResult {
	cmd := exec.CommandContext(ctx, path)
	if err := cmd.Start(); err != nil {
		log.Error().Err(err).Str("tool", name).Str("path", path).Msg("Failed to launch external tool")
		return registry.ExecutionResult{
			Success: false,
			Message: fmt.Sprintf("Failed to launch %s: %v", name, err),
		}
	}
	// The tool runs detached; reap it in the background so the child does
	// not linger as a zombie.
	go func() { _ = cmd.Wait() }()

	log.Info().Str("tool", name).Str("path", path).Msg("External tool launched")
	return registry.ExecutionResult{Success: true, Message: fmt.Sprintf("%s launched", name)}
}

// Register adds the launcher's methods to a service table under the
// "external" service name.
func (s *ExternalToolService) Register(set *registry.ServiceSet) {
	set.Register("external", "launch_tool", func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
		name := stringArg(args, kwargs, "tool_name")
		return s.LaunchTool(ctx, name), nil
	})
}

// stringArg pulls a string from the first positional arg, falling back to
// the named keyword arg.
func stringArg(args []interface{}, kwargs map[string]interface{}, key string) string {
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			return s
		}
	}
	if v, ok := kwargs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
