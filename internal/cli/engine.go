package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/callan/sweep/internal/config"
	"github.com/callan/sweep/internal/logger"
	"github.com/callan/sweep/pkg/definitions"
	"github.com/callan/sweep/pkg/elevate"
	"github.com/callan/sweep/pkg/plugin"
	"github.com/callan/sweep/pkg/registry"
	"github.com/callan/sweep/pkg/services"
	"github.com/callan/sweep/pkg/usage"
)

// engine bundles the wired-up subsystems for one CLI invocation.
type engine struct {
	cfg      *config.Config
	registry *registry.Registry
	store    *usage.Store
	log      *logger.Logger
}

// buildEngine loads configuration, sets up logging, registers services,
// and fills the registry from the definitions document plus the built-in
// plugin set.
func buildEngine() (*engine, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	lg, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	set := registry.NewServiceSet()
	services.NewExternalToolService(cfg).Register(set)

	store := usage.Open(cfg.UsageFile)

	reg := registry.New(set)
	reg.SetRecorder(store)
	reg.SetAuthorizer(elevate.New(nil, confirmFunc(cfg)))

	doc, issues, err := definitions.LoadFile(cfg.ToolsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load tool definitions: %w", err)
	}
	for _, issue := range issues {
		log.Warn().Str("issue", issue).Msg("Tool definitions document issue")
	}
	reg.Load(doc.Sections, plugin.AdaptAll(plugin.Builtin(), cfg))

	return &engine{cfg: cfg, registry: reg, store: store, log: lg}, nil
}

func (e *engine) close() {
	if e.log != nil {
		_ = e.log.Close()
	}
}

// callContext is the context map handed to every execution; handlers with
// a "$config_manager" reference receive the active configuration.
func (e *engine) callContext() registry.Context {
	return registry.Context{
		"config_manager": e.cfg,
		"config":         e.cfg,
	}
}

// confirmFunc builds the terminal yes/no prompt for admin-gated tools.
// Prompting disabled means admin tools are declined in non-elevated runs.
func confirmFunc(cfg *config.Config) elevate.ConfirmFunc {
	if !cfg.Elevation.ConfirmPrompts {
		return nil
	}
	return func(_ context.Context, tool *registry.ToolDefinition) bool {
		fmt.Printf("%s may require administrator privileges. Continue? [y/N] ", tool.Title)
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
