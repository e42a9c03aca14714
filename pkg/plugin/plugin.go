// Package plugin normalizes independently authored external-tool plugins
// into the registry's tool schema. Each plugin describes one third-party
// utility and knows how to launch it; the adapter folds them into the same
// dispatch table as the data-file tools without the registry learning the
// plugin's resolution logic.
package plugin

import (
	"context"

	"github.com/callan/sweep/internal/config"
	"github.com/callan/sweep/pkg/registry"
)

// Info is the fixed attribute set every external-tool plugin exposes.
type Info struct {
	ID            string
	Title         string
	Category      string
	Tab           string
	Icon          string
	Description   string
	DownloadURL   string
	RequiresAdmin bool
}

// ExternalTool is the plugin contract: metadata plus a launch method that
// receives the configuration object.
type ExternalTool interface {
	Spec() Info
	Launch(ctx context.Context, cfg *config.Config) registry.ExecutionResult
}

// Adapt produces one tool definition from a plugin, with the launch method
// pre-bound to the configuration object. The returned definition merges
// into the registry like any other tool.
func Adapt(tool ExternalTool, cfg *config.Config) registry.ToolDefinition {
	info := tool.Spec()
	return registry.ToolDefinition{
		ID:            info.ID,
		Title:         info.Title,
		Icon:          info.Icon,
		Description:   info.Description,
		SectionTitle:  info.Category,
		Tab:           info.Tab,
		DownloadURL:   info.DownloadURL,
		RequiresAdmin: info.RequiresAdmin,
		Handler: func(ctx context.Context, _ registry.Context) registry.ExecutionResult {
			return tool.Launch(ctx, cfg)
		},
	}
}

// AdaptAll adapts a plugin collection in order.
func AdaptAll(tools []ExternalTool, cfg *config.Config) []registry.ToolDefinition {
	defs := make([]registry.ToolDefinition, 0, len(tools))
	for _, tool := range tools {
		defs = append(defs, Adapt(tool, cfg))
	}
	return defs
}
