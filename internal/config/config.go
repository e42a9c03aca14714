package config

// Config represents the main Sweep configuration
type Config struct {
	// Data directory for the definitions file, usage store, and logs
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Tool definitions document
	ToolsFile string `json:"tools_file" mapstructure:"tools_file"`

	// Usage store document
	UsageFile string `json:"usage_file" mapstructure:"usage_file"`

	// External tools
	ExternalTools ExternalToolsConfig `json:"external_tools" mapstructure:"external_tools"`

	// Quick cleanup
	Cleanup CleanupConfig `json:"cleanup" mapstructure:"cleanup"`

	// Elevation
	Elevation ElevationConfig `json:"elevation" mapstructure:"elevation"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ExternalToolsConfig holds third-party tool launch settings
type ExternalToolsConfig struct {
	// Paths maps tool ids to user-configured executable paths
	Paths map[string]string `json:"paths" mapstructure:"paths"`

	// FallbacksFile holds candidate install locations probed when no
	// path is configured
	FallbacksFile string `json:"fallbacks_file" mapstructure:"fallbacks_file"`
}

// CleanupConfig holds quick-cleanup settings
type CleanupConfig struct {
	// Sequence overrides the tool-id order of a quick cleanup run
	Sequence []string `json:"sequence" mapstructure:"sequence"`
}

// ElevationConfig holds admin-elevation settings
type ElevationConfig struct {
	// ConfirmPrompts enables the yes/no prompt for admin tools when the
	// process is not elevated; disabled means such tools are declined
	ConfirmPrompts bool `json:"confirm_prompts" mapstructure:"confirm_prompts"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultCleanupSequence is the fixed quick-cleanup order used when no
// override is configured.
var DefaultCleanupSequence = []string{
	"empty_recycle_bin",
	"clear_temp_files",
	"clear_browser_cache",
	"flush_dns",
	"clear_ram_standby",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ExternalTools: ExternalToolsConfig{
			Paths: map[string]string{},
		},
		Cleanup: CleanupConfig{
			Sequence: append([]string(nil), DefaultCleanupSequence...),
		},
		Elevation: ElevationConfig{
			ConfirmPrompts: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
	}
}

// ExternalToolPath returns the configured executable path for a tool id,
// or empty when none is set.
func (c *Config) ExternalToolPath(id string) string {
	if c == nil || c.ExternalTools.Paths == nil {
		return ""
	}
	return c.ExternalTools.Paths[id]
}

// CleanupSequence returns the configured quick-cleanup order, falling back
// to the default list.
func (c *Config) CleanupSequence() []string {
	if c == nil || len(c.Cleanup.Sequence) == 0 {
		return append([]string(nil), DefaultCleanupSequence...)
	}
	return append([]string(nil), c.Cleanup.Sequence...)
}
