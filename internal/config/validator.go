package config

import (
	"fmt"
	"regexp"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

var toolIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// ValidateLogLevel checks a logging level name
func (v *Validator) ValidateLogLevel(level string) error {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s", level)
}

// ValidateToolID checks a tool id used in the cleanup sequence or the
// external tool paths map
func (v *Validator) ValidateToolID(id string) error {
	if id == "" {
		return fmt.Errorf("tool id cannot be empty")
	}
	if !toolIDPattern.MatchString(id) {
		return fmt.Errorf("invalid tool id format: %s", id)
	}
	return nil
}

// Validate checks a whole configuration
func (v *Validator) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Logging.Level != "" {
		if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
			return err
		}
	}
	for _, id := range cfg.Cleanup.Sequence {
		if err := v.ValidateToolID(id); err != nil {
			return fmt.Errorf("cleanup sequence: %w", err)
		}
	}
	for id := range cfg.ExternalTools.Paths {
		if err := v.ValidateToolID(id); err != nil {
			return fmt.Errorf("external tools: %w", err)
		}
	}
	return nil
}
