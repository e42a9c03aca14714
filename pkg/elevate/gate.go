// Package elevate implements the admin-elevation gate consulted before a
// tool runs. The decision itself stays outside the engine: callers supply
// the privilege check and the yes/no confirmation, which may block on a UI.
package elevate

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/callan/sweep/pkg/registry"
)

// CancelledMessage is the failure message for a declined elevation prompt.
// Declined executions are not runs and leave no usage record.
const CancelledMessage = "Administrator privileges required"

// ConfirmFunc asks the user whether to proceed with an action that may
// require elevated privileges. It may block until the user answers.
type ConfirmFunc func(ctx context.Context, tool *registry.ToolDefinition) bool

// CheckFunc reports whether the current process is already elevated.
type CheckFunc func() bool

// Gate authorizes tool executions that require administrator privileges.
// Tools without the requirement pass straight through; already-elevated
// processes skip the confirmation entirely.
type Gate struct {
	isElevated CheckFunc
	confirm    ConfirmFunc
}

// New creates a gate. A nil check falls back to ProcessElevated; a nil
// confirm declines every prompt.
func New(isElevated CheckFunc, confirm ConfirmFunc) *Gate {
	if isElevated == nil {
		isElevated = ProcessElevated
	}
	return &Gate{isElevated: isElevated, confirm: confirm}
}

// Authorize implements registry.Authorizer.
func (g *Gate) Authorize(ctx context.Context, tool *registry.ToolDefinition) (bool, string) {
	if tool == nil || !tool.RequiresAdmin {
		return true, ""
	}
	if g.isElevated() {
		return true, ""
	}
	if g.confirm != nil && g.confirm(ctx, tool) {
		log.Info().Str("tool", tool.ID).Msg("Elevation confirmed by caller")
		return true, ""
	}
	log.Info().Str("tool", tool.ID).Msg("Elevation declined")
	return false, CancelledMessage
}

// ProcessElevated is the default privilege check: effective uid 0. Hosts
// with a platform-specific notion of elevation supply their own CheckFunc.
func ProcessElevated() bool {
	return os.Geteuid() == 0
}
