package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/callan/sweep/pkg/usage"
)

// Issue kinds reported by IntegrityIssues.
const (
	IssueDuplicateID       = "duplicate_id"
	IssueMissingID         = "missing_id"
	IssueMissingTitle      = "missing_title"
	IssueMissingHandler    = "missing_handler"
	IssueUnresolvedHandler = "unresolved_handler"
)

// IntegrityIssue is an advisory diagnostic produced during Load. Issues
// never block loading; tests and diagnostic surfaces consume them.
type IntegrityIssue struct {
	ToolID string `json:"tool_id,omitempty"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// UsageRecorder receives one record per completed execution. The registry
// depends on the usage store only through this path.
type UsageRecorder interface {
	RecordRun(toolID string, success bool, message string, freedMB float64)
}

// Authorizer decides whether a tool may run before its handler is invoked.
// A denied execution is not a run: it produces a failure result and no
// usage record.
type Authorizer interface {
	Authorize(ctx context.Context, tool *ToolDefinition) (bool, string)
}

// Registry owns the merged set of tool definitions across the definitions
// document and plugin-adapted tools, and routes execution to the bound
// handlers. The table is replaced wholesale on every Load.
type Registry struct {
	services   *ServiceSet
	recorder   UsageRecorder
	authorizer Authorizer

	mu       sync.RWMutex
	sections []Section
	tools    map[string]*ToolDefinition
	order    []string
	issues   []IntegrityIssue
}

// New creates a registry bound to a service table.
func New(services *ServiceSet) *Registry {
	return &Registry{
		services: services,
		tools:    make(map[string]*ToolDefinition),
	}
}

// SetRecorder attaches the usage store consulted after each execution.
func (r *Registry) SetRecorder(rec UsageRecorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorder = rec
}

// SetAuthorizer attaches the elevation gate consulted before each execution.
func (r *Registry) SetAuthorizer(a Authorizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorizer = a
}

// Load replaces the tool table with the given sections plus plugin-adapted
// tools. Sections register first, plugin tools after; on a duplicate id the
// later registration wins and the collision is surfaced as an integrity
// issue. Tools whose handler cannot be resolved are skipped, not fatal.
func (r *Registry) Load(sections []Section, pluginTools []ToolDefinition) {
	tools := make(map[string]*ToolDefinition)
	var order []string
	var issues []IntegrityIssue

	register := func(def ToolDefinition, source string) {
		if def.ID == "" {
			issues = append(issues, IntegrityIssue{
				Kind:   IssueMissingID,
				Detail: fmt.Sprintf("%s tool %q has no id", source, def.Title),
			})
			return
		}
		if def.Title == "" {
			issues = append(issues, IntegrityIssue{
				ToolID: def.ID,
				Kind:   IssueMissingTitle,
				Detail: fmt.Sprintf("%s tool %s has no title", source, def.ID),
			})
			return
		}
		if def.Handler == nil {
			if def.Spec == nil {
				issues = append(issues, IntegrityIssue{
					ToolID: def.ID,
					Kind:   IssueMissingHandler,
					Detail: fmt.Sprintf("tool %s declares no handler", def.ID),
				})
				return
			}
			handler, err := Resolve(def.Spec, r.services)
			if err != nil {
				issues = append(issues, IntegrityIssue{
					ToolID: def.ID,
					Kind:   IssueUnresolvedHandler,
					Detail: fmt.Sprintf("tool %s: %v", def.ID, err),
				})
				log.Warn().Str("tool", def.ID).Err(err).Msg("Tool handler unresolved, skipping")
				return
			}
			def.Handler = handler
		}
		if _, exists := tools[def.ID]; exists {
			// Last registration wins; the collision is advisory.
			issues = append(issues, IntegrityIssue{
				ToolID: def.ID,
				Kind:   IssueDuplicateID,
				Detail: fmt.Sprintf("tool id %s registered more than once, later registration wins", def.ID),
			})
		} else {
			order = append(order, def.ID)
		}
		tools[def.ID] = &def
	}

	for _, section := range sections {
		for _, tool := range section.Tools {
			if tool.SectionID == "" {
				tool.SectionID = section.ID
			}
			if tool.SectionTitle == "" {
				tool.SectionTitle = section.Title
			}
			if tool.Tab == "" {
				tool.Tab = section.Tab
			}
			register(tool, "section")
		}
	}
	for _, tool := range pluginTools {
		register(tool, "plugin")
	}

	r.mu.Lock()
	r.sections = sections
	r.tools = tools
	r.order = order
	r.issues = issues
	r.mu.Unlock()

	log.Info().
		Int("tools", len(tools)).
		Int("sections", len(sections)).
		Int("issues", len(issues)).
		Msg("Tool registry loaded")
}

// GetToolByID returns the tool definition for an id, or nil.
func (r *Registry) GetToolByID(id string) *ToolDefinition {
	if id == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[id]
}

// GetHandler returns the bound handler for an id, or nil.
func (r *Registry) GetHandler(id string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tool, ok := r.tools[id]; ok {
		return tool.Handler
	}
	return nil
}

// ToolIDs returns registered tool ids in registration order.
func (r *Registry) ToolIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Sections returns the loaded sections in document order.
func (r *Registry) Sections() []Section {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sections
}

// SectionsByTab returns sections whose tab matches, case-insensitively.
func (r *Registry) SectionsByTab(tab string) []Section {
	normalized := strings.ToLower(strings.TrimSpace(tab))
	if normalized == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Section
	for _, section := range r.sections {
		if strings.ToLower(strings.TrimSpace(section.Tab)) == normalized {
			out = append(out, section)
		}
	}
	return out
}

// Search returns tools whose id, title, description, subtitle, tags, or
// owning section title contain the query, case-insensitively.
func (r *Registry) Search(query string) []*ToolDefinition {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ToolDefinition
	for _, id := range r.order {
		tool := r.tools[id]
		if toolMatchesQuery(tool, q) {
			out = append(out, tool)
		}
	}
	return out
}

func toolMatchesQuery(tool *ToolDefinition, q string) bool {
	fields := []string{tool.ID, tool.Title, tool.Description, tool.Subtitle, tool.SectionTitle}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	for _, tag := range tool.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// IntegrityIssues returns the diagnostics gathered during the last Load.
func (r *Registry) IntegrityIssues() []IntegrityIssue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]IntegrityIssue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Execute runs a tool by id. Unknown ids and handler failures come back as
// failure results; nothing raised inside a handler escapes this boundary.
// Completed runs, successful or not, are recorded in the usage store; a run
// denied by the authorizer is not.
func (r *Registry) Execute(ctx context.Context, id string, callCtx Context) ExecutionResult {
	r.mu.RLock()
	tool := r.tools[id]
	recorder := r.recorder
	authorizer := r.authorizer
	r.mu.RUnlock()

	if tool == nil {
		log.Warn().Str("tool", id).Msg("Tool not configured")
		return ExecutionResult{Success: false, Message: "Tool not configured"}
	}

	if authorizer != nil {
		allowed, reason := authorizer.Authorize(ctx, tool)
		if !allowed {
			log.Info().Str("tool", id).Str("reason", reason).Msg("Tool execution declined")
			return ExecutionResult{Success: false, Message: reason}
		}
	}

	result := r.invoke(ctx, tool, callCtx)

	if recorder != nil {
		recorder.RecordRun(id, result.Success, result.Message, usage.ParseFreedMB(result.Message))
	}

	if !result.Success {
		log.Error().Str("tool", id).Str("message", result.Message).Msg("Tool execution failed")
	} else {
		log.Debug().Str("tool", id).Msg("Tool execution completed")
	}
	return result
}

// invoke guards the handler call. Handlers built by Resolve already recover
// panics; plugin-bound handlers arrive from outside, so the registry guards
// the boundary again.
func (r *Registry) invoke(ctx context.Context, tool *ToolDefinition, callCtx Context) (res ExecutionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("tool", tool.ID).Interface("panic", rec).Msg("Handler panicked")
			res = ExecutionResult{Success: false, Message: fmt.Sprint(rec)}
		}
	}()
	return tool.Handler(ctx, callCtx)
}
