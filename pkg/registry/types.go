package registry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Sigil marks a string argument as an indirect context reference in the
// tool definitions document ("$config_manager" resolves against the call
// context instead of passing through as a literal).
const Sigil = "$"

var (
	// ErrServiceNotFound indicates the handler spec names an unknown service.
	ErrServiceNotFound = errors.New("service not available")
	// ErrMethodNotFound indicates the named service has no such method.
	ErrMethodNotFound = errors.New("method not found")
	// ErrMissingHandler indicates a tool entry carries no handler spec at all.
	ErrMissingHandler = errors.New("handler not specified")
)

// ExecutionResult is the uniform outcome of every tool invocation. Handlers
// never propagate errors past the registry boundary; failures are carried as
// a false Success with a human-readable Message.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Context carries caller-supplied collaborators available for indirect
// argument substitution. It is provided fresh per execution.
type Context map[string]interface{}

// ArgValue is a tagged argument value: either a literal passed through
// unchanged, or a reference resolved against the call context.
type ArgValue struct {
	ref     string
	literal interface{}
	isRef   bool
}

// Literal wraps a plain value.
func Literal(v interface{}) ArgValue {
	return ArgValue{literal: v}
}

// ContextRef references a named entry in the call context.
func ContextRef(name string) ArgValue {
	return ArgValue{ref: name, isRef: true}
}

// IsRef reports whether the value is a context reference.
func (a ArgValue) IsRef() bool {
	return a.isRef
}

// Resolve returns the concrete value for this argument. A reference absent
// from the context resolves to nil, matching pass-by-lookup semantics.
func (a ArgValue) Resolve(callCtx Context) interface{} {
	if !a.isRef {
		return a.literal
	}
	if callCtx == nil {
		return nil
	}
	return callCtx[a.ref]
}

// UnmarshalJSON decodes the document form: strings with a leading sigil
// become context references, everything else stays literal.
func (a *ArgValue) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if s, ok := v.(string); ok && strings.HasPrefix(s, Sigil) {
		*a = ContextRef(strings.TrimPrefix(s, Sigil))
		return nil
	}
	*a = Literal(v)
	return nil
}

// MarshalJSON writes the document form back out.
func (a ArgValue) MarshalJSON() ([]byte, error) {
	if a.isRef {
		return json.Marshal(Sigil + a.ref)
	}
	return json.Marshal(a.literal)
}

// HandlerSpec declares which service method a tool dispatches to and with
// what arguments.
type HandlerSpec struct {
	Service string              `json:"service"`
	Method  string              `json:"method"`
	Args    []ArgValue          `json:"args,omitempty"`
	Kwargs  map[string]ArgValue `json:"kwargs,omitempty"`
}

// ToolDefinition describes one user-invokable action. Tools declared in the
// definitions document carry a HandlerSpec which the registry resolves at
// load time; plugin-adapted tools arrive with Handler already bound.
type ToolDefinition struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Subtitle        string       `json:"subtitle,omitempty"`
	Icon            string       `json:"icon,omitempty"`
	Description     string       `json:"description,omitempty"`
	SectionID       string       `json:"section_id,omitempty"`
	SectionTitle    string       `json:"section_title,omitempty"`
	Tab             string       `json:"tab,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	DownloadURL     string       `json:"download_url,omitempty"`
	RequiresAdmin   bool         `json:"requires_admin,omitempty"`
	RequiresRestart bool         `json:"requires_restart,omitempty"`
	Spec            *HandlerSpec `json:"handler,omitempty"`
	Handler         Handler      `json:"-"`
}

// Handler is the resolved callable for a tool. Argument resolution against
// the call context happens inside the handler, at call time.
type Handler func(ctx context.Context, callCtx Context) ExecutionResult

// Section is a named, ordered group of tools sharing a display tab
// affinity. Order is display order; for the quick-cleanup list it is also
// execution order.
type Section struct {
	ID    string           `json:"id,omitempty"`
	Title string           `json:"title"`
	Tab   string           `json:"tab,omitempty"`
	Tools []ToolDefinition `json:"tools"`
}
