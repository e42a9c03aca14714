// Package definitions loads the tool definitions document: an ordered list
// of sections, each holding tool entries with handler specs. The package
// owns parsing and shape validation; merging, handler resolution, and
// integrity checking belong to the registry.
package definitions

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/callan/sweep/pkg/registry"
)

// documentSchema is the base shape every definitions document must have.
// It is deliberately loose below the section level: malformed tool entries
// are skipped with registry integrity diagnostics, not load failures.
const documentSchema = `{
	"type": "object",
	"required": ["sections"],
	"properties": {
		"sections": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"title": {"type": "string"},
					"tab": {"type": "string"},
					"tools": {"type": "array", "items": {"type": "object"}}
				}
			}
		}
	}
}`

// Document is the decoded definitions file.
type Document struct {
	Sections []registry.Section
}

type rawDocument struct {
	Sections []rawSection `json:"sections"`
}

type rawSection struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Tab   string    `json:"tab"`
	Tools []rawTool `json:"tools"`
}

// rawTool accepts both the nested handler form and the legacy flat form
// (service/method/args at the tool level, with method_args/method_kwargs
// aliases). Flat fields take precedence over the nested spec.
type rawTool struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Subtitle        string                `json:"subtitle"`
	Icon            string                `json:"icon"`
	Description     string                `json:"description"`
	Tooltip         string                `json:"tooltip"`
	Tab             string                `json:"tab"`
	Tags            []string              `json:"tags"`
	RequiresAdmin   bool                  `json:"requires_admin"`
	RequiresRestart bool                  `json:"requires_restart"`
	Handler         *registry.HandlerSpec `json:"handler"`

	Service      string                       `json:"service"`
	Method       string                       `json:"method"`
	Args         []registry.ArgValue          `json:"args"`
	Kwargs       map[string]registry.ArgValue `json:"kwargs"`
	MethodArgs   []registry.ArgValue          `json:"method_args"`
	MethodKwargs map[string]registry.ArgValue `json:"method_kwargs"`
}

// Parse decodes and shape-validates a definitions document. Schema
// violations come back as advisory issue strings alongside a best-effort
// decode; only unreadable JSON is an error.
func Parse(data []byte) (*Document, []string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("definitions document is not valid JSON: %w", err)
	}

	var issues []string
	if !result.Valid() {
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, issues, fmt.Errorf("failed to decode definitions document: %w", err)
	}

	doc := &Document{Sections: make([]registry.Section, 0, len(raw.Sections))}
	for _, section := range raw.Sections {
		converted := registry.Section{
			ID:    section.ID,
			Title: section.Title,
			Tab:   section.Tab,
			Tools: make([]registry.ToolDefinition, 0, len(section.Tools)),
		}
		for _, tool := range section.Tools {
			converted.Tools = append(converted.Tools, tool.toDefinition())
		}
		doc.Sections = append(doc.Sections, converted)
	}
	return doc, issues, nil
}

// LoadFile reads and parses the definitions document at path. A missing
// file yields an empty document, matching the host behavior of running
// with no configured tools.
func LoadFile(path string) (*Document, []string, error) {
	if path == "" {
		log.Warn().Msg("Definitions load called with empty path")
		return &Document{}, nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warn().Str("path", path).Msg("Tools definitions file not found")
		return &Document{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read definitions file: %w", err)
	}
	return Parse(data)
}

func (t rawTool) toDefinition() registry.ToolDefinition {
	def := registry.ToolDefinition{
		ID:              t.ID,
		Title:           t.Title,
		Subtitle:        t.Subtitle,
		Icon:            t.Icon,
		Description:     t.Description,
		Tab:             t.Tab,
		Tags:            t.Tags,
		RequiresAdmin:   t.RequiresAdmin,
		RequiresRestart: t.RequiresRestart,
	}
	if def.Description == "" {
		def.Description = t.Tooltip
	}

	service, method := t.Service, t.Method
	if t.Handler != nil {
		if service == "" {
			service = t.Handler.Service
		}
		if method == "" {
			method = t.Handler.Method
		}
	}
	if service == "" && method == "" {
		return def
	}

	def.Spec = &registry.HandlerSpec{
		Service: service,
		Method:  method,
		Args:    t.selectArgs(),
		Kwargs:  t.selectKwargs(),
	}
	return def
}

func (t rawTool) selectArgs() []registry.ArgValue {
	if t.MethodArgs != nil {
		return t.MethodArgs
	}
	if t.Args != nil {
		return t.Args
	}
	if t.Handler != nil {
		return t.Handler.Args
	}
	return nil
}

func (t rawTool) selectKwargs() map[string]registry.ArgValue {
	if t.MethodKwargs != nil {
		return t.MethodKwargs
	}
	if t.Kwargs != nil {
		return t.Kwargs
	}
	if t.Handler != nil {
		return t.Handler.Kwargs
	}
	return nil
}
