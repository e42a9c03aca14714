package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRun struct {
	ToolID  string
	Success bool
	Message string
	FreedMB float64
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []recordedRun
}

func (f *fakeRecorder) RecordRun(toolID string, success bool, message string, freedMB float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, recordedRun{toolID, success, message, freedMB})
}

func (f *fakeRecorder) all() []recordedRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRun(nil), f.runs...)
}

func testServices(t *testing.T) *ServiceSet {
	t.Helper()
	set := NewServiceSet()
	set.Register("cleanup", "clear_temp_files", func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
		return ExecutionResult{Success: true, Message: "Freed 500.0 MB from 12 files"}, nil
	})
	set.Register("cleanup", "flush_dns", func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
		return true, nil
	})
	set.Register("cleanup", "broken", func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
		return nil, errors.New("handle is stale")
	})
	return set
}

func testSections() []Section {
	return []Section{
		{
			ID:    "cleanup",
			Title: "System Cleanup",
			Tab:   "maintenance",
			Tools: []ToolDefinition{
				{
					ID:    "clear_temp_files",
					Title: "Clear Temp Files",
					Tags:  []string{"disk", "space"},
					Spec:  &HandlerSpec{Service: "cleanup", Method: "clear_temp_files"},
				},
				{
					ID:            "flush_dns",
					Title:         "Flush DNS",
					RequiresAdmin: true,
					Spec:          &HandlerSpec{Service: "cleanup", Method: "flush_dns"},
				},
			},
		},
	}
}

func TestRegistry_LoadAndLookup(t *testing.T) {
	reg := New(testServices(t))
	reg.Load(testSections(), nil)

	require.Empty(t, reg.IntegrityIssues())

	tool := reg.GetToolByID("clear_temp_files")
	require.NotNil(t, tool)
	assert.Equal(t, "System Cleanup", tool.SectionTitle)
	assert.Equal(t, "maintenance", tool.Tab)

	assert.NotNil(t, reg.GetHandler("clear_temp_files"))
	assert.NotNil(t, reg.GetHandler("flush_dns"))
	assert.Nil(t, reg.GetHandler("missing"))
	assert.Nil(t, reg.GetToolByID(""))
}

func TestRegistry_Execute(t *testing.T) {
	reg := New(testServices(t))
	rec := &fakeRecorder{}
	reg.SetRecorder(rec)
	reg.Load(testSections(), nil)

	result := reg.Execute(context.Background(), "clear_temp_files", nil)
	assert.True(t, result.Success)
	assert.Equal(t, "Freed 500.0 MB from 12 files", result.Message)

	runs := rec.all()
	require.Len(t, runs, 1)
	assert.Equal(t, "clear_temp_files", runs[0].ToolID)
	assert.True(t, runs[0].Success)
	assert.InDelta(t, 500.0, runs[0].FreedMB, 0.001)
}

func TestRegistry_Execute_UnknownTool(t *testing.T) {
	reg := New(testServices(t))
	rec := &fakeRecorder{}
	reg.SetRecorder(rec)
	reg.Load(testSections(), nil)

	assert.NotPanics(t, func() {
		result := reg.Execute(context.Background(), "unknown-id", nil)
		assert.False(t, result.Success)
		assert.Equal(t, "Tool not configured", result.Message)
	})
	assert.Empty(t, rec.all())
}

func TestRegistry_Execute_HandlerFailureStillRecorded(t *testing.T) {
	reg := New(testServices(t))
	rec := &fakeRecorder{}
	reg.SetRecorder(rec)
	reg.Load([]Section{{
		Title: "Broken",
		Tools: []ToolDefinition{{
			ID:    "broken_tool",
			Title: "Broken Tool",
			Spec:  &HandlerSpec{Service: "cleanup", Method: "broken"},
		}},
	}}, nil)

	result := reg.Execute(context.Background(), "broken_tool", nil)
	assert.False(t, result.Success)
	assert.Equal(t, "handle is stale", result.Message)

	runs := rec.all()
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Success)
	assert.Equal(t, "handle is stale", runs[0].Message)
}

func TestRegistry_Execute_PanickingPluginHandler(t *testing.T) {
	reg := New(NewServiceSet())
	reg.Load(nil, []ToolDefinition{{
		ID:    "wild_plugin",
		Title: "Wild Plugin",
		Handler: func(ctx context.Context, callCtx Context) ExecutionResult {
			panic("plugin blew up")
		},
	}})

	assert.NotPanics(t, func() {
		result := reg.Execute(context.Background(), "wild_plugin", nil)
		assert.False(t, result.Success)
		assert.Equal(t, "plugin blew up", result.Message)
	})
}

type denyAllAuthorizer struct{ called int }

func (d *denyAllAuthorizer) Authorize(ctx context.Context, tool *ToolDefinition) (bool, string) {
	d.called++
	if tool.RequiresAdmin {
		return false, "Administrator privileges required"
	}
	return true, ""
}

func TestRegistry_Execute_DeniedRunNotRecorded(t *testing.T) {
	reg := New(testServices(t))
	rec := &fakeRecorder{}
	auth := &denyAllAuthorizer{}
	reg.SetRecorder(rec)
	reg.SetAuthorizer(auth)
	reg.Load(testSections(), nil)

	result := reg.Execute(context.Background(), "flush_dns", nil)
	assert.False(t, result.Success)
	assert.Equal(t, "Administrator privileges required", result.Message)
	assert.Equal(t, 1, auth.called)
	assert.Empty(t, rec.all())

	// Non-admin tools pass through the same authorizer.
	result = reg.Execute(context.Background(), "clear_temp_files", nil)
	assert.True(t, result.Success)
	assert.Len(t, rec.all(), 1)
}

func TestRegistry_IntegrityIssues(t *testing.T) {
	reg := New(testServices(t))
	sections := []Section{{
		Title: "Messy",
		Tools: []ToolDefinition{
			{Title: "No ID"},
			{ID: "untitled"},
			{ID: "no_handler", Title: "No Handler"},
			{ID: "bad_service", Title: "Bad Service", Spec: &HandlerSpec{Service: "ghost", Method: "walk"}},
			{ID: "bad_method", Title: "Bad Method", Spec: &HandlerSpec{Service: "cleanup", Method: "ghost"}},
			{ID: "ok", Title: "OK", Spec: &HandlerSpec{Service: "cleanup", Method: "flush_dns"}},
		},
	}}
	reg.Load(sections, nil)

	issues := reg.IntegrityIssues()
	kinds := make(map[string]int)
	for _, issue := range issues {
		kinds[issue.Kind]++
	}
	assert.Equal(t, 1, kinds[IssueMissingID])
	assert.Equal(t, 1, kinds[IssueMissingTitle])
	assert.Equal(t, 1, kinds[IssueMissingHandler])
	assert.Equal(t, 2, kinds[IssueUnresolvedHandler])

	// Unresolvable tools are absent from the table; the load continues.
	assert.Nil(t, reg.GetToolByID("bad_service"))
	assert.Nil(t, reg.GetToolByID("bad_method"))
	assert.NotNil(t, reg.GetToolByID("ok"))
}

func TestRegistry_DuplicateID_LastRegistrationWins(t *testing.T) {
	reg := New(testServices(t))

	pluginTool := ToolDefinition{
		ID:    "clear_temp_files",
		Title: "Plugin Temp Cleaner",
		Handler: func(ctx context.Context, callCtx Context) ExecutionResult {
			return ExecutionResult{Success: true, Message: "plugin ran"}
		},
	}
	reg.Load(testSections(), []ToolDefinition{pluginTool})

	tool := reg.GetToolByID("clear_temp_files")
	require.NotNil(t, tool)
	assert.Equal(t, "Plugin Temp Cleaner", tool.Title)

	result := reg.Execute(context.Background(), "clear_temp_files", nil)
	assert.Equal(t, "plugin ran", result.Message)

	var found bool
	for _, issue := range reg.IntegrityIssues() {
		if issue.Kind == IssueDuplicateID && issue.ToolID == "clear_temp_files" {
			found = true
		}
	}
	assert.True(t, found, "duplicate id should surface as an integrity issue")
}

func TestRegistry_ReloadReplacesWholesale(t *testing.T) {
	reg := New(testServices(t))
	reg.Load(testSections(), nil)
	require.NotNil(t, reg.GetToolByID("clear_temp_files"))

	reg.Load([]Section{{
		Title: "Only DNS",
		Tools: []ToolDefinition{{
			ID:    "flush_dns",
			Title: "Flush DNS",
			Spec:  &HandlerSpec{Service: "cleanup", Method: "flush_dns"},
		}},
	}}, nil)

	assert.Nil(t, reg.GetToolByID("clear_temp_files"))
	assert.NotNil(t, reg.GetToolByID("flush_dns"))
	assert.Equal(t, []string{"flush_dns"}, reg.ToolIDs())
}

func TestRegistry_SectionsByTabAndSearch(t *testing.T) {
	reg := New(testServices(t))
	reg.Load(testSections(), nil)

	assert.Len(t, reg.SectionsByTab("Maintenance"), 1)
	assert.Empty(t, reg.SectionsByTab("projects"))
	assert.Empty(t, reg.SectionsByTab(""))

	results := reg.Search("temp")
	require.Len(t, results, 1)
	assert.Equal(t, "clear_temp_files", results[0].ID)

	// Tags and section titles are searchable too.
	assert.Len(t, reg.Search("disk"), 1)
	assert.Len(t, reg.Search("system cleanup"), 2)
	assert.Empty(t, reg.Search(""))
}
