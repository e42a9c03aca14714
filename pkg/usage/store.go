package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RunRecord tracks history for one tool id.
type RunRecord struct {
	LastRun     *time.Time `json:"last_run"`
	RunCount    int        `json:"run_count"`
	LastResult  string     `json:"last_result,omitempty"`
	LastMessage string     `json:"last_message,omitempty"`
	LastFreedMB float64    `json:"last_freed_mb"`
	TotalFreed  float64    `json:"total_freed_mb"`
}

// Stats is the whole persisted usage document.
type Stats struct {
	ToolRuns        map[string]RunRecord `json:"tool_runs"`
	LastFullCleanup *time.Time           `json:"last_full_cleanup"`
	FirstLaunch     *time.Time           `json:"first_launch"`
	TotalFreedMB    float64              `json:"total_space_freed_mb"`
	TotalToolsRun   int                  `json:"total_tools_run"`
}

// Store persists tool usage history as a single JSON document. The document
// is loaded once with defaults merged in, and the whole document is written
// back synchronously after every mutation. A failed write is logged and
// non-fatal: the in-memory state stays authoritative for the rest of the
// process.
type Store struct {
	path string

	mu   sync.Mutex
	data Stats
}

// Open loads or initializes the usage document at path.
func Open(path string) *Store {
	s := &Store{path: path}
	s.data = s.load()
	return s
}

func defaultStats() Stats {
	return Stats{ToolRuns: make(map[string]RunRecord)}
}

func (s *Store) load() Stats {
	data := defaultStats()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		now := time.Now().UTC()
		data.FirstLaunch = &now
		s.save(data)
		return data
	}
	if err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to load tool usage")
		return data
	}

	var persisted Stats
	if err := json.Unmarshal(raw, &persisted); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Invalid tool usage document")
		return data
	}
	if persisted.ToolRuns == nil {
		persisted.ToolRuns = make(map[string]RunRecord)
	}
	if persisted.FirstLaunch == nil {
		now := time.Now().UTC()
		persisted.FirstLaunch = &now
		s.save(persisted)
	}
	return persisted
}

func (s *Store) save(data Stats) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal tool usage")
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("Failed to create usage directory")
			return
		}
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to save tool usage")
	}
}

// RecordRun updates the per-tool record and the store-wide aggregates for
// one completed execution.
func (s *Store) RecordRun(toolID string, success bool, message string, freedMB float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	entry := s.data.ToolRuns[toolID]
	entry.LastRun = &now
	entry.RunCount++
	if success {
		entry.LastResult = "success"
	} else {
		entry.LastResult = "error"
	}
	entry.LastMessage = message
	entry.LastFreedMB = freedMB
	entry.TotalFreed += freedMB
	s.data.ToolRuns[toolID] = entry

	s.data.TotalToolsRun++
	if freedMB > 0 {
		s.data.TotalFreedMB += freedMB
	}
	s.save(s.data)
}

// MarkFullCleanup stamps the time of a completed quick-cleanup run.
func (s *Store) MarkFullCleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.data.LastFullCleanup = &now
	s.save(s.data)
}

// LastRun returns when a tool last ran, or nil if it never has.
func (s *Store) LastRun(toolID string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.data.ToolRuns[toolID]; ok {
		return entry.LastRun
	}
	return nil
}

// GetStats returns a copy of the whole document.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.data
	out.ToolRuns = make(map[string]RunRecord, len(s.data.ToolRuns))
	for id, entry := range s.data.ToolRuns {
		out.ToolRuns[id] = entry
	}
	return out
}

// MostUsed returns the tool with the highest run count.
func (s *Store) MostUsed() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mostTool string
	var mostCount int
	for id, entry := range s.data.ToolRuns {
		if entry.RunCount > mostCount {
			mostCount = entry.RunCount
			mostTool = id
		}
	}
	return mostTool, mostCount
}

// TotalFreedMB sums freed space across per-tool records, falling back to
// the aggregate counter for documents written before per-tool totals.
func (s *Store) TotalFreedMB() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, entry := range s.data.ToolRuns {
		total += entry.TotalFreed
	}
	if total <= 0 {
		return s.data.TotalFreedMB
	}
	return total
}

// Reset clears all usage history. The first-launch stamp is preserved
// unless keepFirstLaunch is false.
func (s *Store) Reset(keepFirstLaunch bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	firstLaunch := s.data.FirstLaunch
	if !keepFirstLaunch || firstLaunch == nil {
		now := time.Now().UTC()
		firstLaunch = &now
	}
	s.data = defaultStats()
	s.data.FirstLaunch = firstLaunch
	s.save(s.data)
}
