// Package cleanup drives the quick-cleanup batch: a fixed ordered list of
// registry tool ids executed as one run, with step-level progress, a
// running freed-space total, and cooperative cancellation.
package cleanup

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/callan/sweep/pkg/registry"
	"github.com/callan/sweep/pkg/usage"
)

// StepState is the reported state of one sequence step.
type StepState string

const (
	StepPending   StepState = "pending"
	StepRunning   StepState = "running"
	StepCompleted StepState = "completed"
	StepFailed    StepState = "failed"
)

// StepUpdate is one progress report. Updates arrive on the run's worker
// goroutine; callers marshal them onto their own loop.
type StepUpdate struct {
	RunID        string
	ToolID       string
	State        StepState
	Message      string
	Completed    int
	Total        int
	Progress     float64
	TotalFreedMB float64
}

// ProgressFunc receives step updates during a run.
type ProgressFunc func(StepUpdate)

// Summary describes a finished run.
type Summary struct {
	RunID        string
	Cancelled    bool
	Completed    int
	Total        int
	TotalFreedMB float64
	FailedTools  []string
}

// FullCleanupMarker stamps the usage store once a run finishes naturally.
type FullCleanupMarker interface {
	MarkFullCleanup()
}

// Sequencer runs the quick-cleanup tool sequence through the registry.
type Sequencer struct {
	registry *registry.Registry
	marker   FullCleanupMarker
	sequence []string
	progress ProgressFunc
}

// New creates a sequencer for the given tool-id order. A nil marker skips
// the full-cleanup stamp; a nil progress func runs silently.
func New(reg *registry.Registry, marker FullCleanupMarker, sequence []string, progress ProgressFunc) *Sequencer {
	return &Sequencer{
		registry: reg,
		marker:   marker,
		sequence: append([]string(nil), sequence...),
		progress: progress,
	}
}

// Run is one in-flight or finished cleanup batch.
type Run struct {
	id        string
	cancelled atomic.Bool
	done      chan struct{}

	mu      sync.Mutex
	summary Summary
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Cancel requests cooperative cancellation. The step in flight always runs
// to completion; remaining steps stay pending.
func (r *Run) Cancel() {
	r.cancelled.Store(true)
}

// Done closes when the run has finished, naturally or by cancellation.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Summary returns the final totals. Valid once Done is closed.
func (r *Run) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Start launches the sequence on its own goroutine and returns the run
// handle immediately. Steps execute strictly one at a time so the
// freed-space total is deterministic.
func (s *Sequencer) Start(ctx context.Context, callCtx registry.Context) *Run {
	run := &Run{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
	go s.runSequence(ctx, run, callCtx)
	return run
}

func (s *Sequencer) runSequence(ctx context.Context, run *Run, callCtx registry.Context) {
	defer close(run.done)

	total := len(s.sequence)
	log.Info().Str("run", run.id).Int("steps", total).Msg("Quick cleanup started")

	for _, toolID := range s.sequence {
		s.report(StepUpdate{RunID: run.id, ToolID: toolID, State: StepPending, Total: total})
	}

	var totalFreedMB float64
	var completed int
	var failed []string

	for _, toolID := range s.sequence {
		// Cancellation is checked between steps only.
		if run.cancelled.Load() {
			break
		}

		s.report(StepUpdate{
			RunID:        run.id,
			ToolID:       toolID,
			State:        StepRunning,
			Completed:    completed,
			Total:        total,
			Progress:     fraction(completed, total),
			TotalFreedMB: totalFreedMB,
		})

		result := s.registry.Execute(ctx, toolID, callCtx)
		totalFreedMB += usage.ParseFreedMB(result.Message)
		completed++

		state := StepCompleted
		if !result.Success {
			state = StepFailed
			failed = append(failed, toolID)
		}
		s.report(StepUpdate{
			RunID:        run.id,
			ToolID:       toolID,
			State:        state,
			Message:      result.Message,
			Completed:    completed,
			Total:        total,
			Progress:     fraction(completed, total),
			TotalFreedMB: totalFreedMB,
		})
	}

	cancelled := run.cancelled.Load()
	if !cancelled && s.marker != nil {
		// Stamped on every natural completion, failed steps included.
		s.marker.MarkFullCleanup()
	}

	run.mu.Lock()
	run.summary = Summary{
		RunID:        run.id,
		Cancelled:    cancelled,
		Completed:    completed,
		Total:        total,
		TotalFreedMB: totalFreedMB,
		FailedTools:  failed,
	}
	run.mu.Unlock()

	log.Info().
		Str("run", run.id).
		Bool("cancelled", cancelled).
		Int("completed", completed).
		Float64("freed_mb", totalFreedMB).
		Msg("Quick cleanup finished")
}

func (s *Sequencer) report(update StepUpdate) {
	if s.progress != nil {
		s.progress(update)
	}
}

func fraction(completed, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(completed) / float64(total)
}
