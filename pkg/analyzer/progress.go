package analyzer

import (
	"context"
	"sync"
)

// Progress is a snapshot of a run.
type Progress struct {
	// Pass names the pipeline running, such as "functions" or "class-scan".
	Pass   string
	File   string
	Done   int
	Failed int
	// Total grows with every pass, so a relationship run counts its files
	// twice.
	Total int
}

// ProgressFunc receives a snapshot after every finished file. Calls never
// overlap.
type ProgressFunc func(Progress)

// Tracker counts finished files across the passes of a run.
// It is safe for concurrent use from multiple goroutines.
type Tracker struct {
	mu       sync.Mutex
	state    Progress
	callback ProgressFunc
}

// NewTracker creates a tracker reporting to callback, which may be nil.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// BeginPass names the pass now running and adds its files to the total.
func (t *Tracker) BeginPass(name string, files int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Pass = name
	t.state.Total += files
}

// FileDone records one finished file. A non-nil err counts it as failed.
func (t *Tracker) FileDone(path string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Done++
	if err != nil {
		t.state.Failed++
	}
	t.state.File = path
	if t.callback != nil {
		t.callback(t.state)
	}
}

// Snapshot returns the current counts.
func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context.
// Returns nil if no tracker was set.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
