// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/panbanda/lexscope/pkg/analyzer"
	"github.com/sourcegraph/conc/pool"
)

// ErrFileTooLarge is reported for files above the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error { return e.Err }

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Sorted returns the collected errors ordered by path.
func (e *ProcessingErrors) Sorted() []ProcessingError {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ProcessingError, len(e.Errors))
	copy(out, e.Errors)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns nil (ProcessingErrors doesn't wrap a single error).
func (e *ProcessingErrors) Unwrap() error {
	return nil
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// Scanning is I/O bound, so workers outnumber cores.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// FatalFunc reports whether err must stop the whole run instead of being
// recorded against its file.
type FatalFunc func(err error) bool

type config struct {
	workers    int
	maxSize    int64
	pass       string
	onProgress ProgressFunc
	isFatal    FatalFunc
}

// Option configures a processing run.
type Option func(*config)

// WithWorkers sets the worker count. Values <= 0 use 2x NumCPU.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithMaxFileSize skips files larger than n bytes, recording
// ErrFileTooLarge for them. Zero disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(c *config) { c.maxSize = n }
}

// WithPass names the run for an analyzer.Tracker carried by the context.
func WithPass(name string) Option {
	return func(c *config) { c.pass = name }
}

// WithProgress sets a callback invoked after every file.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) { c.onProgress = fn }
}

// WithFatal marks errors that cancel the remaining files.
func WithFatal(fn FatalFunc) Option {
	return func(c *config) { c.isFatal = fn }
}

// ForEachFile processes files in parallel, calling fn for each file.
// Per-file errors are collected and do not stop other files. A fatal error,
// as classified by WithFatal, cancels files not yet started and is returned
// as the third value; so is cancellation of ctx. Results come back in
// arbitrary order. Progress is also reported to any analyzer.Tracker carried
// by ctx.
func ForEachFile[T any](ctx context.Context, files []string, fn func(context.Context, string) (T, error), opts ...Option) ([]T, *ProcessingErrors, error) {
	if len(files) == 0 {
		return nil, nil, ctx.Err()
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.BeginPass(cfg.pass, len(files))
	}

	results := make([]T, 0, len(files))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	done := func(path string, err error) {
		if cfg.onProgress != nil {
			cfg.onProgress()
		}
		if tracker != nil {
			tracker.FileDone(path, err)
		}
	}

	p := pool.New().WithMaxGoroutines(cfg.workers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, path := range files {
		p.Go(func(ctx context.Context) error {
			var fileErr error
			defer func() { done(path, fileErr) }()

			// Check for cancellation before processing
			if err := ctx.Err(); err != nil {
				return nil
			}

			if cfg.maxSize > 0 {
				if info, err := os.Stat(path); err == nil && info.Size() > cfg.maxSize {
					fileErr = ErrFileTooLarge
					errs.Add(path, fileErr)
					return nil
				}
			}

			result, err := fn(ctx, path)
			if err != nil {
				fileErr = err
				if cfg.isFatal != nil && cfg.isFatal(err) {
					return ProcessingError{Path: path, Err: err}
				}
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	fatal := p.Wait()
	if fatal == nil {
		fatal = ctx.Err()
	}

	if !errs.HasErrors() {
		return results, nil, fatal
	}
	return results, errs, fatal
}
