// Package scope drives the lexer, detector chains and scope engine over a
// set of files.
//
// Every file is analyzed with its own engine.Context and its own result
// subtree, so files run in parallel and their subtrees are merged by path
// afterwards. Relationship mode runs a class scan over all files first and
// then a relationship pass that matches against every class the scan found.
package scope

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/lexscope/internal/fileproc"
	"github.com/panbanda/lexscope/pkg/analyzer"
	"github.com/panbanda/lexscope/pkg/detect"
	"github.com/panbanda/lexscope/pkg/engine"
	"github.com/panbanda/lexscope/pkg/lexer"
	"github.com/panbanda/lexscope/pkg/models"
)

// Cache stores per-file function-mode results keyed by content.
type Cache interface {
	Lookup(path string, content []byte) (*models.File, []models.Diagnostic, bool)
	Store(path string, content []byte, file *models.File, diags []models.Diagnostic) error
}

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*models.Analysis] = (*Analyzer)(nil)

// Analyzer runs scope analysis over files.
type Analyzer struct {
	mode        models.Mode
	workers     int
	maxFileSize int64
	logger      *slog.Logger
	cache       Cache
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMode selects function or relationship analysis.
func WithMode(m models.Mode) Option {
	return func(a *Analyzer) {
		a.mode = m
	}
}

// WithWorkers sets the number of files analyzed concurrently.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxFileSize skips files larger than n bytes. Zero means no limit.
func WithMaxFileSize(n int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = n
	}
}

// WithLogger sets the logger for per-file failures and unrecognized input.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithCache enables result caching in function mode.
func WithCache(c Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// New creates an analyzer. The default mode is function analysis.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{mode: models.ModeFunctions}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Mode returns the configured analysis mode.
func (a *Analyzer) Mode() models.Mode { return a.mode }

// Close releases any resources held by the analyzer.
func (a *Analyzer) Close() {}

// fileResult is the outcome of one pass over one file.
type fileResult struct {
	file        *models.File
	diagnostics []models.Diagnostic
}

// Analyze runs the configured mode over files. Files that fail are listed
// in the returned analysis and do not stop the run. An engine invariant
// violation or cancellation of ctx aborts the run with an error.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*models.Analysis, error) {
	result := &models.Analysis{Mode: a.mode, Tree: models.NewResultTree()}

	var err error
	if a.mode == models.ModeRelations {
		err = a.analyzeRelations(ctx, files, result)
	} else {
		err = a.analyzeFunctions(ctx, files, result)
	}
	if err != nil {
		return nil, err
	}

	result.Tree.Sort()
	result.Summary = models.NewSummary(result, len(files))
	return result, nil
}

func (a *Analyzer) analyzeFunctions(ctx context.Context, files []string, out *models.Analysis) error {
	results, errs, err := a.run(ctx, detect.Functional, files, func(ctx context.Context, path string) (fileResult, error) {
		return a.analyzeCached(ctx, path)
	})
	if err != nil {
		return err
	}
	a.collect(out, results, errs, detect.Functional)
	return nil
}

func (a *Analyzer) analyzeRelations(ctx context.Context, files []string, out *models.Analysis) error {
	scanned, errs, err := a.run(ctx, detect.ClassScan, files, func(ctx context.Context, path string) (fileResult, error) {
		return a.analyzeFile(ctx, path, detect.ClassScan, nil, nil)
	})
	if err != nil {
		return err
	}
	a.collect(out, scanned, errs, detect.ClassScan)

	// Pass 1 is complete for every file before any relationship check runs.
	known := out.Tree.ClassNames()
	ok := make([]string, 0, len(out.Tree.Files))
	for _, f := range out.Tree.Files {
		ok = append(ok, f.Path)
	}

	related, errs, err := a.run(ctx, detect.Relationship, ok, func(ctx context.Context, path string) (fileResult, error) {
		return a.analyzeFile(ctx, path, detect.Relationship, out.Tree.File(path), known)
	})
	if err != nil {
		return err
	}
	// Scan diagnostics are repeated by the relationship pass; keep one copy.
	out.Diagnostics = nil
	a.collect(out, related, errs, detect.Relationship)
	return nil
}

func (a *Analyzer) run(ctx context.Context, pass detect.Pipeline, files []string, fn func(context.Context, string) (fileResult, error)) ([]fileResult, *fileproc.ProcessingErrors, error) {
	results, errs, err := fileproc.ForEachFile(ctx, files, fn,
		fileproc.WithPass(string(pass)),
		fileproc.WithWorkers(a.workers),
		fileproc.WithMaxFileSize(a.maxFileSize),
		fileproc.WithFatal(func(err error) bool { return !engine.IsRecoverable(err) }),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("analysis aborted: %w", err)
	}
	return results, errs, nil
}

// collect merges successful file subtrees and records failures.
func (a *Analyzer) collect(out *models.Analysis, results []fileResult, errs *fileproc.ProcessingErrors, pass detect.Pipeline) {
	for _, r := range results {
		out.Tree.PutFile(r.file)
		out.Diagnostics = append(out.Diagnostics, r.diagnostics...)
	}
	if errs == nil {
		return
	}
	for _, pe := range errs.Sorted() {
		a.logger.Warn("file analysis failed", "file", pe.Path, "pass", string(pass), "error", pe.Err)
		out.Failures = append(out.Failures, models.Failure{
			File:  pe.Path,
			Pass:  string(pass),
			Error: pe.Err.Error(),
		})
	}
}

func (a *Analyzer) analyzeCached(ctx context.Context, path string) (fileResult, error) {
	if a.cache == nil {
		return a.analyzeFile(ctx, path, detect.Functional, nil, nil)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fileResult{}, err
	}
	if f, diags, ok := a.cache.Lookup(path, content); ok {
		return fileResult{file: f, diagnostics: diags}, nil
	}

	r, err := a.analyze(ctx, path, lexer.NewScanner(bytes.NewReader(content)), detect.Functional, nil, nil)
	if err != nil {
		return r, err
	}
	if err := a.cache.Store(path, content, r.file, r.diagnostics); err != nil {
		a.logger.Debug("cache store failed", "file", path, "error", err)
	}
	return r, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, path string, p detect.Pipeline, base *models.File, known models.NameSet) (fileResult, error) {
	fs, err := lexer.Open(path)
	if err != nil {
		return fileResult{}, err
	}
	defer fs.Close()
	return a.analyze(ctx, path, fs.Scanner, p, base, known)
}

// analyze runs one pipeline over one file. When base is given, the pass
// starts from a copy of it; the copy is only returned on success, so a
// failed pass never disturbs earlier results.
func (a *Analyzer) analyze(ctx context.Context, path string, s *lexer.Scanner, p detect.Pipeline, base *models.File, known models.NameSet) (fileResult, error) {
	tree := models.NewResultTree()
	if base != nil {
		tree.PutFile(base.Clone())
	}

	var opts []engine.Option
	if known != nil {
		opts = append(opts, engine.WithKnownClasses(known))
	}
	ec := engine.New(tree, opts...)
	ec.Begin(path)

	diags := newDiagnostics(path)
	line := 1
	chain := detect.NewChain(p,
		detect.WithLogger(a.logger),
		detect.WithUnrecognized(func(_ *engine.Context, w lexer.Window) {
			diags.add(line, w)
		}),
	)

	tr := lexer.NewTokenReader(s)
	for {
		if err := ctx.Err(); err != nil {
			return fileResult{}, err
		}
		chunk, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fileResult{}, fmt.Errorf("reading %s: %w", path, err)
		}

		line = chunk.Line
		ec.AddLines(chunk.Newlines)
		if err := chain.Test(ec, chunk.Tokens); err != nil {
			return fileResult{}, fmt.Errorf("line %d: %w", chunk.Line, err)
		}
	}

	if ec.Depth() > 0 {
		a.logger.Debug("scopes left open at end of file", "file", path, "depth", ec.Depth())
	}

	return fileResult{file: tree.File(path), diagnostics: diags.list}, nil
}

// diagnostics deduplicates unrecognized windows within one file.
type diagnostics struct {
	file string
	seen map[uint64]int
	list []models.Diagnostic
}

func newDiagnostics(file string) *diagnostics {
	return &diagnostics{file: file, seen: make(map[uint64]int)}
}

func (d *diagnostics) add(line int, w lexer.Window) {
	text := w.String()
	key := xxhash.Sum64String(text)
	if i, ok := d.seen[key]; ok {
		d.list[i].Count++
		return
	}
	d.seen[key] = len(d.list)
	d.list = append(d.list, models.Diagnostic{File: d.file, Line: line, Tokens: text, Count: 1})
}
