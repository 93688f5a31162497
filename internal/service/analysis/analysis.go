package analysis

import (
	"context"
	"log/slog"

	"github.com/panbanda/lexscope/pkg/analyzer/graph"
	"github.com/panbanda/lexscope/pkg/analyzer/scope"
	"github.com/panbanda/lexscope/pkg/config"
	"github.com/panbanda/lexscope/pkg/models"
)

// Service orchestrates code analysis operations.
type Service struct {
	config *config.Config
	cache  scope.Cache
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache sets the function-mode result cache.
func WithCache(c scope.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the logger passed to the analyzers.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Result is an analysis plus, in relationship mode, its class graph.
type Result struct {
	Analysis *models.Analysis
	Graph    *models.RelationGraph
}

// Options overrides configuration for a single run.
type Options struct {
	Workers     int
	MaxFileSize int64
	EdgeKinds   []models.EdgeKind
}

func (s *Service) scopeOptions(mode models.Mode, opts Options) []scope.Option {
	workers := opts.Workers
	if workers <= 0 {
		workers = s.config.Analysis.Workers
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = s.config.Analysis.MaxFileSize
	}

	out := []scope.Option{
		scope.WithMode(mode),
		scope.WithWorkers(workers),
		scope.WithMaxFileSize(maxSize),
		scope.WithLogger(s.logger),
	}
	if mode == models.ModeFunctions && s.cache != nil {
		out = append(out, scope.WithCache(s.cache))
	}
	return out
}

// AnalyzeFunctions runs function analysis on the given files.
func (s *Service) AnalyzeFunctions(ctx context.Context, files []string, opts Options) (*Result, error) {
	a := scope.New(s.scopeOptions(models.ModeFunctions, opts)...)
	defer a.Close()

	result, err := a.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}
	return &Result{Analysis: result}, nil
}

// AnalyzeRelations runs the two-pass relationship analysis on the given
// files and builds the class graph from the result.
func (s *Service) AnalyzeRelations(ctx context.Context, files []string, opts Options) (*Result, error) {
	a := scope.New(s.scopeOptions(models.ModeRelations, opts)...)
	defer a.Close()

	result, err := a.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}

	var graphOpts []graph.Option
	if len(opts.EdgeKinds) > 0 {
		graphOpts = append(graphOpts, graph.WithKinds(opts.EdgeKinds...))
	}
	return &Result{
		Analysis: result,
		Graph:    graph.New(graphOpts...).Analyze(result.Tree),
	}, nil
}

// Analyze runs the given mode.
func (s *Service) Analyze(ctx context.Context, mode models.Mode, files []string, opts Options) (*Result, error) {
	if mode == models.ModeRelations {
		return s.AnalyzeRelations(ctx, files, opts)
	}
	return s.AnalyzeFunctions(ctx, files, opts)
}
