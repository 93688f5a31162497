package scanner

import (
	"path/filepath"
	"sort"

	"github.com/panbanda/lexscope/internal/scanner"
	"github.com/panbanda/lexscope/pkg/config"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	Files []string
	Roots []string
}

// Service provides file scanning functionality.
type Service struct {
	config *config.Config
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	return s
}

// ScanPaths scans each path and returns the matching source files. A path
// may be a directory or a single file. Files are returned sorted and
// without duplicates.
func (s *Service) ScanPaths(paths []string, recursive bool) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	scan, err := scanner.NewScanner(s.config)
	if err != nil {
		return nil, &ScanError{Path: paths[0], Err: err}
	}

	result := &ScanResult{}
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result.Files = append(result.Files, path)
		}
	}

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}

		if ok, err := scan.ScanFile(absPath); err == nil && ok {
			add(absPath)
			continue
		}

		found, err := scan.ScanDir(absPath, recursive)
		if err != nil {
			return nil, &ScanError{Path: path, Err: err}
		}
		result.Roots = append(result.Roots, absPath)
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(result.Files)
	return result, nil
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan directory " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
