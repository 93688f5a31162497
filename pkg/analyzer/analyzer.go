// Package analyzer holds what the per-file analyzers share: the
// FileAnalyzer contract and progress tracking carried on a context.
package analyzer

import "context"

// FileAnalyzer analyzes a set of source files as one run. Each file is
// analyzed on its own and T holds the merged result. A context carrying a
// Tracker receives one FileDone per file and pass.
type FileAnalyzer[T any] interface {
	Analyze(ctx context.Context, files []string) (T, error)
	Close()
}
