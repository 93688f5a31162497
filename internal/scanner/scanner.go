package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/gobwas/glob"

	"github.com/panbanda/lexscope/pkg/config"
)

var (
	// ErrRootNotExist indicates the base directory does not exist.
	ErrRootNotExist = errors.New("directory does not exist")

	// ErrRootNotDir indicates the base path is not a directory.
	ErrRootNotDir = errors.New("not a directory")

	// ErrInvalidPattern indicates an include pattern could not be compiled.
	ErrInvalidPattern = errors.New("invalid file pattern")
)

// matcher applies gitignore-style patterns relative to base.
type matcher struct {
	base string
	m    gitignore.Matcher
}

// Scanner finds source files in a directory.
type Scanner struct {
	config   *config.Config
	include  []glob.Glob
	matchers []matcher
}

// NewScanner creates a new file scanner. Include patterns come from
// cfg.Analysis.Patterns and are matched against file base names.
func NewScanner(cfg *config.Config) (*Scanner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{config: cfg}
	for _, p := range cfg.Analysis.Patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		s.include = append(s.include, g)
	}
	return s, nil
}

// findGitRoot returns the worktree root of the repository containing start,
// or "" when start is not inside a repository.
func findGitRoot(start string) string {
	repo, err := git.PlainOpenWithOptions(start, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

// loadExcludePatterns builds the matchers for root: config patterns and
// directories relative to root, and .gitignore files relative to the
// repository root when enabled.
func (s *Scanner) loadExcludePatterns(root string) {
	s.matchers = nil

	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(dir+"/", nil))
	}
	if len(patterns) > 0 {
		s.matchers = append(s.matchers, matcher{base: root, m: gitignore.NewMatcher(patterns)})
	}

	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(root)
	if gitRoot == "" {
		return
	}
	// ReadPatterns walks every .gitignore below the repository root.
	if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil && len(gitPatterns) > 0 {
		if resolved, err := filepath.EvalSymlinks(gitRoot); err == nil {
			gitRoot = resolved
		}
		s.matchers = append(s.matchers, matcher{base: gitRoot, m: gitignore.NewMatcher(gitPatterns)})
	}
}

// isExcluded checks if an absolute path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	for _, m := range s.matchers {
		rel, err := filepath.Rel(m.base, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if m.m.Match(strings.Split(rel, string(filepath.Separator)), isDir) {
			return true
		}
	}
	return false
}

// Matches reports whether the base name of path matches an include pattern.
func (s *Scanner) Matches(path string) bool {
	base := filepath.Base(path)
	for _, g := range s.include {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// ScanDir lists the files under root that match the include patterns.
// Subdirectories are only entered when recursive is set. Symlinks that
// resolve outside root are skipped.
func (s *Scanner) ScanDir(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", root, ErrRootNotExist)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrRootNotDir)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		abs := filepath.Join(absRoot, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if !recursive || s.isExcluded(abs, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(abs, false) || !s.Matches(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// The separator keeps "/root2" from matching "/root".
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if s.config.ShouldExclude(path) {
		return false, nil
	}
	return s.Matches(path), nil
}
