package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-git/go-git/v5"

	"github.com/panbanda/lexscope/internal/testutil"
	"github.com/panbanda/lexscope/pkg/config"
)

func relNames(t *testing.T, root string, files []string) []string {
	t.Helper()
	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func newScanner(t *testing.T, cfg *config.Config) *Scanner {
	t.Helper()
	s, err := NewScanner(cfg)
	if err != nil {
		t.Fatalf("NewScanner() error: %v", err)
	}
	return s
}

func TestNewScanner(t *testing.T) {
	s := newScanner(t, nil)
	if s.config == nil {
		t.Error("scanner.config should not be nil when passing nil")
	}
	if len(s.include) != 1 {
		t.Errorf("default scanner should have one include pattern, got %d", len(s.include))
	}

	cfg := config.DefaultConfig()
	s = newScanner(t, cfg)
	if s.config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestNewScannerInvalidPattern(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Patterns = []string{"[*.cs"}

	_, err := NewScanner(cfg)
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("NewScanner() error = %v, want ErrInvalidPattern", err)
	}
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	testutil.CreateFileTree(t, tmpDir, map[string]string{
		"Program.cs":      "class Program {}\n",
		"Dog.cs":          "class Dog {}\n",
		"README.md":       "# zoo\n",
		"Zoo/Animal.cs":   "class Animal {}\n",
		"Zoo/Deep/Cat.cs": "class Cat {}\n",
	})

	s := newScanner(t, nil)

	flat, err := s.ScanDir(tmpDir, false)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relNames(t, tmpDir, flat); len(got) != 2 || got[0] != "Dog.cs" || got[1] != "Program.cs" {
		t.Errorf("ScanDir(recursive=false) = %v", got)
	}

	deep, err := s.ScanDir(tmpDir, true)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	want := []string{"Dog.cs", "Program.cs", "Zoo/Animal.cs", "Zoo/Deep/Cat.cs"}
	got := relNames(t, tmpDir, deep)
	if len(got) != len(want) {
		t.Fatalf("ScanDir(recursive=true) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanDir(recursive=true)[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanDirCustomPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	testutil.CreateFileTree(t, tmpDir, map[string]string{
		"A.cs":   "",
		"B.java": "",
		"C.txt":  "",
	})

	cfg := config.DefaultConfig()
	cfg.Analysis.Patterns = []string{"*.{cs,java}"}

	result, err := newScanner(t, cfg).ScanDir(tmpDir, false)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relNames(t, tmpDir, result); len(got) != 2 {
		t.Errorf("ScanDir() = %v, want A.cs and B.java", got)
	}
}

func TestScanDirMissing(t *testing.T) {
	s := newScanner(t, nil)

	_, err := s.ScanDir(filepath.Join(t.TempDir(), "nope"), true)
	if !errors.Is(err, ErrRootNotExist) {
		t.Errorf("ScanDir() error = %v, want ErrRootNotExist", err)
	}

	file := filepath.Join(t.TempDir(), "File.cs")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err = s.ScanDir(file, true)
	if !errors.Is(err, ErrRootNotDir) {
		t.Errorf("ScanDir() error = %v, want ErrRootNotDir", err)
	}
}

func TestScanDirExcludesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	testutil.CreateFileTree(t, tmpDir, map[string]string{
		"bin/Debug/Gen.cs": "",
		"obj/Temp.cs":      "",
		"src/obj/Temp.cs":  "",
		"Main.cs":          "",
	})

	result, err := newScanner(t, nil).ScanDir(tmpDir, true)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relNames(t, tmpDir, result); len(got) != 1 || got[0] != "Main.cs" {
		t.Errorf("ScanDir() = %v, want only Main.cs", got)
	}
}

func TestScanDirExcludesPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	testutil.CreateFileTree(t, tmpDir, map[string]string{
		"Form1.cs":          "",
		"Form1.Designer.cs": "",
		"ui/Model.g.cs":     "",
	})

	result, err := newScanner(t, nil).ScanDir(tmpDir, true)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relNames(t, tmpDir, result); len(got) != 1 || got[0] != "Form1.cs" {
		t.Errorf("ScanDir() = %v, want only Form1.cs", got)
	}
}

func TestScanDirWithGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := git.PlainInit(tmpDir, false); err != nil {
		t.Fatalf("PlainInit() error: %v", err)
	}
	testutil.CreateFileTree(t, tmpDir, map[string]string{
		".gitignore":         "skipme\n",
		"Main.cs":            "",
		"skipme/Skip.cs":     "",
		"src/App.cs":         "",
		"src/skipme/Skip.cs": "",
	})

	scanRoot := filepath.Join(tmpDir, "src")

	result, err := newScanner(t, nil).ScanDir(scanRoot, true)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relNames(t, scanRoot, result); len(got) != 1 || got[0] != "App.cs" {
		t.Errorf("ScanDir() = %v, want only App.cs", got)
	}

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false
	result, err = newScanner(t, cfg).ScanDir(tmpDir, true)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relNames(t, tmpDir, result); len(got) != 4 {
		t.Errorf("ScanDir() with gitignore disabled = %v, want 4 files", got)
	}
}

func TestScanDirEmptyDirectory(t *testing.T) {
	result, err := newScanner(t, nil).ScanDir(t.TempDir(), true)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ScanDir() on empty dir = %v", result)
	}
}

func TestScanFile(t *testing.T) {
	tmpDir := t.TempDir()
	testutil.CreateFileTree(t, tmpDir, map[string]string{
		"Dog.cs":          "",
		"Dog.Designer.cs": "",
		"notes.txt":       "",
	})

	s := newScanner(t, nil)
	tests := []struct {
		name string
		want bool
	}{
		{"Dog.cs", true},
		{"Dog.Designer.cs", false},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ScanFile(filepath.Join(tmpDir, tt.name))
			if err != nil {
				t.Fatalf("ScanFile() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ScanFile(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if ok, _ := s.ScanFile(tmpDir); ok {
		t.Error("ScanFile() on a directory should return false")
	}
	if _, err := s.ScanFile(filepath.Join(tmpDir, "Missing.cs")); err == nil {
		t.Error("ScanFile() should error for a missing file")
	}
}

func TestIsWithinRoot(t *testing.T) {
	tests := []struct {
		path, root string
		want       bool
	}{
		{"/root/src/a.cs", "/root", true},
		{"/root", "/root", true},
		{"/root2/a.cs", "/root", false},
		{"/other/a.cs", "/root", false},
	}
	for _, tt := range tests {
		if got := isWithinRoot(tt.path, tt.root); got != tt.want {
			t.Errorf("isWithinRoot(%q, %q) = %v, want %v", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestFindGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if got := findGitRoot(tmpDir); got != "" {
		t.Errorf("findGitRoot() on non-git dir should return empty string, got %q", got)
	}

	if _, err := git.PlainInit(tmpDir, false); err != nil {
		t.Fatalf("PlainInit() error: %v", err)
	}
	subDir := filepath.Join(tmpDir, "src", "pkg")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	want, _ := filepath.EvalSymlinks(tmpDir)
	got, _ := filepath.EvalSymlinks(findGitRoot(subDir))
	if got != want {
		t.Errorf("findGitRoot() from subdir = %q, want %q", got, want)
	}
}

func TestScanDirWithUnresolvableSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Symlink("/nonexistent/path/File.cs", filepath.Join(tmpDir, "Dangling.cs")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}
	testutil.CreateFileTree(t, tmpDir, map[string]string{"Real.cs": ""})

	result, err := newScanner(t, nil).ScanDir(tmpDir, true)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("ScanDir() should skip the dangling symlink, got %v", result)
	}
}

func TestScanDirWithSymlinkOutsideRoot(t *testing.T) {
	tmpDir := t.TempDir()
	outside := t.TempDir()
	testutil.CreateFileTree(t, outside, map[string]string{"Outside.cs": ""})
	testutil.CreateFileTree(t, tmpDir, map[string]string{"real/Inside.cs": ""})

	if err := os.Symlink(filepath.Join(outside, "Outside.cs"), filepath.Join(tmpDir, "Linked.cs")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}

	result, err := newScanner(t, nil).ScanDir(tmpDir, true)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	for _, f := range result {
		if filepath.Base(f) == "Linked.cs" {
			t.Error("ScanDir() should not include symlinks that leave the root")
		}
	}
}
