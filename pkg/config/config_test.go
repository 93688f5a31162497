package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if len(cfg.Analysis.Patterns) != 1 || cfg.Analysis.Patterns[0] != "*.cs" {
		t.Errorf("Analysis.Patterns = %v, want [*.cs]", cfg.Analysis.Patterns)
	}
	if cfg.Analysis.Recursive {
		t.Error("Analysis.Recursive should be false by default")
	}
	if cfg.Analysis.Relations {
		t.Error("Analysis.Relations should be false by default")
	}

	if cfg.Thresholds.Complexity != 10 {
		t.Errorf("Thresholds.Complexity = %d, want 10", cfg.Thresholds.Complexity)
	}

	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Exclude.Dirs should have default values")
	}

	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}

	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if cfg.Output.TreeFile != "analysisResults.xml" {
		t.Errorf("Output.TreeFile = %s, want analysisResults.xml", cfg.Output.TreeFile)
	}
}

func TestLoadTOML(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "lexscope.toml", `
[analysis]
patterns = ["*.cs", "*.cshtml"]
recursive = true
workers = 4

[thresholds]
complexity = 15

[exclude]
dirs = ["bin", "custom_exclude"]
patterns = ["*.generated.cs"]

[cache]
enabled = false

[output]
format = "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.Analysis.Recursive {
		t.Error("Analysis.Recursive should be true")
	}
	if len(cfg.Analysis.Patterns) != 2 {
		t.Errorf("Analysis.Patterns = %v", cfg.Analysis.Patterns)
	}
	if cfg.Analysis.Workers != 4 {
		t.Errorf("Analysis.Workers = %d, want 4", cfg.Analysis.Workers)
	}
	if cfg.Thresholds.Complexity != 15 {
		t.Errorf("Thresholds.Complexity = %d, want 15", cfg.Thresholds.Complexity)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want default 24", cfg.Cache.TTL)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "lexscope.yaml", `
analysis:
  relations: true

thresholds:
  complexity: 20

output:
  format: markdown
  show_unrecognized: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.Analysis.Relations {
		t.Error("Analysis.Relations should be true")
	}
	if cfg.Thresholds.Complexity != 20 {
		t.Errorf("Thresholds.Complexity = %d, want 20", cfg.Thresholds.Complexity)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
	if !cfg.Output.ShowUnrecognized {
		t.Error("Output.ShowUnrecognized should be true")
	}
}

func TestLoadJSON(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "lexscope.json", `{
  "analysis": {
    "max_file_size": 1048576
  },
  "thresholds": {
    "complexity": 25
  },
  "output": {
    "format": "xml",
    "tree_file": "out/tree.xml"
  }
}`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.MaxFileSize != 1048576 {
		t.Errorf("Analysis.MaxFileSize = %d, want 1048576", cfg.Analysis.MaxFileSize)
	}
	if cfg.Thresholds.Complexity != 25 {
		t.Errorf("Thresholds.Complexity = %d, want 25", cfg.Thresholds.Complexity)
	}
	if cfg.Output.TreeFile != "out/tree.xml" {
		t.Errorf("Output.TreeFile = %s, want out/tree.xml", cfg.Output.TreeFile)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/lexscope.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "lexscope.toml", `[analysis
invalid toml`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid config")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "valid",
			file:    "ok.toml",
			content: "[analysis]\nrecursive = true\n",
		},
		{
			name:    "unknown section",
			file:    "section.toml",
			content: "[churn]\ndays = 30\n",
			wantErr: "invalid config",
		},
		{
			name:    "unknown format",
			file:    "format.yaml",
			content: "output:\n  format: html\n",
			wantErr: "invalid config",
		},
		{
			name:    "negative workers",
			file:    "workers.json",
			content: `{"analysis": {"workers": -1}}`,
			wantErr: "invalid config",
		},
		{
			name:    "wrong type",
			file:    "type.toml",
			content: "[analysis]\nrecursive = \"yes\"\n",
			wantErr: "invalid config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, tt.file, tt.content)
			err := Validate(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should reject a config that fails validation")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvConfigPath, "")

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}
	if cfg.Thresholds.Complexity != 10 {
		t.Errorf("LoadOrDefault() returned non-default Complexity: %d", cfg.Thresholds.Complexity)
	}
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv(EnvConfigPath, "")

	if err := os.Mkdir(filepath.Join(tmpDir, ".lexscope"), 0755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, filepath.Join(tmpDir, ".lexscope"), "lexscope.toml", "[thresholds]\ncomplexity = 999\n")

	if got := Find(); got != filepath.Join(".lexscope", "lexscope.toml") {
		t.Errorf("Find() = %q", got)
	}

	cfg := LoadOrDefault()
	if cfg.Thresholds.Complexity != 999 {
		t.Errorf("LoadOrDefault() should load from file, got Complexity=%d", cfg.Thresholds.Complexity)
	}
}

func TestFindFromEnv(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.yaml", "cache:\n  enabled: false\n")
	t.Setenv(EnvConfigPath, path)

	if got := Find(); got != path {
		t.Errorf("Find() = %q, want %q", got, path)
	}
	if cfg := LoadOrDefault(); cfg.Cache.Enabled {
		t.Error("LoadOrDefault() should honor the environment path")
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		// Excluded directories
		{"bin/Debug/App.cs", true},
		{"src/obj/Temp.cs", true},
		{".git/objects/file", true},

		// Excluded patterns
		{"Form1.Designer.cs", true},
		{"src/Model.g.cs", true},

		// Not excluded
		{"Program.cs", false},
		{"src/Zoo/Dog.cs", false},
		{"src/binary/Reader.cs", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldExcludeCustomPatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "*Tests.cs", "legacy/**/*.cs", "[")
	cfg.Exclude.Dirs = append(cfg.Exclude.Dirs, "custom_exclude")

	tests := []struct {
		path string
		want bool
	}{
		{"DogTests.cs", true},
		{"legacy/old/Deep/Thing.cs", true},
		{"custom_exclude/File.cs", true},
		{"src/legacy.cs", false},
		{"Program.cs", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSchema(t *testing.T) {
	if !strings.Contains(string(Schema()), `"analysis"`) {
		t.Error("Schema() should describe the analysis section")
	}
}
