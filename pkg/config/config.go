package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "LEXSCOPE_CONFIG"

// Config holds all configuration options for lexscope.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Thresholds for reported metrics
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls file discovery and the analysis mode.
type AnalysisConfig struct {
	Patterns    []string `koanf:"patterns" toml:"patterns"`
	Recursive   bool     `koanf:"recursive" toml:"recursive"`
	Relations   bool     `koanf:"relations" toml:"relations"`
	Workers     int      `koanf:"workers" toml:"workers"`             // 0 means 2x NumCPU
	MaxFileSize int64    `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 means no limit
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	Complexity int `koanf:"complexity" toml:"complexity"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format           string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml, xml
	Color            bool   `koanf:"color" toml:"color"`
	TreeFile         string `koanf:"tree_file" toml:"tree_file"`
	ShowUnrecognized bool   `koanf:"show_unrecognized" toml:"show_unrecognized"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Patterns:  []string{"*.cs"},
			Recursive: false,
		},
		Thresholds: ThresholdConfig{
			Complexity: 10,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.Designer.cs",
				"*.g.cs",
			},
			Dirs: []string{
				".git",
				".lexscope",
				"bin",
				"obj",
				"packages",
				"node_modules",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".lexscope/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:   "text",
			Color:    true,
			TreeFile: "analysisResults.xml",
		},
	}
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

func read(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, err
	}
	return k, nil
}

// Load loads configuration from a file. The parser is chosen by extension,
// defaulting to TOML. The document is validated against the config schema
// before it is applied over the defaults.
func Load(path string) (*Config, error) {
	k, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := validate(path, k.Raw()); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the file at path against the config schema without
// loading it.
func Validate(path string) error {
	k, err := read(path)
	if err != nil {
		return err
	}
	return validate(path, k.Raw())
}

// Find returns the first config file in the standard locations, or "".
func Find() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	configNames := []string{
		"lexscope.toml",
		"lexscope.yaml",
		"lexscope.yml",
		"lexscope.json",
		".lexscope.toml",
		".lexscope.yaml",
		".lexscope.yml",
		".lexscope.json",
	}
	searchDirs := []string{".", ".lexscope"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := Find(); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis. Patterns
// without a slash match the base name; others match the slash-separated path.
func (c *Config) ShouldExclude(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(slashed, "/"+dir+"/") || strings.HasPrefix(slashed, dir+"/") {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		if strings.Contains(pattern, "/") {
			if g.Match(slashed) {
				return true
			}
		} else if g.Match(base) {
			return true
		}
	}
	return false
}
