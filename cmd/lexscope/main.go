package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/lexscope/internal/progress"
	"github.com/panbanda/lexscope/pkg/config"
)

var (
	version = "dev"
	commit  = "none"    // set via ldflags at build time
	date    = "unknown" // set via ldflags at build time
)

// ErrMissingDirectory is returned when a command is run without its base
// directory argument.
var ErrMissingDirectory = errors.New("missing required directory argument")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "lexscope",
		Usage:   "Scope-aware complexity and class relationship analysis",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Description: `lexscope reads C#-style source files token by token, tracks the
namespace, class and function scopes they open and close, and reports
per-function complexity and line counts or the inheritance, association
and using relationships between classes.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{config.EnvConfigPath},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon, yaml, xml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(newLogger(c.App.ErrWriter, c.Bool("verbose")))
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			functionsCmd(),
			relationsCmd(),
			watchCmd(),
			mcpCmd(),
			configCmd(),
		},
	}
}

// newLogger returns a text logger on w. Unrecognized input is only logged
// in verbose mode.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// getPaths returns the positional arguments. The first one is the base
// directory and is required.
func getPaths(c *cli.Context) ([]string, error) {
	if c.Args().Len() == 0 {
		return nil, ErrMissingDirectory
	}
	return c.Args().Slice(), nil
}

// loadConfig loads --config when given, otherwise the first config file in
// the standard locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.LoadOrDefault(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// newProgress returns a bar on stderr, or nil when stderr is not a terminal
// or debug logs would interleave with it.
func newProgress(c *cli.Context, label string) *progress.Bar {
	if c.Bool("verbose") || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progress.New(os.Stderr, label)
}
