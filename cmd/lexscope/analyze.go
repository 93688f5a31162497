package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/lexscope/internal/cache"
	"github.com/panbanda/lexscope/internal/output"
	"github.com/panbanda/lexscope/internal/report"
	"github.com/panbanda/lexscope/internal/service/analysis"
	scannerSvc "github.com/panbanda/lexscope/internal/service/scanner"
	"github.com/panbanda/lexscope/pkg/config"
	"github.com/panbanda/lexscope/pkg/models"
)

// discoveryFlags select the files to analyze.
func discoveryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "recursive",
			Aliases: []string{"r"},
			Usage:   "Descend into subdirectories",
		},
		&cli.StringSliceFlag{
			Name:    "pattern",
			Aliases: []string{"p"},
			Usage:   "File name pattern to include (repeatable, default *.cs)",
		},
		&cli.IntFlag{
			Name:  "complexity-threshold",
			Usage: "Report functions whose complexity exceeds this value",
		},
	}
}

// analysisFlags are shared by analyze, functions and relations.
func analysisFlags() []cli.Flag {
	return append(discoveryFlags(),
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Files analyzed in parallel (default 2x CPUs)",
		},
		&cli.BoolFlag{
			Name:  "show-unrecognized",
			Usage: "List input no detector recognized",
		},
		&cli.BoolFlag{
			Name:  "xml",
			Usage: "Save the result tree as XML",
		},
		&cli.StringFlag{
			Name:  "xml-file",
			Usage: "Path for --xml (default from config, analysisResults.xml)",
		},
		&cli.StringFlag{
			Name:  "html",
			Usage: "Write an HTML report to `FILE`",
		},
		&cli.StringSliceFlag{
			Name:  "kinds",
			Usage: "Relationship kinds in the class graph: inheritance, association, using",
		},
	)
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze functions, or class relationships with --relations",
		ArgsUsage: "<dir> [path...]",
		Flags: append(analysisFlags(), &cli.BoolFlag{
			Name:  "relations",
			Usage: "Analyze class relationships instead of functions",
		}),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			mode := models.ModeFunctions
			if c.IsSet("relations") {
				cfg.Analysis.Relations = c.Bool("relations")
			}
			if cfg.Analysis.Relations {
				mode = models.ModeRelations
			}
			return runAnalysis(c, cfg, mode)
		},
	}
}

func functionsCmd() *cli.Command {
	return &cli.Command{
		Name:      "functions",
		Aliases:   []string{"fn"},
		Usage:     "Report complexity, lines and statements per function",
		ArgsUsage: "<dir> [path...]",
		Flags:     analysisFlags(),
		Action:    modeAction(models.ModeFunctions),
	}
}

func relationsCmd() *cli.Command {
	return &cli.Command{
		Name:      "relations",
		Aliases:   []string{"rel"},
		Usage:     "Report inheritance, association and using between classes",
		ArgsUsage: "<dir> [path...]",
		Flags:     analysisFlags(),
		Action:    modeAction(models.ModeRelations),
	}
}

func modeAction(mode models.Mode) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		return runAnalysis(c, cfg, mode)
	}
}

// applyFlags overrides configuration with the flags that were set.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("recursive") {
		cfg.Analysis.Recursive = c.Bool("recursive")
	}
	if patterns := c.StringSlice("pattern"); len(patterns) > 0 {
		cfg.Analysis.Patterns = patterns
	}
	if c.IsSet("complexity-threshold") {
		cfg.Thresholds.Complexity = c.Int("complexity-threshold")
	}
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if c.IsSet("show-unrecognized") {
		cfg.Output.ShowUnrecognized = c.Bool("show-unrecognized")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
}

// newAnalysisService builds the service with a cache when caching is on.
func newAnalysisService(cfg *config.Config) (*analysis.Service, error) {
	opts := []analysis.Option{analysis.WithConfig(cfg), analysis.WithLogger(slog.Default())}
	if cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		opts = append(opts, analysis.WithCache(c))
	}
	return analysis.New(opts...), nil
}

func runAnalysis(c *cli.Context, cfg *config.Config, mode models.Mode) error {
	paths, err := getPaths(c)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	kinds, err := models.ParseEdgeKinds(c.StringSlice("kinds"))
	if err != nil {
		return err
	}

	scan, err := scannerSvc.New(scannerSvc.WithConfig(cfg)).ScanPaths(paths, cfg.Analysis.Recursive)
	if err != nil {
		return err
	}
	if len(scan.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	svc, err := newAnalysisService(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := newProgress(c, fmt.Sprintf("Analyzing %s...", mode))
	result, err := svc.Analyze(bar.Track(ctx), mode, scan.Files, analysis.Options{EdgeKinds: kinds})
	if err != nil {
		bar.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	bar.FinishSuccess()

	if c.Bool("xml") {
		path := c.String("xml-file")
		if path == "" {
			path = cfg.Output.TreeFile
		}
		if err := result.Analysis.Tree.SaveXML(path); err != nil {
			return fmt.Errorf("failed to save result tree: %w", err)
		}
		fmt.Fprintln(os.Stderr, color.GreenString("Result tree written to %s", path))
	}

	if htmlPath := c.String("html"); htmlPath != "" {
		if err := writeHTML(htmlPath, rootOf(scan, paths), result, cfg.Thresholds.Complexity); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, color.GreenString("HTML report written to %s", htmlPath))
	}

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.New(result.Analysis, result.Graph, report.Options{
		Threshold:        cfg.Thresholds.Complexity,
		ShowUnrecognized: cfg.Output.ShowUnrecognized,
	}))
}

func rootOf(scan *scannerSvc.ScanResult, paths []string) string {
	if len(scan.Roots) > 0 {
		return scan.Roots[0]
	}
	return paths[0]
}

func writeHTML(path, root string, result *analysis.Result, threshold int) error {
	renderer, err := report.NewRenderer()
	if err != nil {
		return err
	}
	page := report.NewPage(root, result.Analysis, result.Graph, threshold)
	if err := renderer.RenderToFile(page, path); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}
