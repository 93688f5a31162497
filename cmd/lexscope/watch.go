package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/lexscope/internal/output"
	"github.com/panbanda/lexscope/internal/report"
	"github.com/panbanda/lexscope/internal/scanner"
	"github.com/panbanda/lexscope/internal/service/analysis"
	"github.com/panbanda/lexscope/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch for file changes and re-analyze functions",
		ArgsUsage: "<dir>",
		Flags: append(discoveryFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before a changed file is analyzed",
			},
		),
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	paths, err := getPaths(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	absPath, err := filepath.Abs(paths[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	scan, err := scanner.NewScanner(cfg)
	if err != nil {
		return err
	}
	svc, err := newAnalysisService(cfg)
	if err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(absPath, cfg,
		watch.WithDebounce(c.Duration("debounce")),
		watch.WithRecursive(cfg.Analysis.Recursive),
		watch.WithFilter(scan.Matches),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	formatter := output.NewWriterFormatter(output.FormatText, os.Stdout, cfg.Output.Color)
	watcher.SetCallback(func(ctx context.Context, changed []string) {
		result, err := svc.AnalyzeFunctions(ctx, changed, analysis.Options{})
		if err != nil {
			color.Red("Analysis error: %v", err)
			return
		}
		rep := report.New(result.Analysis, nil, report.Options{Threshold: cfg.Thresholds.Complexity})
		if err := formatter.Output(rep); err != nil {
			color.Red("Output error: %v", err)
		}
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println()
	color.Yellow("Stopped watching")
	return nil
}
