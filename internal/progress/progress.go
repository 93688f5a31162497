// Package progress draws per-file analysis progress on a terminal.
package progress

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/lexscope/pkg/analyzer"
)

// Bar wraps a progress bar fed by an analyzer.Tracker. A nil *Bar is a
// valid no-op bar.
type Bar struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	label string
	pass  string
	w     io.Writer
	done  int
}

// New creates a bar writing to w. The total is learned from the tracker as
// passes register their files, so a relationship run counts both passes.
func New(w io.Writer, label string) *Bar {
	bar := progressbar.NewOptions(0,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, label: label, w: w}
}

// Track returns a context carrying a tracker that advances the bar.
func (b *Bar) Track(ctx context.Context) context.Context {
	if b == nil {
		return ctx
	}
	return analyzer.WithTracker(ctx, analyzer.NewTracker(b.update))
}

func (b *Bar) update(p analyzer.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Pass != b.pass {
		b.pass = p.Pass
		b.bar.Describe(fmt.Sprintf("%s (%s)", b.label, p.Pass))
	}
	if p.Total != b.bar.GetMax() {
		b.bar.ChangeMax(p.Total)
	}
	b.done = p.Done
	_ = b.bar.Set(p.Done)
}

// FinishSuccess clears the bar.
func (b *Bar) FinishSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.bar.Finish()
	_ = b.bar.Clear()
}

// FinishError clears the bar and prints err.
func (b *Bar) FinishError(err error) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.bar.Finish()
	_ = b.bar.Clear()
	fmt.Fprintf(b.w, "  %s error: %v\n", b.label, err)
}
