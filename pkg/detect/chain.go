package detect

import (
	"log/slog"

	"github.com/panbanda/lexscope/pkg/engine"
	"github.com/panbanda/lexscope/pkg/lexer"
	"github.com/panbanda/lexscope/pkg/models"
)

// Pipeline names a chain configuration.
type Pipeline string

const (
	// Functional records namespaces, classes and functions with metrics.
	Functional Pipeline = "functions"
	// ClassScan records namespaces and classes only.
	ClassScan Pipeline = "class-scan"
	// Relationship records functions and class relationships against the
	// classes found by ClassScan.
	Relationship Pipeline = "relations"
)

// UnrecognizedFunc receives windows no detector matched.
type UnrecognizedFunc func(c *engine.Context, w lexer.Window)

// Chain tests detectors in order; the first match wins.
type Chain struct {
	pipeline     Pipeline
	detectors    []Detector
	logger       *slog.Logger
	unrecognized UnrecognizedFunc
}

// Option is a functional option for configuring a Chain.
type Option func(*Chain)

// WithLogger sets the logger for unrecognized windows.
func WithLogger(l *slog.Logger) Option {
	return func(ch *Chain) {
		ch.logger = l
	}
}

// WithUnrecognized registers a callback for unrecognized windows.
func WithUnrecognized(fn UnrecognizedFunc) Option {
	return func(ch *Chain) {
		ch.unrecognized = fn
	}
}

// NewChain builds the chain for a pipeline. Detectors are tested in the
// order namespace, class, interface, property/enum, function, lambda,
// conditional, initializer, end of scope, statement.
func NewChain(p Pipeline, opts ...Option) *Chain {
	ch := &Chain{pipeline: p}
	for _, opt := range opts {
		opt(ch)
	}
	if ch.logger == nil {
		ch.logger = slog.Default()
	}

	switch p {
	case ClassScan:
		ch.detectors = []Detector{
			Namespace().With(AddScope, Save),
			Class().With(AddScope, Save),
			Interface().With(AddScope),
			PropEnum().With(AddScope),
			Function().With(AddScope),
			Lambda().With(AddScope),
			Conditional().With(AddScope),
			Initializer().With(AddScope),
			EndOfScope().With(EndScope),
			Statement().With(ProcessStatement),
		}
	case Relationship:
		ch.detectors = []Detector{
			Namespace().With(AddScope),
			Class().With(AddScope, CheckInheritance),
			Interface().With(AddScope),
			PropEnum().With(AddScope),
			Function().With(AddScope, AnalyzeParams, Save),
			Lambda().With(AddScope),
			Conditional().With(AddScope),
			Initializer().With(AddScope),
			EndOfScope().With(EndScope),
			Statement().With(ProcessStatement, CheckAssociation),
		}
	default:
		ch.pipeline = Functional
		ch.detectors = []Detector{
			Namespace().With(AddScope, Save),
			Class().With(AddScope, Save),
			Interface().With(AddScope),
			PropEnum().With(AddScope),
			Function().With(AddScope, Save),
			Lambda().With(AddScope),
			Conditional().With(AddScope),
			Initializer().With(AddScope),
			EndOfScope().With(EndScope),
			Statement().With(ProcessStatement),
		}
	}
	return ch
}

// Pipeline returns the chain's configuration name.
func (ch *Chain) Pipeline() Pipeline { return ch.pipeline }

// Detectors returns the chain's detectors in test order.
func (ch *Chain) Detectors() []Detector { return ch.detectors }

// Test classifies w and runs the matching detector's actions against c.
// It stops at the first failing action and returns its error. A window no
// detector matches is logged and reported to the unrecognized callback;
// it is not an error.
func (ch *Chain) Test(c *engine.Context, w lexer.Window) error {
	for _, d := range ch.detectors {
		name, ok := d.Match(w)
		if !ok {
			continue
		}
		rec := models.NewRecord(d.Kind, w, name)
		for _, act := range d.Actions {
			if err := act(c, rec); err != nil {
				return err
			}
		}
		return nil
	}

	ch.logger.Debug("unrecognized construct", "file", c.File(), "tokens", w.String())
	if ch.unrecognized != nil {
		ch.unrecognized(c, w)
	}
	return nil
}

// Classify returns the detector that would handle w, without running any
// action.
func (ch *Chain) Classify(w lexer.Window) (Detector, string, bool) {
	for _, d := range ch.detectors {
		if name, ok := d.Match(w); ok {
			return d, name, true
		}
	}
	return Detector{}, "", false
}
