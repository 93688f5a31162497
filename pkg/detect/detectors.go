// Package detect classifies token windows.
//
// A Detector pairs a construct signature with the actions to run when the
// signature holds. A Chain tests its detectors in a fixed order and runs
// the actions of the first match against an engine.Context. The three
// pipelines share the same detectors and differ only in their actions.
package detect

import (
	"github.com/panbanda/lexscope/pkg/lexer"
	"github.com/panbanda/lexscope/pkg/models"
)

// Matcher tests a window and returns the construct name on a match.
type Matcher func(w lexer.Window) (name string, ok bool)

// Detector recognizes one construct kind.
type Detector struct {
	Name    string
	Kind    models.Kind
	Match   Matcher
	Actions []Action
}

// With returns a copy of d with actions appended.
func (d Detector) With(actions ...Action) Detector {
	d.Actions = append(append([]Action(nil), d.Actions...), actions...)
	return d
}

// Namespace matches "namespace Name {".
func Namespace() Detector {
	return Detector{Name: "namespace", Kind: models.KindNamespace, Match: keywordBlock("namespace")}
}

// Class matches "class Name ... {".
func Class() Detector {
	return Detector{Name: "class", Kind: models.KindClass, Match: keywordBlock("class")}
}

// Interface matches "interface Name ... {".
func Interface() Detector {
	return Detector{Name: "interface", Kind: models.KindInterface, Match: keywordBlock("interface")}
}

func keywordBlock(keyword string) Matcher {
	return func(w lexer.Window) (string, bool) {
		if w.Contains(keyword) && w.Contains("{") {
			return w.After(keyword), true
		}
		return "", false
	}
}

// PropEnum matches property, enum and other brace blocks that carry no
// control keyword, type keyword or parenthesis.
func PropEnum() Detector {
	return Detector{
		Name: "property/enum",
		Kind: models.KindPropEnum,
		Match: func(w lexer.Window) (string, bool) {
			if w.Contains("{") && !w.ContainsAny("for", "if", "while", "else", "switch", "class", "interface", "(") {
				return "PropEnum", true
			}
			return "", false
		},
	}
}

// Function matches "... Name ( params ) {" when no control keyword, lambda
// arrow or object creation is present. The name is the token before "(".
func Function() Detector {
	return Detector{
		Name: "function",
		Kind: models.KindFunction,
		Match: func(w lexer.Window) (string, bool) {
			open, closing, brace := w.Index("("), w.Index(")"), w.Index("{")
			if open < 0 || closing < 0 || brace < 0 {
				return "", false
			}
			if w.ContainsAny("for", "foreach", "if", "while", "else", "switch", "catch", "=>", "new") {
				return "", false
			}
			if open >= closing || closing >= brace {
				return "", false
			}
			return w.Before("("), true
		},
	}
}

// Lambda matches a block introduced by "=>".
func Lambda() Detector {
	return Detector{
		Name: "lambda",
		Kind: models.KindLambda,
		Match: func(w lexer.Window) (string, bool) {
			if w.Contains("=>") && w.Contains("{") {
				return "Lambda", true
			}
			return "", false
		},
	}
}

// Conditional matches loops, branches, switches and try/catch.
func Conditional() Detector {
	return Detector{
		Name: "conditional",
		Kind: models.KindConditional,
		Match: func(w lexer.Window) (string, bool) {
			if isFor(w) || isWhile(w) || isIfElse(w) || isSwitch(w) || isTryCatch(w) {
				return "Conditional", true
			}
			return "", false
		},
	}
}

func parens(w lexer.Window) bool {
	return w.Contains("(") && w.Contains(")")
}

func isFor(w lexer.Window) bool {
	return w.ContainsAny("for", "foreach") && parens(w) && w.Contains("{")
}

// isWhile accepts "while (x) {" as well as the "while (x);" of a do loop.
func isWhile(w lexer.Window) bool {
	return w.Contains("while") && parens(w) && w.ContainsAny("{", ";")
}

func isIfElse(w lexer.Window) bool {
	last := w.Last()
	endsBlockOrStatement := last == ";" || last == "{"
	return (w.Contains("if") && parens(w) && endsBlockOrStatement) ||
		(w.Contains("else") && endsBlockOrStatement)
}

func isSwitch(w lexer.Window) bool {
	return w.Contains("switch") && parens(w) && w.Contains("{")
}

func isTryCatch(w lexer.Window) bool {
	return w.ContainsAny("try", "catch")
}

// Initializer matches object and collection initializers such as
// "new Point(1, 2) {". They are treated like lambdas.
func Initializer() Detector {
	return Detector{
		Name: "initializer",
		Kind: models.KindLambda,
		Match: func(w lexer.Window) (string, bool) {
			if w.Contains("new") && w.Contains("{") && parens(w) {
				return "Initializer", true
			}
			return "", false
		},
	}
}

// EndOfScope matches a closing brace.
func EndOfScope() Detector {
	return Detector{
		Name: "end of scope",
		Kind: models.KindEndOfScope,
		Match: func(w lexer.Window) (string, bool) {
			if w.Contains("}") {
				return "scopeEnd", true
			}
			return "", false
		},
	}
}

// Statement matches a window ending in its only ";" that carries no
// control keyword.
func Statement() Detector {
	return Detector{
		Name: "statement",
		Kind: models.KindStatement,
		Match: func(w lexer.Window) (string, bool) {
			if w.Index(";") != len(w)-1 || len(w) == 0 {
				return "", false
			}
			if w.ContainsAny("for", "if", "else", "while", "switch") {
				return "", false
			}
			return "", true
		},
	}
}
