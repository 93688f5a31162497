package models

import "github.com/panbanda/lexscope/pkg/lexer"

// Kind classifies a token window.
type Kind string

const (
	KindNamespace   Kind = "namespace"
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindFunction    Kind = "function"
	KindConditional Kind = "conditional"
	KindLambda      Kind = "lambda"
	KindPropEnum    Kind = "property_or_enum"
	KindStatement   Kind = "statement"
	KindEndOfScope  Kind = "end_of_scope"
)

// Scoped reports whether windows of this kind open a block that is pushed
// onto the scope stack.
func (k Kind) Scoped() bool {
	switch k {
	case KindNamespace, KindClass, KindInterface, KindFunction,
		KindConditional, KindLambda, KindPropEnum:
		return true
	}
	return false
}

// Record is what a detector builds on a match and hands to its actions.
type Record struct {
	Kind   Kind
	Tokens lexer.Window
	Name   string
}

// NewRecord creates a record for a matched window.
func NewRecord(kind Kind, tokens lexer.Window, name string) Record {
	return Record{Kind: kind, Tokens: tokens, Name: name}
}
