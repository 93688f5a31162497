package detect

import (
	"strings"

	"github.com/panbanda/lexscope/pkg/engine"
	"github.com/panbanda/lexscope/pkg/lexer"
	"github.com/panbanda/lexscope/pkg/models"
)

// Action is run for a matched record.
type Action func(c *engine.Context, rec models.Record) error

// AddScope opens the record's scope. A window without "{", such as a
// one-line if, only counts toward complexity.
func AddScope(c *engine.Context, rec models.Record) error {
	if !rec.Tokens.Contains("{") {
		c.IncrementScope()
		return nil
	}
	return c.EnterScope(rec)
}

// EndScope closes the innermost scope.
func EndScope(c *engine.Context, _ models.Record) error {
	return c.ExitScope()
}

// ProcessStatement counts a statement.
func ProcessStatement(c *engine.Context, _ models.Record) error {
	c.AddStatement()
	return nil
}

// Save records the construct in the result tree.
func Save(c *engine.Context, rec models.Record) error {
	return c.RecordConstruct(rec)
}

// AnalyzeParams checks the parameter list of a function header for
// references to known classes.
func AnalyzeParams(c *engine.Context, rec models.Record) error {
	params := ParamTokens(rec.Tokens)
	if len(params) == 0 {
		return nil
	}
	return c.CheckUsing(params)
}

// CheckInheritance checks the tokens after a class header's ':' for base
// classes and interfaces.
func CheckInheritance(c *engine.Context, rec models.Record) error {
	bases := BaseTokens(rec.Tokens)
	if len(bases) == 0 {
		return nil
	}
	return c.CheckInheritance(bases)
}

// CheckAssociation checks a statement for references to known classes.
func CheckAssociation(c *engine.Context, rec models.Record) error {
	return c.CheckAssociation(rec.Tokens)
}

// ParamTokens returns the tokens between the first "(" and the last ")".
func ParamTokens(w lexer.Window) lexer.Window {
	open, closing := w.Index("("), w.LastIndex(")")
	if open < 0 || closing-open <= 1 {
		return nil
	}
	return w[open+1 : closing]
}

// BaseTokens returns the tokens following ':' once attribute blocks such as
// "[Serializable]" are removed.
func BaseTokens(w lexer.Window) lexer.Window {
	kept := StripAttributes(w)
	i := kept.Index(":")
	if i < 0 {
		return nil
	}
	return kept[i+1:]
}

// StripAttributes drops every token from one starting with "[" through the
// next one ending with "]".
func StripAttributes(w lexer.Window) lexer.Window {
	var out lexer.Window
	inAttr := false
	for _, tok := range w {
		if strings.HasPrefix(tok, "[") {
			inAttr = true
		}
		if !inAttr {
			out = append(out, tok)
		}
		if inAttr && strings.HasSuffix(tok, "]") {
			inAttr = false
		}
	}
	return out
}
