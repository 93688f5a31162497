// Package engine holds the scope and symbol state for one source file.
//
// A Context tracks the open namespace, class and function, keeps a stack of
// open constructs that mirrors brace nesting, counts scopes, statements and
// lines for the current function, and writes nodes and relationship
// attributes into a models.ResultTree. A Context belongs to one file at a
// time and is not safe for concurrent use; parallel analysis gives every
// file its own Context and its own tree.
package engine

import (
	"strings"

	"github.com/panbanda/lexscope/pkg/models"
)

// ScopeEntry is one open construct on the scope stack.
type ScopeEntry struct {
	Name string
	Kind models.Kind
}

// Context is the per-file analysis state.
type Context struct {
	tree *models.ResultTree

	known    models.NameSet
	hasKnown bool

	file       string
	namespace  string
	class      string
	function   string
	inProperty bool

	scopeCount     int
	statementCount int
	lineCount      int

	stack []ScopeEntry
}

// Option configures a Context.
type Option func(*Context)

// WithKnownClasses fixes the class names that relationship checks match
// against. Without it the names are read from the context's own tree.
func WithKnownClasses(names models.NameSet) Option {
	return func(c *Context) {
		c.known = names
		c.hasKnown = true
	}
}

// New creates a context that records into tree.
func New(tree *models.ResultTree, opts ...Option) *Context {
	c := &Context{tree: tree}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tree returns the tree the context records into.
func (c *Context) Tree() *models.ResultTree { return c.tree }

// Begin resets per-file state and starts recording for file.
func (c *Context) Begin(file string) {
	c.Reset()
	c.file = file
	c.tree.AddFile(file)
}

// Reset clears the stack, counters and names. The tree is kept.
func (c *Context) Reset() {
	c.stack = c.stack[:0]
	c.namespace = ""
	c.class = ""
	c.function = ""
	c.inProperty = false
	c.scopeCount = 0
	c.statementCount = 0
	c.lineCount = 0
}

// File returns the path of the file being analyzed.
func (c *Context) File() string {
	return c.file
}

// CurrentNamespace returns the open namespace, or "" outside one.
func (c *Context) CurrentNamespace() string {
	return c.namespace
}

// CurrentClass returns the open class, dot-joined for nested classes.
func (c *Context) CurrentClass() string {
	return c.class
}

// CurrentFunction returns the open function, or "" outside one.
func (c *Context) CurrentFunction() string {
	return c.function
}

// InProperty reports whether a property or enum body is open.
func (c *Context) InProperty() bool {
	return c.inProperty
}

// ScopeCount returns the scopes counted in the current function.
func (c *Context) ScopeCount() int {
	return c.scopeCount
}

// StatementCount returns the statements counted in the current function.
func (c *Context) StatementCount() int {
	return c.statementCount
}

// LineCount returns the newlines seen in the current function.
func (c *Context) LineCount() int {
	return c.lineCount
}

// Depth returns the number of open constructs.
func (c *Context) Depth() int { return len(c.stack) }

// Stack returns a copy of the scope stack, outermost first.
func (c *Context) Stack() []ScopeEntry {
	out := make([]ScopeEntry, len(c.stack))
	copy(out, c.stack)
	return out
}

// EnterScope opens the construct described by rec. The scope count is
// incremented for every construct opened; entering a function then resets
// it along with the other function counters.
//
// A function outside a class or inside another function, and a conditional
// outside a function or property body, fail with a *NestingError. Kinds
// that never open a scope fail with an *InvariantError. A failed call
// leaves the context unchanged.
func (c *Context) EnterScope(rec models.Record) error {
	switch rec.Kind {
	case models.KindFunction:
		if c.function != "" {
			return &NestingError{Kind: rec.Kind, Name: rec.Name, Tokens: rec.Tokens,
				Reason: "function declared inside function " + c.function}
		}
		if c.class == "" {
			return &NestingError{Kind: rec.Kind, Name: rec.Name, Tokens: rec.Tokens,
				Reason: "function must be declared as a class member"}
		}
	case models.KindConditional:
		if c.function == "" && !c.inProperty {
			return &NestingError{Kind: rec.Kind, Name: rec.Name, Tokens: rec.Tokens,
				Reason: "conditional must be inside a function or property"}
		}
	case models.KindNamespace, models.KindClass, models.KindLambda,
		models.KindInterface, models.KindPropEnum:
	default:
		return &InvariantError{Op: "enter scope", Kind: rec.Kind, Err: ErrInvalidConstruct}
	}

	c.scopeCount++
	name := rec.Name

	switch rec.Kind {
	case models.KindNamespace:
		c.namespace = name
	case models.KindClass:
		if c.class != "" {
			name = c.class + "." + name
		}
		c.class = name
	case models.KindFunction:
		c.function = name
		c.scopeCount = 0
		c.statementCount = 0
		c.lineCount = 0
	case models.KindConditional, models.KindLambda:
		c.statementCount++
	case models.KindPropEnum:
		c.inProperty = true
	}

	c.stack = append(c.stack, ScopeEntry{Name: name, Kind: rec.Kind})
	return nil
}

// ExitScope closes the innermost construct. Closing a function writes its
// complexity, lines and statements onto the function node, if the node was
// recorded.
func (c *Context) ExitScope() error {
	if len(c.stack) == 0 {
		return &InvariantError{Op: "exit scope", Err: ErrEmptyStack}
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]

	switch top.Kind {
	case models.KindNamespace:
		c.namespace = ""
	case models.KindClass:
		if i := strings.LastIndex(c.class, "."); i >= 0 {
			c.class = c.class[:i]
		} else {
			c.class = ""
		}
	case models.KindFunction:
		c.finalizeFunction()
		c.function = ""
	case models.KindPropEnum:
		c.inProperty = false
	case models.KindConditional, models.KindLambda:
		c.statementCount++
	}
	return nil
}

func (c *Context) finalizeFunction() {
	fn, err := c.tree.Function(c.path())
	if err != nil {
		// Class scanning does not record functions.
		return
	}
	fn.Complexity = c.scopeCount
	fn.Lines = c.lineCount
	fn.Statements = c.statementCount
}

// RecordConstruct inserts the innermost open namespace, class or function
// into the tree, matching rec's kind. Recording a node twice is a no-op.
// Other kinds are ignored.
func (c *Context) RecordConstruct(rec models.Record) error {
	p := c.path()
	switch rec.Kind {
	case models.KindNamespace:
		return c.tree.Insert(models.KindNamespace, p)
	case models.KindClass:
		if c.namespace == "" {
			if err := c.tree.Insert(models.KindNamespace, p); err != nil {
				return err
			}
		}
		return c.tree.Insert(models.KindClass, p)
	case models.KindFunction:
		return c.tree.Insert(models.KindFunction, p)
	}
	return nil
}

// IncrementScope counts a scope that is not pushed, such as a one-line if
// without braces.
func (c *Context) IncrementScope() { c.scopeCount++ }

// AddStatement counts one statement.
func (c *Context) AddStatement() { c.statementCount++ }

// AddLines counts n newlines.
func (c *Context) AddLines(n int) { c.lineCount += n }

func (c *Context) namespaceKey() string {
	if c.namespace == "" {
		return models.GlobalNamespace
	}
	return c.namespace
}

func (c *Context) path() models.Path {
	return models.Path{
		File:      c.file,
		Namespace: c.namespaceKey(),
		Class:     c.class,
		Function:  c.function,
	}
}
