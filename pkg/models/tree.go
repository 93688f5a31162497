package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// GlobalNamespace holds classes declared outside any namespace block.
const GlobalNamespace = "(global)"

// ErrMissingParent is returned when a node is inserted below a path that
// does not exist yet.
var ErrMissingParent = errors.New("missing parent node")

// PathError describes a failed lookup or insertion in the result tree.
type PathError struct {
	Kind Kind
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// Path addresses a node by its File, Namespace, Class and Function names.
// Trailing fields are left empty for nodes above the function level.
type Path struct {
	File      string
	Namespace string
	Class     string
	Function  string
}

func (p Path) String() string {
	parts := []string{p.File}
	for _, s := range []string{p.Namespace, p.Class, p.Function} {
		if s == "" {
			break
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "/")
}

// Function is a function node with its metrics.
type Function struct {
	Name       string `json:"name" yaml:"name"`
	Complexity int    `json:"complexity" yaml:"complexity"`
	Lines      int    `json:"lines" yaml:"lines"`
	Statements int    `json:"statements" yaml:"statements"`
}

// Class is a class node. Nested classes are flattened into their namespace
// under a dot-joined name such as "Outer.Inner".
type Class struct {
	Name        string      `json:"name" yaml:"name"`
	Inheritance NameSet     `json:"inheritance,omitempty" yaml:"inheritance,omitempty"`
	Association NameSet     `json:"association,omitempty" yaml:"association,omitempty"`
	Using       NameSet     `json:"using,omitempty" yaml:"using,omitempty"`
	Functions   []*Function `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// Function returns the named function node or nil.
func (c *Class) Function(name string) *Function {
	if i := slices.IndexFunc(c.Functions, func(f *Function) bool { return f.Name == name }); i >= 0 {
		return c.Functions[i]
	}
	return nil
}

// Namespace is a namespace node.
type Namespace struct {
	Name    string   `json:"name" yaml:"name"`
	Classes []*Class `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// Class returns the named class node or nil.
func (n *Namespace) Class(name string) *Class {
	if i := slices.IndexFunc(n.Classes, func(c *Class) bool { return c.Name == name }); i >= 0 {
		return n.Classes[i]
	}
	return nil
}

// File is the subtree produced by analyzing one source file.
type File struct {
	Path       string       `json:"path" yaml:"path"`
	Namespaces []*Namespace `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
}

// Namespace returns the named namespace node or nil.
func (f *File) Namespace(name string) *Namespace {
	if i := slices.IndexFunc(f.Namespaces, func(n *Namespace) bool { return n.Name == name }); i >= 0 {
		return f.Namespaces[i]
	}
	return nil
}

// Counts totals the nodes of the file.
func (f *File) Counts() Counts {
	var c Counts
	c.Namespaces = len(f.Namespaces)
	for _, ns := range f.Namespaces {
		c.Classes += len(ns.Classes)
		for _, cls := range ns.Classes {
			c.Functions += len(cls.Functions)
		}
	}
	return c
}

// Clone returns a deep copy of the file subtree.
func (f *File) Clone() *File {
	out := &File{Path: f.Path}
	for _, ns := range f.Namespaces {
		nns := &Namespace{Name: ns.Name}
		for _, c := range ns.Classes {
			nc := &Class{
				Name:        c.Name,
				Inheritance: c.Inheritance.Clone(),
				Association: c.Association.Clone(),
				Using:       c.Using.Clone(),
			}
			for _, fn := range c.Functions {
				cp := *fn
				nc.Functions = append(nc.Functions, &cp)
			}
			nns.Classes = append(nns.Classes, nc)
		}
		out.Namespaces = append(out.Namespaces, nns)
	}
	return out
}

// Counts are node totals.
type Counts struct {
	Namespaces int `json:"namespaces" yaml:"namespaces"`
	Classes    int `json:"classes" yaml:"classes"`
	Functions  int `json:"functions" yaml:"functions"`
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.Namespaces += other.Namespaces
	c.Classes += other.Classes
	c.Functions += other.Functions
}

// ResultTree is the File > Namespace > Class > Function hierarchy.
// Every node is unique by name within its parent and nodes are never
// removed except by replacing a whole file subtree.
// A ResultTree is not safe for concurrent mutation.
type ResultTree struct {
	Files []*File `json:"files" yaml:"files"`
}

// NewResultTree creates an empty tree.
func NewResultTree() *ResultTree {
	return &ResultTree{}
}

// File returns the subtree for path or nil.
func (t *ResultTree) File(path string) *File {
	if i := t.fileIndex(path); i >= 0 {
		return t.Files[i]
	}
	return nil
}

func (t *ResultTree) fileIndex(path string) int {
	return slices.IndexFunc(t.Files, func(f *File) bool { return f.Path == path })
}

// AddFile returns the subtree for path, creating it if needed.
func (t *ResultTree) AddFile(path string) *File {
	if f := t.File(path); f != nil {
		return f
	}
	f := &File{Path: path}
	t.Files = append(t.Files, f)
	return f
}

// PutFile stores f, replacing any subtree with the same path.
func (t *ResultTree) PutFile(f *File) {
	if i := t.fileIndex(f.Path); i >= 0 {
		t.Files[i] = f
		return
	}
	t.Files = append(t.Files, f)
}

// RemoveFile drops the subtree for path, if present.
func (t *ResultTree) RemoveFile(path string) {
	if i := t.fileIndex(path); i >= 0 {
		t.Files = slices.Delete(t.Files, i, i+1)
	}
}

// Insert adds the node of the given kind at p. The parent must exist.
// Inserting a node that already exists is a no-op.
func (t *ResultTree) Insert(kind Kind, p Path) error {
	f := t.File(p.File)
	if f == nil {
		return &PathError{Kind: kind, Path: p, Err: ErrMissingParent}
	}

	switch kind {
	case KindNamespace:
		if f.Namespace(p.Namespace) == nil {
			f.Namespaces = append(f.Namespaces, &Namespace{Name: p.Namespace})
		}
		return nil

	case KindClass:
		ns := f.Namespace(p.Namespace)
		if ns == nil {
			return &PathError{Kind: kind, Path: p, Err: ErrMissingParent}
		}
		if ns.Class(p.Class) == nil {
			ns.Classes = append(ns.Classes, &Class{Name: p.Class})
		}
		return nil

	case KindFunction:
		c, err := t.Class(p)
		if err != nil {
			return &PathError{Kind: kind, Path: p, Err: ErrMissingParent}
		}
		if c.Function(p.Function) == nil {
			c.Functions = append(c.Functions, &Function{Name: p.Function})
		}
		return nil
	}

	return &PathError{Kind: kind, Path: p, Err: fmt.Errorf("%s nodes are not stored", kind)}
}

// Class looks up the class addressed by p.
func (t *ResultTree) Class(p Path) (*Class, error) {
	f := t.File(p.File)
	if f == nil {
		return nil, &PathError{Kind: KindClass, Path: p, Err: ErrMissingParent}
	}
	ns := f.Namespace(p.Namespace)
	if ns == nil {
		return nil, &PathError{Kind: KindClass, Path: p, Err: ErrMissingParent}
	}
	c := ns.Class(p.Class)
	if c == nil {
		return nil, &PathError{Kind: KindClass, Path: p, Err: ErrMissingParent}
	}
	return c, nil
}

// Function looks up the function addressed by p.
func (t *ResultTree) Function(p Path) (*Function, error) {
	c, err := t.Class(p)
	if err != nil {
		return nil, err
	}
	fn := c.Function(p.Function)
	if fn == nil {
		return nil, &PathError{Kind: KindFunction, Path: p, Err: ErrMissingParent}
	}
	return fn, nil
}

// ClassNames returns the names of every class in the tree.
func (t *ResultTree) ClassNames() NameSet {
	var names NameSet
	for _, f := range t.Files {
		for _, ns := range f.Namespaces {
			for _, c := range ns.Classes {
				names.Add(c.Name)
			}
		}
	}
	return names
}

// Merge copies every file subtree of other into t, replacing subtrees with
// the same path.
func (t *ResultTree) Merge(other *ResultTree) {
	for _, f := range other.Files {
		t.PutFile(f)
	}
}

// Clone returns a deep copy of the tree.
func (t *ResultTree) Clone() *ResultTree {
	out := &ResultTree{}
	for _, f := range t.Files {
		out.Files = append(out.Files, f.Clone())
	}
	return out
}

// Sort orders files by path. Nodes below the file level keep their
// insertion order.
func (t *ResultTree) Sort() {
	slices.SortFunc(t.Files, func(a, b *File) int { return strings.Compare(a.Path, b.Path) })
}

// Counts totals the nodes of all files.
func (t *ResultTree) Counts() Counts {
	var c Counts
	for _, f := range t.Files {
		c.Add(f.Counts())
	}
	return c
}
