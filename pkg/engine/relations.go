package engine

import (
	"github.com/panbanda/lexscope/pkg/lexer"
	"github.com/panbanda/lexscope/pkg/models"
)

// CheckInheritance records every known class named in tokens as a base of
// the current class. tokens are normally the ones after the class
// header's ':'. Several matches are all kept.
func (c *Context) CheckInheritance(tokens lexer.Window) error {
	return c.relate(models.EdgeInheritance, tokens)
}

// CheckAssociation records known classes referenced by a class-level
// statement. Inside a function body the references count as using instead.
// Outside any class it does nothing.
func (c *Context) CheckAssociation(tokens lexer.Window) error {
	if c.class == "" {
		return nil
	}
	if c.function != "" {
		return c.CheckUsing(tokens)
	}
	return c.relate(models.EdgeAssociation, tokens)
}

// CheckUsing records known classes referenced by a parameter list or a
// statement inside a function.
func (c *Context) CheckUsing(tokens lexer.Window) error {
	return c.relate(models.EdgeUsing, tokens)
}

func (c *Context) knownClasses() models.NameSet {
	if c.hasKnown {
		return c.known
	}
	return c.tree.ClassNames()
}

func (c *Context) relate(kind models.EdgeKind, tokens lexer.Window) error {
	if c.class == "" || len(tokens) == 0 {
		return nil
	}

	var matched []string
	for _, name := range c.knownClasses() {
		if name != c.class && tokens.Contains(name) {
			matched = append(matched, name)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	cls, err := c.tree.Class(c.path())
	if err != nil {
		return err
	}

	var set *models.NameSet
	switch kind {
	case models.EdgeInheritance:
		set = &cls.Inheritance
	case models.EdgeAssociation:
		set = &cls.Association
	default:
		set = &cls.Using
	}
	for _, name := range matched {
		set.Add(name)
	}
	return nil
}
