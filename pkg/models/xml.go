package models

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

type xmlResults struct {
	XMLName xml.Name  `xml:"analysisResults"`
	Files   []xmlFile `xml:"File"`
}

type xmlFile struct {
	ID         string         `xml:"id,attr"`
	Namespaces []xmlNamespace `xml:"Namespace"`
}

type xmlNamespace struct {
	ID      string     `xml:"id,attr"`
	Classes []xmlClass `xml:"Class"`
}

type xmlClass struct {
	ID          string        `xml:"id,attr"`
	Inheritance string        `xml:"Inheritance,attr,omitempty"`
	Association string        `xml:"Association,attr,omitempty"`
	Using       string        `xml:"Using,attr,omitempty"`
	Functions   []xmlFunction `xml:"Function"`
}

type xmlFunction struct {
	ID         string `xml:"id,attr"`
	Complexity int    `xml:"Complexity,attr"`
	Lines      int    `xml:"Lines,attr"`
	Statements int    `xml:"Statements,attr"`
}

// WriteXML encodes the tree as an analysisResults document with
// File > Namespace > Class > Function elements.
func (t *ResultTree) WriteXML(w io.Writer) error {
	doc := xmlResults{Files: make([]xmlFile, 0, len(t.Files))}
	for _, f := range t.Files {
		xf := xmlFile{ID: f.Path}
		for _, ns := range f.Namespaces {
			xn := xmlNamespace{ID: ns.Name}
			for _, c := range ns.Classes {
				xc := xmlClass{
					ID:          c.Name,
					Inheritance: c.Inheritance.String(),
					Association: c.Association.String(),
					Using:       c.Using.String(),
				}
				for _, fn := range c.Functions {
					xc.Functions = append(xc.Functions, xmlFunction{
						ID:         fn.Name,
						Complexity: fn.Complexity,
						Lines:      fn.Lines,
						Statements: fn.Statements,
					})
				}
				xn.Classes = append(xn.Classes, xc)
			}
			xf.Namespaces = append(xf.Namespaces, xn)
		}
		doc.Files = append(doc.Files, xf)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding result tree: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// SaveXML writes the tree to path.
func (t *ResultTree) SaveXML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteXML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
