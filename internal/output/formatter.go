// Package output writes analysis results as text tables, markdown, or one
// of the structured encodings.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	toon "github.com/toon-format/toon-go"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
	FormatYAML     Format = "yaml"
	FormatXML      Format = "xml"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatTOON, FormatYAML, FormatXML}

var formatAliases = map[string]Format{
	"json":     FormatJSON,
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"toon":     FormatTOON,
	"yaml":     FormatYAML,
	"yml":      FormatYAML,
	"xml":      FormatXML,
}

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f
	}
	return FormatText
}

// Renderable defines data that can render itself in multiple formats.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	// RenderData returns the value the structured encodings serialize.
	RenderData() any
}

// XMLWriter is implemented by data with its own XML document form.
type XMLWriter interface {
	WriteXML(w io.Writer) error
}

type encodeFunc func(w io.Writer, data any) error

var encoders = map[Format]encodeFunc{
	FormatJSON:     encodeJSON,
	FormatTOON:     encodeTOON,
	FormatYAML:     encodeYAML,
	FormatMarkdown: encodeFencedJSON,
}

// Formatter writes values in one format.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	colored bool
}

// NewFormatter creates a formatter writing to stdout, or to the file at
// output when it is set. Color is always off for files.
func NewFormatter(format Format, output string, colored bool) (*Formatter, error) {
	if output == "" {
		return NewWriterFormatter(format, os.Stdout, colored), nil
	}

	f, err := os.Create(output)
	if err != nil {
		return nil, err
	}
	fm := NewWriterFormatter(format, f, false)
	fm.file = f
	return fm, nil
}

// NewWriterFormatter creates a formatter over an arbitrary writer.
func NewWriterFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, colored: colored}
}

// Close closes the output file, if any.
func (f *Formatter) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

// Writer returns the destination writer.
func (f *Formatter) Writer() io.Writer { return f.writer }

// Format returns the output format.
func (f *Formatter) Format() Format { return f.format }

// Colored reports whether text output uses color.
func (f *Formatter) Colored() bool { return f.colored }

// Output writes data in the configured format. Renderables draw their own
// text and markdown; every other combination goes through an encoder.
func (f *Formatter) Output(data any) error {
	if f.format == FormatXML {
		return encodeXML(f.writer, data)
	}

	r, ok := data.(Renderable)
	switch {
	case !ok:
		return f.encode(data)
	case f.format == FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	case f.format == FormatText:
		return r.RenderText(f.writer, f.colored)
	default:
		return f.encode(r.RenderData())
	}
}

func (f *Formatter) encode(data any) error {
	if enc, ok := encoders[f.format]; ok {
		return enc(f.writer, data)
	}
	return encodeJSON(f.writer, data)
}

func encodeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func encodeFencedJSON(w io.Writer, data any) error {
	fmt.Fprintln(w, "```json")
	if err := encodeJSON(w, data); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "```")
	return err
}

func encodeTOON(w io.Writer, data any) error {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func encodeYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// encodeXML prefers a document form on data or on its RenderData, then
// falls back to encoding/xml.
func encodeXML(w io.Writer, data any) error {
	if r, ok := data.(Renderable); ok {
		if _, self := data.(XMLWriter); !self {
			data = r.RenderData()
		}
	}
	if x, ok := data.(XMLWriter); ok {
		return x.WriteXML(w)
	}

	out, err := xml.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s%s\n", xml.Header, out)
	return err
}

// message writes one status line. Without color the prefix marks its kind.
func (f *Formatter) message(attr color.Attribute, prefix, format string, args []any) {
	line := fmt.Sprintf(format, args...)
	if f.colored {
		color.New(attr).Fprintln(f.writer, line)
		return
	}
	fmt.Fprintln(f.writer, prefix+line)
}

// Success writes a green status line.
func (f *Formatter) Success(format string, args ...any) {
	f.message(color.FgGreen, "", format, args)
}

// Warning writes a yellow status line, prefixed "WARNING: " without color.
func (f *Formatter) Warning(format string, args ...any) {
	f.message(color.FgYellow, "WARNING: ", format, args)
}

// Error writes a red status line, prefixed "ERROR: " without color.
func (f *Formatter) Error(format string, args ...any) {
	f.message(color.FgRed, "ERROR: ", format, args)
}

// Info writes a cyan status line.
func (f *Formatter) Info(format string, args ...any) {
	f.message(color.FgCyan, "", format, args)
}

// ComplexityColor colors text by how complexity compares to threshold:
// red above it, yellow from half of it, green below. A threshold of zero
// leaves text unchanged.
func ComplexityColor(complexity, threshold int, text string) string {
	switch {
	case threshold <= 0:
		return text
	case complexity > threshold:
		return color.RedString(text)
	case complexity*2 >= threshold:
		return color.YellowString(text)
	default:
		return color.GreenString(text)
	}
}
