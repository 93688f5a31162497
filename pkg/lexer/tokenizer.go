package lexer

import (
	"io"
	"slices"
	"strings"
)

// Window is one bounded run of tokens ending at a statement or block
// boundary. It is the unit tested by detectors.
type Window []string

// Contains reports whether tok is one of the window's tokens.
func (w Window) Contains(tok string) bool {
	return slices.Contains(w, tok)
}

// ContainsAny reports whether any of toks is in the window.
func (w Window) ContainsAny(toks ...string) bool {
	for _, t := range toks {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// Index returns the position of the first occurrence of tok, or -1.
func (w Window) Index(tok string) int {
	return slices.Index(w, tok)
}

// LastIndex returns the position of the last occurrence of tok, or -1.
func (w Window) LastIndex(tok string) int {
	for i := len(w) - 1; i >= 0; i-- {
		if w[i] == tok {
			return i
		}
	}
	return -1
}

// Last returns the final token, or "" for an empty window.
func (w Window) Last() string {
	if len(w) == 0 {
		return ""
	}
	return w[len(w)-1]
}

// After returns the token following the first occurrence of tok, or "".
func (w Window) After(tok string) string {
	i := w.Index(tok)
	if i < 0 || i+1 >= len(w) {
		return ""
	}
	return w[i+1]
}

// Before returns the token preceding the first occurrence of tok, or "".
func (w Window) Before(tok string) string {
	i := w.Index(tok)
	if i <= 0 {
		return ""
	}
	return w[i-1]
}

func (w Window) String() string {
	return strings.Join(w, " ")
}

// isSeparator reports characters that end a token and are dropped.
func isSeparator(c rune) bool {
	switch c {
	case ' ', ',', '\n', '\r', '\t':
		return true
	}
	return false
}

// isDelimiter reports characters that end a token and are emitted alone.
func isDelimiter(c rune) bool {
	switch c {
	case '(', ')', '{', '}', ':', ';':
		return true
	}
	return false
}

// Split breaks a raw chunk into tokens. Separators close the current token
// and are dropped; delimiters close it and become single-character tokens.
func Split(raw string) Window {
	var out Window
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			out = append(out, sb.String())
			sb.Reset()
		}
	}

	for _, c := range raw {
		switch {
		case isSeparator(c):
			flush()
		case isDelimiter(c):
			flush()
			out = append(out, string(c))
		default:
			sb.WriteRune(c)
		}
	}
	flush()
	return out
}

// Chunk is a tokenized raw chunk together with the number of newlines the
// chunk carried outside comments and literals. Line is the line of its first
// token.
type Chunk struct {
	Tokens   Window
	Newlines int
	Line     int
}

// TokenReader feeds Scanner output through Split.
type TokenReader struct {
	s *Scanner
}

// NewTokenReader wraps a scanner.
func NewTokenReader(s *Scanner) *TokenReader {
	return &TokenReader{s: s}
}

// Next returns the next chunk or io.EOF.
func (tr *TokenReader) Next() (Chunk, error) {
	raw, err := tr.s.Next()
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{
		Tokens:   Split(raw),
		Newlines: strings.Count(raw, "\n"),
		Line:     tr.s.StartLine(),
	}, nil
}

// ReadAll drains the reader into a slice of chunks.
func (tr *TokenReader) ReadAll() ([]Chunk, error) {
	var chunks []Chunk
	for {
		c, err := tr.Next()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)
	}
}
