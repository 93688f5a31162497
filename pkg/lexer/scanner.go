// Package lexer turns brace-delimited source text into token windows.
//
// A Scanner reads characters and returns raw chunks ending at one of the
// stop characters ';', '{' or '}'. Quoted literals and comments are skipped
// so that stop characters inside them never end a chunk. Split breaks a chunk
// into tokens, and TokenReader combines the two.
package lexer

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// Stop characters end a raw chunk and are kept as its last character.
const stopChars = ";{}"

// IsStop reports whether c ends a raw chunk.
func IsStop(c rune) bool {
	return strings.ContainsRune(stopChars, c)
}

// Scanner reads a source stream one character at a time.
// It is not safe for concurrent use.
type Scanner struct {
	r    *bufio.Reader
	path  string
	line  int
	start int
	eof   bool
}

// NewScanner creates a scanner over r.
func NewScanner(r io.Reader) *Scanner {
	s := &Scanner{}
	s.Reset(r)
	return s
}

// Reset points the scanner at a new stream and clears end-of-file state.
func (s *Scanner) Reset(r io.Reader) {
	if br, ok := r.(*bufio.Reader); ok {
		s.r = br
	} else {
		s.r = bufio.NewReader(r)
	}
	s.line = 1
	s.start = 1
	s.eof = false
}

// Path returns the file path set by Open, if any.
func (s *Scanner) Path() string {
	return s.path
}

// Line returns the 1-based line the scanner is positioned on, counting
// newlines inside comments and literals too.
func (s *Scanner) Line() int {
	return s.line
}

// StartLine returns the line of the first token in the chunk last returned
// by Next. A chunk holding only a stop character starts on that character's
// line.
func (s *Scanner) StartLine() int {
	return s.start
}

// Next returns the next raw chunk, ending with a stop character.
// At physical end of input it returns io.EOF and discards any trailing text
// that never reached a stop character. An unterminated literal or comment
// also ends the stream with io.EOF.
func (s *Scanner) Next() (string, error) {
	if s.eof {
		return "", io.EOF
	}

	var sb strings.Builder
	prev := ' '
	started := false
	for {
		c, err := s.read()
		if err != nil {
			return "", s.finish(err)
		}

		switch {
		case c == '"' || c == '\'':
			if err := s.skipLiteral(c); err != nil {
				return "", s.finish(err)
			}
			prev = ' '
		case prev == '/' && (c == '/' || c == '*'):
			// The buffered '/' opened the comment.
			trimLast(&sb)
			if started && strings.TrimLeftFunc(sb.String(), isSeparator) == "" {
				started = false
			}
			if err := s.skipComment(c); err != nil {
				return "", s.finish(err)
			}
			prev = ' '
		default:
			sb.WriteRune(c)
			if !started && !isSeparator(c) {
				s.start = s.line
				started = true
			}
			if IsStop(c) {
				return sb.String(), nil
			}
			prev = c
		}
	}
}

func (s *Scanner) read() (rune, error) {
	c, _, err := s.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if c == '\n' {
		s.line++
	}
	return c, nil
}

func (s *Scanner) finish(err error) error {
	s.eof = true
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return err
}

// skipLiteral consumes characters up to the matching quote. A backslash
// always consumes the following character.
func (s *Scanner) skipLiteral(quote rune) error {
	for {
		c, err := s.read()
		if err != nil {
			return err
		}
		switch c {
		case '\\':
			if _, err := s.read(); err != nil {
				return err
			}
		case quote:
			return nil
		}
	}
}

// skipComment consumes a line comment up to (not including) its newline,
// or a block comment through its closing "*/".
func (s *Scanner) skipComment(kind rune) error {
	if kind == '/' {
		for {
			c, _, err := s.r.ReadRune()
			if err != nil {
				return err
			}
			if c == '\n' {
				return s.r.UnreadRune()
			}
		}
	}

	prev := rune(0)
	for {
		c, err := s.read()
		if err != nil {
			return err
		}
		if prev == '*' && c == '/' {
			return nil
		}
		prev = c
	}
}

func trimLast(sb *strings.Builder) {
	str := sb.String()
	if str == "" {
		return
	}
	sb.Reset()
	sb.WriteString(str[:len(str)-1])
}

// FileScanner is a Scanner bound to an open file.
type FileScanner struct {
	*Scanner
	f *os.File
}

// Open creates a scanner reading the file at path.
func Open(path string) (*FileScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := NewScanner(f)
	s.path = path
	return &FileScanner{Scanner: s, f: f}, nil
}

// Close closes the underlying file.
func (fs *FileScanner) Close() error {
	return fs.f.Close()
}
