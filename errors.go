package foamdict

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrBinaryFormat   = errors.New("binary format unsupported")
	ErrUnknownFormat  = errors.New("unknown file format")
	ErrIncludeMissing = errors.New("included file does not exist")
	ErrIncludeCycle   = errors.New("circular include")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrShapeConflict  = errors.New("only one body shape can be specified")
	ErrInputModeError = errors.New("redefinition rejected by #inputMode error")
	ErrNotDictionary  = errors.New("document body is not a dictionary")
	ErrPathNotFound   = errors.New("path not found")
)

// contextRadius bounds the source window attached to errors.
const contextRadius = 40

// ParseError is the base error type for all parser errors.
type ParseError struct {
	Message   string
	Pos       Position
	Token     string // offending token text, if any
	TokenKind string
	File      string
	Context   string // bounded window of surrounding source
	Cause     error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	if e.Pos.Line > 0 {
		fmt.Fprintf(&sb, "%d:%d: ", e.Pos.Line, e.Pos.Column)
	} else if e.File != "" {
		sb.WriteString(" ")
	}
	sb.WriteString(e.Message)
	if e.Token != "" {
		tok := e.Token
		if len(tok) > 100 {
			tok = tok[:40] + " .... " + tok[len(tok)-40:]
		}
		fmt.Fprintf(&sb, " @ %q (%s)", tok, e.TokenKind)
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error { return e.Cause }

// LexicalError is raised for a character no active lexer mode accepts.
type LexicalError struct{ ParseError }

// SyntaxError is raised when the token sequence matches no production.
type SyntaxError struct {
	ParseError
	Expected string
	Got      string
}

func (e *SyntaxError) Error() string {
	if e.Expected == "" {
		return e.ParseError.Error()
	}
	loc := ""
	if e.File != "" {
		loc = e.File + ":"
	}
	if e.Pos.Line > 0 {
		loc += fmt.Sprintf("%d:%d: ", e.Pos.Line, e.Pos.Column)
	} else if loc != "" {
		loc += " "
	}
	return fmt.Sprintf("%sexpected %s, got %s", loc, e.Expected, e.Got)
}

// SemanticError is raised for well-formed input the parser refuses:
// binary files, missing includes, rejected duplicates, conflicting shapes.
type SemanticError struct{ ParseError }

// IoError wraps failures of the file-access layer.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// contextWindow returns the source around offset, marking the offset with
// a ">" ... "<" pair.
func contextWindow(src string, offset int) string {
	if src == "" {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	start := max(0, offset-contextRadius)
	end := min(len(src), offset+contextRadius)
	return src[start:offset] + ">" + "<" + src[offset:end]
}

func newSemanticError(msg string, cause error, tok Token) *SemanticError {
	return &SemanticError{ParseError{
		Message:   msg,
		Pos:       tok.Pos,
		Token:     tok.Literal,
		TokenKind: tok.Kind.String(),
		Cause:     cause,
	}}
}
