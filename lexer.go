package foamdict

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type lexMode int

const (
	modeNormal  lexMode = iota
	modeRawList         // inside an over-threshold declared-length list
	modeCode            // between #{ and #}
)

// Lexer tokenizes dictionary source text into a lazy stream of tokens.
//
// Comments never become tokens. When comment preservation is on and
// collection has been enabled, their verbatim text accumulates in a pending
// decoration buffer that the parser drains with TakeDecoration.
type Lexer struct {
	src     string
	pos     int // current byte offset
	line    int // current line (1-based)
	col     int // current column (1-based)
	mode    lexMode
	peeked  *Token
	emitted int

	preserveComments bool
	collect          bool
	restore          bool
	comments         []comment
}

// comment is one pending decoration comment. directive marks a line that
// holds an executed directive, as written by keepDirective.
type comment struct {
	text      string
	directive bool
}

// keptDirectivePrefixes are the comment forms of executed directives.
var keptDirectivePrefixes = []string{
	"// #include ",
	"// #includeIfPresent ",
	"// #inputMode ",
	"// #remove ",
}

func isKeptDirective(line string) bool {
	for _, prefix := range keptDirectivePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// NewLexer creates a new Lexer for the given source text.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1, preserveComments: true}
}

// SetPreserveComments turns comment capture on or off.
func (l *Lexer) SetPreserveComments(on bool) { l.preserveComments = on }

// SetCollectDecorations starts or stops filling the decoration buffer.
func (l *Lexer) SetCollectDecorations(on bool) { l.collect = on }

// SetRestoreDirectives marks line comments holding an executed directive
// so TakeDirectives can hand them back as directive lines.
func (l *Lexer) SetRestoreDirectives(on bool) { l.restore = on }

// TakeDecoration returns and clears the pending decoration text, without
// its final newline.
func (l *Lexer) TakeDecoration() string {
	var sb strings.Builder
	for _, c := range l.comments {
		sb.WriteString(c.text)
	}
	l.comments = l.comments[:0]
	return strings.TrimSuffix(sb.String(), "\n")
}

// TakeDirectives removes the pending comments up to the last executed
// directive line. Each directive comes back as a directive entry decorated
// with the comments that preceded it; later comments stay pending.
func (l *Lexer) TakeDirectives() []Entry {
	var out []Entry
	var deco strings.Builder
	taken := 0
	for i, c := range l.comments {
		if !c.directive {
			deco.WriteString(c.text)
			continue
		}
		out = append(out, Entry{
			Value:      Value{Kind: KindDirective, Str: strings.TrimSuffix(c.text, "\n")},
			Decoration: strings.TrimSuffix(deco.String(), "\n"),
		})
		deco.Reset()
		taken = i + 1
	}
	l.comments = slices.Delete(l.comments, 0, taken)
	return out
}

// Source returns the text being tokenized.
func (l *Lexer) Source() string { return l.src }

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	tok, err := l.scan()
	if err != nil {
		return Token{}, err
	}
	l.peeked = &tok
	return tok, nil
}

// Next returns the next token and advances the lexer.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.scan()
}

// EnterRawList switches to raw-numeric mode. It must be called right after
// the opening '(' of a declared-length list has been consumed; the next
// token is then a single TokenRawChunk holding everything up to the
// matching ')', which is left in the stream.
func (l *Lexer) EnterRawList() error {
	if l.peeked != nil {
		return errors.New("lexer: raw list mode requested with a buffered token")
	}
	l.mode = modeRawList
	return nil
}

// Tokens drains the stream. Intended for diagnostics and tests.
func (l *Lexer) Tokens() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// retreat steps back over one byte that is known not to be a newline.
func (l *Lexer) retreat() {
	l.pos--
	l.col--
}

func (l *Lexer) errorf(pos Position, format string, args ...any) error {
	return &LexicalError{ParseError{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Context: contextWindow(l.src, pos.Offset),
	}}
}

func (l *Lexer) emit(tok Token) (Token, error) {
	l.emitted++
	return tok, nil
}

func (l *Lexer) scan() (Token, error) {
	switch l.mode {
	case modeRawList:
		return l.scanRawList()
	case modeCode:
		return l.scanCode()
	}

	tok, ok, err := l.skipTrivia()
	if err != nil {
		return Token{}, err
	}
	if ok {
		return l.emit(tok)
	}

	if l.atEnd() {
		return Token{Kind: TokenEOF, Pos: l.currentPos()}, nil
	}

	pos := l.currentPos()
	ch := l.peek()

	if kind, ok := punctuation[ch]; ok {
		l.advance()
		return l.emit(Token{Kind: kind, Literal: string(ch), Pos: pos})
	}

	switch ch {
	case '"':
		return l.scanString()
	case '#':
		l.advance()
		switch l.peek() {
		case '{':
			l.advance()
			l.mode = modeCode
			return l.emit(Token{Kind: TokenCodeStart, Literal: "#{", Pos: pos})
		case '}':
			l.advance()
			return l.emit(Token{Kind: TokenCodeEnd, Literal: "#}", Pos: pos})
		}
		return l.emit(Token{Kind: TokenHash, Literal: "#", Pos: pos})
	case '$':
		if isWordStart(l.peekAt(1)) {
			return l.scanWord(TokenSubstitution)
		}
		l.advance()
		return Token{}, l.errorf(pos, "illegal character '$'")
	case '-':
		if isDigit(l.peekAt(1)) {
			return l.scanNumber()
		}
		l.advance()
		return Token{}, l.errorf(pos, "illegal character '-'")
	}

	if isDigit(ch) {
		return l.scanNumber()
	}
	if isWordStart(ch) {
		return l.scanWord(TokenWord)
	}

	l.advance()
	return Token{}, l.errorf(pos, "illegal character %q", ch)
}

var punctuation = map[byte]TokenKind{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	';': TokenSemicolon,
}

// skipTrivia consumes whitespace and comments. A newline followed by a
// line holding a bare '=' yields that line as an assignment token.
func (l *Lexer) skipTrivia() (Token, bool, error) {
	for !l.atEnd() {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '\n':
			for !l.atEnd() && l.peek() == '\n' {
				l.advance()
			}
			if tok, ok := l.assignmentLine(); ok {
				return tok, true, nil
			}
		case ch == '/' && l.peekAt(1) == '/':
			start := l.pos
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
			l.addComment(strings.TrimRight(l.src[start:l.pos], "\r") + "\n")
		case ch == '/' && l.peekAt(1) == '*':
			if err := l.scanNestedComment(); err != nil {
				return Token{}, false, err
			}
		default:
			return Token{}, false, nil
		}
	}
	return Token{}, false, nil
}

// assignmentLine checks the physical line starting at the current offset.
// A '=' that is not preceded by a comment opener, a quote or a code block
// opener makes the whole line one verbatim token.
func (l *Lexer) assignmentLine() (Token, bool) {
	end := strings.IndexByte(l.src[l.pos:], '\n')
	if end < 0 {
		return Token{}, false
	}
	line := l.src[l.pos : l.pos+end]
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return Token{}, false
	}
	for _, marker := range []string{"//", "/*", `"`, "#{"} {
		if i := strings.Index(line, marker); i >= 0 && i < eq {
			return Token{}, false
		}
	}
	pos := l.currentPos()
	for i := 0; i < end; i++ {
		l.advance()
	}
	return Token{Kind: TokenAssignment, Literal: strings.TrimRight(line, "\r"), Pos: pos}, true
}

// scanNestedComment consumes a /* ... */ comment, honouring nesting.
func (l *Lexer) scanNestedComment() error {
	start := l.pos
	pos := l.currentPos()
	l.advance()
	l.advance()
	depth := 1
	for depth > 0 {
		if l.atEnd() {
			return l.errorf(pos, "unterminated comment")
		}
		switch {
		case l.peek() == '/' && l.peekAt(1) == '*':
			l.advance()
			l.advance()
			depth++
		case l.peek() == '*' && l.peekAt(1) == '/':
			l.advance()
			l.advance()
			depth--
		default:
			l.advance()
		}
	}
	l.addComment(l.src[start:l.pos] + "\n")
	return nil
}

func (l *Lexer) addComment(text string) {
	if !l.collect {
		return
	}
	directive := l.restore && isKeptDirective(text)
	if !directive && !l.preserveComments {
		return
	}
	if l.emitted == 0 && isBannerLine(text) {
		return
	}
	l.comments = append(l.comments, comment{text: text, directive: directive})
}

func (l *Lexer) scanString() (Token, error) {
	pos := l.currentPos()
	start := l.pos
	l.advance() // consume opening "

	for {
		if l.atEnd() || l.peek() == '\n' {
			return Token{}, l.errorf(pos, "unterminated string")
		}
		ch := l.advance()
		switch ch {
		case '\\':
			if l.atEnd() || l.peek() == '\n' {
				return Token{}, l.errorf(pos, "unterminated string escape")
			}
			l.advance()
		case '"':
			return l.emit(Token{Kind: TokenString, Literal: l.src[start:l.pos], Pos: pos})
		}
	}
}

func (l *Lexer) scanNumber() (Token, error) {
	pos := l.currentPos()
	start := l.pos
	kind := TokenInteger

	if l.peek() == '-' {
		l.advance()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		kind = TokenFloat
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if e := l.peek(); e == 'e' || e == 'E' {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			kind = TokenFloat
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	return l.emit(Token{Kind: kind, Literal: l.src[start:l.pos], Pos: pos})
}

// scanWord scans a word or a $substitution. Trailing ')' characters that
// have no matching '(' in the word belong to an enclosing list and are
// handed back to the stream.
func (l *Lexer) scanWord(kind TokenKind) (Token, error) {
	pos := l.currentPos()
	start := l.pos
	l.advance()
	if kind == TokenSubstitution {
		l.advance() // first name character, checked by the caller
	}
	for !l.atEnd() && isWordChar(l.peek()) {
		l.advance()
	}

	text := l.src[start:l.pos]
	for strings.HasSuffix(text, ")") && strings.Count(text, ")") > strings.Count(text, "(") {
		text = text[:len(text)-1]
		l.retreat()
	}

	if kind == TokenWord {
		if kw, ok := keywords[text]; ok {
			kind = kw
		}
	}
	return l.emit(Token{Kind: kind, Literal: text, Pos: pos})
}

// scanRawList captures everything up to the ')' that closes the list the
// parser opened before calling EnterRawList.
func (l *Lexer) scanRawList() (Token, error) {
	pos := l.currentPos()
	start := l.pos
	depth := 0
	for {
		if l.atEnd() {
			return Token{}, l.errorf(pos, "unterminated list")
		}
		ch := l.peek()
		switch {
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth < 0 {
				l.mode = modeNormal
				return l.emit(Token{Kind: TokenRawChunk, Literal: l.src[start:l.pos], Pos: pos})
			}
		case !isRawListChar(ch):
			return Token{}, l.errorf(l.currentPos(), "illegal character %q in unparsed list", ch)
		}
		l.advance()
	}
}

// scanCode captures an embedded code block. Its content is opaque: nested
// "#{" markers are not recognised.
func (l *Lexer) scanCode() (Token, error) {
	pos := l.currentPos()
	start := l.pos
	end := strings.Index(l.src[l.pos:], "#}")
	if end < 0 {
		return Token{}, l.errorf(pos, "unterminated code block")
	}
	for i := 0; i < end; i++ {
		l.advance()
	}
	l.mode = modeNormal
	return l.emit(Token{Kind: TokenCodeChunk, Literal: l.src[start:l.pos], Pos: pos})
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isWordChar(ch byte) bool {
	if isWordStart(ch) || isDigit(ch) {
		return true
	}
	return strings.IndexByte("+-<>(),.*|&%:", ch) >= 0
}

func isRawListChar(ch byte) bool {
	return isDigit(ch) || strings.IndexByte(" \t\r\n.-+eE", ch) >= 0
}
