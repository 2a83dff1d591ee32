package foamdict

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// Options enumerates every independent parse setting.
type Options struct {
	// MacroExpansion expands #include, #inputMode and $name. When off the
	// directives are kept verbatim and $name stays a word.
	MacroExpansion bool

	// PreserveComments keeps comments as decorations of the following key.
	PreserveComments bool

	// RawListThreshold captures declared-length lists with at least this
	// many elements as opaque text. Zero never switches to raw mode.
	RawListThreshold int

	// NoVectorOrTensor keeps 3, 6 and 9 number lists as plain lists.
	NoVectorOrTensor bool

	// NoCondense keeps redundant length prefixes in lists of sub-lists.
	NoCondense bool

	// DuplicateCheck reports keys defined twice in one dictionary. The
	// later definition wins either way.
	DuplicateCheck bool

	// DuplicateFail makes a detected duplicate fatal instead of a warning.
	DuplicateFail bool

	// BinaryMode is the format hint for documents without a header. A
	// header's format entry overrides it.
	BinaryMode bool

	// Shape selects the top-level grammar.
	Shape BodyShape
}

// DefaultOptions returns the settings used by NewParser.
func DefaultOptions() Options {
	return Options{PreserveComments: true}
}

// Parser provides configurable parsing of case dictionaries. A Parser only
// holds settings; every parse runs on its own reducer state, so one Parser
// may be reused.
type Parser struct {
	opts   Options
	logger *zap.Logger
}

// NewParser creates a new Parser with default configuration.
func NewParser() *Parser {
	return NewParserWithOptions(DefaultOptions())
}

// NewParserWithOptions creates a Parser with the given settings.
func NewParserWithOptions(opts Options) *Parser {
	return &Parser{opts: opts, logger: zap.NewNop()}
}

// WithMacroExpansion configures #include / $name expansion.
func (p *Parser) WithMacroExpansion(on bool) *Parser {
	p.opts.MacroExpansion = on
	return p
}

// WithPreserveComments configures comment capture.
func (p *Parser) WithPreserveComments(on bool) *Parser {
	p.opts.PreserveComments = on
	return p
}

// WithRawListThreshold configures the length from which declared-length
// lists are kept unparsed.
func (p *Parser) WithRawListThreshold(n int) *Parser {
	p.opts.RawListThreshold = n
	return p
}

// WithVectorOrTensor configures promotion of short numeric lists.
func (p *Parser) WithVectorOrTensor(on bool) *Parser {
	p.opts.NoVectorOrTensor = !on
	return p
}

// WithCondensation configures removal of redundant length prefixes.
func (p *Parser) WithCondensation(on bool) *Parser {
	p.opts.NoCondense = !on
	return p
}

// WithDuplicateCheck configures duplicate key detection and whether a
// duplicate aborts the parse.
func (p *Parser) WithDuplicateCheck(check, fail bool) *Parser {
	p.opts.DuplicateCheck = check
	p.opts.DuplicateFail = fail
	return p
}

// WithBinaryMode sets the format hint for headerless input.
func (p *Parser) WithBinaryMode(on bool) *Parser {
	p.opts.BinaryMode = on
	return p
}

// WithShape selects the top-level grammar.
func (p *Parser) WithShape(s BodyShape) *Parser {
	p.opts.Shape = s
	return p
}

// WithLogger configures the logger for warnings and include tracing.
func (p *Parser) WithLogger(l *zap.Logger) *Parser {
	if l == nil {
		l = zap.NewNop()
	}
	p.logger = l
	return p
}

// Options returns the parser settings.
func (p *Parser) Options() Options {
	return p.opts
}

// Parse parses src. Includes resolve relative to the working directory.
func (p *Parser) Parse(src string) (*Document, error) {
	return p.parse(src, "", make(map[string]bool))
}

// ParseDocument parses a dictionary from an io.Reader.
func (p *Parser) ParseDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &IoError{Op: "read", Path: "<reader>", Err: err}
	}
	return p.Parse(string(data))
}

// ParseFile reads and parses the file at path. Includes resolve relative
// to the file's directory.
func (p *Parser) ParseFile(path string) (*Document, error) {
	src, err := readFile(path)
	if err != nil {
		return nil, err
	}
	including := make(map[string]bool)
	if abs, err := filepath.Abs(path); err == nil {
		including[abs] = true
	}
	return p.parse(src, path, including)
}

func (p *Parser) parse(src, file string, including map[string]bool) (*Document, error) {
	r := newReducer(p, src, file, including)
	doc, err := r.run()
	r.release()
	if err != nil {
		return nil, r.annotate(err)
	}
	p.logger.Debug("parsed dictionary",
		zap.String("file", file),
		zap.Stringer("shape", p.opts.Shape),
		zap.Int("entries", doc.Len()),
		zap.Int("warnings", len(doc.Warnings)))
	return doc, nil
}

// reducer is the mutable state of one parse: token stream, scope stack,
// input mode and collected warnings. It is never shared or reused.
type reducer struct {
	parser    *Parser
	opts      Options
	logger    *zap.Logger
	lex       *Lexer
	file      string
	dir       string
	scopes    []*Dict
	mode      InputMode
	redirects []*Redirection
	warnings  []Warning
	including map[string]bool // absolute paths on the current include chain
}

func newReducer(p *Parser, src, file string, including map[string]bool) *reducer {
	lex := NewLexer(src)
	lex.SetPreserveComments(p.opts.PreserveComments)
	lex.SetRestoreDirectives(p.opts.MacroExpansion)
	dir := "."
	if file != "" {
		dir = filepath.Dir(file)
	}
	return &reducer{
		parser:    p,
		opts:      p.opts,
		logger:    p.logger,
		lex:       lex,
		file:      file,
		dir:       dir,
		mode:      ModeDefault,
		including: including,
	}
}

func (r *reducer) run() (*Document, error) {
	shape := r.opts.Shape
	doc := &Document{Name: r.file, Shape: shape, RawListThreshold: r.opts.RawListThreshold}

	if !shape.hasHeader() {
		if r.opts.BinaryMode {
			return nil, newSemanticError("binary format unsupported", ErrBinaryFormat, Token{})
		}
		r.lex.SetCollectDecorations(true)
	} else {
		hdr, err := r.header(shape != ShapeHeaderOnly)
		if err != nil {
			return nil, err
		}
		doc.Header = &Header{Dict: hdr}
		if shape == ShapeHeaderOnly {
			doc.Body = DictValue(NewDict())
			return doc, nil
		}
		r.lex.SetCollectDecorations(true)
	}

	if shape.isList() {
		body, err := r.topList()
		if err != nil {
			return nil, err
		}
		doc.Body = body
	} else {
		root := NewDict()
		r.push(root)
		if err := r.dictBody(root, TokenEOF); err != nil {
			return nil, err
		}
		r.pop()
		doc.Body = DictValue(root)
	}

	if _, err := r.expect(TokenEOF); err != nil {
		return nil, err
	}
	doc.Warnings = r.warnings
	return doc, nil
}

// release drops the back-references of all redirections made during the
// parse.
func (r *reducer) release() {
	for _, red := range r.redirects {
		red.origin = nil
	}
	r.redirects = nil
	r.scopes = nil
}

// annotate fills in file name and source context of errors raised in this
// file. Errors from included files already carry their own.
func (r *reducer) annotate(err error) error {
	var base *ParseError
	var lexErr *LexicalError
	var synErr *SyntaxError
	var semErr *SemanticError
	switch {
	case errors.As(err, &lexErr):
		base = &lexErr.ParseError
	case errors.As(err, &synErr):
		base = &synErr.ParseError
	case errors.As(err, &semErr):
		base = &semErr.ParseError
	default:
		return err
	}
	if base.File != "" {
		return err
	}
	base.File = r.file
	if base.Context == "" && base.Pos.Line > 0 {
		base.Context = contextWindow(r.lex.Source(), base.Pos.Offset)
	}
	return err
}

func (r *reducer) push(d *Dict) { r.scopes = append(r.scopes, d) }

func (r *reducer) pop() { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *reducer) next() (Token, error) { return r.lex.Next() }

func (r *reducer) peek() (Token, error) { return r.lex.Peek() }

func (r *reducer) expect(kind TokenKind) (Token, error) {
	tok, err := r.next()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != kind {
		return Token{}, r.syntaxError(tok, kind.String())
	}
	return tok, nil
}

func (r *reducer) syntaxError(tok Token, expected string) error {
	return &SyntaxError{
		ParseError: ParseError{
			Message:   "syntax error",
			Pos:       tok.Pos,
			Token:     tok.Literal,
			TokenKind: tok.Kind.String(),
		},
		Expected: expected,
		Got:      tok.String(),
	}
}

// header parses "FoamFile { ... }". With validate set the format entry is
// checked before anything after the header is read.
func (r *reducer) header(validate bool) (*Dict, error) {
	tok, err := r.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokenFoamFile {
		return nil, r.syntaxError(tok, TokenFoamFile.String())
	}
	if _, err := r.expect(TokenLBrace); err != nil {
		return nil, err
	}
	v, err := r.dictionary()
	if err != nil {
		return nil, err
	}
	if validate {
		if err := checkFormat(v.Dict, tok); err != nil {
			return nil, err
		}
	}
	return v.Dict, nil
}

func checkFormat(hdr *Dict, tok Token) error {
	v, ok := hdr.Get("format")
	if !ok {
		return newSemanticError("header has no format entry", ErrUnknownFormat, tok)
	}
	format, _ := v.Text()
	switch format {
	case "ascii":
		return nil
	case "binary":
		return newSemanticError("can not parse binary files", ErrBinaryFormat, tok)
	default:
		return newSemanticError(fmt.Sprintf("don't know how to parse file format %s", v), ErrUnknownFormat, tok)
	}
}

// topList parses the body of the list shapes: "(...)" or "N(...)".
func (r *reducer) topList() (Value, error) {
	tok, err := r.next()
	if err != nil {
		return Value{}, err
	}
	switch tok.Kind {
	case TokenLParen:
		return r.list()
	case TokenInteger:
		if next, err := r.peek(); err != nil {
			return Value{}, err
		} else if next.Kind == TokenLParen {
			return r.prelist(tok)
		}
	}
	return Value{}, r.syntaxError(tok, "list")
}

// dictBody parses entries into scope until the closing token, which is
// left in the stream.
func (r *reducer) dictBody(scope *Dict, closing TokenKind) error {
	for {
		tok, err := r.peek()
		if err != nil {
			return err
		}
		for _, e := range r.lex.TakeDirectives() {
			scope.AddDirective(e.Value.Str, e.Decoration)
		}
		switch tok.Kind {
		case closing:
			return nil
		case TokenEOF, TokenRBrace:
			return r.syntaxError(tok, closing.String())
		case TokenSemicolon:
			r.next()
			continue
		}
		deco := r.lex.TakeDecoration()
		if err := r.dictLine(scope, deco); err != nil {
			return err
		}
	}
}

func (r *reducer) dictLine(scope *Dict, deco string) error {
	tok, err := r.next()
	if err != nil {
		return err
	}
	switch {
	case tok.Kind == TokenHash:
		return r.directive(scope, deco)
	case tok.Kind == TokenSubstitution:
		return r.splice(scope, tok, deco)
	case tok.Kind.IsWordLike(), tok.Kind == TokenString:
	default:
		return r.syntaxError(tok, "dictionary key")
	}

	next, err := r.peek()
	if err != nil {
		return err
	}
	var value Value
	if next.Kind == TokenLBrace {
		r.next()
		value, err = r.dictionary()
	} else {
		value, err = r.entryValue()
	}
	if err != nil {
		return err
	}
	if value.Kind == KindList && !r.opts.NoCondense {
		value.Items = stripLengthPrefixes(value.Items)
	}
	return r.define(scope, tok.Literal, value, deco, tok)
}

// dictionary parses the entries of a "{ ... }" block whose opening brace
// has been consumed.
func (r *reducer) dictionary() (Value, error) {
	d := NewDict()
	r.push(d)
	defer r.pop()
	if err := r.dictBody(d, TokenRBrace); err != nil {
		return Value{}, err
	}
	if _, err := r.expect(TokenRBrace); err != nil {
		return Value{}, err
	}
	return DictValue(d), nil
}

// entryValue parses everything between a key and its ';'.
func (r *reducer) entryValue() (Value, error) {
	var items []Value
	for {
		tok, err := r.peek()
		if err != nil {
			return Value{}, err
		}
		switch tok.Kind {
		case TokenSemicolon:
			r.next()
			return entryResult(items), nil
		case TokenEOF, TokenRBrace, TokenRParen, TokenRBracket:
			return Value{}, r.syntaxError(tok, TokenSemicolon.String())
		}

		if len(items) == 0 {
			switch tok.Kind {
			case TokenCodeStart, TokenUniform, TokenNonuniform, TokenInteger:
				v, done, err := r.leadingValue(tok)
				if err != nil {
					return Value{}, err
				}
				if !done {
					items = append(items, v)
					continue
				}
				if _, err := r.expect(TokenSemicolon); err != nil {
					return Value{}, err
				}
				return v, nil
			}
		}

		v, err := r.item(false)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

// leadingValue handles the forms that may only start an entry value: code
// blocks, fields and declared-length lists. done reports a complete value;
// otherwise a consumed integer or keyword is returned as a plain item.
func (r *reducer) leadingValue(tok Token) (v Value, done bool, err error) {
	switch tok.Kind {
	case TokenCodeStart:
		v, err := r.codeStream()
		return v, true, err
	case TokenUniform, TokenNonuniform:
		return r.field()
	case TokenInteger:
		r.next()
		next, err := r.peek()
		if err != nil {
			return Value{}, false, err
		}
		if next.Kind == TokenLParen {
			v, err := r.prelist(tok)
			return v, true, err
		}
		v, err := r.number(tok)
		return v, false, err
	}
	return Value{}, false, nil
}

func entryResult(items []Value) Value {
	switch len(items) {
	case 0:
		return Empty()
	case 1:
		return items[0]
	}
	return Tuple(items...)
}

// field parses "uniform X" or "nonuniform [name] list". A keyword directly
// followed by ';' is just a word.
func (r *reducer) field() (Value, bool, error) {
	kw, err := r.next()
	if err != nil {
		return Value{}, false, err
	}
	next, err := r.peek()
	if err != nil {
		return Value{}, false, err
	}
	if next.Kind == TokenSemicolon {
		return Word(kw.Literal), false, nil
	}

	if kw.Kind == TokenUniform {
		v, err := r.item(false)
		if err != nil {
			return Value{}, false, err
		}
		return UniformField(v), true, nil
	}

	name := ""
	if next.Kind.IsWordLike() {
		r.next()
		name = next.Literal
	}
	tok, err := r.next()
	if err != nil {
		return Value{}, false, err
	}
	var payload Value
	switch tok.Kind {
	case TokenLParen:
		payload, err = r.list()
	case TokenInteger:
		payload, err = r.prelist(tok)
	default:
		return Value{}, false, r.syntaxError(tok, "list")
	}
	if err != nil {
		return Value{}, false, err
	}
	return NonuniformField(name, payload), true, nil
}

// item parses a single value inside an entry or a list.
func (r *reducer) item(inList bool) (Value, error) {
	tok, err := r.next()
	if err != nil {
		return Value{}, err
	}
	switch {
	case tok.Kind.IsWordLike():
		return Word(tok.Literal), nil
	case tok.Kind == TokenString:
		return String(tok.Literal[1 : len(tok.Literal)-1]), nil
	case tok.Kind == TokenInteger, tok.Kind == TokenFloat:
		return r.number(tok)
	case tok.Kind == TokenLBrace:
		return r.dictionary()
	case tok.Kind == TokenLParen:
		return r.list()
	case tok.Kind == TokenLBracket:
		return r.dimension(tok)
	case tok.Kind == TokenSubstitution:
		return r.substitute(tok).Resolved(), nil
	case tok.Kind == TokenAssignment && inList:
		return Assignment(tok.Literal), nil
	}
	return Value{}, r.syntaxError(tok, "value")
}

// list parses the items of a "( ... )" list whose opening parenthesis has
// been consumed and applies shape inference.
func (r *reducer) list() (Value, error) {
	var items []Value
	for {
		tok, err := r.peek()
		if err != nil {
			return Value{}, err
		}
		switch tok.Kind {
		case TokenRParen:
			r.next()
			return r.shapeList(items), nil
		case TokenSemicolon:
			r.next()
			continue
		case TokenEOF:
			return Value{}, r.syntaxError(tok, TokenRParen.String())
		}
		v, err := r.item(true)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

// prelist parses "N( ... )" after the length token; the '(' is next in the
// stream. Lengths at or above the raw threshold switch the lexer to raw
// mode so the elements are never tokenized.
func (r *reducer) prelist(lengthTok Token) (Value, error) {
	length, err := strconv.Atoi(lengthTok.Literal)
	if err != nil {
		return Value{}, r.syntaxError(lengthTok, "list length")
	}
	if _, err := r.expect(TokenLParen); err != nil {
		return Value{}, err
	}
	if r.opts.RawListThreshold <= 0 || length < r.opts.RawListThreshold {
		return r.list()
	}

	if err := r.lex.EnterRawList(); err != nil {
		return Value{}, err
	}
	chunk, err := r.expect(TokenRawChunk)
	if err != nil {
		return Value{}, err
	}
	if _, err := r.expect(TokenRParen); err != nil {
		return Value{}, err
	}
	return RawList(length, chunk.Literal), nil
}

// dimension parses "[a b c d e]" or "[a b c d e f g]".
func (r *reducer) dimension(open Token) (Value, error) {
	var exps []float64
	for {
		tok, err := r.next()
		if err != nil {
			return Value{}, err
		}
		if tok.Kind == TokenRBracket {
			break
		}
		if tok.Kind != TokenInteger && tok.Kind != TokenFloat {
			return Value{}, r.syntaxError(tok, "dimension exponent")
		}
		n, err := r.number(tok)
		if err != nil {
			return Value{}, err
		}
		f, _ := n.Number()
		exps = append(exps, f)
	}
	if len(exps) != 5 && len(exps) != 7 {
		return Value{}, &SyntaxError{
			ParseError: ParseError{
				Message:   fmt.Sprintf("dimension set needs 5 or 7 exponents, got %d", len(exps)),
				Pos:       open.Pos,
				Token:     open.Literal,
				TokenKind: open.Kind.String(),
			},
			Expected: "5 or 7 exponents",
			Got:      strconv.Itoa(len(exps)),
		}
	}
	return Dimension(exps...), nil
}

func (r *reducer) codeStream() (Value, error) {
	if _, err := r.expect(TokenCodeStart); err != nil {
		return Value{}, err
	}
	chunk, err := r.expect(TokenCodeChunk)
	if err != nil {
		return Value{}, err
	}
	if _, err := r.expect(TokenCodeEnd); err != nil {
		return Value{}, err
	}
	return Code(chunk.Literal), nil
}

func (r *reducer) number(tok Token) (Value, error) {
	if tok.Kind == TokenInteger {
		if n, err := strconv.ParseInt(tok.Literal, 10, 64); err == nil {
			return Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return Value{}, r.syntaxError(tok, "number")
	}
	return Float(f), nil
}

func (r *reducer) warn(tok Token, key, msg string) {
	w := Warning{Message: msg, Key: key, File: r.file, Pos: tok.Pos}
	r.warnings = append(r.warnings, w)
	r.logger.Warn(msg,
		zap.String("file", r.file),
		zap.String("key", key),
		zap.Stringer("pos", tok.Pos))
}
