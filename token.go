package foamdict

import "fmt"

// TokenKind identifies the type of a lexical token.
type TokenKind int

const (
	TokenEOF        TokenKind = iota
	TokenWord                 // [A-Za-z_][A-Za-z0-9_+\-<>(),.*|&%:]*
	TokenInteger              // -?[0-9]+
	TokenFloat                // -?[0-9]+.[0-9]*(e[+-]?[0-9]+)? or -?[0-9]+e[+-]?[0-9]+
	TokenString               // "..." (literal keeps the quotes)
	TokenSubstitution         // $name
	TokenRawChunk             // verbatim numeric text of an over-threshold list
	TokenCodeChunk            // verbatim text between #{ and #}
	TokenAssignment           // a whole physical line containing '='
	TokenHash                 // #
	TokenCodeStart            // #{
	TokenCodeEnd              // #}
	TokenLParen               // (
	TokenRParen               // )
	TokenLBrace               // {
	TokenRBrace               // }
	TokenLBracket             // [
	TokenRBracket             // ]
	TokenSemicolon            // ;

	// Keywords (word text checked against the keyword table)
	TokenFoamFile
	TokenUniform
	TokenNonuniform
	TokenInclude
	TokenIncludeIfPresent
	TokenRemove
	TokenInputMode
	TokenMerge
	TokenOverwrite
	TokenError
	TokenWarn
	TokenProtect
	TokenDefault
)

var tokenNames = map[TokenKind]string{
	TokenEOF:              "EOF",
	TokenWord:             "word",
	TokenInteger:          "integer",
	TokenFloat:            "float",
	TokenString:           "string",
	TokenSubstitution:     "substitution",
	TokenRawChunk:         "raw chunk",
	TokenCodeChunk:        "code chunk",
	TokenAssignment:       "assignment line",
	TokenHash:             "'#'",
	TokenCodeStart:        "'#{'",
	TokenCodeEnd:          "'#}'",
	TokenLParen:           "'('",
	TokenRParen:           "')'",
	TokenLBrace:           "'{'",
	TokenRBrace:           "'}'",
	TokenLBracket:         "'['",
	TokenRBracket:         "']'",
	TokenSemicolon:        "';'",
	TokenFoamFile:         "'FoamFile'",
	TokenUniform:          "'uniform'",
	TokenNonuniform:       "'nonuniform'",
	TokenInclude:          "'include'",
	TokenIncludeIfPresent: "'includeIfPresent'",
	TokenRemove:           "'remove'",
	TokenInputMode:        "'inputMode'",
	TokenMerge:            "'merge'",
	TokenOverwrite:        "'overwrite'",
	TokenError:            "'error'",
	TokenWarn:             "'warn'",
	TokenProtect:          "'protect'",
	TokenDefault:          "'default'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsKeyword reports whether k is one of the reserved words.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenFoamFile && k <= TokenDefault
}

// IsWordLike reports whether a token of kind k can stand where a plain word
// is expected (dictionary keys, list items, entry values).
func (k TokenKind) IsWordLike() bool {
	return k == TokenWord || k.IsKeyword()
}

// Position is a location in the source text.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Kind    TokenKind
	Literal string // raw source text of the token
	Pos     Position
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Literal)
}

// keywords maps reserved words to their token kinds.
var keywords = map[string]TokenKind{
	"FoamFile":         TokenFoamFile,
	"uniform":          TokenUniform,
	"nonuniform":       TokenNonuniform,
	"include":          TokenInclude,
	"includeIfPresent": TokenIncludeIfPresent,
	"remove":           TokenRemove,
	"inputMode":        TokenInputMode,
	"merge":            TokenMerge,
	"overwrite":        TokenOverwrite,
	"error":            TokenError,
	"warn":             TokenWarn,
	"protect":          TokenProtect,
	"default":          TokenDefault,
}
