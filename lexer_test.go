package foamdict

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	kind TokenKind
	lit  string
}

func lexAll(t *testing.T, src string) []tok {
	t.Helper()
	toks, err := NewLexer(src).Tokens()
	require.NoError(t, err)
	out := make([]tok, 0, len(toks))
	for _, tk := range toks {
		if tk.Kind == TokenEOF {
			break
		}
		out = append(out, tok{tk.Kind, tk.Literal})
	}
	return out
}

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []tok
	}{
		{
			name: "entry",
			src:  "deltaT 0.005;",
			want: []tok{{TokenWord, "deltaT"}, {TokenFloat, "0.005"}, {TokenSemicolon, ";"}},
		},
		{
			name: "numbers",
			src:  "-1 2.5 1e-05 3e 1. 7",
			want: []tok{
				{TokenInteger, "-1"}, {TokenFloat, "2.5"}, {TokenFloat, "1e-05"},
				{TokenInteger, "3"}, {TokenWord, "e"}, {TokenFloat, "1."}, {TokenInteger, "7"},
			},
		},
		{
			name: "word with parentheses",
			src:  "div(phi,U) Gauss;",
			want: []tok{{TokenWord, "div(phi,U)"}, {TokenWord, "Gauss"}, {TokenSemicolon, ";"}},
		},
		{
			name: "unbalanced parentheses go back to the list",
			src:  "(a b))",
			want: []tok{{TokenLParen, "("}, {TokenWord, "a"}, {TokenWord, "b"}, {TokenRParen, ")"}, {TokenRParen, ")"}},
		},
		{
			name: "keywords",
			src:  "FoamFile uniform nonuniform default",
			want: []tok{{TokenFoamFile, "FoamFile"}, {TokenUniform, "uniform"}, {TokenNonuniform, "nonuniform"}, {TokenDefault, "default"}},
		},
		{
			name: "string keeps quotes and escapes",
			src:  `note "a \"b\" c";`,
			want: []tok{{TokenWord, "note"}, {TokenString, `"a \"b\" c"`}, {TokenSemicolon, ";"}},
		},
		{
			name: "substitution",
			src:  "$p;",
			want: []tok{{TokenSubstitution, "$p"}, {TokenSemicolon, ";"}},
		},
		{
			name: "directive",
			src:  `#include "defaults"`,
			want: []tok{{TokenHash, "#"}, {TokenInclude, "include"}, {TokenString, `"defaults"`}},
		},
		{
			name: "dimension",
			src:  "[0 1 -1 0 0]",
			want: []tok{
				{TokenLBracket, "["}, {TokenInteger, "0"}, {TokenInteger, "1"}, {TokenInteger, "-1"},
				{TokenInteger, "0"}, {TokenInteger, "0"}, {TokenRBracket, "]"},
			},
		},
		{
			name: "code block",
			src:  "code #{ int a = 1; #};",
			want: []tok{
				{TokenWord, "code"}, {TokenCodeStart, "#{"}, {TokenCodeChunk, " int a = 1; "},
				{TokenCodeEnd, "#}"}, {TokenSemicolon, ";"},
			},
		},
		{
			name: "comments are skipped",
			src:  "a /* one /* nested */ two */ 1; // tail\nb 2;",
			want: []tok{
				{TokenWord, "a"}, {TokenInteger, "1"}, {TokenSemicolon, ";"},
				{TokenWord, "b"}, {TokenInteger, "2"}, {TokenSemicolon, ";"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexAll(t, tt.src))
		})
	}
}

func TestLexer_AssignmentLines(t *testing.T) {
	src := "reactions\n(\n    CH4 + 2O2 = CO2 + 2H2O\n    x \"a=b\"\n    // c = d\n)"
	want := []tok{
		{TokenWord, "reactions"},
		{TokenLParen, "("},
		{TokenAssignment, "    CH4 + 2O2 = CO2 + 2H2O"},
		{TokenWord, "x"},
		{TokenString, `"a=b"`},
		{TokenRParen, ")"},
	}
	assert.Equal(t, want, lexAll(t, src))
}

func TestLexer_AssignmentNotAfterCodeOpener(t *testing.T) {
	src := "a 1;\ncode #{ x = 1; #};"
	toks := lexAll(t, src)
	require.Len(t, toks, 8)
	assert.Equal(t, TokenWord, toks[3].kind)
	assert.Equal(t, TokenCodeChunk, toks[5].kind)
}

func TestLexer_RawList(t *testing.T) {
	l := NewLexer("3(1 2.5 (0 0 1)) next")

	n, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenInteger, n.Kind)

	open, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenLParen, open.Kind)

	require.NoError(t, l.EnterRawList())
	chunk, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenRawChunk, chunk.Kind)
	assert.Equal(t, "1 2.5 (0 0 1)", chunk.Literal)

	closing, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenRParen, closing.Kind)

	word, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, tok{TokenWord, "next"}, tok{word.Kind, word.Literal})
}

func TestLexer_RawListRejectsBufferedToken(t *testing.T) {
	l := NewLexer("(1 2)")
	_, err := l.Peek()
	require.NoError(t, err)
	assert.Error(t, l.EnterRawList())
}

func TestLexer_RawListIllegalCharacter(t *testing.T) {
	l := NewLexer("1 a)")
	require.NoError(t, l.EnterRawList())
	_, err := l.Next()
	var lexErr *LexicalError
	require.ErrorAs(t, err, &lexErr)
}

func TestLexer_Decorations(t *testing.T) {
	l := NewLexer("// first\n/* second */\nkey 1;\n// dangling\n")
	l.SetCollectDecorations(true)

	tk, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, "key", tk.Literal)
	assert.Equal(t, "// first\n/* second */", l.TakeDecoration())
	assert.Empty(t, l.TakeDecoration())
}

func TestLexer_DecorationsOff(t *testing.T) {
	l := NewLexer("// first\nkey 1;")
	l.SetCollectDecorations(true)
	l.SetPreserveComments(false)
	_, err := l.Peek()
	require.NoError(t, err)
	assert.Empty(t, l.TakeDecoration())
}

func TestLexer_TakeDirectives(t *testing.T) {
	src := "// lead\n// #include \"a\"\n/* // #remove x */\n// #inputMode merge\n// after\nkey 1;"

	l := NewLexer(src)
	l.SetCollectDecorations(true)
	l.SetRestoreDirectives(true)
	_, err := l.Peek()
	require.NoError(t, err)

	got := l.TakeDirectives()
	require.Len(t, got, 2)
	assert.Equal(t, `// #include "a"`, got[0].Value.Str)
	assert.Equal(t, "// lead", got[0].Decoration)
	assert.True(t, got[0].IsDirective())
	assert.Equal(t, "// #inputMode merge", got[1].Value.Str)
	assert.Equal(t, "/* // #remove x */", got[1].Decoration)
	assert.Equal(t, "// after", l.TakeDecoration())

	// without restoring they are plain comments
	l = NewLexer(src)
	l.SetCollectDecorations(true)
	_, err = l.Peek()
	require.NoError(t, err)
	assert.Empty(t, l.TakeDirectives())
	assert.Contains(t, l.TakeDecoration(), "// #include \"a\"\n")

	// directive lines survive when comments are dropped
	l = NewLexer(src)
	l.SetCollectDecorations(true)
	l.SetRestoreDirectives(true)
	l.SetPreserveComments(false)
	_, err = l.Peek()
	require.NoError(t, err)
	got = l.TakeDirectives()
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Decoration)
	assert.Empty(t, l.TakeDecoration())
}

func TestLexer_BannerDropped(t *testing.T) {
	l := NewLexer(Banner + "\n// mine\nkey 1;")
	l.SetCollectDecorations(true)
	_, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, "// mine", l.TakeDecoration())
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated comment", "a /* b"},
		{"unterminated string", "a \"b\n\";"},
		{"illegal character", "a @;"},
		{"lonely dollar", "a $;"},
		{"unterminated code", "a #{ b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.src).Tokens()
			require.Error(t, err)
			var lexErr *LexicalError
			assert.True(t, errors.As(err, &lexErr), "got %T", err)
			assert.Contains(t, lexErr.Context, "><")
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	toks, err := NewLexer("a 1;\n  b 2;").Tokens()
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, Position{Line: 2, Column: 3, Offset: 7}, toks[3].Pos)
}
