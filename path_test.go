package foamdict

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want Path
	}{
		{"application", Path{{Key: "application"}}},
		{"solvers/p/tolerance", Path{{Key: "solvers"}, {Key: "p"}, {Key: "tolerance"}}},
		{"vertices[3][0]", Path{{Key: "vertices", Indices: []int{3, 0}}}},
		{"divSchemes/div(phi,U)", Path{{Key: "divSchemes"}, {Key: "div(phi,U)"}}},
		{"solvers/$p", Path{{Key: "solvers"}, {Key: "$p"}}},
		{`"quoted key"/a`, Path{{Key: `"quoted key"`}, {Key: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePath(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParsePath_Invalid(t *testing.T) {
	for _, in := range []string{"", "a//b", "a[x]", "a[1"} {
		_, err := ParsePath(in)
		assert.Error(t, err, "ParsePath(%q)", in)
	}
}

func TestLookup(t *testing.T) {
	doc := mustParse(t, `
vertices ((0 0 0) (1 0 0) (1 1 0));
internalField uniform (1 2 3);
value nonuniform List<scalar> 3(4 5 6);
sub { list (a b c); }
`, headerless())

	tests := []struct {
		path string
		want Value
	}{
		{"vertices[1]", Vector(1, 0, 0)},
		{"vertices[2][1]", Float(1)},
		{"internalField[2]", Float(3)},
		{"value[0]", Int(4)},
		{"sub/list[2]", Word("c")},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, mustGet(t, doc, tt.path))
		})
	}

	for _, missing := range []string{"nope", "sub/nope", "vertices[9]"} {
		_, err := doc.Lookup(missing)
		assert.True(t, errors.Is(err, ErrPathNotFound), "Lookup(%q) = %v", missing, err)
	}

	_, err := doc.Lookup("sub/list/x")
	assert.Error(t, err)
	_, err = doc.Lookup("sub[0]")
	assert.Error(t, err)
}

func TestLookup_Redirection(t *testing.T) {
	doc := mustParse(t, "base { a 1; }\ncopy $base;", macros())
	assert.Equal(t, Int(1), mustGet(t, doc, "copy/a"))
}

func TestAssign(t *testing.T) {
	doc := mustParse(t, "a 1;\nsub { b 2; }\nv (1 2 3);\nl (x (1 2) { k 1; });", headerless())

	require.NoError(t, doc.Assign("a", Word("changed")))
	require.NoError(t, doc.Assign("sub/b", Int(3)))
	require.NoError(t, doc.Assign("new/deep/key", Float(0.5)))
	require.NoError(t, doc.Assign("v[1]", Float(9)))
	require.NoError(t, doc.Assign("l[1][0]", Int(7)))
	require.NoError(t, doc.Assign("l[2]/k", Int(2)))

	assert.Equal(t, Word("changed"), mustGet(t, doc, "a"))
	assert.Equal(t, Int(3), mustGet(t, doc, "sub/b"))
	assert.Equal(t, Float(0.5), mustGet(t, doc, "new/deep/key"))
	assert.Equal(t, Vector(1, 9, 3), mustGet(t, doc, "v"))
	assert.Equal(t, List(Int(7), Int(2)), mustGet(t, doc, "l[1]"))
	assert.Equal(t, Int(2), mustGet(t, doc, "l[2]/k"))
	assert.Equal(t, []string{"a", "sub", "v", "l", "new"}, doc.Keys())
}

func TestAssign_Errors(t *testing.T) {
	doc := mustParse(t, "a 1;\nv (1 2 3);\nl (1 2);", headerless())

	tests := []struct {
		path string
		v    Value
	}{
		{"a/b", Int(1)},
		{"v[5]", Int(1)},
		{"v[0]", Word("x")},
		{"l[4]", Int(1)},
		{"missing[0]", Int(1)},
		{"a[0]", Int(1)},
		{"bad//path", Int(1)},
	}
	for _, tt := range tests {
		assert.Error(t, doc.Assign(tt.path, tt.v), "Assign(%q)", tt.path)
	}
	assert.True(t, errors.Is(doc.Assign("missing[0]", Int(1)), ErrPathNotFound))
}

func TestAssign_Boundary(t *testing.T) {
	opts := DefaultOptions()
	opts.Shape = ShapeBoundary
	doc, err := Load("testdata/boundary", opts)
	require.NoError(t, err)

	require.NoError(t, doc.Assign("fixedWalls/type", Word("patch")))
	assert.Equal(t, Word("patch"), mustGet(t, doc, "fixedWalls/type"))

	err = doc.Assign("nowhere/type", Word("patch"))
	assert.True(t, errors.Is(err, ErrPathNotFound))

	err = doc.Assign("movingWall", Word("x"))
	assert.True(t, errors.Is(err, ErrNotDictionary))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"1e-06", Float(1e-06)},
		{"uniform (1 0 0)", UniformField(Vector(1, 0, 0))},
		{"Gauss linear;", Tuple(Word("Gauss"), Word("linear"))},
		{`"text"`, String("text")},
		{"{ a 1; }", DictValue(func() *Dict { d := NewDict(); d.Set("a", Int(1)); return d }())},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in, DefaultOptions())
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %#v", got)
		})
	}

	_, err := ParseValue("(1 2", DefaultOptions())
	assert.Error(t, err)
}
