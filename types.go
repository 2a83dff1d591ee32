// Package foamdict reads, edits and writes OpenFOAM case dictionaries.
package foamdict

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies which member of the Value union is populated.
type Kind uint8

const (
	KindEmpty       Kind = iota // entry without a value: "key;"
	KindInt                     // Int
	KindFloat                   // Float
	KindString                  // Str, without the surrounding quotes
	KindWord                    // Str
	KindVector                  // Nums, 3 components
	KindSymmTensor              // Nums, 6 components
	KindTensor                  // Nums, 9 components
	KindDimension               // Nums, 7 exponents
	KindList                    // Items
	KindTuple                   // Items: several values on one entry line
	KindDict                    // Dict
	KindField                   // Field
	KindRaw                     // Str: opaque numeric list body
	KindRawList                 // Length + Str: declared-length list kept opaque
	KindCode                    // Str: body of a #{ ... #} block
	KindAssignment              // Str: verbatim line holding '='
	KindDirective               // Str: directive line kept in a dictionary
	KindRedirection             // Redirect: result of a $name substitution
)

var kindNames = [...]string{
	KindEmpty:       "empty",
	KindInt:         "int",
	KindFloat:       "float",
	KindString:      "string",
	KindWord:        "word",
	KindVector:      "vector",
	KindSymmTensor:  "symmTensor",
	KindTensor:      "tensor",
	KindDimension:   "dimension",
	KindList:        "list",
	KindTuple:       "tuple",
	KindDict:        "dictionary",
	KindField:       "field",
	KindRaw:         "raw",
	KindRawList:     "rawList",
	KindCode:        "code",
	KindAssignment:  "assignment",
	KindDirective:   "directive",
	KindRedirection: "redirection",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a closed tagged union. Only the fields that belong to Kind
// carry meaning.
type Value struct {
	Kind     Kind
	Int      int64
	Float    float64
	Str      string
	Nums     []float64
	Items    []Value
	Length   int
	Dict     *Dict
	Field    *Field
	Redirect *Redirection
}

// FieldKind distinguishes uniform from nonuniform field values.
type FieldKind uint8

const (
	Uniform FieldKind = iota
	Nonuniform
)

func (k FieldKind) String() string {
	if k == Nonuniform {
		return "nonuniform"
	}
	return "uniform"
}

// Field is a "uniform X" or "nonuniform List<T> (...)" value.
type Field struct {
	Kind    FieldKind
	Name    string // type name of a nonuniform list, e.g. List<scalar>
	Payload Value
}

// Redirection is the result of a $name lookup: an owned snapshot of the
// referenced value plus a back-reference to the dictionary that held it.
// The back-reference only lives while the document is being parsed.
type Redirection struct {
	Name     string
	Snapshot Value
	origin   *Dict
}

// Origin returns the dictionary the substitution was resolved in, or nil
// once parsing has finished.
func (r *Redirection) Origin() *Dict { return r.origin }

// ============================================================
// Constructors
// ============================================================

func Empty() Value { return Value{Kind: KindEmpty} }
func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Word(s string) Value { return Value{Kind: KindWord, Str: s} }
func List(items ...Value) Value { return Value{Kind: KindList, Items: items} }
func Tuple(items ...Value) Value { return Value{Kind: KindTuple, Items: items} }
func DictValue(d *Dict) Value { return Value{Kind: KindDict, Dict: d} }
func Raw(text string) Value { return Value{Kind: KindRaw, Str: text} }
func Code(text string) Value { return Value{Kind: KindCode, Str: text} }
func Assignment(line string) Value { return Value{Kind: KindAssignment, Str: line} }

// Vector builds a 3-component vector.
func Vector(x, y, z float64) Value {
	return Value{Kind: KindVector, Nums: []float64{x, y, z}}
}

// SymmTensor builds a symmetric tensor from its 6 independent components.
func SymmTensor(c ...float64) Value {
	return Value{Kind: KindSymmTensor, Nums: fixed(c, 6)}
}

// Tensor builds a full 3x3 tensor from 9 components in row order.
func Tensor(c ...float64) Value {
	return Value{Kind: KindTensor, Nums: fixed(c, 9)}
}

// Dimension builds a dimension set. Five exponents are padded with two
// zeros to the full seven.
func Dimension(exps ...float64) Value {
	return Value{Kind: KindDimension, Nums: fixed(exps, 7)}
}

// RawList builds a declared-length list whose body is kept verbatim.
func RawList(length int, text string) Value {
	return Value{Kind: KindRawList, Length: length, Str: text}
}

// UniformField wraps a single value as "uniform X".
func UniformField(v Value) Value {
	return Value{Kind: KindField, Field: &Field{Kind: Uniform, Payload: v}}
}

// NonuniformField wraps a list as "nonuniform name (...)".
func NonuniformField(name string, payload Value) Value {
	return Value{Kind: KindField, Field: &Field{Kind: Nonuniform, Name: name, Payload: payload}}
}

func fixed(c []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, c)
	return out
}

// ============================================================
// Accessors
// ============================================================

// IsNumber reports whether v is an int or float scalar.
func (v Value) IsNumber() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// Number returns the numeric value of an int or float scalar.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	}
	return 0, false
}

// Text returns the textual content of words, strings, and opaque chunks.
func (v Value) Text() (string, bool) {
	switch v.Kind {
	case KindWord, KindString, KindRaw, KindRawList, KindCode, KindAssignment, KindDirective:
		return v.Str, true
	}
	return "", false
}

// Len is the element count used by length prefixes: list items, tensor
// components, or the declared length of a raw list.
func (v Value) Len() int {
	switch v.Kind {
	case KindList, KindTuple:
		return len(v.Items)
	case KindVector, KindSymmTensor, KindTensor, KindDimension:
		return len(v.Nums)
	case KindRawList:
		return v.Length
	case KindDict:
		return v.Dict.Len()
	}
	return 0
}

// isListLike reports whether v can follow a length prefix.
func (v Value) isListLike() bool {
	switch v.Kind {
	case KindList, KindVector, KindSymmTensor, KindTensor:
		return true
	}
	return false
}

// Resolved returns the snapshot of a redirection, or v itself.
func (v Value) Resolved() Value {
	if v.Kind == KindRedirection && v.Redirect != nil {
		return v.Redirect.Snapshot
	}
	return v
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	out := v
	if v.Nums != nil {
		out.Nums = slices.Clone(v.Nums)
	}
	if v.Items != nil {
		out.Items = make([]Value, len(v.Items))
		for i, item := range v.Items {
			out.Items[i] = item.Clone()
		}
	}
	if v.Dict != nil {
		out.Dict = v.Dict.Clone()
	}
	if v.Field != nil {
		f := *v.Field
		f.Payload = v.Field.Payload.Clone()
		out.Field = &f
	}
	if v.Redirect != nil {
		r := *v.Redirect
		r.Snapshot = v.Redirect.Snapshot.Clone()
		r.origin = nil
		out.Redirect = &r
	}
	return out
}

// Equal reports structural equality: same kind and same content,
// recursively. Dictionary order and decorations are significant.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindEmpty:
		return true
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindString, KindWord, KindRaw, KindCode, KindAssignment, KindDirective:
		return v.Str == o.Str
	case KindRawList:
		return v.Length == o.Length && v.Str == o.Str
	case KindVector, KindSymmTensor, KindTensor, KindDimension:
		return slices.Equal(v.Nums, o.Nums)
	case KindList, KindTuple:
		return slices.EqualFunc(v.Items, o.Items, Value.Equal)
	case KindDict:
		return v.Dict.Equal(o.Dict)
	case KindField:
		if v.Field == nil || o.Field == nil {
			return v.Field == o.Field
		}
		return v.Field.Kind == o.Field.Kind && v.Field.Name == o.Field.Name &&
			v.Field.Payload.Equal(o.Field.Payload)
	case KindRedirection:
		if v.Redirect == nil || o.Redirect == nil {
			return v.Redirect == o.Redirect
		}
		return v.Redirect.Name == o.Redirect.Name && v.Redirect.Snapshot.Equal(o.Redirect.Snapshot)
	}
	return false
}

// String renders v inline in dictionary syntax.
func (v Value) String() string {
	var sb strings.Builder
	g := &generator{opts: DefaultGeneratorOptions(), sb: &sb}
	g.value(v, 0)
	return sb.String()
}

// GoString is used by %#v and test diffs.
func (v Value) GoString() string {
	return fmt.Sprintf("foamdict.Value{%s: %s}", v.Kind, v.String())
}

// ============================================================
// Parse settings
// ============================================================

// InputMode is set by the #inputMode directive and governs how a
// redefinition of an existing key is handled.
type InputMode uint8

const (
	ModeMerge InputMode = iota
	ModeError
	ModeWarn
	ModeProtect
	ModeOverwrite
	ModeDefault
)

var inputModeNames = map[string]InputMode{
	"merge":     ModeMerge,
	"error":     ModeError,
	"warn":      ModeWarn,
	"protect":   ModeProtect,
	"overwrite": ModeOverwrite,
	"default":   ModeDefault,
}

func (m InputMode) String() string {
	for name, mode := range inputModeNames {
		if mode == m {
			return name
		}
	}
	return "unknown"
}

// ParseInputMode maps a directive argument to its mode.
func ParseInputMode(s string) (InputMode, bool) {
	m, ok := inputModeNames[s]
	return m, ok
}

// BodyShape selects the top-level grammar.
type BodyShape uint8

const (
	ShapeFull           BodyShape = iota // header followed by a dictionary body
	ShapeHeaderOnly                      // header only, body skipped
	ShapeHeaderless                      // dictionary body without header
	ShapeList                            // a single list, no header
	ShapeListWithHeader                  // header followed by a single list
	ShapeBoundary                        // header followed by name/dictionary pairs
)

var shapeNames = [...]string{
	ShapeFull:           "full",
	ShapeHeaderOnly:     "headerOnly",
	ShapeHeaderless:     "headerless",
	ShapeList:           "list",
	ShapeListWithHeader: "listWithHeader",
	ShapeBoundary:       "boundary",
}

func (s BodyShape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

func (s BodyShape) hasHeader() bool {
	return s != ShapeHeaderless && s != ShapeList
}

func (s BodyShape) isList() bool {
	return s == ShapeList || s == ShapeListWithHeader || s == ShapeBoundary
}
