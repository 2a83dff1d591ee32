package foamdict

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Path addresses a value inside a document: dictionary keys separated by
// '/', each optionally followed by list indices, e.g.
// "solvers/p/tolerance" or "vertices[3][0]".
type Path []PathSegment

// PathSegment is one key of a Path plus the indices applied after it.
type PathSegment struct {
	Key     string
	Indices []int
}

//nolint:govet // participle grammar tags are not standard struct tags
type pathGrammar struct {
	Segments []*segmentGrammar `@@ ( "/" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type segmentGrammar struct {
	Key     string `( @Ident | @String )`
	Indices []int  `( "[" @Int "]" )*`
}

var pathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_$][A-Za-z0-9_+\-<>(),.*|&%:]*`},
	{Name: "Punct", Pattern: `[/\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var pathParser = participle.MustBuild[pathGrammar](
	participle.Lexer(pathLexer),
	participle.Elide("Whitespace"),
)

// ParsePath parses a key path.
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty path: %w", ErrPathNotFound)
	}
	g, err := pathParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", s, err)
	}
	p := make(Path, len(g.Segments))
	for i, seg := range g.Segments {
		p[i] = PathSegment{Key: seg.Key, Indices: seg.Indices}
	}
	return p, nil
}

func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p {
		if i > 0 {
			sb.WriteString("/")
		}
		sb.WriteString(seg.Key)
		for _, idx := range seg.Indices {
			sb.WriteString("[" + strconv.Itoa(idx) + "]")
		}
	}
	return sb.String()
}

// Lookup returns the value at path.
func (d *Document) Lookup(path string) (Value, error) {
	p, err := ParsePath(path)
	if err != nil {
		return Value{}, err
	}
	cur := d.Body
	for _, seg := range p {
		cur, err = step(cur, seg.Key)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", path, err)
		}
		for _, idx := range seg.Indices {
			cur, err = index(cur, idx)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return cur, nil
}

// Assign stores v at path. Missing intermediate dictionaries are created;
// indices must address existing list items.
func (d *Document) Assign(path string, v Value) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	if d.Body.Kind == KindList && len(p) > 1 && len(p[0].Indices) == 0 {
		// boundary style list: descend into the named dictionary
		entry, err := pairValue(d.Body, p[0].Key)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if entry.Kind != KindDict {
			return fmt.Errorf("%s: %s is a %s, not a dictionary", path, p[0].Key, entry.Kind)
		}
		if err := assign(entry.Dict, p[1:], v); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
	body, err := d.Dict()
	if err != nil {
		return err
	}
	if err := assign(body, p, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// pairValue finds the value following the word key in a list of
// name/value pairs, the layout of boundary files.
func pairValue(list Value, key string) (Value, error) {
	for i := 0; i+1 < len(list.Items); i++ {
		if name, ok := list.Items[i].Text(); ok && name == key {
			return list.Items[i+1], nil
		}
	}
	return Value{}, fmt.Errorf("key %s: %w", key, ErrPathNotFound)
}

func assign(d *Dict, p Path, v Value) error {
	seg := p[0]
	rest := p[1:]

	if len(seg.Indices) == 0 {
		if len(rest) == 0 {
			d.Set(seg.Key, v)
			return nil
		}
		child, ok := d.Get(seg.Key)
		if !ok {
			child = DictValue(NewDict())
			d.Set(seg.Key, child)
		}
		if child.Kind != KindDict {
			return fmt.Errorf("key %s is a %s, not a dictionary", seg.Key, child.Kind)
		}
		return assign(child.Dict, rest, v)
	}

	cur, ok := d.Get(seg.Key)
	if !ok {
		return fmt.Errorf("key %s: %w", seg.Key, ErrPathNotFound)
	}
	updated, err := assignIndexed(cur, seg.Indices, rest, v)
	if err != nil {
		return err
	}
	d.Set(seg.Key, updated)
	return nil
}

// assignIndexed replaces an element of a list value and returns the
// updated list.
func assignIndexed(cur Value, indices []int, rest Path, v Value) (Value, error) {
	idx := indices[0]
	switch cur.Kind {
	case KindList, KindTuple:
		if idx < 0 || idx >= len(cur.Items) {
			return Value{}, fmt.Errorf("index %d out of range: %w", idx, ErrPathNotFound)
		}
		elem := cur.Items[idx]
		var err error
		switch {
		case len(indices) > 1:
			elem, err = assignIndexed(elem, indices[1:], rest, v)
		case len(rest) > 0:
			if elem.Kind != KindDict {
				return Value{}, fmt.Errorf("element %d is a %s, not a dictionary", idx, elem.Kind)
			}
			err = assign(elem.Dict, rest, v)
		default:
			elem = v
		}
		if err != nil {
			return Value{}, err
		}
		cur.Items[idx] = elem
		return cur, nil
	case KindVector, KindSymmTensor, KindTensor, KindDimension:
		n, ok := v.Number()
		if !ok || len(indices) > 1 || len(rest) > 0 {
			return Value{}, fmt.Errorf("component of a %s must be set to a number", cur.Kind)
		}
		if idx < 0 || idx >= len(cur.Nums) {
			return Value{}, fmt.Errorf("index %d out of range: %w", idx, ErrPathNotFound)
		}
		cur.Nums[idx] = n
		return cur, nil
	}
	return Value{}, fmt.Errorf("cannot index a %s", cur.Kind)
}

func step(cur Value, key string) (Value, error) {
	cur = cur.Resolved()
	if cur.Kind == KindList {
		return pairValue(cur, key)
	}
	if cur.Kind != KindDict {
		return Value{}, fmt.Errorf("cannot look up %s in a %s", key, cur.Kind)
	}
	v, ok := cur.Dict.Get(key)
	if !ok {
		return Value{}, fmt.Errorf("key %s: %w", key, ErrPathNotFound)
	}
	return v, nil
}

func index(cur Value, idx int) (Value, error) {
	cur = cur.Resolved()
	if cur.Kind == KindField {
		cur = cur.Field.Payload
	}
	switch cur.Kind {
	case KindList, KindTuple:
		if idx >= 0 && idx < len(cur.Items) {
			return cur.Items[idx], nil
		}
	case KindVector, KindSymmTensor, KindTensor, KindDimension:
		if idx >= 0 && idx < len(cur.Nums) {
			return Float(cur.Nums[idx]), nil
		}
	default:
		return Value{}, fmt.Errorf("cannot index a %s", cur.Kind)
	}
	return Value{}, fmt.Errorf("index %d out of range: %w", idx, ErrPathNotFound)
}

// ParseValue parses the text of a single entry value, as it would appear
// between a key and its ';'.
func ParseValue(text string, opts Options) (Value, error) {
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ";") && !strings.HasSuffix(text, "}") {
		text += ";"
	}
	opts.Shape = ShapeHeaderless
	opts.BinaryMode = false
	doc, err := LoadString("value "+text+"\n", opts)
	if err != nil {
		return Value{}, err
	}
	v, _ := doc.Get("value")
	return v, nil
}
