package foamdict

import (
	"strconv"
	"strings"
)

// Banner is written at the top of every generated document. The parser
// drops these lines when they precede the first token, so regenerating a
// generated file does not stack banners.
const Banner = "// -*- C++ -*-\n// File generated by foamdict\n"

var bannerLines = strings.Split(strings.TrimSuffix(Banner, "\n"), "\n")

func isBannerLine(text string) bool {
	text = strings.TrimSpace(text)
	for _, line := range bannerLines {
		if text == line {
			return true
		}
	}
	return false
}

// GeneratorOptions control the text layout.
type GeneratorOptions struct {
	// LongListThreshold is the item count above which lists are written one
	// item per line with a length prefix.
	LongListThreshold int

	// Indent is the indentation unit.
	Indent string

	// SortBoundary orders the patches of a boundary document by startFace.
	SortBoundary bool

	// RawListThreshold is the raw-list threshold of the parser that will
	// read the output. Lists of at least this many items are written
	// without a length prefix so they read back as lists. Zero takes the
	// document's own threshold.
	RawListThreshold int
}

// DefaultGeneratorOptions returns the layout used by ToText.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{LongListThreshold: 20, Indent: "    "}
}

// Render serializes doc with the default layout.
func Render(doc *Document) string {
	return RenderWithOptions(doc, DefaultGeneratorOptions())
}

// RenderWithOptions serializes doc. Parsing the result with the document's
// shape and options gives back a structurally equal document.
func RenderWithOptions(doc *Document, opts GeneratorOptions) string {
	var sb strings.Builder
	if opts.RawListThreshold == 0 {
		opts.RawListThreshold = doc.RawListThreshold
	}
	g := &generator{opts: opts, sb: &sb}
	g.document(doc)
	return sb.String()
}

type generator struct {
	opts GeneratorOptions
	sb   *strings.Builder
}

func (g *generator) document(doc *Document) {
	g.sb.WriteString(Banner)
	g.sb.WriteString("\n")
	if doc.Header != nil && doc.Header.Dict != nil {
		g.entry("FoamFile", DictValue(doc.Header.Dict), 0)
		g.sb.WriteString("\n")
	}

	body := doc.Body
	switch body.Kind {
	case KindDict:
		g.dictBody(body.Dict, 0)
	case KindEmpty:
	default:
		if doc.Shape == ShapeBoundary && g.opts.SortBoundary {
			body = SortPatchesByStartFace(body)
		}
		count := len(body.Items)
		if doc.Shape == ShapeBoundary {
			count /= 2
		}
		g.prefixed(body, 0, count)
		g.sb.WriteString("\n")
	}
}

func (g *generator) indent(depth int) {
	for i := 0; i < depth; i++ {
		g.sb.WriteString(g.opts.Indent)
	}
}

func (g *generator) dictBody(d *Dict, depth int) {
	for _, e := range d.Entries() {
		if e.Decoration != "" {
			for _, line := range strings.Split(e.Decoration, "\n") {
				if strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") {
					g.indent(depth)
				}
				g.sb.WriteString(line)
				g.sb.WriteString("\n")
			}
		}
		if e.IsDirective() {
			g.sb.WriteString(e.Value.Str)
			g.sb.WriteString("\n")
			continue
		}
		g.entry(e.Key, e.Value, depth)
	}
}

func (g *generator) entry(key string, v Value, depth int) {
	g.indent(depth)
	g.sb.WriteString(key)
	switch {
	case v.Kind == KindEmpty:
		g.sb.WriteString(";\n")
		return
	case v.Kind == KindDict:
		g.sb.WriteString("\n")
		g.indent(depth)
		g.sb.WriteString("{\n")
		g.dictBody(v.Dict, depth+1)
		g.indent(depth)
		g.sb.WriteString("}\n")
		return
	case v.Kind == KindList && !g.inline(v):
		g.sb.WriteString("\n")
		g.indent(depth)
		g.prefixed(v, depth, len(v.Items))
	default:
		g.sb.WriteString(strings.Repeat(" ", max(1, 16-len(key))))
		g.value(v, depth)
	}
	g.sb.WriteString(";\n")
}

// prefixed writes a list in a position where the grammar accepts a length
// prefix: an entry value, a field payload or a top-level list. Prefixes are
// never written for nested lists, where they would read back as items.
func (g *generator) prefixed(v Value, depth, count int) {
	if v.Kind == KindList && !g.inline(v) && g.prefix(count) {
		g.sb.WriteString(strconv.Itoa(count))
		g.sb.WriteString("\n")
		g.indent(depth)
	}
	g.value(v, depth)
}

// prefix reports whether a length prefix of count reads back as a parsed
// list rather than a raw one.
func (g *generator) prefix(count int) bool {
	return g.opts.RawListThreshold <= 0 || count < g.opts.RawListThreshold
}

// inline reports whether v fits on one line.
func (g *generator) inline(v Value) bool {
	switch v.Kind {
	case KindDict, KindAssignment, KindDirective:
		return false
	case KindList, KindTuple:
		if v.Kind == KindList && len(v.Items) > g.opts.LongListThreshold {
			return false
		}
		for _, item := range v.Items {
			if !g.inline(item) {
				return false
			}
		}
	case KindField:
		return g.inline(v.Field.Payload)
	case KindRedirection:
		return g.inline(v.Resolved())
	}
	return true
}

// value writes v starting at the current position. Multi-line forms leave
// the cursor after their closing bracket.
func (g *generator) value(v Value, depth int) {
	switch v.Kind {
	case KindEmpty:
	case KindInt:
		g.sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		g.sb.WriteString(formatFloat(v.Float))
	case KindString:
		g.sb.WriteString(`"` + v.Str + `"`)
	case KindWord, KindDirective:
		g.sb.WriteString(v.Str)
	case KindVector, KindSymmTensor, KindTensor:
		g.sb.WriteString("(")
		g.nums(v.Nums)
		g.sb.WriteString(")")
	case KindDimension:
		g.sb.WriteString("[")
		g.nums(v.Nums)
		g.sb.WriteString("]")
	case KindRaw:
		g.sb.WriteString("(" + v.Str + ")")
	case KindRawList:
		g.sb.WriteString(strconv.Itoa(v.Length) + "(" + v.Str + ")")
	case KindCode:
		g.sb.WriteString("#{" + v.Str + "#}")
	case KindAssignment:
		g.sb.WriteString(v.Str)
	case KindTuple:
		for i, item := range v.Items {
			if i > 0 {
				g.sb.WriteString(" ")
			}
			g.value(item, depth)
		}
	case KindList:
		g.list(v, depth)
	case KindDict:
		g.sb.WriteString("{\n")
		g.dictBody(v.Dict, depth+1)
		g.indent(depth)
		g.sb.WriteString("}")
	case KindField:
		g.field(v.Field, depth)
	case KindRedirection:
		g.value(v.Resolved(), depth)
	}
}

func (g *generator) list(v Value, depth int) {
	if g.inline(v) {
		g.sb.WriteString("(")
		for i, item := range v.Items {
			if i > 0 {
				g.sb.WriteString(" ")
			}
			g.value(item, depth)
		}
		g.sb.WriteString(")")
		return
	}

	g.sb.WriteString("(\n")
	for _, item := range v.Items {
		if item.Kind == KindAssignment {
			g.sb.WriteString(item.Str)
			g.sb.WriteString("\n")
			continue
		}
		g.indent(depth + 1)
		g.value(item, depth+1)
		g.sb.WriteString("\n")
	}
	g.indent(depth)
	g.sb.WriteString(")")
}

func (g *generator) field(f *Field, depth int) {
	g.sb.WriteString(f.Kind.String())
	if f.Name != "" {
		g.sb.WriteString(" ")
		g.sb.WriteString(f.Name)
	}
	switch {
	case f.Payload.Kind != KindList || f.Kind == Uniform:
		g.sb.WriteString(" ")
	case !g.prefix(len(f.Payload.Items)):
		if g.inline(f.Payload) {
			g.sb.WriteString(" ")
		} else {
			g.sb.WriteString("\n")
			g.indent(depth)
		}
	case g.inline(f.Payload):
		g.sb.WriteString(" ")
		g.sb.WriteString(strconv.Itoa(len(f.Payload.Items)))
	default:
		g.sb.WriteString("\n")
		g.indent(depth)
		g.sb.WriteString(strconv.Itoa(len(f.Payload.Items)))
		g.sb.WriteString("\n")
		g.indent(depth)
	}
	g.value(f.Payload, depth)
}

func (g *generator) nums(nums []float64) {
	for i, n := range nums {
		if i > 0 {
			g.sb.WriteString(" ")
		}
		g.sb.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
	}
}

// formatFloat writes a scalar so that it reads back as a float: integral
// values keep a ".0".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
