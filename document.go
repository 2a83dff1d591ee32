package foamdict

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal problem found while parsing.
type Warning struct {
	Message string
	Key     string
	File    string
	Pos     Position
}

func (w Warning) String() string {
	var sb strings.Builder
	if w.File != "" {
		sb.WriteString(w.File)
		sb.WriteString(":")
	}
	if w.Pos.Line > 0 {
		sb.WriteString(w.Pos.String())
		sb.WriteString(": ")
	} else if w.File != "" {
		sb.WriteString(" ")
	}
	sb.WriteString(w.Message)
	return sb.String()
}

// Header is the FoamFile sub-dictionary.
type Header struct {
	*Dict
}

func (h *Header) text(key string) string {
	if h == nil {
		return ""
	}
	v, ok := h.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.Text(); ok {
		return s
	}
	return v.String()
}

// Format returns the format entry, e.g. "ascii".
func (h *Header) Format() string { return h.text("format") }

// Class returns the class entry, e.g. "dictionary" or "volVectorField".
func (h *Header) Class() string { return h.text("class") }

// Object returns the object entry.
func (h *Header) Object() string { return h.text("object") }

// Version returns the version entry as written, e.g. "2.0".
func (h *Header) Version() string { return h.text("version") }

// HeaderInfo is the typed view of a header.
type HeaderInfo struct {
	Version  string `foam:"version"`
	Format   string `foam:"format"`
	Class    string `foam:"class"`
	Object   string `foam:"object"`
	Location string `foam:"location"`
	Note     string `foam:"note"`
}

// Info decodes the header entries.
func (h *Header) Info() (HeaderInfo, error) {
	var info HeaderInfo
	if h == nil {
		return info, nil
	}
	err := UnmarshalDict(h.Dict, &info)
	return info, err
}

// Document is a parsed file: optional header, a body and what parsing
// reported along the way.
type Document struct {
	Name     string
	Header   *Header
	Body     Value // KindDict for dictionary shapes, a list for list shapes
	Shape    BodyShape
	Warnings []Warning

	// RawListThreshold is the raw-list threshold the document was parsed
	// with. The generator leaves out length prefixes that would read back
	// as raw lists.
	RawListThreshold int
}

// NewDocument creates an ascii dictionary document with a standard header.
func NewDocument(class, object string) *Document {
	hdr := NewDict()
	hdr.Set("version", Float(2))
	hdr.Set("format", Word("ascii"))
	hdr.Set("class", Word(class))
	hdr.Set("object", Word(object))
	return &Document{
		Name:   object,
		Header: &Header{Dict: hdr},
		Body:   DictValue(NewDict()),
		Shape:  ShapeFull,
	}
}

// Dict returns the body dictionary, or ErrNotDictionary for list shapes.
func (d *Document) Dict() (*Dict, error) {
	if d.Body.Kind != KindDict || d.Body.Dict == nil {
		return nil, fmt.Errorf("%s: %w", d.Body.Kind, ErrNotDictionary)
	}
	return d.Body.Dict, nil
}

// Get returns a top-level body entry.
func (d *Document) Get(key string) (Value, bool) {
	body, err := d.Dict()
	if err != nil {
		return Value{}, false
	}
	return body.Get(key)
}

// Has reports whether the body defines key.
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set stores a top-level body entry.
func (d *Document) Set(key string, v Value) error {
	body, err := d.Dict()
	if err != nil {
		return err
	}
	body.Set(key, v)
	return nil
}

// Delete removes a top-level body entry.
func (d *Document) Delete(key string) bool {
	body, err := d.Dict()
	if err != nil {
		return false
	}
	return body.Delete(key)
}

// Keys returns the top-level body keys in order.
func (d *Document) Keys() []string {
	body, err := d.Dict()
	if err != nil {
		return nil
	}
	return body.Keys()
}

// Len is the number of body keys, or of list items for list shapes.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	if d.Body.Kind == KindDict {
		return d.Body.Dict.Len()
	}
	if d.Shape == ShapeBoundary {
		return len(d.Body.Items) / 2
	}
	return d.Body.Len()
}

// Equal compares header and body structurally. Name and warnings are
// ignored.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	var dh, oh *Dict
	if d.Header != nil {
		dh = d.Header.Dict
	}
	if o.Header != nil {
		oh = o.Header.Dict
	}
	return dh.Equal(oh) && d.Body.Equal(o.Body)
}

// String renders the document.
func (d *Document) String() string {
	return ToText(d)
}

// Digest is the blake3 digest of the rendered document.
func (d *Document) Digest() string {
	return Digest([]byte(ToText(d)))
}

// ============================================================
// Convenience entry points
// ============================================================

// Load parses the file at path.
func Load(path string, opts Options) (*Document, error) {
	return NewParserWithOptions(opts).ParseFile(path)
}

// LoadString parses text with the given options.
func LoadString(src string, opts Options) (*Document, error) {
	return NewParserWithOptions(opts).Parse(src)
}

// ParseString parses a headerless dictionary body with default options.
func ParseString(src string) (*Document, error) {
	opts := DefaultOptions()
	opts.Shape = ShapeHeaderless
	return LoadString(src, opts)
}

// ReadHeader parses only the header of the file at path. The format entry
// is not checked, so binary files can be inspected.
func ReadHeader(path string) (*Header, error) {
	opts := DefaultOptions()
	opts.Shape = ShapeHeaderOnly
	doc, err := Load(path, opts)
	if err != nil {
		return nil, err
	}
	return doc.Header, nil
}

// ToText renders doc with the default layout.
func ToText(doc *Document) string {
	return Render(doc)
}

// Write renders doc to path with default write options.
func Write(path string, doc *Document) error {
	_, err := WriteFile(path, doc, WriteOptions{})
	return err
}
