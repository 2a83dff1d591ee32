package foamdict

import "slices"

// Entry is one line of a dictionary: a key and its value, or a directive
// line (empty Key, Value of KindDirective).
type Entry struct {
	Key        string
	Value      Value
	Decoration string // comment text that preceded the entry
}

// IsDirective reports whether the entry is a kept directive line.
func (e Entry) IsDirective() bool {
	return e.Key == "" && e.Value.Kind == KindDirective
}

// Dict is an insertion-ordered mapping from keys to values. Keys from
// quoted strings keep their quotes. The zero value is an empty dictionary
// ready to use; a nil *Dict reads as empty.
type Dict struct {
	entries      []Entry
	index        map[string]int
	redirections []*Redirection
}

// NewDict creates an empty dictionary.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Len returns the number of keys (directive lines are not counted).
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.index)
}

// Has reports whether key is defined.
func (d *Dict) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[key]
	return ok
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	i, ok := d.index[key]
	if !ok {
		return Value{}, false
	}
	return d.entries[i].Value, true
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position and decoration.
func (d *Dict) Set(key string, v Value) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.entries[i].Value = v
		return
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, Entry{Key: key, Value: v})
}

// Delete removes key and reports whether it was present.
func (d *Dict) Delete(key string) bool {
	if d == nil {
		return false
	}
	i, ok := d.index[key]
	if !ok {
		return false
	}
	d.entries = slices.Delete(d.entries, i, i+1)
	d.reindex()
	return true
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.index))
	for _, e := range d.entries {
		if !e.IsDirective() {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// Entries returns all lines, directives included, in order.
func (d *Dict) Entries() []Entry {
	if d == nil {
		return nil
	}
	return slices.Clone(d.entries)
}

// Decoration returns the comment text attached to key.
func (d *Dict) Decoration(key string) string {
	if d == nil {
		return ""
	}
	if i, ok := d.index[key]; ok {
		return d.entries[i].Decoration
	}
	return ""
}

// SetDecoration attaches comment text to an existing key.
func (d *Dict) SetDecoration(key, text string) {
	if i, ok := d.index[key]; ok {
		d.entries[i].Decoration = text
	}
}

// AddDirective appends a verbatim directive line.
func (d *Dict) AddDirective(text, decoration string) {
	d.entries = append(d.entries, Entry{
		Value:      Value{Kind: KindDirective, Str: text},
		Decoration: decoration,
	})
}

// AddRedirection records that the keys of r were spliced into d.
func (d *Dict) AddRedirection(r *Redirection) {
	d.redirections = append(d.redirections, r)
}

// Redirections returns the splice markers recorded on d.
func (d *Dict) Redirections() []*Redirection {
	if d == nil {
		return nil
	}
	return slices.Clone(d.redirections)
}

// Clone returns a deep copy of d. Copied redirections do not keep a
// back-reference to their origin.
func (d *Dict) Clone() *Dict {
	if d == nil {
		return nil
	}
	out := &Dict{
		entries: make([]Entry, len(d.entries)),
		index:   make(map[string]int, len(d.index)),
	}
	for i, e := range d.entries {
		out.entries[i] = Entry{Key: e.Key, Value: e.Value.Clone(), Decoration: e.Decoration}
	}
	for k, i := range d.index {
		out.index[k] = i
	}
	for _, r := range d.redirections {
		c := *r
		c.Snapshot = r.Snapshot.Clone()
		c.origin = nil
		out.redirections = append(out.redirections, &c)
	}
	return out
}

// Equal compares entries in order, including decorations and directive
// lines.
func (d *Dict) Equal(o *Dict) bool {
	if d == nil || o == nil {
		return d.Len() == 0 && o.Len() == 0 && len(d.Entries()) == len(o.Entries())
	}
	return slices.EqualFunc(d.entries, o.entries, func(a, b Entry) bool {
		return a.Key == b.Key && a.Decoration == b.Decoration && a.Value.Equal(b.Value)
	})
}

func (d *Dict) reindex() {
	clear(d.index)
	for i, e := range d.entries {
		if !e.IsDirective() {
			d.index[e.Key] = i
		}
	}
}
