package foamdict

import (
	"fmt"
	"sort"
)

// Patch is one entry of a boundary file: a patch name and its dictionary.
type Patch struct {
	Name string
	Dict *Dict
}

// StartFace returns the startFace entry, or -1 when it is missing.
func (p Patch) StartFace() int64 {
	v, ok := p.Dict.Get("startFace")
	if !ok || v.Kind != KindInt {
		return -1
	}
	return v.Int
}

// Patches splits a boundary body into its (name, dictionary) pairs.
func Patches(body Value) ([]Patch, error) {
	if body.Kind != KindList {
		return nil, fmt.Errorf("boundary body is a %s, not a list", body.Kind)
	}
	if len(body.Items)%2 != 0 {
		return nil, fmt.Errorf("boundary body has %d items, expected name/dictionary pairs", len(body.Items))
	}
	patches := make([]Patch, 0, len(body.Items)/2)
	for i := 0; i < len(body.Items); i += 2 {
		name, dict := body.Items[i], body.Items[i+1]
		text, ok := name.Text()
		if !ok || dict.Kind != KindDict {
			return nil, fmt.Errorf("boundary item %d: expected name and dictionary, got %s and %s", i/2, name.Kind, dict.Kind)
		}
		patches = append(patches, Patch{Name: text, Dict: dict.Dict})
	}
	return patches, nil
}

// BoundaryList builds a boundary body from patches.
func BoundaryList(patches []Patch) Value {
	items := make([]Value, 0, 2*len(patches))
	for _, p := range patches {
		items = append(items, Word(p.Name), DictValue(p.Dict))
	}
	return List(items...)
}

// SortPatchesByStartFace returns body with its patches ordered by
// startFace. Bodies that are not name/dictionary pairs come back as is.
func SortPatchesByStartFace(body Value) Value {
	patches, err := Patches(body)
	if err != nil {
		return body
	}
	sort.SliceStable(patches, func(i, j int) bool {
		return patches[i].StartFace() < patches[j].StartFace()
	})
	return BoundaryList(patches)
}
