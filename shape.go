package foamdict

// condensePrefixLists drops redundant length prefixes from a list made
// only of (length, sub-list) pairs whose lengths all match. It repeats
// until nothing changes, so applying it again is a no-op.
func condensePrefixLists(items []Value) []Value {
	for isAllPrefixList(items) {
		out := make([]Value, 0, len(items)/2)
		for i := 1; i < len(items); i += 2 {
			out = append(out, items[i])
		}
		items = out
	}
	return items
}

func isAllPrefixList(items []Value) bool {
	if len(items) == 0 || len(items)%2 != 0 {
		return false
	}
	for i := 0; i < len(items); i += 2 {
		n, sub := items[i], items[i+1]
		if n.Kind != KindInt || !sub.isListLike() || int64(sub.Len()) != n.Int {
			return false
		}
	}
	return true
}

// stripLengthPrefixes removes every integer that directly precedes a
// sub-list of exactly that length, anywhere in items. Used on list values
// of dictionary entries, where prefixed and unprefixed sub-lists mix.
func stripLengthPrefixes(items []Value) []Value {
	for {
		changed := false
		for i := 0; i+1 < len(items); i++ {
			n, sub := items[i], items[i+1]
			if n.Kind == KindInt && sub.Kind == KindList && int64(len(sub.Items)) == n.Int {
				items = append(items[:i:i], items[i+1:]...)
				changed = true
				break
			}
		}
		if !changed {
			return items
		}
	}
}

// promoteFixedWidth turns 3, 6 or 9 numbers into a vector, symmetric
// tensor or tensor. Anything else is returned as a plain list.
func promoteFixedWidth(items []Value) Value {
	kind := KindList
	switch len(items) {
	case 3:
		kind = KindVector
	case 6:
		kind = KindSymmTensor
	case 9:
		kind = KindTensor
	}
	if kind == KindList {
		return List(items...)
	}
	nums := make([]float64, len(items))
	for i, item := range items {
		n, ok := item.Number()
		if !ok {
			return List(items...)
		}
		nums[i] = n
	}
	return Value{Kind: kind, Nums: nums}
}

// shapeList applies the enabled shape inferences to the items of a
// bracketed list.
func (r *reducer) shapeList(items []Value) Value {
	if !r.opts.NoCondense {
		items = condensePrefixLists(items)
	}
	if r.opts.NoVectorOrTensor {
		return List(items...)
	}
	return promoteFixedWidth(items)
}
