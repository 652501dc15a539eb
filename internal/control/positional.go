package control

// The save contract carries one Mapping per group positionally, aligned to
// the group order of the most recent state push, not keyed by name. These
// helpers zip between that wire shape and the name-keyed Mappings.

// MapDefaultControls lays out the mapping set as a positional list following
// the given group order. Groups without a mapping produce an empty entry so
// alignment is preserved.
func MapDefaultControls(groups []string, ms Mappings) []Mapping {
	out := make([]Mapping, len(groups))
	for i, g := range groups {
		if m, ok := ms[g]; ok {
			out[i] = m.Clone()
		} else {
			out[i] = Mapping{}
		}
	}
	return out
}

// UnmapDefaultControls zips a positional mapping list back onto group names.
// A list shorter than the group order leaves the remaining groups unmapped;
// surplus entries are dropped.
func UnmapDefaultControls(groups []string, list []Mapping) Mappings {
	out := Mappings{}
	for i, g := range groups {
		if i >= len(list) {
			break
		}
		if list[i] == nil {
			out[g] = Mapping{}
			continue
		}
		out[g] = list[i].Clone()
	}
	return out
}

// TruncateTrailingEmpty drops all-empty mappings from the tail of a
// positional list, the shape persisted to disk.
func TruncateTrailingEmpty(list []Mapping) []Mapping {
	last := -1
	for i, m := range list {
		if !m.IsEmpty() {
			last = i
		}
	}
	return list[:last+1]
}
