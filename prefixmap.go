package embdr

import "sort"

// prefixMap is a set of url prefixes that link resources are checked against
// before being framed. Nil prefixMap matches nothing.
type prefixMap struct {
	prefixes map[string]struct{}
	lengths  []int // distinct prefix lengths, ascending
}

// newPrefixMap builds prefixMap from given prefixes, empty strings are
// skipped. It returns nil if there is nothing to match against.
func newPrefixMap(prefixes []string) *prefixMap {
	set := make(map[string]struct{}, len(prefixes))
	var lengths []int
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if _, ok := set[p]; ok {
			continue
		}
		set[p] = struct{}{}
		lengths = append(lengths, len(p))
	}
	if len(set) == 0 {
		return nil
	}
	sort.Ints(lengths)
	uniq := lengths[:1]
	for _, l := range lengths[1:] {
		if l != uniq[len(uniq)-1] {
			uniq = append(uniq, l)
		}
	}
	return &prefixMap{prefixes: set, lengths: uniq}
}

// Match reports whether url starts with any of the prefixes
func (m *prefixMap) Match(url string) bool {
	if m == nil {
		return false
	}
	for _, l := range m.lengths {
		if l > len(url) {
			return false
		}
		if _, ok := m.prefixes[url[:l]]; ok {
			return true
		}
	}
	return false
}
