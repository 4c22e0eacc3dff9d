package pexp

// Map is a PExp to PExp map keyed by value: keys are bucketed by ValueHash
// and told apart with Equal. Iteration follows insertion order.
type Map struct {
	buckets map[uint64][]int
	keys    []PExp
	vals    []PExp
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{buckets: make(map[uint64][]int)}
}

// MapOf builds a map from alternating key, value arguments.
func MapOf(pairs ...PExp) *Map {
	if len(pairs)%2 != 0 {
		panic("pexp: MapOf needs key/value pairs")
	}
	m := NewMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Put(pairs[i], pairs[i+1])
	}
	return m
}

func (m *Map) find(k PExp) int {
	for _, i := range m.buckets[k.ValueHash()] {
		if Equal(m.keys[i], k) {
			return i
		}
	}
	return -1
}

// Put sets k to v, replacing any previous value for an equal key.
func (m *Map) Put(k, v PExp) {
	if i := m.find(k); i >= 0 {
		m.vals[i] = v
		return
	}
	h := k.ValueHash()
	m.buckets[h] = append(m.buckets[h], len(m.keys))
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// Get returns the value of a key equal to k.
func (m *Map) Get(k PExp) (PExp, bool) {
	if m == nil {
		return nil, false
	}
	if i := m.find(k); i >= 0 {
		return m.vals[i], true
	}
	return nil, false
}

// Len is the number of entries. A nil map is empty.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls f for each entry in insertion order until f returns false.
func (m *Map) Range(f func(k, v PExp) bool) {
	if m == nil {
		return
	}
	for i := range m.keys {
		if !f(m.keys[i], m.vals[i]) {
			return
		}
	}
}

// without returns a copy of m lacking keys that are plain symbols with one
// of the given names. m itself is returned when nothing would be removed.
func (m *Map) without(names map[string]bool) *Map {
	drop := false
	m.Range(func(k, _ PExp) bool {
		if s, ok := k.(*PSymbol); ok && len(s.args) == 0 && names[s.name] {
			drop = true
			return false
		}
		return true
	})
	if !drop {
		return m
	}
	out := NewMap()
	m.Range(func(k, v PExp) bool {
		if s, ok := k.(*PSymbol); ok && len(s.args) == 0 && names[s.name] {
			return true
		}
		out.Put(k, v)
		return true
	})
	return out
}
