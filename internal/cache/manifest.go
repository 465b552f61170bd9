package cache

// Manifest maps a portal item ID to the canonical filename materialized for
// it inside the item's download directory.
type Manifest map[string]string

// Clone returns an independent copy of m.
func (m Manifest) Clone() Manifest {
	c := make(Manifest, len(m))
	for id, name := range m {
		c[id] = name
	}
	return c
}

// Equal reports whether m and other contain exactly the same entries.
func (m Manifest) Equal(other Manifest) bool {
	if len(m) != len(other) {
		return false
	}
	for id, name := range m {
		if other[id] != name {
			return false
		}
	}
	return true
}
