// Package header implements the case-insensitive header container (C2)
// shared by requests and responses.
package header

import "strings"

// Map is a case-insensitive string->string container that preserves the
// casing most recently used to set a key. Lookup, containment and deletion
// are case-insensitive; iteration order is not guaranteed but the casing
// returned for a given logical name is always the last one set.
//
// Grounded on the teacher's canonicalization table in types_header.go
// (isTokenTable / commonHeader interning), simplified here to a
// lowercase-keyed map carrying the original casing as a side value,
// per spec.md §9.
type Map struct {
	entries map[string]entry
}

type entry struct {
	name  string // casing as last set
	value string
}

// New returns an empty Map.
func New() *Map {
	return &Map{entries: make(map[string]entry)}
}

func lower(name string) string {
	return strings.ToLower(name)
}

// Set stores value under name, replacing any existing case-variant and
// adopting name's casing for emission.
func (m *Map) Set(name, value string) {
	if m.entries == nil {
		m.entries = make(map[string]entry)
	}
	m.entries[lower(name)] = entry{name: name, value: value}
}

// Get returns the value stored for name (case-insensitive) and whether it
// was present.
func (m *Map) Get(name string) (string, bool) {
	if m.entries == nil {
		return "", false
	}
	e, ok := m.entries[lower(name)]
	return e.value, ok
}

// Value is a convenience wrapper around Get that returns "" when absent.
func (m *Map) Value(name string) string {
	v, _ := m.Get(name)
	return v
}

// Has reports whether name (case-insensitive) is present.
func (m *Map) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Del removes name (case-insensitive), if present.
func (m *Map) Del(name string) {
	if m.entries == nil {
		return
	}
	delete(m.entries, lower(name))
}

// Len returns the number of distinct logical header names stored.
func (m *Map) Len() int {
	return len(m.entries)
}

// Each calls fn once per logical header, in the casing it was last set
// under. Order is unspecified.
func (m *Map) Each(fn func(name, value string)) {
	for _, e := range m.entries {
		fn(e.name, e.value)
	}
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	out := New()
	for k, e := range m.entries {
		out.entries[k] = e
	}
	return out
}

// Union merges other into a copy of m, with entries from other winning on
// conflicts ("right-wins") (spec.md §3 "Invariants"). The default-headers
// stage uses UnionLeftBiased instead, so existing response headers win.
func (m *Map) Union(other *Map) *Map {
	out := m.Clone()
	if other != nil {
		other.Each(func(name, value string) {
			out.Set(name, value)
		})
	}
	return out
}

// UnionLeftBiased merges other into a copy of m, but m's own values win on
// conflicts. Used by the default-headers stage, where existing response
// values must not be clobbered by the defaults (spec.md §4.5).
func (m *Map) UnionLeftBiased(other *Map) *Map {
	out := New()
	if other != nil {
		other.Each(func(name, value string) {
			out.Set(name, value)
		})
	}
	m.Each(func(name, value string) {
		out.Set(name, value)
	})
	return out
}

// Equal compares contents case-insensitively (spec.md §3 "Invariants").
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	equal := true
	m.Each(func(name, value string) {
		if ov, ok := other.Get(name); !ok || ov != value {
			equal = false
		}
	})
	return equal
}
