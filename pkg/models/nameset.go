package models

import (
	"slices"
	"strings"
)

// NameSet is a sorted, duplicate-free list of class names.
// The zero value is an empty set ready to use.
type NameSet []string

// NewNameSet builds a set from names.
func NewNameSet(names ...string) NameSet {
	var s NameSet
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name and reports whether it was not already present.
func (s *NameSet) Add(name string) bool {
	i, found := slices.BinarySearch(*s, name)
	if found {
		return false
	}
	*s = slices.Insert(*s, i, name)
	return true
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, found := slices.BinarySearch(s, name)
	return found
}

// Len returns the number of names.
func (s NameSet) Len() int { return len(s) }

// Union adds every name of other.
func (s *NameSet) Union(other NameSet) {
	for _, n := range other {
		s.Add(n)
	}
}

// Clone returns an independent copy.
func (s NameSet) Clone() NameSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// String joins the names with ", ".
func (s NameSet) String() string {
	return strings.Join(s, ", ")
}
