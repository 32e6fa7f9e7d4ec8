package domain

import "sort"

// FileSet is a set of transcript filenames, discovered either remotely (from the
// index) or locally (from directory contents).
type FileSet map[string]bool

// NewFileSet creates a set holding the given names.
func NewFileSet(names ...string) FileSet {
	s := make(FileSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name into the set. Duplicates collapse.
func (s FileSet) Add(name string) {
	s[name] = true
}

// Has reports whether name is in the set.
func (s FileSet) Has(name string) bool {
	return s[name]
}

// Sorted returns the names in lexical order.
func (s FileSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
