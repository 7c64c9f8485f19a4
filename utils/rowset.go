package utils

import "strings"

// rowKeySep is a separator that cannot appear in cell text.
const rowKeySep = "\x1f"

// RowSet tracks the full value-tuples already extracted from a virtualized
// table. A row is new only if its exact tuple has never been seen; duplicate
// suppression is by value, not by on-screen position.
type RowSet struct {
	seen map[string]struct{}
}

// NewRowSet creates an empty RowSet.
func NewRowSet() *RowSet {
	return &RowSet{seen: make(map[string]struct{})}
}

// Add returns true if the tuple was newly added, false if already present.
func (s *RowSet) Add(cells []string) bool {
	key := strings.Join(cells, rowKeySep)
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Contains returns true if the tuple has already been extracted.
func (s *RowSet) Contains(cells []string) bool {
	_, exists := s.seen[strings.Join(cells, rowKeySep)]
	return exists
}

// Size returns the number of unique tuples tracked.
func (s *RowSet) Size() int {
	return len(s.seen)
}
