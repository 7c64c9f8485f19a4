package utils

import "testing"

func TestRowSetNoDuplicates(t *testing.T) {
	s := NewRowSet()

	if !s.Add([]string{"Santos", "10"}) {
		t.Error("first Add should return true")
	}
	if s.Add([]string{"Santos", "10"}) {
		t.Error("second Add of same tuple should return false")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestRowSetDistinguishesCellBoundaries(t *testing.T) {
	s := NewRowSet()

	s.Add([]string{"ab", "c"})
	if s.Contains([]string{"a", "bc"}) {
		t.Error("different cell splits must not collide")
	}
}

func TestRowSetContains(t *testing.T) {
	s := NewRowSet()
	if s.Contains([]string{"x"}) {
		t.Error("empty set should contain nothing")
	}
	s.Add([]string{"x"})
	if !s.Contains([]string{"x"}) {
		t.Error("added tuple should be contained")
	}
}
