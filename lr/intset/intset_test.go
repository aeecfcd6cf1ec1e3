package intset

import "testing"

func TestInternIdentity(t *testing.T) {
	arena := NewArena()
	a := arena.Intern([]int{3, 1, 3, 2})
	b := arena.Intern([]int{1, 2, 3})
	if a != b {
		t.Errorf("expected equal sets to be pointer-identical")
	}
	if a.Len() != 3 || a.Members()[0] != 1 || a.Members()[2] != 3 {
		t.Errorf("expected sorted members [1 2 3], have %v", a.Members())
	}
	c := arena.Intern([]int{1, 2})
	if c == a {
		t.Errorf("different content must yield different sets")
	}
	if arena.Len() != 3 { // empty, {1,2,3}, {1,2}
		t.Errorf("expected 3 interned sets, have %d", arena.Len())
	}
}

func TestEmptyAndContains(t *testing.T) {
	arena := NewArena()
	if arena.Intern(nil) != arena.Empty() || arena.Empty().ID() != 0 {
		t.Errorf("expected empty set to have id 0 and be interned once")
	}
	s := arena.Intern([]int{10, 4, 7})
	for _, n := range []int{4, 7, 10} {
		if !s.Contains(n) {
			t.Errorf("expected %d in %v", n, s)
		}
	}
	if s.Contains(5) || s.Contains(11) || arena.Empty().Contains(0) {
		t.Errorf("unexpected member")
	}
	for _, n := range []int{-1, 0, 3, 8, 9, 100} {
		if s.Contains(n) {
			t.Errorf("%d is not a member of %v", n, s)
		}
	}
	var none *Set
	if none.Contains(0) {
		t.Errorf("nil set has no members")
	}
	if arena.Set(s.ID()) != s {
		t.Errorf("expected lookup by id to return the set")
	}
}
