/*
Package intset interns sets of small integers.

The grammar compiler attaches sets of rule ids (predictions) and symbol ids
(events) to every item template. Many templates share the same set, so sets
are interned in an arena: equal content yields the identical *Set, and sets
may be compared by pointer.

    arena := intset.NewArena()
    a := arena.Intern([]int{3, 1, 3})
    b := arena.Intern([]int{1, 3})
    a == b                 // true
    a.Members()            // [1 3]

Sets are immutable after interning.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package intset

import (
	"sort"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// Set is an immutable, interned set of integers.
type Set struct {
	id      int
	members []int
}

// ID is the arena-wide id of a set. The empty set always has id 0.
func (s *Set) ID() int {
	return s.id
}

// Members returns the sorted members. Clients must not modify the slice.
func (s *Set) Members() []int {
	if s == nil {
		return nil
	}
	return s.members
}

// Len returns the cardinality of s.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// IsEmpty is true for the empty set.
func (s *Set) IsEmpty() bool {
	return s.Len() == 0
}

// Contains checks membership by binary search.
func (s *Set) Contains(n int) bool {
	if s == nil {
		return false
	}
	i := sort.SearchInts(s.members, n)
	return i < len(s.members) && s.members[i] == n
}

func (s *Set) String() string {
	return "{" + key(s.Members()) + "}"
}

// Arena owns interned sets.
type Arena struct {
	sets  []*Set
	index map[string]*Set
}

// NewArena creates an arena, pre-populated with the empty set.
func NewArena() *Arena {
	a := &Arena{index: make(map[string]*Set)}
	a.add(nil)
	return a
}

// Intern returns the unique set with the given members. Duplicates in
// members are ignored and members need not be sorted.
func (a *Arena) Intern(members []int) *Set {
	sorted := normalize(members)
	if s, ok := a.index[key(sorted)]; ok {
		return s
	}
	return a.add(sorted)
}

// Empty returns the empty set of the arena.
func (a *Arena) Empty() *Set {
	return a.sets[0]
}

// Len returns the number of distinct sets interned so far.
func (a *Arena) Len() int {
	return len(a.sets)
}

// Set returns the set with a given id, or nil.
func (a *Arena) Set(id int) *Set {
	if id < 0 || id >= len(a.sets) {
		return nil
	}
	return a.sets[id]
}

func (a *Arena) add(sorted []int) *Set {
	s := &Set{id: len(a.sets), members: sorted}
	a.sets = append(a.sets, s)
	a.index[key(sorted)] = s
	return s
}

func normalize(members []int) []int {
	if len(members) == 0 {
		return []int{}
	}
	ts := treeset.NewWithIntComparator()
	for _, m := range members {
		ts.Add(m)
	}
	sorted := make([]int, 0, ts.Size())
	for _, v := range ts.Values() {
		sorted = append(sorted, v.(int))
	}
	return sorted
}

func key(sorted []int) string {
	var b strings.Builder
	for i, m := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(m))
	}
	return b.String()
}
