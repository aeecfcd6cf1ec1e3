/*
Package bitmatrix implements square boolean matrices with bit-set rows.

Grammar compilation spends most of its time computing relations between
symbols or rules: "derives", "predicts", "right-recurses into". Each
relation is a boolean n×n matrix, and reflexive-transitive closures of those
relations are computed with Warshall's algorithm. Rows are bit sets, so a
row-union operates one machine word at a time.

    M := bitmatrix.New(4)
    M.Set(0, 1)
    M.Set(1, 2)
    M.TransitiveClosure()
    M.Test(0, 2)           // true

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bitmatrix

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Matrix is a square boolean matrix of size n×n.
type Matrix struct {
	rows []*bitset.BitSet
	size int
}

// New creates an empty n×n matrix.
func New(n int) *Matrix {
	if n < 0 {
		n = 0
	}
	m := &Matrix{
		rows: make([]*bitset.BitSet, n),
		size: n,
	}
	for i := range m.rows {
		m.rows[i] = bitset.New(uint(n))
	}
	return m
}

// Size returns n for an n×n matrix.
func (m *Matrix) Size() int {
	return m.size
}

// Set sets entry (i,j) to true. Out of range indices are ignored.
func (m *Matrix) Set(i, j int) *Matrix {
	if m.inRange(i, j) {
		m.rows[i].Set(uint(j))
	}
	return m
}

// Test returns entry (i,j).
func (m *Matrix) Test(i, j int) bool {
	if !m.inRange(i, j) {
		return false
	}
	return m.rows[i].Test(uint(j))
}

// Row returns row i as a bit set. Clients must not modify it.
func (m *Matrix) Row(i int) *bitset.BitSet {
	if i < 0 || i >= m.size {
		return bitset.New(0)
	}
	return m.rows[i]
}

// Columns returns the indices j with (i,j) set, in ascending order.
func (m *Matrix) Columns(i int) []int {
	if i < 0 || i >= m.size {
		return nil
	}
	cols := make([]int, 0, m.rows[i].Count())
	for j, ok := m.rows[i].NextSet(0); ok; j, ok = m.rows[i].NextSet(j + 1) {
		cols = append(cols, int(j))
	}
	return cols
}

// Reflexive sets the diagonal.
func (m *Matrix) Reflexive() *Matrix {
	for i := 0; i < m.size; i++ {
		m.rows[i].Set(uint(i))
	}
	return m
}

// TransitiveClosure replaces m by its transitive closure (Warshall).
// After the call, (i,j) is set iff there is a path of length ≥ 1 from i to j.
func (m *Matrix) TransitiveClosure() *Matrix {
	for k := 0; k < m.size; k++ {
		rowk := m.rows[k]
		for i := 0; i < m.size; i++ {
			if m.rows[i].Test(uint(k)) {
				m.rows[i].InPlaceUnion(rowk)
			}
		}
	}
	return m
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		rows: make([]*bitset.BitSet, m.size),
		size: m.size,
	}
	for i, r := range m.rows {
		c.rows[i] = r.Clone()
	}
	return c
}

// Reachable returns the set of indices reachable from the members of from,
// including from itself. m is expected to be transitively closed.
func (m *Matrix) Reachable(from *bitset.BitSet) *bitset.BitSet {
	r := from.Clone()
	for i, ok := from.NextSet(0); ok; i, ok = from.NextSet(i + 1) {
		if int(i) < m.size {
			r.InPlaceUnion(m.rows[i])
		}
	}
	return r
}

func (m *Matrix) inRange(i, j int) bool {
	return i >= 0 && j >= 0 && i < m.size && j < m.size
}

func (m *Matrix) String() string {
	var b bytes.Buffer
	for i := 0; i < m.size; i++ {
		b.WriteString(fmt.Sprintf("%3d: ", i))
		for j := 0; j < m.size; j++ {
			if m.Test(i, j) {
				b.WriteByte('1')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
