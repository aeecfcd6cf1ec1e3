package tree

import (
	"bytes"
	"errors"
	"math"
	"sort"

	"github.com/npillmayer/thicket"
	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/earley"
	"github.com/npillmayer/thicket/lr/sppf"
)

// ErrExhausted is returned by Iterator.Next after the last tree.
var ErrExhausted = errors.New("no more parse trees")

// Node is a node of a parse tree. Inner nodes stand for a rule of the
// grammar, leafs either for a token or for a nulled symbol.
type Node struct {
	Symbol   *lr.Symbol    // LHS of the rule, the terminal, or the nulled symbol
	Rule     *lr.Rule      // nil for leafs
	Token    *earley.Token // nil unless this is a token leaf
	Span     thicket.Span
	Children []*Node
	Value    interface{} // set by TopDown for the children of a node
}

// IsNull is true for nodes of nulled symbols.
func (n *Node) IsNull() bool {
	return n.Rule == nil && n.Token == nil
}

// IsToken is true for token leafs.
func (n *Node) IsToken() bool {
	return n.Token != nil
}

// String returns the tree in bracket notation, e.g. "S(a S[] b)". Nulled
// symbols are written with a trailing "[]".
func (n *Node) String() string {
	var b bytes.Buffer
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *bytes.Buffer) {
	b.WriteString(n.Symbol.Name)
	switch {
	case n.IsToken():
		return
	case n.IsNull():
		b.WriteString("[]")
		return
	}
	b.WriteString("(")
	for i, ch := range n.Children {
		if i > 0 {
			b.WriteString(" ")
		}
		ch.write(b)
	}
	b.WriteString(")")
}

// --- Iterator --------------------------------------------------------------

// Iterator hands out the parse trees of a forest one at a time.
type Iterator struct {
	f       *sppf.Forest
	ranked  bool
	alts    [][]*sppf.AndNode // alternatives per or-node, in iteration order
	choice  []int             // current alternative per or-node
	visited []int             // ambiguous or-nodes of the current tree, in preorder
	started bool
	done    bool
}

// Option configures an iterator.
type Option func(*Iterator)

// Ranked orders the alternatives of ambiguous nodes by the rank of their
// rules, highest rank first. Trees built from higher ranked rules are
// returned first.
func Ranked() Option {
	return func(it *Iterator) {
		it.ranked = true
	}
}

// New creates an iterator for the trees of a forest.
func New(f *sppf.Forest, opts ...Option) *Iterator {
	it := &Iterator{f: f}
	for _, opt := range opts {
		opt(it)
	}
	it.alts = make([][]*sppf.AndNode, f.Len())
	it.choice = make([]int, f.Len())
	for id := range it.alts {
		or, _ := f.OrNode(id)
		alts := append([]*sppf.AndNode{}, f.AndNodes(or)...)
		if it.ranked {
			sort.SliceStable(alts, func(i, j int) bool {
				return it.rank(alts[i]) > it.rank(alts[j])
			})
		}
		it.alts[id] = alts
	}
	return it
}

func (it *Iterator) rank(and *sppf.AndNode) int {
	if and.IsToken() {
		return and.Token.Symbol.Rank
	}
	cause, _ := it.f.OrNode(and.Cause)
	return cause.Rule().Rank
}

// Next returns the next parse tree, or ErrExhausted.
func (it *Iterator) Next() (*Node, error) {
	if it.done {
		return nil, ErrExhausted
	}
	if it.f.IsNulling() {
		it.done = true
		start := it.f.Grammar().Start()
		return &Node{Symbol: start}, nil
	}
	if it.started && !it.advance() {
		it.done = true
		return nil, ErrExhausted
	}
	it.started = true
	it.visited = it.visited[:0]
	root := it.children(it.f.Root())
	if len(root) != 1 {
		it.done = true
		return nil, sppf.ErrBrokenTrace
	}
	return root[0], nil
}

// advance moves to the next combination of choices. Choices are counted like
// an odometer, the digits being the ambiguous or-nodes of the current tree in
// preorder. All choices after the incremented digit are reset.
func (it *Iterator) advance() bool {
	for d := len(it.visited) - 1; d >= 0; d-- {
		id := it.visited[d]
		if it.choice[id]+1 >= len(it.alts[id]) {
			continue
		}
		keep := make(map[int]bool, d)
		for _, k := range it.visited[:d] {
			keep[k] = true
		}
		for k := range it.choice {
			if !keep[k] && k != id {
				it.choice[k] = 0
			}
		}
		it.choice[id]++
		return true
	}
	return false
}

func (it *Iterator) pick(or *sppf.OrNode) *sppf.AndNode {
	alts := it.alts[or.ID]
	if len(alts) > 1 {
		it.visited = append(it.visited, or.ID)
	}
	return alts[it.choice[or.ID]]
}

// rhsPart is what has been recognized for an internal RHS position.
type rhsPart struct {
	pos   int
	nodes []*Node
}

// children projects the RHS of a completed or-node onto the nodes of the
// external rule. Parts of virtual rules are spliced in, separators are
// dropped unless the sequence keeps them.
func (it *Iterator) children(or *sppf.OrNode) []*Node {
	r := or.Rule()
	var parts []rhsPart
	ahm, cur, at := or.AHM, or, or.End
	for {
		for i := ahm.Position - 1; i >= ahm.Position-ahm.NullCount; i-- {
			sym := r.RHS[i].Source
			parts = append(parts, rhsPart{i, []*Node{{Symbol: sym, Span: thicket.Span{at, at}}}})
		}
		if ahm.IsFirst() || cur == nil {
			break
		}
		and := it.pick(cur)
		i := ahm.Position - ahm.NullCount - 1
		if and.IsToken() {
			tok := and.Token
			parts = append(parts, rhsPart{i, []*Node{{Symbol: tok.Symbol, Token: tok, Span: tok.Span()}}})
			at = tok.Start
		} else {
			cause, _ := it.f.OrNode(and.Cause)
			parts = append(parts, rhsPart{i, it.complete(cause)})
			at = cause.Origin
		}
		ahm, cur = ahm.Prev(), nil
		if and.Predecessor >= 0 {
			cur, _ = it.f.OrNode(and.Predecessor)
		}
	}
	var nodes []*Node
	for k := len(parts) - 1; k >= 0; k-- {
		if parts[k].pos == r.SeparatorPos() && (r.Source == nil || !r.Source.Keep) {
			continue
		}
		nodes = append(nodes, parts[k].nodes...)
	}
	return nodes
}

// complete returns the nodes for a completed or-node: a single rule node,
// or the spliced children of a virtual rule.
func (it *Iterator) complete(or *sppf.OrNode) []*Node {
	r := or.Rule()
	if r.VirtualLHS() {
		return it.children(or)
	}
	return []*Node{{
		Symbol:   r.LHS.Source,
		Rule:     r.Source,
		Span:     or.Span(),
		Children: it.children(or),
	}}
}

// Count returns the number of parse trees of the forest. Counts too large
// for an uint64 are returned as math.MaxUint64.
func (it *Iterator) Count() uint64 {
	if it.f.IsNulling() {
		return 1
	}
	memo := make([]uint64, it.f.Len())
	done := make([]bool, it.f.Len())
	var count func(id int) uint64
	count = func(id int) uint64 {
		if id < 0 {
			return 1
		}
		if done[id] {
			return memo[id]
		}
		var n uint64
		for _, and := range it.alts[id] {
			c := uint64(1)
			if !and.IsToken() {
				c = count(and.Cause)
			}
			n = satAdd(n, satMul(count(and.Predecessor), c))
		}
		memo[id], done[id] = n, true
		return n
	}
	return count(it.f.Root().ID)
}

func satAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func satMul(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}
