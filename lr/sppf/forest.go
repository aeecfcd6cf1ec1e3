package sppf

import (
	"errors"
	"fmt"
	"sort"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/thicket"
	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/earley"
)

// Errors returned for forests.
var (
	ErrNoParse     = errors.New("no parse")
	ErrNoSuchNode  = errors.New("no such forest node")
	ErrBrokenTrace = errors.New("recognizer trace is inconsistent")
)

// OrNode is a choice point of a forest: a rule recognized up to a dot
// position, spanning earlemes Origin to End. Its and-nodes are the
// alternative ways of recognizing it.
type OrNode struct {
	ID     int
	AHM    *lr.AHM
	Origin uint64
	End    uint64
	first  int // index of first and-node
	count  int // number of and-nodes
}

// Rule returns the internal rule of the or-node.
func (or *OrNode) Rule() *lr.IRule {
	return or.AHM.Rule
}

// Span returns the earlemes covered by the or-node.
func (or *OrNode) Span() thicket.Span {
	return thicket.Span{or.Origin, or.End}
}

// IsCompletion is true for or-nodes of completed rules.
func (or *OrNode) IsCompletion() bool {
	return or.AHM.IsCompletion()
}

// AndCount returns the number of alternatives of the or-node.
func (or *OrNode) AndCount() int {
	return or.count
}

func (or *OrNode) String() string {
	return fmt.Sprintf("or#%d[%v]%v", or.ID, or.AHM, or.Span())
}

// AndNode is one way of recognizing an or-node: the or-node for the rule
// up to the previous dot position (Predecessor, or -1 if the predot symbol
// is the first non-nulling symbol of the rule), together with what has been
// recognized for the predot symbol: an or-node for a completed rule (Cause),
// or an input token (Cause is -1).
type AndNode struct {
	ID          int
	Parent      int
	Predecessor int
	Cause       int
	Token       *earley.Token
}

// IsToken is true if the cause of the and-node is an input token.
func (and *AndNode) IsToken() bool {
	return and.Cause < 0
}

func (and *AndNode) String() string {
	if and.IsToken() {
		return fmt.Sprintf("and#%d(%d ← %d, %v)", and.ID, and.Parent, and.Predecessor, and.Token)
	}
	return fmt.Sprintf("and#%d(%d ← %d, or#%d)", and.ID, and.Parent, and.Predecessor, and.Cause)
}

// Forest is an AND/OR graph of all parses of an input, up to an earleme.
type Forest struct {
	g       *lr.Grammar
	end     uint64
	nulling bool
	or      []*OrNode
	and     []*AndNode
	root    int
}

// Grammar returns the grammar of the forest.
func (f *Forest) Grammar() *lr.Grammar {
	return f.g
}

// End returns the earleme the forest's parses end at.
func (f *Forest) End() uint64 {
	return f.end
}

// IsNulling is true for the forest of a parse of the empty input. Nulling
// forests have no nodes.
func (f *Forest) IsNulling() bool {
	return f.nulling
}

// Len returns the number of or-nodes.
func (f *Forest) Len() int {
	return len(f.or)
}

// AndLen returns the number of and-nodes.
func (f *Forest) AndLen() int {
	return len(f.and)
}

// Root returns the or-node for the completed start rule, or nil for
// nulling forests.
func (f *Forest) Root() *OrNode {
	if f.nulling {
		return nil
	}
	return f.or[f.root]
}

// OrNode returns or-node no. id.
func (f *Forest) OrNode(id int) (*OrNode, error) {
	if id < 0 || id >= len(f.or) {
		return nil, ErrNoSuchNode
	}
	return f.or[id], nil
}

// AndNode returns and-node no. id.
func (f *Forest) AndNode(id int) (*AndNode, error) {
	if id < 0 || id >= len(f.and) {
		return nil, ErrNoSuchNode
	}
	return f.and[id], nil
}

// AndNodes returns the alternatives of an or-node, ordered canonically.
func (f *Forest) AndNodes(or *OrNode) []*AndNode {
	return f.and[or.first : or.first+or.count]
}

// Ambiguous is true if any or-node has more than one alternative.
func (f *Forest) Ambiguous() bool {
	for _, or := range f.or {
		if or.count > 1 {
			return true
		}
	}
	return false
}

// Dump traces all nodes of the forest.
func (f *Forest) Dump() {
	tracer().Debugf("--- Forest of %s up to %d ------------------", f.g.Name, f.end)
	if f.nulling {
		tracer().Debugf("    nulling forest")
		return
	}
	for _, or := range f.or {
		tracer().Debugf("%v", or)
		for _, and := range f.AndNodes(or) {
			tracer().Debugf("    %v", and)
		}
	}
}

// --- Building --------------------------------------------------------------

type orKey struct {
	ahm    int
	origin uint64
	end    uint64
}

type andKey struct {
	parent, pred, cause int
	token               *earley.Token
}

type builder struct {
	f     *Forest
	nodes map[orKey]int
	items []*earley.Item // item of an or-node; nil for nodes expanded from Leo items
	ands  map[andKey]bool
	work  *arraystack.Stack
}

// Build creates the forest of all parses recognized by rec which end at
// earleme end. It returns ErrNoParse if the input up to end has not been
// accepted.
func Build(rec *earley.Recognizer, end uint64) (*Forest, error) {
	if rec == nil || rec.Phase() == earley.BeforeInput {
		return nil, ErrNoParse
	}
	if !rec.IsConsistent() {
		return nil, earley.ErrInconsistent
	}
	g := rec.Grammar()
	f := &Forest{g: g, end: end, root: -1}
	if end == 0 && g.StartIsNullable() {
		f.nulling = true
		tracer().Debugf("nulling forest")
		return f, nil
	}
	start := rec.StartItem(end)
	if start == nil {
		return nil, fmt.Errorf("%w: input up to earleme %d not accepted", ErrNoParse, end)
	}
	b := &builder{
		f:     f,
		nodes: make(map[orKey]int),
		ands:  make(map[andKey]bool),
		work:  arraystack.New(),
	}
	b.itemNode(start)
	for !b.work.Empty() {
		v, _ := b.work.Pop()
		id := v.(int)
		if err := b.expand(id, b.items[id]); err != nil {
			return nil, err
		}
	}
	b.canonicalize(start)
	tracer().Infof("forest has %d or-nodes and %d and-nodes", len(f.or), len(f.and))
	return f, nil
}

// node returns the or-node for a key, creating it if necessary.
func (b *builder) node(ahm *lr.AHM, origin, end uint64) (int, bool) {
	key := orKey{ahm.ID, origin, end}
	if id, ok := b.nodes[key]; ok {
		return id, false
	}
	id := len(b.f.or)
	b.f.or = append(b.f.or, &OrNode{ID: id, AHM: ahm, Origin: origin, End: end})
	b.items = append(b.items, nil)
	b.nodes[key] = id
	return id, true
}

// itemNode returns the or-node of an item and schedules the item for
// expansion if it has not been attached to the node yet. The node may
// already exist as a link of a Leo chain.
func (b *builder) itemNode(item *earley.Item) int {
	id, _ := b.node(item.AHM(), item.Origin(), item.Set().Earleme())
	if b.items[id] == nil {
		b.items[id] = item
		b.work.Push(id)
	}
	return id
}

// predNode returns the or-node of a predecessor item, or -1 for predictions.
func (b *builder) predNode(item *earley.Item) int {
	if item.AHM().IsFirst() {
		return -1
	}
	return b.itemNode(item)
}

func (b *builder) addAnd(parent, pred, cause int, tok *earley.Token) {
	key := andKey{parent, pred, cause, tok}
	if b.ands[key] {
		return
	}
	b.ands[key] = true
	b.f.and = append(b.f.and, &AndNode{
		ID:          len(b.f.and),
		Parent:      parent,
		Predecessor: pred,
		Cause:       cause,
		Token:       tok,
	})
}

// expand creates the and-nodes for the valid sources of an item.
func (b *builder) expand(id int, item *earley.Item) error {
	if item == nil {
		return nil
	}
	for _, src := range item.Sources() {
		if !src.IsValid() {
			continue
		}
		switch src.Kind {
		case earley.TokenSource:
			b.addAnd(id, b.predNode(src.Predecessor), -1, src.Token)
		case earley.CompletionSource:
			b.addAnd(id, b.predNode(src.Predecessor), b.itemNode(src.Cause), nil)
		case earley.LeoSource:
			if err := b.expandLeo(id, item, src); err != nil {
				return err
			}
		}
	}
	return nil
}

// expandLeo unfolds a Leo source into the chain of completions it stands
// for. Each link of the chain completes the rule of its base item, which in
// turn is the cause for the next link. The last link is the item itself.
func (b *builder) expandLeo(id int, item *earley.Item, src earley.Source) error {
	cause := b.itemNode(src.Cause)
	end := item.Set().Earleme()
	for L := src.Leo; L != nil; L = L.Predecessor() {
		base := L.Base()
		node := id
		if L.Predecessor() != nil {
			// a link may exist as an item, derived by other completions
			if link := item.Set().Find(base.AHM().Next(), base.OriginSet()); link != nil {
				node = b.itemNode(link)
			} else {
				node, _ = b.node(base.AHM().Next(), base.Origin(), end)
			}
		} else if base.AHM().Next() != item.AHM() || base.Origin() != item.Origin() {
			return fmt.Errorf("%w: Leo chain of %v ends in %v", ErrBrokenTrace, item, base)
		}
		b.addAnd(node, b.predNode(base), cause, nil)
		cause = node
	}
	return nil
}

// canonicalize renumbers or-nodes by (end, origin, item template) and sorts
// the and-nodes of each or-node, so that forests do not depend on the order
// the recognizer created items in.
func (b *builder) canonicalize(start *earley.Item) {
	f := b.f
	sort.Slice(f.or, func(i, j int) bool {
		x, y := f.or[i], f.or[j]
		if x.End != y.End {
			return x.End < y.End
		}
		if x.Origin != y.Origin {
			return x.Origin < y.Origin
		}
		return x.AHM.ID < y.AHM.ID
	})
	remap := make([]int, len(f.or))
	for i, or := range f.or {
		remap[or.ID] = i
		or.ID = i
	}
	re := func(n int) int {
		if n < 0 {
			return n
		}
		return remap[n]
	}
	for _, and := range f.and {
		and.Parent, and.Predecessor, and.Cause = re(and.Parent), re(and.Predecessor), re(and.Cause)
	}
	sort.Slice(f.and, func(i, j int) bool {
		x, y := f.and[i], f.and[j]
		if x.Parent != y.Parent {
			return x.Parent < y.Parent
		}
		if x.Predecessor != y.Predecessor {
			return x.Predecessor < y.Predecessor
		}
		if x.Cause != y.Cause {
			return x.Cause < y.Cause
		}
		return tokenLess(x.Token, y.Token)
	})
	for i, and := range f.and {
		and.ID = i
		or := f.or[and.Parent]
		if or.count == 0 {
			or.first = i
		}
		or.count++
	}
	f.root = remap[b.nodes[orKey{start.AHM().ID, start.Origin(), start.Set().Earleme()}]]
}

func tokenLess(a, b *earley.Token) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return a.Symbol.ID < b.Symbol.ID
}
