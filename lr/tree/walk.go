package tree

import (
	"github.com/npillmayer/thicket"
	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/earley"
)

// A Cursor is a movable mark within a parse tree.
type Cursor struct {
	root    *Node
	current *Node
	stack   []frame // parents of current, with the index of the child on the way down
}

type frame struct {
	node  *Node
	index int
	dir   Direction
}

// NewCursor sets up a cursor at the root of a tree.
func NewCursor(root *Node) *Cursor {
	return &Cursor{
		root:    root,
		current: root,
		stack:   make([]frame, 0, 32),
	}
}

// Current returns the node the cursor is positioned at.
func (c *Cursor) Current() *Node {
	return c.current
}

// Up moves the cursor up to the parent node of the current node, if any.
func (c *Cursor) Up() (*Node, bool) {
	if len(c.stack) == 0 {
		return c.current, false
	}
	c.current = c.stack[len(c.stack)-1].node
	c.stack = c.stack[:len(c.stack)-1]
	tracer().Debugf("UP Cursor @ %v", c.current.Symbol)
	return c.current, true
}

// Down moves the cursor down to the first child of the curent node, if any.
// dir lets clients start at either the leftmost child (default) or the rightmost
// child. Subsequent calls to Sibling move in the same direction.
func (c *Cursor) Down(dir Direction) (*Node, bool) {
	n := len(c.current.Children)
	if n == 0 {
		return c.current, false
	}
	i := 0
	if dir == RtoL {
		i = n - 1
	}
	c.stack = append(c.stack, frame{node: c.current, index: i, dir: dir})
	c.current = c.current.Children[i]
	tracer().Debugf("DOWN Cursor @ %v", c.current.Symbol)
	return c.current, true
}

// Sibling moves the cursor to the next sibling of the current node, if any.
func (c *Cursor) Sibling() (*Node, bool) {
	if len(c.stack) == 0 {
		return c.current, false
	}
	top := &c.stack[len(c.stack)-1]
	i := top.index + int(top.dir)
	if i < 0 || i >= len(top.node.Children) {
		return c.current, false
	}
	top.index = i
	c.current = top.node.Children[i]
	tracer().Debugf("SIBLING Cursor @ %v", c.current.Symbol)
	return c.current, true
}

// TopDown traverses the sub-tree at the cursor top-down, applying Listener-methods
// for all nodes encountered. It returns a user-defined value, calculated by the
// listener. Values returned for children are stored in the children's Value field
// before ExitRule is called for the parent.
func (c *Cursor) TopDown(listener Listener, dir Direction, breakmode Breakmode) interface{} {
	tracer().Debugf("TopDown starting at node %v", c.current.Symbol)
	return c.traverseTopDown(listener, dir, breakmode, 0)
}

func (c *Cursor) traverseTopDown(listener Listener, dir Direction, breakmode Breakmode, level int) interface{} {
	node := c.current
	switch {
	case node.IsToken():
		ctxt := makeCtxt(node.Span, level, -1, nil)
		return listener.Terminal(node.Token, ctxt)
	case node.IsNull():
		ctxt := makeCtxt(node.Span, level, -1, nil)
		return listener.Null(node.Symbol, ctxt)
	}
	localAttributes := listener.MakeAttrs(node.Symbol)
	ctxt := makeCtxt(node.Span, level, node.Rule.Serial, localAttributes)
	doContinue := listener.EnterRule(node.Symbol, node.Children, ctxt)
	if doContinue || breakmode == Continue {
		if child, ok := c.Down(dir); ok {
			for ; ok; child, ok = c.Sibling() {
				child.Value = c.traverseTopDown(listener, dir, breakmode, level+1)
			}
			c.Up()
		}
	}
	return listener.ExitRule(node.Symbol, node.Children, ctxt)
}

// TopDown traverses a tree with a listener, starting at its root.
func TopDown(root *Node, listener Listener, dir Direction, breakmode Breakmode) interface{} {
	return NewCursor(root).TopDown(listener, dir, breakmode)
}

// Direction lets clients decide wether children nodes should be traversed left-to-right
// (default) or right-to-left.
type Direction int

// Children nodes may be traversed left-to-right (default) or right-to-left.
const (
	LtoR Direction = 1
	RtoL Direction = -1
)

// Breakmode is a client hint wether to stop traversing on break-signals or not.
type Breakmode int

// Setting Continue will always traverse a complete (sub-)tree. Break will skip
// traversing sub-tree as soon as an Enter-function signals a break.
const (
	Continue Breakmode = iota
	Break
)

// --- Listener --------------------------------------------------------------

// Listener is a type for walking a parse tree.
//
// Arguments are:
//
//     - *lr.Symbol: the grammar symbol at the current node
//     - []*Node:    the children of the node, i.e. the RHS of the external rule
//     - RuleCtxt:   contextual information for the node
//
// EnterRule returns a boolean value indicating if the traversal should continue to
// the children of this node. ExitRule, Terminal and Null may return user-defined
// values to be propagated upwards of the tree.
type Listener interface {
	EnterRule(*lr.Symbol, []*Node, RuleCtxt) bool
	ExitRule(*lr.Symbol, []*Node, RuleCtxt) interface{}
	Terminal(*earley.Token, RuleCtxt) interface{}
	Null(*lr.Symbol, RuleCtxt) interface{}
	MakeAttrs(*lr.Symbol) interface{}
}

// RuleCtxt is a context structure for Listeners.
type RuleCtxt struct {
	Span      thicket.Span // span of input symbols covered by this rule
	Level     int          // nesting level
	RuleIndex int          // serial of the external rule, -1 for leafs
	Attrs     interface{}  // client-defined attributes local to node
}

func makeCtxt(span thicket.Span, level int, rule int, attrs interface{}) RuleCtxt {
	return RuleCtxt{
		Span:      span,
		Level:     level,
		RuleIndex: rule,
		Attrs:     attrs,
	}
}
