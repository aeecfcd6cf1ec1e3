package lr

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/npillmayer/thicket/lr/bitmatrix"
	"github.com/npillmayer/thicket/lr/intset"
)

// Compile analyses the grammar and builds the internal tables a recognizer
// works with:
//
// - classification of symbols (nullable, nulling, productive, accessible)
// - nulling and non-nulling aliases for all used symbols
// - factoring of rules with proper nullables (CHAF)
// - rewriting of sequence rules and an augmented start rule
// - item templates with predictions, events and assertions
// - marking of right-recursive rules for Leo transitions
//
// If compilation fails, the grammar remains unchanged and unfrozen.
// A successful compilation freezes the grammar.
func (g *Grammar) Compile() error {
	if g.frozen {
		return ErrFrozen
	}
	c := newCompiler(g)
	if err := c.classify(); err != nil {
		tracer().Errorf("grammar %s: %v", g.Name, err)
		return err
	}
	if err := c.checkCycles(); err != nil {
		tracer().Errorf("grammar %s: %v", g.Name, err)
		return err
	}
	c.rewrite()
	c.buildTables()
	c.commit()
	tracer().Infof("grammar %s compiled: %d internal rules, %d item templates",
		g.Name, len(c.t.irules), len(c.t.ahms))
	return nil
}

// compiler holds intermediate results. Nothing is written to the grammar
// before commit.
type compiler struct {
	g          *Grammar
	start      *Symbol
	n          int // number of external symbols
	terminal   *bitset.BitSet
	nullable   *bitset.BitSet
	nulling    *bitset.BitSet
	productive *bitset.BitSet
	accessible *bitset.BitSet
	counted    *bitset.BitSet
	used       *bitset.BitSet // rules
	nullRules  *bitset.BitSet // rules
	alias      [][2]*ISymbol
	t          *tables
}

func newCompiler(g *Grammar) *compiler {
	n := len(g.symbols)
	c := &compiler{
		g:          g,
		n:          n,
		terminal:   bitset.New(uint(n)),
		nullable:   bitset.New(uint(n)),
		nulling:    bitset.New(uint(n)),
		productive: bitset.New(uint(n)),
		accessible: bitset.New(uint(n)),
		counted:    bitset.New(uint(n)),
		used:       bitset.New(uint(len(g.rules))),
		nullRules:  bitset.New(uint(len(g.rules))),
		alias:      make([][2]*ISymbol, n),
		t:          &tables{arena: intset.NewArena()},
	}
	for _, sym := range g.symbols {
		if sym.term {
			c.terminal.Set(uint(sym.ID))
		}
	}
	return c
}

func (c *compiler) is(set *bitset.BitSet, sym *Symbol) bool {
	return set.Test(uint(sym.ID))
}

// classify computes symbol and rule classes and checks the grammar for
// errors which make it unusable.
func (c *compiler) classify() error {
	g := c.g
	if len(g.rules) == 0 {
		return ErrNoRules
	}
	c.start = g.Start()
	if c.start == nil {
		return ErrNoStart
	}
	isLHS := bitset.New(uint(c.n))
	for _, r := range g.rules {
		isLHS.Set(uint(r.LHS.ID))
	}
	if !c.is(isLHS, c.start) {
		return symbolError(ErrStartNotLHS, c.start)
	}
	// nullable and productive are least fixpoints over the rules
	c.productive.InPlaceUnion(c.terminal)
	for changed := true; changed; {
		changed = false
		for _, r := range g.rules {
			if !c.is(c.nullable, r.LHS) && c.ruleNullable(r) {
				c.nullable.Set(uint(r.LHS.ID))
				changed = true
			}
			if !c.is(c.productive, r.LHS) && c.ruleProductive(r) {
				c.productive.Set(uint(r.LHS.ID))
				changed = true
			}
		}
	}
	if !c.is(c.productive, c.start) {
		return symbolError(ErrUnproductiveStart, c.start)
	}
	// accessible: start and everything reachable from it
	reach := bitmatrix.New(c.n)
	for _, r := range g.rules {
		for _, sym := range r.rhs {
			reach.Set(r.LHS.ID, sym.ID)
		}
		if r.Separator != nil {
			reach.Set(r.LHS.ID, r.Separator.ID)
		}
	}
	reach.TransitiveClosure()
	c.accessible.Set(uint(c.start.ID))
	c.accessible.InPlaceUnion(reach.Row(c.start.ID))
	// a nullable symbol is nulling if it cannot reach a terminal through
	// productive rules
	derives := bitmatrix.New(c.n)
	for _, r := range g.rules {
		if !c.ruleProductive(r) {
			continue
		}
		for _, sym := range r.rhs {
			derives.Set(r.LHS.ID, sym.ID)
		}
		if r.Separator != nil && c.is(c.productive, r.Separator) {
			derives.Set(r.LHS.ID, r.Separator.ID)
		}
	}
	derives.TransitiveClosure()
	var nullingTerminal *Symbol
	for i, ok := c.nullable.NextSet(0); ok; i, ok = c.nullable.NextSet(i + 1) {
		row := derives.Row(int(i)).Clone()
		row.Clear(i)
		if row.IntersectionCardinality(c.terminal) > 0 {
			continue
		}
		if c.terminal.Test(i) {
			if nullingTerminal == nil && c.accessible.Test(i) {
				nullingTerminal = g.symbols[i]
			}
			continue
		}
		c.nulling.Set(i)
	}
	for _, r := range g.rules {
		if c.is(c.accessible, r.LHS) && c.ruleProductive(r) {
			c.used.Set(uint(r.Serial))
		} else {
			tracer().Infof("rule %v is not used", r)
		}
		if c.ruleNulling(r) {
			c.nullRules.Set(uint(r.Serial))
		}
		if r.sequence {
			c.counted.Set(uint(r.rhs[0].ID))
			if r.Separator != nil {
				c.counted.Set(uint(r.Separator.ID))
			}
		}
	}
	if nullingTerminal != nil {
		return symbolError(ErrNullingTerminal, nullingTerminal)
	}
	for _, r := range g.rules {
		if !r.sequence || !c.used.Test(uint(r.Serial)) {
			continue
		}
		if c.is(c.nullable, r.rhs[0]) {
			return ruleError(ErrCountedNullable, r)
		}
		if r.Separator != nil && c.is(c.nullable, r.Separator) {
			return ruleError(ErrCountedNullable, r)
		}
	}
	return nil
}

func (c *compiler) ruleNullable(r *Rule) bool {
	if r.sequence {
		return r.Min == 0 || c.is(c.nullable, r.rhs[0])
	}
	for _, sym := range r.rhs {
		if !c.is(c.nullable, sym) {
			return false
		}
	}
	return true
}

func (c *compiler) ruleProductive(r *Rule) bool {
	if r.sequence {
		return r.Min == 0 || c.is(c.productive, r.rhs[0])
	}
	for _, sym := range r.rhs {
		if !c.is(c.productive, sym) {
			return false
		}
	}
	return true
}

func (c *compiler) ruleNulling(r *Rule) bool {
	if r.sequence {
		return c.is(c.nulling, r.LHS)
	}
	for _, sym := range r.rhs {
		if !c.is(c.nulling, sym) {
			return false
		}
	}
	return true
}

// usedRules iterates over rules which survive classification and are not
// nulling.
func (c *compiler) usedRules(f func(r *Rule)) {
	for _, r := range c.g.rules {
		if c.used.Test(uint(r.Serial)) && !c.nullRules.Test(uint(r.Serial)) {
			f(r)
		}
	}
}

// checkCycles rejects grammars where a symbol derives itself through a
// chain of unit derivations, i.e. A ⇒+ A.
func (c *compiler) checkCycles() error {
	unit := bitmatrix.New(c.n)
	c.usedRules(func(r *Rule) {
		if r.sequence {
			unit.Set(r.LHS.ID, r.rhs[0].ID)
			return
		}
		for i, sym := range r.rhs {
			if c.is(c.nulling, sym) {
				continue
			}
			others := true
			for j, other := range r.rhs {
				if j != i && !c.is(c.nullable, other) {
					others = false
					break
				}
			}
			if others {
				unit.Set(r.LHS.ID, sym.ID)
			}
		}
	})
	unit.TransitiveClosure()
	for _, sym := range c.g.symbols {
		if unit.Test(sym.ID, sym.ID) {
			return symbolError(ErrCycle, sym)
		}
	}
	return nil
}

// commit writes the compilation results to the grammar and freezes it.
func (c *compiler) commit() {
	g := c.g
	for _, sym := range g.symbols {
		var class symclass
		flag := func(set *bitset.BitSet, f symclass) {
			if c.is(set, sym) {
				class |= f
			}
		}
		flag(c.nullable, classNullable)
		flag(c.nulling, classNulling)
		flag(c.productive, classProductive)
		flag(c.accessible, classAccessible)
		flag(c.counted, classCounted)
		sym.class = class
		sym.alias = c.alias[sym.ID]
	}
	for _, r := range g.rules {
		r.used = c.used.Test(uint(r.Serial))
		r.nulling = c.nullRules.Test(uint(r.Serial))
	}
	g.tables = c.t
	g.frozen = true
}
