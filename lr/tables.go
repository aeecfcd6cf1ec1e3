package lr

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/thicket/lr/bitmatrix"
	"github.com/npillmayer/thicket/lr/intset"
)

// === Item templates ========================================================

// buildTables creates the item templates (AHMs) for all internal rules and
// decorates them with predictions, events, assertions and Leo eligibility.
func (c *compiler) buildTables() {
	t := c.t
	t.byLHS = make([][]*IRule, len(t.isyms))
	for _, r := range t.irules {
		t.byLHS[r.LHS.ID] = append(t.byLHS[r.LHS.ID], r)
		nulls := 0
		for i, isy := range r.RHS {
			if isy.Nulling {
				nulls++
				continue
			}
			c.ahm(r, i, nulls, isy)
			nulls = 0
		}
		c.ahm(r, len(r.RHS), nulls, nil)
	}
	c.markRightRecursion()
	c.predictions()
	c.events()
	c.placeAssertions()
	for _, ahm := range t.ahms {
		ahm.LeoEligible = ahm.Postdot != nil && !ahm.Postdot.Terminal &&
			ahm.Rule.RightRecursive && ahm.Next().IsCompletion() &&
			len(ahm.Next().Assertions) == 0
	}
}

func (c *compiler) ahm(r *IRule, pos, nulls int, postdot *ISymbol) *AHM {
	ahm := &AHM{
		ID:        len(c.t.ahms),
		Rule:      r,
		Position:  pos,
		NullCount: nulls,
		Postdot:   postdot,
		index:     len(r.ahms),
	}
	empty := c.t.arena.Empty()
	ahm.Predicted, ahm.CompletionEvents, ahm.NulledEvents, ahm.PredictionEvents = empty, empty, empty, empty
	r.ahms = append(r.ahms, ahm)
	c.t.ahms = append(c.t.ahms, ahm)
	return ahm
}

// markRightRecursion marks internal rules whose last non-nulling symbol
// derives the rule's LHS at the right edge.
func (c *compiler) markRightRecursion() {
	rules := c.t.irules
	rr := bitmatrix.New(len(rules))
	for _, r := range rules {
		last := r.LastNonNulling()
		for _, s := range c.t.byLHS[last.ID] {
			rr.Set(r.ID, s.ID)
		}
	}
	rr.TransitiveClosure()
	for _, r := range rules {
		for _, s := range c.t.byLHS[r.LHS.ID] {
			if rr.Test(r.ID, s.ID) {
				r.RightRecursive = true
				break
			}
		}
	}
}

// predictions computes for every postdot symbol the set of internal rules
// predicted when the symbol is expected, closed over first symbols.
func (c *compiler) predictions() {
	t := c.t
	first := bitmatrix.New(len(t.isyms))
	for _, r := range t.irules {
		first.Set(r.LHS.ID, r.First().Postdot.ID)
	}
	first.Reflexive().TransitiveClosure()
	predicted := make([]*intset.Set, len(t.isyms))
	for _, isy := range t.isyms {
		var rules []int
		for _, sym := range first.Columns(isy.ID) {
			for _, r := range t.byLHS[sym] {
				rules = append(rules, r.ID)
			}
		}
		predicted[isy.ID] = t.arena.Intern(rules)
	}
	for _, ahm := range t.ahms {
		if ahm.Postdot != nil {
			ahm.Predicted = predicted[ahm.Postdot.ID]
		}
	}
}

// events computes the event sets of item templates. Nulled events are closed
// over null derivations: if a nulled symbol may derive the empty string by way
// of other nullable symbols, those are nulled as well.
func (c *compiler) events() {
	g, t := c.g, c.t
	for _, sym := range g.symbols {
		if sym.ev != 0 {
			t.eventful = true
		}
	}
	if !t.eventful {
		return
	}
	nullDerives := bitmatrix.New(c.n)
	for _, r := range g.rules {
		if !c.used.Test(uint(r.Serial)) || !c.ruleNullable(r) || r.sequence {
			continue
		}
		for _, sym := range r.rhs {
			nullDerives.Set(r.LHS.ID, sym.ID)
		}
	}
	nullDerives.Reflexive().TransitiveClosure()
	nulledBy := func(set *treeset.Set, sym *Symbol) {
		for _, id := range nullDerives.Columns(sym.ID) {
			if g.symbols[id].ev&NulledEvent != 0 {
				set.Add(id)
			}
		}
	}
	for _, ahm := range t.ahms {
		r := ahm.Rule
		nulled := treeset.NewWithIntComparator()
		for i := ahm.Position - ahm.NullCount; i < ahm.Position; i++ {
			nulledBy(nulled, r.RHS[i].Source)
		}
		ahm.NulledEvents = t.arena.Intern(ints(nulled))
		if ahm.IsCompletion() && !r.LHS.Virtual && r.LHS.Source.ev&CompletionEvent != 0 {
			ahm.CompletionEvents = t.arena.Intern([]int{r.LHS.Source.ID})
		}
		predicted := treeset.NewWithIntComparator()
		for _, id := range ahm.Predicted.Members() {
			lhs := t.irules[id].LHS
			if !lhs.Virtual && lhs.Source.ev&PredictionEvent != 0 {
				predicted.Add(lhs.Source.ID)
			}
		}
		ahm.PredictionEvents = t.arena.Intern(ints(predicted))
	}
	if S := c.start; c.is(c.nullable, S) {
		nulled := treeset.NewWithIntComparator()
		nulledBy(nulled, S)
		t.startNull = t.arena.Intern(ints(nulled))
	}
}

// placeAssertions maps zero-width assertions at external dot positions onto
// item templates. A template covers the external dot positions from before
// its leading nulled symbols up to its own dot.
func (c *compiler) placeAssertions() {
	for _, p := range c.g.placements {
		for _, r := range c.t.irules {
			if r.Source != p.rule || r.Kind != BNFRule {
				continue
			}
			for _, ahm := range r.ahms {
				dot := ahm.ExternalDot()
				if p.dot < dot-ahm.NullCount || p.dot > dot {
					continue
				}
				if !containsInt(ahm.Assertions, p.zwa) {
					ahm.Assertions = append(ahm.Assertions, p.zwa)
					c.t.assertions = true
				}
			}
		}
	}
}

func ints(set *treeset.Set) []int {
	r := make([]int, 0, set.Size())
	for _, v := range set.Values() {
		r = append(r, v.(int))
	}
	return r
}

func containsInt(list []int, n int) bool {
	for _, m := range list {
		if m == n {
			return true
		}
	}
	return false
}
