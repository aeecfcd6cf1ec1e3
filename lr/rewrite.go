package lr

import (
	"fmt"
)

// rewrite creates internal symbols and rules.
func (c *compiler) rewrite() {
	for _, sym := range c.g.symbols {
		if !c.is(c.accessible, sym) || !c.is(c.productive, sym) {
			continue
		}
		if !c.is(c.nulling, sym) {
			c.alias[sym.ID][0] = c.isym(sym.Name, sym, false, false)
		}
		if c.is(c.nullable, sym) {
			c.alias[sym.ID][1] = c.isym(sym.Name+"[]", sym, true, false)
		}
	}
	c.augment()
	c.usedRules(func(r *Rule) {
		if r.sequence {
			c.rewriteSequence(r)
		} else {
			c.factor(r)
		}
	})
}

func (c *compiler) isym(name string, src *Symbol, nulling, virtual bool) *ISymbol {
	isy := &ISymbol{
		ID:      len(c.t.isyms),
		Name:    name,
		Source:  src,
		Nulling: nulling,
		Virtual: virtual,
	}
	if src != nil && !nulling {
		isy.Terminal = src.term
	}
	c.t.isyms = append(c.t.isyms, isy)
	return isy
}

func (c *compiler) irule(lhs *ISymbol, rhs []*ISymbol, src *Rule, kind RuleKind) *IRule {
	r := &IRule{
		ID:        len(c.t.irules),
		LHS:       lhs,
		RHS:       rhs,
		Source:    src,
		Kind:      kind,
		ChafStart: -1,
		sep:       -1,
	}
	if src != nil {
		r.Rank = src.Rank
	}
	c.t.irules = append(c.t.irules, r)
	return r
}

// augment adds the start rule S' ::= S. If S is nullable, the nulling
// start rule S'[] ::= S[] is created as well, though it is not part of the
// rule table. A nulling S has no start rule at all.
func (c *compiler) augment() {
	S := c.start
	if nn := c.alias[S.ID][0]; nn != nil {
		top := c.isym(S.Name+"'", nil, false, true)
		c.t.startRule = c.irule(top, []*ISymbol{nn}, nil, StartRule)
	}
	if nulled := c.alias[S.ID][1]; nulled != nil {
		top := c.isym(S.Name+"'[]", nil, true, true)
		c.t.nullStart = &IRule{ID: -1, LHS: top, RHS: []*ISymbol{nulled}, Kind: StartRule, ChafStart: -1, sep: -1}
	}
}

// rewriteSequence rewrites L ::= item{min,} % sep to
//
//     L ::= R
//     L ::= R sep          (if trailing separators are allowed)
//     R ::= item
//     R ::= R sep item     (R ::= R item without separator)
//
// An empty sequence is covered by the nulling alias of L.
func (c *compiler) rewriteSequence(r *Rule) {
	L := c.alias[r.LHS.ID][0]
	item := c.alias[r.rhs[0].ID][0]
	R := c.isym(fmt.Sprintf("%s[Seq%d]", r.LHS.Name, r.Serial), nil, false, true)
	c.irule(L, []*ISymbol{R}, r, SeqTopRule)
	if r.Separator == nil {
		c.irule(R, []*ISymbol{item}, r, SeqFirstRule)
		c.irule(R, []*ISymbol{R, item}, r, SeqRestRule)
		return
	}
	sep := c.alias[r.Separator.ID][0]
	if sep != nil && !r.Proper {
		c.irule(L, []*ISymbol{R, sep}, r, SeqTrailingRule).sep = 1
	}
	c.irule(R, []*ISymbol{item}, r, SeqFirstRule)
	if sep != nil { // an unproductive separator allows single items only
		c.irule(R, []*ISymbol{R, sep, item}, r, SeqRestRule).sep = 1
	}
}

// RHS positions are classified for factoring.
const (
	posN = iota // not nullable
	posP        // proper nullable
	posZ        // nulling
)

// factor rewrites a BNF rule into internal rules without proper nullables.
//
// The RHS is cut into pieces from left to right. A piece is made as long as
// possible while containing at most two variables, a variable being a proper
// nullable position or a nullable remainder after the piece. If there is a
// remainder with non-nulling symbols, it is replaced by a fresh virtual
// symbol, which is the LHS of the next piece. Every piece is emitted in all
// combinations of present and nulled variables, except those without any
// non-nulling symbol. This gives at most 4 rules per piece.
func (c *compiler) factor(r *Rule) {
	k := len(r.rhs)
	kind := make([]int, k)
	for i, sym := range r.rhs {
		switch {
		case c.is(c.nulling, sym):
			kind[i] = posZ
		case c.is(c.nullable, sym):
			kind[i] = posP
		default:
			kind[i] = posN
		}
	}
	// rest reports if RHS positions after e contain a non-nulling symbol,
	// and if all of them are nullable
	rest := func(e int) (nonZ bool, nullable bool) {
		nullable = true
		for j := e + 1; j < k; j++ {
			if kind[j] != posZ {
				nonZ = true
			}
			if kind[j] == posN {
				nullable = false
			}
		}
		return
	}
	vars := func(s, e int) int {
		cnt := 0
		for i := s; i <= e; i++ {
			if kind[i] == posP {
				cnt++
			}
		}
		if nonZ, nullable := rest(e); nonZ && nullable {
			cnt++
		}
		return cnt
	}
	lhs := c.alias[r.LHS.ID][0]
	for s := 0; s < k; {
		e := s
		for e+1 < k && vars(s, e+1) <= 2 {
			e++
		}
		hasV, vNullable := rest(e)
		var V *ISymbol
		if hasV {
			V = c.isym(fmt.Sprintf("%s[R%d:%d]", r.LHS.Name, r.Serial, e+1), nil, false, true)
		}
		c.emitPiece(r, lhs, s, e, kind, V, vNullable)
		if V == nil {
			break
		}
		lhs, s = V, e+1
	}
}

// emitPiece emits the variants of a piece covering external RHS positions
// s…e, optionally followed by virtual symbol V for the remainder.
func (c *compiler) emitPiece(r *Rule, lhs *ISymbol, s, e int, kind []int, V *ISymbol, vNullable bool) {
	var variables []int // RHS positions; len(rhs) stands for V
	for i := s; i <= e; i++ {
		if kind[i] == posP {
			variables = append(variables, i)
		}
	}
	k := len(r.rhs)
	if V != nil && vNullable {
		variables = append(variables, k)
	}
	for mask := 0; mask < 1<<len(variables); mask++ {
		nulled := func(pos int) bool {
			for b, v := range variables {
				if v == pos {
					return mask&(1<<b) != 0
				}
			}
			return false
		}
		rhs := make([]*ISymbol, 0, k-s+1)
		nonnulling := false
		for i := s; i <= e; i++ {
			sym := r.rhs[i]
			if kind[i] == posZ || (kind[i] == posP && nulled(i)) {
				rhs = append(rhs, c.alias[sym.ID][1])
			} else {
				rhs = append(rhs, c.alias[sym.ID][0])
				nonnulling = true
			}
		}
		virtualRHS := false
		if V != nil {
			if nulled(k) {
				for j := e + 1; j < k; j++ {
					rhs = append(rhs, c.alias[r.rhs[j].ID][1])
				}
			} else {
				rhs = append(rhs, V)
				virtualRHS = true
				nonnulling = true
			}
		}
		if !nonnulling {
			continue
		}
		ir := c.irule(lhs, rhs, r, BNFRule)
		ir.ChafStart = s
		ir.VirtualRHS = virtualRHS
	}
}
