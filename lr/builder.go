package lr

// GrammarBuilder is a helper to construct grammars in a fluent style:
//
//     b := lr.NewGrammarBuilder("G")
//     b.LHS("S").N("A").T("a", 1).End()  // S  ::=  A a
//     b.LHS("A").T("b", 2).End()         // A  ::=  b
//     b.LHS("A").Epsilon()               // A  ::=
//     g, err := b.Grammar()              // compiles the grammar
//
// Errors are collected and reported by Grammar().
type GrammarBuilder struct {
	g   *Grammar
	err error
}

// NewGrammarBuilder creates a builder for a new grammar.
func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{g: NewGrammar(name)}
}

// RuleBuilder collects the RHS of a BNF rule.
type RuleBuilder struct {
	b    *GrammarBuilder
	lhs  *Symbol
	rhs  []*Symbol
	rank int
}

// LHS starts a new BNF rule.
func (b *GrammarBuilder) LHS(name string) *RuleBuilder {
	return &RuleBuilder{b: b, lhs: b.symbol(name)}
}

// N appends a symbol to the RHS. Symbols not declared as terminals are
// non-terminals.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.symbol(name))
	return rb
}

// T appends a terminal with token type tokval to the RHS.
func (rb *RuleBuilder) T(name string, tokval int) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.Terminal(name, tokval))
	return rb
}

// Rank sets the rank of the rule.
func (rb *RuleBuilder) Rank(rank int) *RuleBuilder {
	rb.rank = rank
	return rb
}

// End completes a rule.
func (rb *RuleBuilder) End() *Rule {
	if rb.b.err != nil || rb.lhs == nil {
		return nil
	}
	for _, sym := range rb.rhs {
		if sym == nil {
			return nil
		}
	}
	r, err := rb.b.g.AddRule(rb.lhs, rb.rhs)
	if err != nil {
		rb.b.fail(err)
		return nil
	}
	r.Rank = rb.rank
	return r
}

// Epsilon completes a rule with an empty RHS.
func (rb *RuleBuilder) Epsilon() *Rule {
	rb.rhs = nil
	return rb.End()
}

// SequenceBuilder configures a sequence rule.
type SequenceBuilder struct {
	b      *GrammarBuilder
	lhs    *Symbol
	item   *Symbol
	sep    *Symbol
	min    int
	proper bool
	keep   bool
	rank   int
}

// Sequence starts a sequence rule lhs ::= item{min,}.
func (b *GrammarBuilder) Sequence(lhs, item string, min int) *SequenceBuilder {
	return &SequenceBuilder{b: b, lhs: b.symbol(lhs), item: b.symbol(item), min: min}
}

// Separator sets the separator symbol.
func (sb *SequenceBuilder) Separator(name string) *SequenceBuilder {
	sb.sep = sb.b.symbol(name)
	return sb
}

// Proper disallows a trailing separator.
func (sb *SequenceBuilder) Proper() *SequenceBuilder {
	sb.proper = true
	return sb
}

// Keep makes separators visible in parse trees.
func (sb *SequenceBuilder) Keep() *SequenceBuilder {
	sb.keep = true
	return sb
}

// Rank sets the rank of the rule.
func (sb *SequenceBuilder) Rank(rank int) *SequenceBuilder {
	sb.rank = rank
	return sb
}

// End completes the sequence rule.
func (sb *SequenceBuilder) End() *Rule {
	if sb.b.err != nil || sb.lhs == nil || sb.item == nil {
		return nil
	}
	r, err := sb.b.g.AddSequence(sb.lhs, sb.item, sb.min, sb.sep, sb.proper)
	if err != nil {
		sb.b.fail(err)
		return nil
	}
	r.Keep = sb.keep
	r.Rank = sb.rank
	return r
}

// Terminal declares a terminal symbol for a token type.
func (b *GrammarBuilder) Terminal(name string, tokval int) *Symbol {
	if b.err != nil {
		return nil
	}
	sym, err := b.g.AddTerminal(name, tokval)
	if err != nil {
		b.fail(err)
		return nil
	}
	return sym
}

// SetStart sets the start symbol.
func (b *GrammarBuilder) SetStart(name string) *GrammarBuilder {
	if sym := b.symbol(name); sym != nil {
		b.fail(b.g.SetStart(sym))
	}
	return b
}

// CompletionEvent declares a completion event for a symbol.
func (b *GrammarBuilder) CompletionEvent(name string) *GrammarBuilder {
	return b.event(name, CompletionEvent)
}

// NulledEvent declares a nulled event for a symbol.
func (b *GrammarBuilder) NulledEvent(name string) *GrammarBuilder {
	return b.event(name, NulledEvent)
}

// PredictionEvent declares a prediction event for a symbol.
func (b *GrammarBuilder) PredictionEvent(name string) *GrammarBuilder {
	return b.event(name, PredictionEvent)
}

func (b *GrammarBuilder) event(name string, k EventKind) *GrammarBuilder {
	if sym := b.symbol(name); sym != nil {
		b.fail(b.g.DeclareEvent(sym, k))
	}
	return b
}

// Assertion creates a zero-width assertion with a default value.
func (b *GrammarBuilder) Assertion(dflt bool) int {
	zwa, err := b.g.AddAssertion(dflt)
	b.fail(err)
	return zwa
}

// PlaceAssertion guards dot position dot of rule r with an assertion.
func (b *GrammarBuilder) PlaceAssertion(zwa int, r *Rule, dot int) *GrammarBuilder {
	if b.err == nil {
		b.fail(b.g.PlaceAssertion(zwa, r, dot))
	}
	return b
}

// Grammar compiles and returns the grammar, or the first error which
// occured while building it.
func (b *GrammarBuilder) Grammar() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.g.IsCompiled() {
		if err := b.g.Compile(); err != nil {
			return nil, err
		}
	}
	return b.g, nil
}

func (b *GrammarBuilder) symbol(name string) *Symbol {
	if b.err != nil {
		return nil
	}
	sym, err := b.g.Symbol(name)
	if err != nil {
		b.fail(err)
		return nil
	}
	return sym
}

func (b *GrammarBuilder) fail(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}
