package lr

import (
	"fmt"

	"github.com/npillmayer/thicket/lr/intset"
)

// Grammar is a context-free grammar. It is built from external symbols and
// rules, either directly or using a GrammarBuilder, and has to be compiled
// before a recognizer may use it. After a successful compilation the grammar
// is frozen and is safe to share between recognizers.
type Grammar struct {
	Name       string
	symbols    []*Symbol
	rules      []*Rule
	byName     map[string]*Symbol
	terminals  map[int]*Symbol
	start      *Symbol
	assertions []bool // default values of zero-width assertions
	placements []placement
	frozen     bool
	tables     *tables
}

type placement struct {
	zwa  int
	rule *Rule
	dot  int
}

// tables holds the compiled internal representation of a grammar.
type tables struct {
	isyms      []*ISymbol
	irules     []*IRule
	ahms       []*AHM
	arena      *intset.Arena
	startRule  *IRule // nil if the start symbol is nulling
	nullStart  *IRule // nil if the start symbol is not nullable
	byLHS      [][]*IRule
	startNull  *intset.Set // nulled events for an empty parse
	eventful   bool
	assertions bool
}

// NewGrammar creates an empty grammar.
func NewGrammar(name string) *Grammar {
	return &Grammar{
		Name:      name,
		byName:    make(map[string]*Symbol),
		terminals: make(map[int]*Symbol),
	}
}

// Symbol returns the symbol with a given name, creating a non-terminal if
// it does not exist yet.
func (g *Grammar) Symbol(name string) (*Symbol, error) {
	if sym, ok := g.byName[name]; ok {
		return sym, nil
	}
	if g.frozen {
		return nil, ErrFrozen
	}
	sym := &Symbol{ID: len(g.symbols), Name: name}
	g.symbols = append(g.symbols, sym)
	g.byName[name] = sym
	return sym, nil
}

// AddTerminal declares a terminal with a token type. Declaring an existing
// terminal again with the same token type returns the existing symbol.
func (g *Grammar) AddTerminal(name string, tokval int) (*Symbol, error) {
	if g.frozen {
		return nil, ErrFrozen
	}
	if t, ok := g.terminals[tokval]; ok && t.Name != name {
		return nil, &GrammarError{Err: ErrTokenType, Symbol: name}
	}
	sym, err := g.Symbol(name)
	if err != nil {
		return nil, err
	}
	if sym.term && sym.Value != tokval {
		return nil, &GrammarError{Err: ErrTokenType, Symbol: name}
	}
	sym.term = true
	sym.Value = tokval
	g.terminals[tokval] = sym
	return sym, nil
}

// AddRule adds a BNF rule. An empty rhs denotes an epsilon rule.
func (g *Grammar) AddRule(lhs *Symbol, rhs []*Symbol) (*Rule, error) {
	if g.frozen {
		return nil, ErrFrozen
	}
	if err := g.own(append([]*Symbol{lhs}, rhs...)...); err != nil {
		return nil, err
	}
	r := &Rule{Serial: len(g.rules), LHS: lhs, rhs: append([]*Symbol{}, rhs...)}
	for _, other := range g.rules {
		if other.LHS != lhs {
			continue
		}
		if other.sequence {
			return nil, ruleError(ErrSequenceLHS, r)
		}
		if sameRHS(other.rhs, r.rhs) {
			return nil, ruleError(ErrDuplicateRule, r)
		}
	}
	g.rules = append(g.rules, r)
	return r, nil
}

// AddSequence adds a sequence rule lhs ::= item{min,}, optionally separated
// by sep. min must be 0 or 1.
func (g *Grammar) AddSequence(lhs, item *Symbol, min int, sep *Symbol, proper bool) (*Rule, error) {
	if g.frozen {
		return nil, ErrFrozen
	}
	if err := g.own(lhs, item); err != nil {
		return nil, err
	}
	if sep != nil {
		if err := g.own(sep); err != nil {
			return nil, err
		}
	}
	r := &Rule{
		Serial:    len(g.rules),
		LHS:       lhs,
		rhs:       []*Symbol{item},
		Min:       min,
		Separator: sep,
		Proper:    proper,
		sequence:  true,
	}
	if min != 0 && min != 1 {
		return nil, ruleError(ErrSequenceMin, r)
	}
	for _, other := range g.rules {
		if other.LHS == lhs {
			return nil, ruleError(ErrSequenceLHS, r)
		}
	}
	g.rules = append(g.rules, r)
	return r, nil
}

// SetStart sets the start symbol. If it is never called, the LHS of the
// first rule is the start symbol.
func (g *Grammar) SetStart(sym *Symbol) error {
	if g.frozen {
		return ErrFrozen
	}
	if err := g.own(sym); err != nil {
		return err
	}
	g.start = sym
	return nil
}

// DeclareEvent declares events of kind k for a symbol.
func (g *Grammar) DeclareEvent(sym *Symbol, k EventKind) error {
	if g.frozen {
		return ErrFrozen
	}
	if err := g.own(sym); err != nil {
		return err
	}
	sym.ev |= k
	return nil
}

// AddAssertion creates a new zero-width assertion with a default value and
// returns its id.
func (g *Grammar) AddAssertion(dflt bool) (int, error) {
	if g.frozen {
		return -1, ErrFrozen
	}
	g.assertions = append(g.assertions, dflt)
	return len(g.assertions) - 1, nil
}

// PlaceAssertion guards a dot position of an external BNF rule with a
// zero-width assertion. Items at that position are created only if the
// assertion holds at the current earleme.
func (g *Grammar) PlaceAssertion(zwa int, r *Rule, dot int) error {
	if g.frozen {
		return ErrFrozen
	}
	if zwa < 0 || zwa >= len(g.assertions) {
		return ErrNoSuchAssertion
	}
	if r == nil || r.Serial >= len(g.rules) || g.rules[r.Serial] != r || r.sequence {
		return ErrNoSuchRule
	}
	if dot < 0 || dot > len(r.rhs) {
		return &GrammarError{Err: ErrNoSuchRule, Rule: fmt.Sprintf("%s @%d", r, dot)}
	}
	g.placements = append(g.placements, placement{zwa: zwa, rule: r, dot: dot})
	return nil
}

func (g *Grammar) own(syms ...*Symbol) error {
	for _, sym := range syms {
		if sym == nil || sym.ID >= len(g.symbols) || g.symbols[sym.ID] != sym {
			return ErrNoSuchSymbol
		}
	}
	return nil
}

func sameRHS(a, b []*Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Accessors -------------------------------------------------------------

// IsCompiled is true after a successful call to Compile.
func (g *Grammar) IsCompiled() bool {
	return g.frozen
}

// Start returns the start symbol.
func (g *Grammar) Start() *Symbol {
	if g.start == nil && len(g.rules) > 0 {
		return g.rules[0].LHS
	}
	return g.start
}

// Symbols returns all external symbols.
func (g *Grammar) Symbols() []*Symbol {
	return g.symbols
}

// SymbolByName returns a symbol, or nil.
func (g *Grammar) SymbolByName(name string) *Symbol {
	return g.byName[name]
}

// Terminal returns the terminal for a token type, or nil.
func (g *Grammar) Terminal(tokval int) *Symbol {
	return g.terminals[tokval]
}

// Rules returns all external rules.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

// Rule returns external rule no. n, or nil.
func (g *Grammar) Rule(n int) *Rule {
	if n < 0 || n >= len(g.rules) {
		return nil
	}
	return g.rules[n]
}

// EachSymbol calls f for every external symbol.
func (g *Grammar) EachSymbol(f func(sym *Symbol)) {
	for _, sym := range g.symbols {
		f(sym)
	}
}

// AssertionCount returns the number of zero-width assertions.
func (g *Grammar) AssertionCount() int {
	return len(g.assertions)
}

// AssertionDefault returns the default value of a zero-width assertion.
func (g *Grammar) AssertionDefault(zwa int) bool {
	if zwa < 0 || zwa >= len(g.assertions) {
		return false
	}
	return g.assertions[zwa]
}

// ISymbols returns the internal symbols of a compiled grammar.
func (g *Grammar) ISymbols() []*ISymbol {
	if g.tables == nil {
		return nil
	}
	return g.tables.isyms
}

// IRules returns the internal rules of a compiled grammar.
func (g *Grammar) IRules() []*IRule {
	if g.tables == nil {
		return nil
	}
	return g.tables.irules
}

// IRule returns internal rule no. n, or nil.
func (g *Grammar) IRule(n int) *IRule {
	if g.tables == nil || n < 0 || n >= len(g.tables.irules) {
		return nil
	}
	return g.tables.irules[n]
}

// AHMs returns the item templates of a compiled grammar.
func (g *Grammar) AHMs() []*AHM {
	if g.tables == nil {
		return nil
	}
	return g.tables.ahms
}

// RulesFor returns the internal rules with LHS isy.
func (g *Grammar) RulesFor(isy *ISymbol) []*IRule {
	if g.tables == nil || isy == nil || isy.ID >= len(g.tables.byLHS) {
		return nil
	}
	return g.tables.byLHS[isy.ID]
}

// StartRule returns the augmented start rule S' ::= S, or nil if the start
// symbol is nulling.
func (g *Grammar) StartRule() *IRule {
	if g.tables == nil {
		return nil
	}
	return g.tables.startRule
}

// NullStartRule returns the nulling start rule S'[] ::= S[], or nil if the
// start symbol is not nullable. It is not part of the internal rule table.
func (g *Grammar) NullStartRule() *IRule {
	if g.tables == nil {
		return nil
	}
	return g.tables.nullStart
}

// StartIsNullable is true if the grammar accepts the empty input.
func (g *Grammar) StartIsNullable() bool {
	return g.frozen && g.Start().IsNullable()
}

// StartIsNulling is true if the grammar accepts only the empty input.
func (g *Grammar) StartIsNulling() bool {
	return g.frozen && g.Start().IsNulling()
}

// StartNulledEvents returns the nulled events for an empty parse.
func (g *Grammar) StartNulledEvents() *intset.Set {
	if g.tables == nil {
		return nil
	}
	return g.tables.startNull
}

// HasEvents is true if any symbol declares events.
func (g *Grammar) HasEvents() bool {
	return g.tables != nil && g.tables.eventful
}

// HasAssertions is true if any zero-width assertion is placed.
func (g *Grammar) HasAssertions() bool {
	return g.tables != nil && g.tables.assertions
}
