package lr

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestBuilder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	r0 := b.LHS("S").N("A").T("a", 1).End()
	b.LHS("A").T("b", 2).End()
	b.LHS("A").Epsilon()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	tracer().SetTraceLevel(tracing.LevelDebug)
	g.Dump()
	if g.Start() != r0.LHS || g.Rule(0) != r0 {
		t.Errorf("expected start symbol S from first rule")
	}
	if g.Terminal(1) == nil || g.Terminal(1).Name != "a" || !g.Terminal(1).IsTerminal() {
		t.Errorf("expected terminal 'a' for token type 1")
	}
	if _, err := g.AddRule(r0.LHS, nil); !errors.Is(err, ErrFrozen) {
		t.Errorf("expected compiled grammar to be frozen, got %v", err)
	}
}

// S ::= A B
// A ::= a | ε
// B ::= ε
// C ::= c
func TestClassification(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	b.LHS("S").N("A").N("B").End()
	b.LHS("A").T("a", 1).End()
	b.LHS("A").Epsilon()
	b.LHS("B").Epsilon()
	rc := b.LHS("C").T("c", 2).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	A, B, C, S := g.SymbolByName("A"), g.SymbolByName("B"), g.SymbolByName("C"), g.SymbolByName("S")
	if !A.IsNullable() || A.IsNulling() {
		t.Errorf("expected A to be nullable, but not nulling")
	}
	if !B.IsNulling() || B.NonNulling() != nil || B.Nulling() == nil {
		t.Errorf("expected B to be nulling with a nulling alias only")
	}
	if C.IsAccessible() || rc.IsUsed() {
		t.Errorf("expected C to be inaccessible and its rule unused")
	}
	if !S.IsNullable() || !g.StartIsNullable() || g.StartIsNulling() {
		t.Errorf("expected S to be nullable, not nulling")
	}
	if g.NullStartRule() == nil || g.StartRule() == nil {
		t.Errorf("expected start rule and nulling start rule")
	}
	for _, r := range g.IRules() {
		nonnulling := 0
		for _, isy := range r.RHS {
			if !isy.Nulling {
				nonnulling++
			}
		}
		if nonnulling == 0 {
			t.Errorf("internal rule %v has no non-nulling symbol", r)
		}
	}
}

func TestGrammarErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	build := func(f func(b *GrammarBuilder)) error {
		b := NewGrammarBuilder("G")
		f(b)
		_, err := b.Grammar()
		return err
	}
	cases := []struct {
		name string
		f    func(b *GrammarBuilder)
		err  error
	}{
		{"no rules", func(b *GrammarBuilder) {}, ErrNoRules},
		{"start not LHS", func(b *GrammarBuilder) {
			b.LHS("S").T("a", 1).End()
			b.SetStart("a")
		}, ErrStartNotLHS},
		{"unproductive start", func(b *GrammarBuilder) {
			b.LHS("S").N("S").T("a", 1).End()
		}, ErrUnproductiveStart},
		{"cycle", func(b *GrammarBuilder) {
			b.LHS("S").N("A").End()
			b.LHS("A").N("S").End()
			b.LHS("A").T("a", 1).End()
		}, ErrCycle},
		{"cycle through nullable", func(b *GrammarBuilder) {
			b.LHS("S").N("S").N("E").End()
			b.LHS("S").T("a", 1).End()
			b.LHS("E").Epsilon()
			b.LHS("E").T("e", 2).End()
		}, ErrCycle},
		{"counted nullable", func(b *GrammarBuilder) {
			b.Sequence("S", "A", 1).End()
			b.LHS("A").T("a", 1).End()
			b.LHS("A").Epsilon()
		}, ErrCountedNullable},
		{"duplicate rule", func(b *GrammarBuilder) {
			b.LHS("S").T("a", 1).End()
			b.LHS("S").T("a", 1).End()
		}, ErrDuplicateRule},
		{"sequence minimum", func(b *GrammarBuilder) {
			b.Sequence("S", "a", 2).End()
		}, ErrSequenceMin},
		{"sequence LHS", func(b *GrammarBuilder) {
			b.Terminal("a", 1)
			b.Sequence("S", "a", 1).End()
			b.LHS("S").T("b", 2).End()
		}, ErrSequenceLHS},
		{"nulling terminal", func(b *GrammarBuilder) {
			b.LHS("S").T("x", 1).T("a", 2).End()
			b.LHS("x").Epsilon()
		}, ErrNullingTerminal},
	}
	for _, c := range cases {
		err := build(c.f)
		if !errors.Is(err, c.err) {
			t.Errorf("%s: expected error %v, got %v", c.name, c.err, err)
		}
	}
}

func TestFailedCompileLeavesGrammarUnchanged(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := NewGrammar("G")
	S, _ := g.Symbol("S")
	A, _ := g.Symbol("A")
	a, _ := g.AddTerminal("a", 1)
	g.AddRule(S, []*Symbol{A})
	g.AddRule(A, []*Symbol{A, a})
	if err := g.Compile(); !errors.Is(err, ErrUnproductiveStart) {
		t.Fatalf("expected unproductive start, got %v", err)
	}
	if g.IsCompiled() || g.IRules() != nil || S.IsProductive() {
		t.Errorf("failed compile must not modify the grammar")
	}
	if _, err := g.AddRule(A, []*Symbol{a}); err != nil {
		t.Fatal(err)
	}
	if err := g.Compile(); err != nil {
		t.Errorf("expected recompilation to succeed, got %v", err)
	}
}

func TestForeignSymbols(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g, other := NewGrammar("G"), NewGrammar("H")
	S, _ := g.Symbol("S")
	a, _ := g.AddTerminal("a", 1)
	x, _ := other.AddTerminal("x", 1)
	if _, err := g.AddRule(S, []*Symbol{a, x}); !errors.Is(err, ErrNoSuchSymbol) {
		t.Errorf("expected symbol of other grammar to be refused, got %v", err)
	}
	if _, err := g.AddRule(x, []*Symbol{a}); !errors.Is(err, ErrNoSuchSymbol) {
		t.Errorf("expected LHS of other grammar to be refused, got %v", err)
	}
	if _, err := g.AddRule(S, []*Symbol{a, nil}); !errors.Is(err, ErrNoSuchSymbol) {
		t.Errorf("expected nil symbol to be refused, got %v", err)
	}
	if _, err := g.AddRule(S, []*Symbol{a}); err != nil {
		t.Errorf("expected rule to be accepted, got %v", err)
	}
}

// S ::= A A A A A A
// A ::= a | ε
func TestFactoringBound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	rb := b.LHS("S")
	for i := 0; i < 6; i++ {
		rb.N("A")
	}
	r := rb.End()
	b.LHS("A").T("a", 1).End()
	b.LHS("A").Epsilon()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	g.Dump()
	count := 0
	for _, ir := range g.IRules() {
		if ir.Source == r {
			count++
			empty := true
			for _, isy := range ir.RHS {
				if !isy.Nulling {
					empty = false
				}
			}
			if empty {
				t.Errorf("internal rule %v derives the empty string only", ir)
			}
		}
	}
	if count != 15 { // 4 pieces of 1 symbol plus a remainder, 1 piece of 2 symbols
		t.Errorf("expected S to be factored into 15 rules, have %d", count)
	}
	if count > 4*len(r.RHS()) {
		t.Errorf("factoring exceeds linear bound: %d rules", count)
	}
}

func TestSequenceRewrite(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	for _, proper := range []bool{false, true} {
		b := NewGrammarBuilder("G")
		b.Terminal("a", 1)
		b.Terminal(",", 2)
		sb := b.Sequence("L", "a", 0).Separator(",")
		if proper {
			sb.Proper()
		}
		r := sb.End()
		g, err := b.Grammar()
		if err != nil {
			t.Fatal(err)
		}
		expected := 4
		if proper {
			expected = 3
		}
		count := 0
		for _, ir := range g.IRules() {
			if ir.Source == r {
				count++
			}
		}
		if count != expected {
			t.Errorf("proper=%v: expected %d internal rules, have %d", proper, expected, count)
		}
		if !g.StartIsNullable() {
			t.Errorf("expected L with minimum 0 to be nullable")
		}
	}
}

// S ::= a S | a
func TestRightRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	rr := b.LHS("S").T("a", 1).N("S").End()
	b.LHS("S").T("a", 1).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	leo := 0
	for _, ir := range g.IRules() {
		if ir.Source == rr && !ir.RightRecursive {
			t.Errorf("expected %v to be right-recursive", ir)
		}
		if ir.Kind == StartRule && ir.RightRecursive {
			t.Errorf("start rule must not be right-recursive")
		}
	}
	for _, ahm := range g.AHMs() {
		if ahm.LeoEligible {
			leo++
			if ahm.Rule.Source != rr || ahm.Postdot.Source.Name != "S" {
				t.Errorf("unexpected Leo base %v", ahm)
			}
		}
	}
	if leo != 1 {
		t.Errorf("expected exactly 1 Leo-eligible template, have %d", leo)
	}
}

// Sum     ::= Sum '+' Product | Product
// Product ::= Product '*' Factor | Factor
// Factor  ::= number
func TestPredictions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := exprGrammar(t)
	start := g.StartRule().First()
	if start.Predicted.Len() != 5 { // all but the start rule itself
		t.Errorf("expected start item to predict 5 rules, predicts %v", start.Predicted)
	}
	for _, ahm := range g.AHMs() {
		if ahm.Postdot != nil && ahm.Postdot.Terminal && !ahm.Predicted.IsEmpty() {
			t.Errorf("terminal postdot must not predict: %v", ahm)
		}
		if next := ahm.Next(); next != nil && next.ID != ahm.ID+1 {
			t.Errorf("expected consecutive template ids")
		}
	}
}

func TestFingerprint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	f1, err := exprGrammar(t).Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	f2, _ := exprGrammar(t).Fingerprint()
	if f1 != f2 {
		t.Errorf("expected identical grammars to have identical fingerprints")
	}
	b := NewGrammarBuilder("Expressions")
	b.LHS("Sum").T("number", 3).End()
	g, _ := b.Grammar()
	if f3, _ := g.Fingerprint(); f3 == f1 {
		t.Errorf("expected different grammars to have different fingerprints")
	}
}

// S ::= A b
// A ::= ε
func TestEventSets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	b.LHS("S").N("A").T("b", 1).End()
	b.LHS("A").Epsilon()
	b.NulledEvent("A").CompletionEvent("S").PredictionEvent("S")
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	A, S := g.SymbolByName("A"), g.SymbolByName("S")
	found := false
	for _, ahm := range g.AHMs() {
		if ahm.Rule.Source == g.Rule(0) && ahm.IsFirst() {
			found = ahm.NulledEvents.Contains(A.ID)
		}
		if ahm.Rule.Source == g.Rule(0) && ahm.IsCompletion() && !ahm.CompletionEvents.Contains(S.ID) {
			t.Errorf("expected completion event for S at %v", ahm)
		}
	}
	if !found {
		t.Errorf("expected nulled event for A at the first template of S ::= A b")
	}
	if !g.StartRule().First().PredictionEvents.Contains(S.ID) {
		t.Errorf("expected prediction event for S at the start template")
	}
}

func exprGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("Expressions")
	b.LHS("Sum").N("Sum").T("+", '+').N("Product").End()
	b.LHS("Sum").N("Product").End()
	b.LHS("Product").N("Product").T("*", '*').N("Factor").End()
	b.LHS("Product").N("Factor").End()
	b.LHS("Factor").T("number", 3).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}
