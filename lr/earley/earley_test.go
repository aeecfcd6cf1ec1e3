package earley

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/scanner"
)

// We use a small unambiguous expression grammar for testing.
// It is slightly adapted from
//
//      http://loup-vaillant.fr/tutorials/earley-parsing/recogniser
//
// This way we will be able to follow the examples there.
//
//     Sum     = Sum     '+' Product
//             | Product
//     Product = Product '*' Factor
//             | Factor
//     Factor  = '(' Sum ')'
//             | number
//
// 'number' is a terminal symbol recognizing Go integers.
//
func makeGrammar(t *testing.T) *lr.Grammar {
	level := tracing.Select("thicket.lr").GetTraceLevel()
	tracing.Select("thicket.lr").SetTraceLevel(tracing.LevelInfo)
	defer tracing.Select("thicket.lr").SetTraceLevel(level)
	b := lr.NewGrammarBuilder("Expressions")
	b.LHS("Sum").N("Sum").T("+", '+').N("Product").End()
	b.LHS("Sum").N("Product").End()
	b.LHS("Product").N("Product").T("*", '*').N("Factor").End()
	b.LHS("Product").N("Factor").End()
	b.LHS("Factor").T("(", '(').N("Sum").T(")", ')').End()
	b.LHS("Factor").T("number", scanner.Int).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func makeParser(t *testing.T, test string, input string) (*Parser, scanner.Tokenizer) {
	reader := strings.NewReader(input)
	scanner := scanner.GoTokenizer(fmt.Sprintf("test '%s'", test), reader)
	parser, err := NewParser(makeGrammar(t))
	if err != nil {
		t.Fatal(err)
	}
	return parser, scanner
}

// build compiles a grammar from a builder function.
func build(t *testing.T, name string, rules func(b *lr.GrammarBuilder)) *lr.Grammar {
	b := lr.NewGrammarBuilder(name)
	rules(b)
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("grammar %s: %v", name, err)
	}
	return g
}

func start(t *testing.T, g *lr.Grammar, opts ...Option) *Recognizer {
	rec, err := NewRecognizer(g, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err = rec.Start(); err != nil {
		t.Fatal(err)
	}
	return rec
}

// feed reads every rune of input as a token of length 1, using the rune as
// token type.
func feed(t *testing.T, rec *Recognizer, input string) {
	for _, r := range input {
		if err := rec.AlternativeByType(int(r), r, 1); err != nil {
			t.Fatalf("token %q at %d: %v", r, rec.CurrentEarleme(), err)
		}
		if _, err := rec.Advance(); err != nil {
			t.Fatalf("advance at %d: %v", rec.CurrentEarleme(), err)
		}
	}
}

// aSb is S ::= a S b | ε
func aSb(b *lr.GrammarBuilder) {
	b.LHS("S").T("a", 'a').N("S").T("b", 'b').End()
	b.LHS("S").Epsilon()
}

// rightRec is S ::= a S | a
func rightRec(b *lr.GrammarBuilder) {
	b.LHS("S").T("a", 'a').N("S").End()
	b.LHS("S").T("a", 'a').End()
}

var inputStrings = []string{
	"1", "1+2", "1*2", "1+2*3", "1*(2+3)", "1+2+3+4", "1*2+3*4",
}

// --- the Tests -------------------------------------------------------------

func TestParser1(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	for n, input := range inputStrings {
		tracer().Infof("=== '%s' ========================", input)
		parser, scanner := makeParser(t, "Parser1", input)
		accept, err := parser.Parse(scanner)
		if err != nil {
			t.Error(err)
		}
		if !accept {
			t.Errorf("Valid input string #%d not accepted: '%s'", n+1, input)
		}
	}
}

func TestParserRejects(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	parser, scanner := makeParser(t, "incomplete", "1+")
	accept, err := parser.Parse(scanner)
	if err != nil || accept {
		t.Errorf("expected '1+' to be not accepted without error, is %v, %v", accept, err)
	}
	parser, scanner = makeParser(t, "unexpected", "1)")
	accept, err = parser.Parse(scanner)
	if accept || !errors.Is(err, ErrUnexpectedToken) {
		t.Errorf("expected '1)' to fail with unexpected token, got %v", err)
	}
	if tok := parser.TokenAt(0); tok == nil || tok.Lexeme() != "1" {
		t.Errorf("expected token '1' at earleme 0, got %v", tok)
	}
	if parser.TokenAt(1) != nil {
		t.Errorf("expected no token to be kept for ')'")
	}
}

func TestExpected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	rec := start(t, makeGrammar(t))
	var names []string
	for _, sym := range rec.ExpectedTerminals() {
		names = append(names, sym.Name)
	}
	if strings.Join(names, " ") != "( number" && strings.Join(names, " ") != "number (" {
		t.Errorf("expected '(' and number at start, got %v", names)
	}
	if rec.IsExpected(rec.Grammar().SymbolByName("+")) {
		t.Errorf("'+' must not be expected at start")
	}
}

func TestAABB(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := build(t, "aSb", aSb)
	rec := start(t, g)
	if !rec.Accepts(0) {
		t.Errorf("empty input should be accepted by a nullable start symbol")
	}
	feed(t, rec, "aab")
	if rec.IsExhausted() {
		t.Fatalf("recognizer exhausted after 3 tokens")
	}
	if rec.Accepts(3) {
		t.Errorf("'aab' must not be accepted")
	}
	feed(t, rec, "b")
	if !rec.IsExhausted() {
		t.Errorf("recognizer should be exhausted after 4 tokens")
	}
	if rec.Phase() != AfterInput {
		t.Errorf("expected phase after-input, is %d", rec.Phase())
	}
	evs := rec.Events()
	if len(evs) != 1 || evs[0].Type != Exhausted {
		t.Errorf("expected exhaustion event, have %v", evs)
	}
	if !rec.Accepts(4) {
		t.Errorf("'aabb' not accepted")
	}
	if err := rec.AlternativeByType('a', nil, 1); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected input after exhaustion to fail, got %v", err)
	}
}

func TestUnexpectedTokenLeavesStateUnchanged(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := build(t, "aSb", aSb)
	rec := start(t, g)
	items := rec.ItemCount()
	err := rec.Alternative(g.SymbolByName("b"), nil, 1)
	if !errors.Is(err, ErrUnexpectedToken) {
		t.Fatalf("expected unexpected token, got %v", err)
	}
	if rec.ItemCount() != items || len(rec.pending) != 0 || rec.FurthestEarleme() != 0 {
		t.Errorf("rejected token changed the recognizer")
	}
	if err = rec.Alternative(g.SymbolByName("a"), nil, 1); err != nil {
		t.Errorf("expected 'a' to be accepted after rejection of 'b', got %v", err)
	}
	if err = rec.Alternative(g.SymbolByName("a"), nil, 1); !errors.Is(err, ErrDuplicateToken) {
		t.Errorf("expected duplicate token error, got %v", err)
	}
	if err = rec.Alternative(g.SymbolByName("S"), nil, 1); !errors.Is(err, ErrNotATerminal) {
		t.Errorf("expected S to be rejected as a non-terminal, got %v", err)
	}
	if err = rec.Alternative(g.SymbolByName("a"), nil, 0); !errors.Is(err, ErrTokenLength) {
		t.Errorf("expected zero length to be rejected, got %v", err)
	}
}

func TestUsageErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := build(t, "aSb", aSb)
	rec, err := NewRecognizer(g, TokenLengthLimit(1))
	if err != nil {
		t.Fatal(err)
	}
	if err = rec.AlternativeByType('a', nil, 1); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	if _, err = rec.Advance(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	rec.Start()
	if err = rec.Start(); !errors.Is(err, ErrStarted) {
		t.Errorf("expected ErrStarted, got %v", err)
	}
	if err = rec.AlternativeByType('a', nil, 2); !errors.Is(err, ErrTokenTooLong) {
		t.Errorf("expected ErrTokenTooLong, got %v", err)
	}
	if _, err = rec.EarleySet(5); !errors.Is(err, ErrNoSuchSet) {
		t.Errorf("expected ErrNoSuchSet, got %v", err)
	}
	if _, err = NewRecognizer(lr.NewGrammar("raw")); !errors.Is(err, lr.ErrNotCompiled) {
		t.Errorf("expected recognizer for uncompiled grammar to fail, got %v", err)
	}
}

func TestLeoRightRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	const n = 50
	input := strings.Repeat("a", n)
	g := build(t, "rightrec", rightRec)
	tracer().SetTraceLevel(tracing.LevelInfo)
	leo := start(t, g, UseLeo(true))
	feed(t, leo, input)
	plain := start(t, g, UseLeo(false))
	feed(t, plain, input)
	if !leo.Accepts(n) || !plain.Accepts(n) {
		t.Fatalf("input of %d a's not accepted", n)
	}
	t.Logf("%d items with Leo, %d items without", leo.ItemCount(), plain.ItemCount())
	if leo.ItemCount() > 6*n+10 {
		t.Errorf("expected a linear number of items with Leo, have %d", leo.ItemCount())
	}
	if plain.ItemCount() < n*n/2 {
		t.Errorf("expected a quadratic number of items without Leo, have %d", plain.ItemCount())
	}
	S := leo.LatestSet()
	if len(S.LeoItems()) != 1 {
		t.Fatalf("expected 1 Leo item in last set, have %d", len(S.LeoItems()))
	}
	L := S.LeoItems()[0]
	if L.Origin().Earleme() != 0 || !L.IsValid() || L.Predecessor() == nil {
		t.Errorf("expected Leo item to reach back to earleme 0, is %v", L)
	}
}

// traceEvents feeds input and returns the events of every earleme,
// starting with the events of Start.
func traceEvents(t *testing.T, g *lr.Grammar, input string, opts ...Option) ([]string, *Recognizer) {
	rec := start(t, g, opts...)
	trace := []string{fmt.Sprintf("0:%v", rec.Events())}
	for _, r := range input {
		if err := rec.AlternativeByType(int(r), r, 1); err != nil {
			t.Fatalf("token %q at %d: %v", r, rec.CurrentEarleme(), err)
		}
		n, err := rec.Advance()
		if err != nil {
			t.Fatalf("advance at %d: %v", rec.CurrentEarleme(), err)
		}
		trace = append(trace, fmt.Sprintf("%d:%v", n, rec.Events()))
	}
	return trace, rec
}

// U ::= c T Y ends in a nulling symbol, so completing T completes U
// through a Leo item, skipping the item which nulls Y.
func TestLeoNulledEvents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := build(t, "leonulled", func(b *lr.GrammarBuilder) {
		b.LHS("S").T("a", 'a').N("T").End()
		b.LHS("T").T("b", 'b').N("U").End()
		b.LHS("T").T("b", 'b').End()
		b.LHS("U").T("c", 'c').N("T").N("Y").End()
		b.LHS("Y").Epsilon()
		b.NulledEvent("Y").CompletionEvent("U")
	})
	const input = "abcbcb"
	leo, lrec := traceEvents(t, g, input, UseLeo(true))
	plain, prec := traceEvents(t, g, input, UseLeo(false))
	if !lrec.Accepts(6) || !prec.Accepts(6) {
		t.Fatalf("%q not accepted", input)
	}
	if lrec.ItemCount() >= prec.ItemCount() {
		t.Errorf("expected Leo items to save items, have %d vs. %d", lrec.ItemCount(), prec.ItemCount())
	}
	if len(leo) != len(plain) {
		t.Fatalf("traces differ in length: %v vs. %v", leo, plain)
	}
	for i := range plain {
		if leo[i] != plain[i] {
			t.Errorf("events at earleme %d differ: Leo %s, plain %s", i, leo[i], plain[i])
		}
	}
	for _, k := range []int{4, 6} {
		if !strings.Contains(plain[k], fmt.Sprintf("Y nulled@%d", k)) {
			t.Errorf("expected Y to be nulled at %d, have %s", k, plain[k])
		}
		if !strings.Contains(leo[k], fmt.Sprintf("U completed@%d", k)) {
			t.Errorf("expected U to be completed at %d, have %s", k, leo[k])
		}
	}
}

// S ::= a S a | a is not right-recursive, so Leo items do not help: the
// number of items grows quadratically. We check acceptance only.
func TestOddPalindromes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	const n = 50
	g := build(t, "palindromes", func(b *lr.GrammarBuilder) {
		b.LHS("S").T("a", 'a').N("S").T("a", 'a').End()
		b.LHS("S").T("a", 'a').End()
	})
	tracer().SetTraceLevel(tracing.LevelInfo)
	rec := start(t, g)
	feed(t, rec, strings.Repeat("a", n))
	for k := uint64(0); k <= n; k++ {
		if rec.Accepts(k) != (k%2 == 1) {
			t.Errorf("acceptance of %d a's should be %v", k, k%2 == 1)
		}
	}
	if rec.IsExhausted() {
		t.Errorf("recognizer for palindromes should never be exhausted")
	}
	last := len(rec.LatestSet().Items())
	t.Logf("%d items for %d a's, %d in the last set", rec.ItemCount(), n, last)
	if rec.ItemCount() < n*n/4 {
		t.Errorf("expected a quadratic number of items, have %d", rec.ItemCount())
	}
}

func TestMultiEarlemeTokens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := build(t, "xy", func(b *lr.GrammarBuilder) {
		b.LHS("S").N("A").N("B").End()
		b.LHS("A").T("x", 'x').End()
		b.LHS("B").T("y", 'y').End()
	})
	rec := start(t, g)
	if err := rec.AlternativeByType('x', "xx", 2); err != nil {
		t.Fatal(err)
	}
	if rec.FurthestEarleme() != 2 {
		t.Errorf("expected furthest earleme 2, is %d", rec.FurthestEarleme())
	}
	rec.Advance()
	if rec.IsExhausted() || rec.SetAt(1) != nil {
		t.Fatalf("expected no set at earleme 1 and a pending token")
	}
	rec.Advance()
	if rec.SetAt(2) == nil {
		t.Fatalf("expected token to be scanned at earleme 2")
	}
	feed(t, rec, "y")
	if !rec.Accepts(3) {
		t.Errorf("expected 'xy' to be accepted at earleme 3")
	}
	if rec.SetCount() != 3 {
		t.Errorf("expected 3 earley sets, have %d", rec.SetCount())
	}
	item := rec.StartItem(3)
	if item == nil || item.Span().Len() != 3 {
		t.Errorf("expected start item spanning 3 earlemes, is %v", item)
	}
}

func TestEvents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := build(t, "events", func(b *lr.GrammarBuilder) {
		b.LHS("S").N("A").N("B").End()
		b.LHS("A").T("a", 'a').End()
		b.LHS("B").T("b", 'b').End()
		b.LHS("B").Epsilon()
		b.CompletionEvent("A").PredictionEvent("A").NulledEvent("B")
	})
	rec := start(t, g)
	evs := rec.Events()
	if len(evs) != 1 || evs[0].Type != SymbolPredicted || evs[0].Symbol.Name != "A" {
		t.Errorf("expected prediction of A at start, have %v", evs)
	}
	if err := rec.AlternativeByType('a', nil, 1); err != nil {
		t.Fatal(err)
	}
	n, err := rec.Advance()
	if err != nil {
		t.Fatal(err)
	}
	evs = rec.Events()
	if n != 2 || len(evs) != 2 {
		t.Fatalf("expected 2 events after 'a', have %v", evs)
	}
	if evs[0].Type != SymbolCompleted || evs[0].Symbol.Name != "A" || evs[0].Earleme != 1 {
		t.Errorf("expected completion of A at 1, have %v", evs[0])
	}
	if evs[1].Type != SymbolNulled || evs[1].Symbol.Name != "B" {
		t.Errorf("expected B to be nulled, have %v", evs[1])
	}
	//
	rec, _ = NewRecognizer(g)
	if err = rec.ActivateEvent(g.SymbolByName("A"), lr.CompletionEvent, false); err != nil {
		t.Fatal(err)
	}
	if err = rec.ActivateEvent(g.SymbolByName("B"), lr.CompletionEvent, true); !errors.Is(err, ErrNoSuchEvent) {
		t.Errorf("expected undeclared event to be refused, got %v", err)
	}
	rec.Start()
	feed(t, rec, "a")
	for _, ev := range rec.Events() {
		if ev.Type == SymbolCompleted {
			t.Errorf("deactivated event triggered: %v", ev)
		}
	}
}

func TestAssertions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	var zwa int
	g := build(t, "zwa", func(b *lr.GrammarBuilder) {
		b.LHS("S").N("X").End()
		b.LHS("S").N("Y").End()
		b.LHS("X").T("a", 'a').End()
		zwa = b.Assertion(true)
		y := b.LHS("Y").T("a", 'a').T("b", 'b').End()
		b.PlaceAssertion(zwa, y, 0)
	})
	bSym := g.SymbolByName("b")
	rec := start(t, g)
	feed(t, rec, "a")
	if !rec.IsExpected(bSym) {
		t.Errorf("expected 'b' after 'a' while assertion holds")
	}
	rec, _ = NewRecognizer(g)
	if err := rec.SetAssertion(zwa, false); err != nil {
		t.Fatal(err)
	}
	if err := rec.SetAssertion(zwa+1, false); !errors.Is(err, lr.ErrNoSuchAssertion) {
		t.Errorf("expected unknown assertion to be refused, got %v", err)
	}
	rec.Start()
	feed(t, rec, "a")
	if rec.IsExpected(bSym) {
		t.Errorf("'b' must not be expected with the assertion switched off")
	}
	if !rec.Accepts(1) || !rec.IsExhausted() {
		t.Errorf("expected 'a' to be accepted and the recognizer exhausted")
	}
}

func TestRejectAndClean(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := build(t, "ambiguous", func(b *lr.GrammarBuilder) {
		b.LHS("S").N("A").End()
		b.LHS("S").N("B").End()
		b.LHS("A").T("a", 'a').End()
		b.LHS("B").T("a", 'a').End()
	})
	rec := start(t, g)
	feed(t, rec, "a")
	if !rec.Accepts(1) {
		t.Fatalf("'a' not accepted")
	}
	if rec.Clean() != 0 {
		t.Errorf("cleaning a consistent recognizer should be a no-op")
	}
	completion := func(lhs string) *Item {
		for _, item := range rec.LatestSet().Items() {
			r := item.AHM().Rule
			if item.AHM().IsCompletion() && !r.LHS.Virtual && r.LHS.Source != nil && r.LHS.Source.Name == lhs {
				return item
			}
		}
		t.Fatalf("no completion for %s", lhs)
		return nil
	}
	if err := rec.RejectItem(1, completion("A").Ordinal()); err != nil {
		t.Fatal(err)
	}
	if rec.IsConsistent() {
		t.Errorf("expected recognizer to be inconsistent after rejection")
	}
	if err := rec.AlternativeByType('a', nil, 1); !errors.Is(err, ErrInconsistent) {
		t.Errorf("expected ErrInconsistent, got %v", err)
	}
	if n := rec.Clean(); n != 2 {
		t.Errorf("expected 2 items to become inactive, have %d", n)
	}
	if !rec.IsConsistent() || !rec.Accepts(1) {
		t.Errorf("expected 'a' still to be accepted by way of B")
	}
	if rec.Clean() != 0 {
		t.Errorf("expected second Clean to be a no-op")
	}
	rec.RejectItem(1, completion("B").Ordinal())
	if n := rec.Clean(); n != 3 {
		t.Errorf("expected 3 items to become inactive, have %d", n)
	}
	if rec.Accepts(1) {
		t.Errorf("expected 'a' to be rejected after rejecting both readings")
	}
	if err := rec.RejectItem(7, 0); !errors.Is(err, ErrNoSuchSet) {
		t.Errorf("expected ErrNoSuchSet, got %v", err)
	}
	if err := rec.RejectItem(1, 99); !errors.Is(err, ErrNoSuchItem) {
		t.Errorf("expected ErrNoSuchItem, got %v", err)
	}
}

func TestProgress(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g := makeGrammar(t)
	rec := start(t, g)
	rec.AlternativeByType(scanner.Int, "1", 1)
	rec.Advance()
	feed(t, rec, "+")
	reports, err := rec.Progress(2)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, rep := range reports {
		t.Logf("%v", rep)
		if rep.Rule.LHS.Name == "Sum" && rep.Dot == 2 && rep.Origin == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected progress report for Sum ::= Sum + • Product")
	}
	rec.DumpSet(2)
}
