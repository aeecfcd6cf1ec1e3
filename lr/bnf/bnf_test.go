package bnf

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/earley"
	"github.com/npillmayer/thicket/lr/scanner"
	"github.com/npillmayer/thicket/lr/sppf"
	"github.com/npillmayer/thicket/lr/tree"
)

const expressions = `
// expressions
Sum     ::= Sum '+' Product | Product ;
Product ::= Product '*' Factor | Factor ;
Factor  ::= '(' Sum ')' | INT ;
`

func parse(t *testing.T, g *lr.Grammar, input string) (*tree.Node, bool) {
	p, err := earley.NewParser(g)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := p.Parse(scanner.GoTokenizer("test", strings.NewReader(input)))
	if err != nil || !ok {
		return nil, false
	}
	rec := p.Recognizer()
	f, err := sppf.Build(rec, rec.CurrentEarleme())
	if err != nil {
		t.Fatal(err)
	}
	root, err := tree.New(f).Next()
	if err != nil {
		t.Fatal(err)
	}
	return root, true
}

func TestExpressions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g, err := ReadString("expr", expressions)
	if err != nil {
		t.Fatal(err)
	}
	if g.Start().Name != "Sum" {
		t.Errorf("expected start symbol Sum, have %s", g.Start().Name)
	}
	if len(g.Rules()) != 6 {
		t.Errorf("expected 6 rules, have %d", len(g.Rules()))
	}
	if sym := g.Terminal(scanner.Int); sym == nil || sym.Name != "INT" {
		t.Errorf("expected INT to be bound to the integer token class")
	}
	if sym := g.Terminal('+'); sym == nil || sym.Name != "+" {
		t.Errorf("expected terminal + for char literal '+'")
	}
	root, ok := parse(t, g, "1 + 2 * 3")
	if !ok {
		t.Fatalf("expected input to be accepted")
	}
	if s := root.String(); s != "Sum(Sum(Product(Factor(INT))) + Product(Product(Factor(INT)) * Factor(INT)))" {
		t.Errorf("unexpected tree %s", s)
	}
	if _, ok = parse(t, g, "1 + * 3"); ok {
		t.Errorf("expected input to be rejected")
	}
}

func TestSequencesAndEpsilon(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	g, err := ReadString("lists", `
		Call ::= IDENT '(' Args ')' ;
		Args ::= Arg* %? ',' ;
		Arg  ::= IDENT Type ;
		Type ::= ':' IDENT | ;
	`)
	if err != nil {
		t.Fatal(err)
	}
	for input, expected := range map[string]string{
		"f()":           "Call(IDENT ( Args[] ))",
		"f(a, b: int,)": "Call(IDENT ( Args(Arg(IDENT Type[]) Arg(IDENT Type(: IDENT))) ))",
	} {
		root, ok := parse(t, g, input)
		if !ok {
			t.Errorf("expected %q to be accepted", input)
			continue
		}
		if s := root.String(); s != expected {
			t.Errorf("%q: unexpected tree %s", input, s)
		}
	}
	g, err = ReadString("empty", `S ::= '[' S ']' | ;`)
	if err != nil {
		t.Fatal(err)
	}
	if root, ok := parse(t, g, "[ [ ] ]"); !ok || root.String() != "S([ S([ S[] ]) ])" {
		t.Errorf("expected '[ [ ] ]' to be accepted as S([ S([ S[] ]) ])")
	}
	g, err = ReadString("proper", `Words ::= IDENT+ % ',' ;`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := parse(t, g, "a, b"); !ok {
		t.Errorf("expected 'a, b' to be accepted")
	}
	if _, ok := parse(t, g, "a, b,"); ok {
		t.Errorf("expected trailing separator to be rejected")
	}
}

func TestErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thicket.lr")
	defer teardown()
	//
	for _, text := range []string{
		"S ::= a",
		"S := a ;",
		"S ::= a* b ;",
		"",
	} {
		if _, err := ReadString("broken", text); !errors.Is(err, ErrSyntax) {
			t.Errorf("%q: expected syntax error, have %v", text, err)
		}
	}
	_, err := ReadString("seq", "S ::= A+ ; S ::= 'x' ; A ::= 'a' ;")
	if !errors.Is(err, lr.ErrSequenceLHS) {
		t.Errorf("expected ErrSequenceLHS, have %v", err)
	}
}
