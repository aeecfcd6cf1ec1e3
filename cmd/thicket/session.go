package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/bnf"
	"github.com/npillmayer/thicket/lr/earley"
	"github.com/npillmayer/thicket/lr/scanner"
	"github.com/npillmayer/thicket/lr/scanner/lexmach"
	"github.com/npillmayer/thicket/lr/sppf"
	"github.com/npillmayer/thicket/lr/tree"
)

func loadGrammar(path string) (*lr.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open grammar file %s: %w", path, err)
	}
	defer f.Close()
	g, err := bnf.Read(path, f)
	if err != nil {
		return nil, err
	}
	tracer().Infof("grammar %s has %d rules", path, len(g.Rules()))
	return g, nil
}

// session holds everything needed to parse inputs for a grammar.
type session struct {
	g      *lr.Grammar
	lexer  string
	lm     *lexmach.LMAdapter
	ranked bool
	leo    bool
	last   *earley.Recognizer
}

func newSession(g *lr.Grammar, lexer string, ranked, leo bool) *session {
	return &session{g: g, lexer: lexer, ranked: ranked, leo: leo}
}

func (s *session) tokenizer(input string) (scanner.Tokenizer, error) {
	switch s.lexer {
	case "go":
		return scanner.GoTokenizer("input", strings.NewReader(input)), nil
	case "lexmachine":
		if s.lm == nil {
			var tokvals []int
			for _, sym := range s.g.Symbols() {
				if sym.IsTerminal() {
					tokvals = append(tokvals, sym.Value)
				}
			}
			lm, err := lexmach.GoLike(tokvals)
			if err != nil {
				return nil, err
			}
			s.lm = lm
		}
		return s.lm.Scanner(input)
	}
	return nil, fmt.Errorf("unknown lexer %q", s.lexer)
}

// result is the outcome of parsing an input.
type result struct {
	forest *sppf.Forest
	trees  *tree.Iterator
	count  uint64
	tokens func(uint64) string
}

func (s *session) parse(input string) (*result, error) {
	scan, err := s.tokenizer(input)
	if err != nil {
		return nil, err
	}
	p, err := earley.NewParser(s.g, earley.WithRecognizer(earley.UseLeo(s.leo)))
	if err != nil {
		return nil, err
	}
	ok, err := p.Parse(scan)
	s.last = p.Recognizer()
	if errors.Is(err, earley.ErrUnexpectedToken) {
		return nil, fmt.Errorf("%w; expected one of %s", err, s.expected())
	} else if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("input is incomplete, expected one of %s", s.expected())
	}
	rec := p.Recognizer()
	f, err := sppf.Build(rec, rec.CurrentEarleme())
	if err != nil {
		return nil, err
	}
	var opts []tree.Option
	if s.ranked {
		opts = append(opts, tree.Ranked())
	}
	it := tree.New(f, opts...)
	res := &result{forest: f, trees: it, count: it.Count()}
	res.tokens = func(pos uint64) string {
		if tok := p.TokenAt(pos); tok != nil {
			return tok.Lexeme()
		}
		return ""
	}
	return res, nil
}

// expected lists the terminals expected after the latest input.
func (s *session) expected() string {
	if s.last == nil {
		return "nothing"
	}
	var names []string
	for _, sym := range s.last.ExpectedTerminals() {
		names = append(names, sym.Name)
	}
	if len(names) == 0 {
		return "nothing"
	}
	return strings.Join(names, ", ")
}

// render prints at most max parse trees.
func (res *result) render(max int) error {
	for i := 0; i < max; i++ {
		root, err := res.trees.Next()
		if err == tree.ErrExhausted {
			return nil
		} else if err != nil {
			return err
		}
		if res.count > 1 {
			pterm.Println(fmt.Sprintf("tree #%d", i+1))
		}
		ll := leveled(root, res.tokens, pterm.LeveledList{}, 0)
		if err = pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(ll)).Render(); err != nil {
			return err
		}
	}
	return nil
}

func leveled(n *tree.Node, lexeme func(uint64) string, ll pterm.LeveledList, level int) pterm.LeveledList {
	var text string
	switch {
	case n.IsToken():
		text = fmt.Sprintf("%s %q", n.Symbol.Name, lexeme(n.Span.From()))
	case n.IsNull():
		text = fmt.Sprintf("%s ε", n.Symbol.Name)
	default:
		text = fmt.Sprintf("%s %v", n.Symbol.Name, n.Span)
	}
	ll = append(ll, pterm.LeveledListItem{Level: level, Text: text})
	for _, ch := range n.Children {
		ll = leveled(ch, lexeme, ll, level+1)
	}
	return ll
}
