package bnf

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/npillmayer/thicket"
	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/earley"
	"github.com/npillmayer/thicket/lr/scanner"
	"github.com/npillmayer/thicket/lr/sppf"
	"github.com/npillmayer/thicket/lr/tree"
)

// ErrSyntax is returned for grammar text not conforming to the notation.
var ErrSyntax = errors.New("syntax error in grammar text")

// Token classes of the default tokenizer, by name.
var classes = map[string]int{
	"IDENT":  scanner.Ident,
	"INT":    scanner.Int,
	"FLOAT":  scanner.Float,
	"STRING": scanner.String,
	"CHAR":   scanner.Char,
}

// --- Grammar of the notation -----------------------------------------------

type meta struct {
	g                             *lr.Grammar
	rule, bnfAlt, seqAlt, sepAlt  *lr.Rule
	optAlt, firstAlt, moreAlts    *lr.Rule
	identSym, charSym, star, plus *lr.Rule
	grammar, symbols              *lr.Rule
}

var (
	metaOnce sync.Once
	metaG    *meta
	metaErr  error
)

func metaGrammar() (*meta, error) {
	metaOnce.Do(func() {
		m := &meta{}
		b := lr.NewGrammarBuilder("BNF")
		b.Terminal("ident", scanner.Ident)
		b.Terminal("char", scanner.Char)
		m.grammar = b.Sequence("Grammar", "Rule", 1).End()
		m.rule = b.LHS("Rule").T("ident", scanner.Ident).T(":", ':').T(":", ':').T("=", '=').
			N("Alts").T(";", ';').End()
		m.firstAlt = b.LHS("Alts").N("Alt").End()
		m.moreAlts = b.LHS("Alts").N("Alts").T("|", '|').N("Alt").End()
		m.bnfAlt = b.LHS("Alt").N("Symbols").End()
		m.seqAlt = b.LHS("Alt").N("Symbol").N("Quant").End()
		m.sepAlt = b.LHS("Alt").N("Symbol").N("Quant").T("%", '%').N("Symbol").End()
		m.optAlt = b.LHS("Alt").N("Symbol").N("Quant").T("%", '%').T("?", '?').N("Symbol").End()
		m.symbols = b.Sequence("Symbols", "Symbol", 0).End()
		m.star = b.LHS("Quant").T("*", '*').End()
		m.plus = b.LHS("Quant").T("+", '+').End()
		m.identSym = b.LHS("Symbol").T("ident", scanner.Ident).End()
		m.charSym = b.LHS("Symbol").T("char", scanner.Char).End()
		m.g, metaErr = b.Grammar()
		metaG = m
	})
	return metaG, metaErr
}

// --- Reading grammars ------------------------------------------------------

// symref is a symbol as written in the grammar text.
type symref struct {
	name   string
	term   bool
	tokval int
}

type alt struct {
	rhs    []symref
	seq    bool
	min    int
	sep    *symref
	proper bool
}

type ruledef struct {
	lhs  string
	alts []alt
}

// Read reads a grammar from r and compiles it. name is used as the name of
// the grammar and in error messages.
func Read(name string, r io.Reader) (*lr.Grammar, error) {
	m, err := metaGrammar()
	if err != nil {
		return nil, err
	}
	p, err := earley.NewParser(m.g)
	if err != nil {
		return nil, err
	}
	ok, err := p.Parse(scanner.GoTokenizer(name, r))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, name, err)
	}
	rec := p.Recognizer()
	if !ok {
		return nil, fmt.Errorf("%w: %s: premature end of grammar text", ErrSyntax, name)
	}
	f, err := sppf.Build(rec, rec.CurrentEarleme())
	if err != nil {
		return nil, err
	}
	root, err := tree.New(f).Next()
	if err != nil {
		return nil, err
	}
	var evalErr error
	defs := tree.Evaluate(root, m.evaluator(&evalErr)).([]ruledef)
	if evalErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, name, evalErr)
	}
	tracer().Debugf("read %d rules from %s", len(defs), name)
	return build(name, defs)
}

// ReadString reads a grammar from a string.
func ReadString(name string, text string) (*lr.Grammar, error) {
	return Read(name, strings.NewReader(text))
}

func (m *meta) evaluator(errp *error) tree.Evaluator {
	return tree.EvaluatorFuncs{
		TokenFunc: func(tok *earley.Token) interface{} {
			return tok.Value.(thicket.Token).Lexeme()
		},
		NullFunc: func(sym *lr.Symbol, pos uint64) interface{} {
			return nil
		},
		RuleFunc: func(r *lr.Rule, span thicket.Span, ch []interface{}) interface{} {
			switch r {
			case m.grammar:
				defs := make([]ruledef, len(ch))
				for i, c := range ch {
					defs[i] = c.(ruledef)
				}
				return defs
			case m.rule:
				return ruledef{lhs: ch[0].(string), alts: altsOf(ch[4])}
			case m.firstAlt:
				return []alt{altOf(ch[0])}
			case m.moreAlts:
				return append(altsOf(ch[0]), altOf(ch[2]))
			case m.bnfAlt:
				rhs, _ := ch[0].([]symref) // nil for nulled symbol list
				return alt{rhs: rhs}
			case m.seqAlt, m.sepAlt, m.optAlt:
				a := alt{rhs: []symref{ch[0].(symref)}, seq: true, min: ch[1].(int)}
				if r != m.seqAlt {
					sep := ch[len(ch)-1].(symref)
					a.sep, a.proper = &sep, r == m.sepAlt
				}
				return a
			case m.symbols:
				syms := make([]symref, len(ch))
				for i, c := range ch {
					syms[i] = c.(symref)
				}
				return syms
			case m.star:
				return 0
			case m.plus:
				return 1
			case m.identSym:
				name := ch[0].(string)
				tokval, ok := classes[name]
				return symref{name: name, term: ok, tokval: tokval}
			case m.charSym:
				lit := ch[0].(string)
				s, err := strconv.Unquote(lit)
				if err != nil || len([]rune(s)) != 1 {
					if *errp == nil {
						*errp = fmt.Errorf("illegal char literal %s at token %d", lit, span.From())
					}
					return symref{name: lit, term: true}
				}
				return symref{name: s, term: true, tokval: int([]rune(s)[0])}
			}
			tracer().Errorf("unknown rule in BNF grammar: %v", r)
			return nil
		},
	}
}

// altOf and altsOf map nulled alternatives (nil) to epsilon.
func altOf(v interface{}) alt {
	a, _ := v.(alt)
	return a
}

func altsOf(v interface{}) []alt {
	if alts, ok := v.([]alt); ok {
		return alts
	}
	return []alt{{}}
}

func build(name string, defs []ruledef) (*lr.Grammar, error) {
	b := lr.NewGrammarBuilder(name)
	declare := func(s symref) {
		if s.term {
			b.Terminal(s.name, s.tokval)
		}
	}
	for _, def := range defs {
		for _, a := range def.alts {
			for _, s := range a.rhs {
				declare(s)
			}
			if a.sep != nil {
				declare(*a.sep)
			}
		}
	}
	for _, def := range defs {
		for _, a := range def.alts {
			if a.seq {
				sb := b.Sequence(def.lhs, a.rhs[0].name, a.min)
				if a.sep != nil {
					sb.Separator(a.sep.name)
					if a.proper {
						sb.Proper()
					}
				}
				sb.End()
				continue
			}
			rb := b.LHS(def.lhs)
			if len(a.rhs) == 0 {
				rb.Epsilon()
				continue
			}
			for _, s := range a.rhs {
				if s.term {
					rb.T(s.name, s.tokval)
				} else {
					rb.N(s.name)
				}
			}
			rb.End()
		}
	}
	return b.Grammar()
}
