package earley

import (
	"fmt"

	"github.com/npillmayer/thicket"
	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/scanner"
)

// Parser drives a recognizer with tokens from a scanner. Every token read
// covers one earleme, and token types select terminals, see
// lr.Grammar.Terminal.
type Parser struct {
	g       *lr.Grammar
	rec     *Recognizer
	recopts []Option
	keep    bool
	tokens  []thicket.Token
	scanErr error
}

// ParserOption configures a parser.
type ParserOption func(*Parser)

// KeepTokens tells the parser to remember the tokens read, which is the
// default. Tokens are retrieved with TokenAt.
func KeepTokens(b bool) ParserOption {
	return func(p *Parser) {
		p.keep = b
	}
}

// WithRecognizer passes options to the recognizer of a parser.
func WithRecognizer(opts ...Option) ParserOption {
	return func(p *Parser) {
		p.recopts = append(p.recopts, opts...)
	}
}

// NewParser creates a parser for a compiled grammar.
func NewParser(g *lr.Grammar, opts ...ParserOption) (*Parser, error) {
	if g == nil || !g.IsCompiled() {
		return nil, lr.ErrNotCompiled
	}
	p := &Parser{g: g, keep: true}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse reads tokens from scan until EOF and returns true if the input is
// a sentence of the grammar. A token which is not expected stops the parse
// with an error wrapping ErrUnexpectedToken; scanner errors are returned as
// well. A parser may be used for more than one parse, each starting with a
// fresh recognizer.
func (p *Parser) Parse(scan scanner.Tokenizer) (bool, error) {
	rec, err := NewRecognizer(p.g, p.recopts...)
	if err != nil {
		return false, err
	}
	p.rec, p.tokens, p.scanErr = rec, p.tokens[:0], nil
	scan.SetErrorHandler(func(e error) {
		tracer().Errorf("scanner error: %v", e)
		if p.scanErr == nil {
			p.scanErr = e
		}
	})
	if err = rec.Start(); err != nil {
		return false, err
	}
	for {
		tok := scan.NextToken()
		if p.scanErr != nil {
			return false, p.scanErr
		}
		if tok.TokType() == scanner.EOF {
			break
		}
		tracer().Debugf("token %q of type %d at %d", tok.Lexeme(), tok.TokType(), rec.CurrentEarleme())
		if err = rec.AlternativeByType(int(tok.TokType()), tok, 1); err != nil {
			return false, fmt.Errorf("%w (lexeme %q at %v)", err, tok.Lexeme(), tok.Span())
		}
		if p.keep {
			p.tokens = append(p.tokens, tok)
		}
		if _, err = rec.Advance(); err != nil {
			return false, err
		}
	}
	accept := rec.Accepts(rec.CurrentEarleme())
	tracer().Infof("parse of %d tokens accepted = %v", rec.CurrentEarleme(), accept)
	return accept, nil
}

// Recognizer returns the recognizer of the latest parse, or nil.
func (p *Parser) Recognizer() *Recognizer {
	return p.rec
}

// TokenAt returns the input token starting at earleme pos, or nil.
func (p *Parser) TokenAt(pos uint64) thicket.Token {
	if pos < uint64(len(p.tokens)) {
		return p.tokens[pos]
	}
	return nil
}

// TokenRetriever returns TokenAt as a thicket.TokenRetriever.
func (p *Parser) TokenRetriever() thicket.TokenRetriever {
	return p.TokenAt
}
