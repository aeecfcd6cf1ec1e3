package lexmach

import (
	"sort"
	"strings"
	"unicode"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/thicket"
	"github.com/npillmayer/thicket/lr/scanner"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// lexmachine adapter

// tracer traces with key 'thicket.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("thicket.scanner")
}

// LMAdapter is a lexmachine adapter to use lexmachine as a scanner.
type LMAdapter struct {
	Lexer *lexmachine.Lexer
}

// NewLMAdapter creates a new lexmachine adapter. It receives a list of
// literals ('[', ';', …), a list of keywords ("if", "for", …) and a
// map for translating token strings to their values.
//
// NewLMAdapter will return an error if compiling the DFA failed.
func NewLMAdapter(init func(*lexmachine.Lexer), literals []string, keywords []string, tokenIds map[string]int) (*LMAdapter, error) {
	adapter := &LMAdapter{}
	adapter.Lexer = lexmachine.NewLexer()
	init(adapter.Lexer)
	for _, lit := range literals {
		adapter.Lexer.Add([]byte(quote(lit)), MakeToken(lit, tokenIds[lit]))
	}
	for _, name := range keywords {
		adapter.Lexer.Add([]byte(strings.ToLower(name)), MakeToken(name, tokenIds[name]))
	}
	if err := adapter.Lexer.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, err
	}
	return adapter, nil
}

// GoLike creates an adapter producing the token types of the default Go
// tokenizer: identifiers, integers, floats, strings and chars are returned
// with the token classes of package scanner, whitespace and line comments
// are skipped. Every positive entry of literals is a rune which is scanned
// as a single-character token, with the rune as its token type.
//
// Grammars read by package bnf bind their terminals to exactly these token
// types, so
//
//	var tokvals []int
//	for _, sym := range g.Symbols() { if sym.IsTerminal() { tokvals = append(tokvals, sym.Value) } }
//	LM, err := lexmach.GoLike(tokvals)
//
// creates a scanner for a grammar.
func GoLike(literals []int) (*LMAdapter, error) {
	var lits []string
	ids := make(map[string]int)
	for _, r := range literals {
		if r <= 0 || unicode.IsLetter(rune(r)) || unicode.IsDigit(rune(r)) || unicode.IsSpace(rune(r)) {
			continue
		}
		lit := string(rune(r))
		if _, ok := ids[lit]; !ok {
			ids[lit] = r
			lits = append(lits, lit)
		}
	}
	sort.Strings(lits)
	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`//[^\n]*\n?`), Skip)
		lexer.Add([]byte(`( |\t|\n|\r)+`), Skip)
		lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), MakeToken("IDENT", scanner.Ident))
		lexer.Add([]byte(`[0-9]+`), MakeToken("INT", scanner.Int))
		lexer.Add([]byte(`[0-9]+\.[0-9]+`), MakeToken("FLOAT", scanner.Float))
		lexer.Add([]byte(`\"[^"\n]*\"`), MakeToken("STRING", scanner.String))
		lexer.Add([]byte(`'[^'\n]'`), MakeToken("CHAR", scanner.Char))
	}
	return NewLMAdapter(init, lits, nil, ids)
}

// quote escapes every non-alphanumeric character of a literal.
func quote(lit string) string {
	var b strings.Builder
	for _, r := range lit {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Scanner creates a scanner for a given input. The scanner will implement the
// Tokenizer interface.
func (lm *LMAdapter) Scanner(input string) (*LMScanner, error) {
	s, err := lm.Lexer.Scanner([]byte(input))
	if err != nil {
		return &LMScanner{}, err
	}
	return &LMScanner{s, logError}, nil
}

// LMScanner is a scanner type for lexmachine scanners, implementing the
// Tokenizer interface.
type LMScanner struct {
	scanner *lexmachine.Scanner
	Error   func(error)
}

var _ scanner.Tokenizer = (*LMScanner)(nil)

// SetErrorHandler sets an error handler for the scanner.
func (lms *LMScanner) SetErrorHandler(h func(error)) {
	if h == nil {
		lms.Error = logError
		return
	}
	lms.Error = h
}

// Default error reporting function for lexmachine-based scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// NextToken is part of the Tokenizer interface. Input the lexer cannot match
// is reported to the error handler and skipped.
func (lms *LMScanner) NextToken() thicket.Token {
	tok, err, eof := lms.scanner.Next()
	for err != nil {
		lms.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lms.scanner.TC = ui.FailTC
		}
		tok, err, eof = lms.scanner.Next()
	}
	if eof {
		end := uint64(lms.scanner.TC)
		return scanner.MakeDefaultToken(scanner.EOF, "", thicket.Span{end, end})
	}
	token := tok.(*lexmachine.Token)
	tracer().Debugf("token %d %q at %d", token.Type, token.Lexeme, token.TC)
	return scanner.MakeDefaultToken(
		thicket.TokType(token.Type),
		string(token.Lexeme),
		thicket.Span{uint64(token.TC), uint64(token.TC + len(token.Lexeme))},
	)
}

// ---------------------------------------------------------------------------

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// MakeToken is a pre-defined action which wraps a scanned match into a token.
func MakeToken(name string, id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}
