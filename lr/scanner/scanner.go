/*
Package scanner defines an interface for scanners to be used with the parsers of
package lr/earley.

Two default scanner implementations are provided: (1) a thin wrapper over the Go std lib
'text/scanner', and (2) an adapter for lexmachine, living in sub-package `lexmach`.

Token types of the default scanner are the token classes of 'text/scanner' for
identifiers, numbers and strings, and the rune itself for any other character.
Grammars bind terminals to these token types, e.g. '+' to token type '+'.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"fmt"
	"io"
	"text/scanner"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/thicket"
)

// tracer traces with key 'thicket.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("thicket.scanner")
}

// EOF is identical to text/scanner.EOF.
// Token types are replicated here for practical reasons.
const (
	EOF     = scanner.EOF
	Ident   = scanner.Ident
	Int     = scanner.Int
	Float   = scanner.Float
	Char    = scanner.Char
	String  = scanner.String
	Comment = scanner.Comment
)

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() thicket.Token    // returns a token of type EOF at the end of input
	SetErrorHandler(func(error)) // nil resets to the default handler
}

// DefaultTokenizer is a default implementation, backed by scanner.Scanner.
// Create one with GoTokenizer.
type DefaultTokenizer struct {
	scanner.Scanner
	Error func(error) // error handler
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// GoTokenizer creates a scanner/tokenizer accepting tokens similar to the Go
// language. Comments are skipped.
func GoTokenizer(sourceID string, input io.Reader) *DefaultTokenizer {
	t := &DefaultTokenizer{}
	t.Init(input)
	t.Error = logError
	t.Scanner.Error = t.report
	t.Filename = sourceID
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

func (t *DefaultTokenizer) report(s *scanner.Scanner, msg string) {
	t.Error(fmt.Errorf("%s: %s", s.Position, msg))
}

// NextToken is part of the Tokenizer interface.
func (t *DefaultTokenizer) NextToken() thicket.Token {
	tok := t.Scan()
	if tok == scanner.EOF {
		tracer().Debugf("DefaultTokenizer reached end of input")
	}
	return DefaultToken{
		kind:   thicket.TokType(tok),
		lexeme: t.TokenText(),
		span:   thicket.Span{uint64(t.Position.Offset), uint64(t.Pos().Offset)},
	}
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a very unsophisticated token type, used as default for the Go
// tokenizer as well as the LexMachine scanner.
type DefaultToken struct {
	kind   thicket.TokType
	lexeme string
	span   thicket.Span
}

// MakeDefaultToken creates a token without a value.
func MakeDefaultToken(typ thicket.TokType, lexeme string, span thicket.Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

// TokType is part of the thicket.Token interface.
func (t DefaultToken) TokType() thicket.TokType {
	return t.kind
}

// Value is always nil, as default tokens are not converted.
func (t DefaultToken) Value() interface{} {
	return nil
}

func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

func (t DefaultToken) Span() thicket.Span {
	return t.span
}

// TokenTypeString is a thicket.TokTypeStringer for the default tokenizer.
func TokenTypeString(typ thicket.TokType) string {
	switch typ {
	case EOF, Ident, Int, Float, Char, String, scanner.RawString, Comment:
		return scanner.TokenString(rune(typ))
	}
	return fmt.Sprintf("%q", rune(typ))
}
