package thicket

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. We do not define any constants here, as
// it is up to applications (or scanners) to define them. Grammar terminals are
// bound to token types, and recognizers map incoming tokens to terminals by
// their TokType.
type TokType int

// TokTypeStringer is a type to be provided by a scanner/parser combination to be able
// to print out token categories.
type TokTypeStringer func(TokType) string

// Token represents an input token. Tokens are usually produced by a scanner and
// reflect terminals of a grammar.
//
// An example would be a token for an integer:
//
//    TokType = Int         // category of this kind of tokens (application specific)
//    Lexeme  = "42"        // lexeme how it appeared in the input stream
//    Value   = 42          // an int value, or nil if the scanner did not convert it
//    Span    = 67…69       // occurred from position 67 in the input stream
//
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// TokenRetriever is a type for getting tokens at an earleme position.
// Parsers keeping track of their input tokens will offer one of these.
type TokenRetriever func(uint64) Token

// --- Spans ------------------------------------------------------------

// Span captures a run of earlemes. Every node of a parse forest or parse tree
// tracks which input positions it covers. A span denotes a start position and
// the position just behind the end, i.e. (x…y) covers earlemes x to y-1.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

// IsNull is true for spans covering no input, e.g. for nulled symbols.
func (s Span) IsNull() bool {
	return s[0] == s[1]
}

// Extend returns the smallest span covering s and other.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
