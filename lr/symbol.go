package lr

import (
	"fmt"

	"github.com/npillmayer/thicket"
)

// Symbol is an external grammar symbol, i.e. a terminal or a non-terminal
// as the client declared it. Terminals carry a token type, which is what a
// scanner produces for them.
type Symbol struct {
	ID    int    // position in the grammar's symbol table
	Name  string // name as declared
	Value int    // token type for terminals, 0 otherwise
	Rank  int    // null-rank, used for ranked tree iteration
	term  bool
	class symclass
	alias [2]*ISymbol // non-nulling and nulling internal alias
	ev    EventKind   // events declared on this symbol
}

type symclass uint8

const (
	classNullable symclass = 1 << iota
	classNulling
	classProductive
	classAccessible
	classCounted
)

// IsTerminal returns true for terminal symbols.
func (sym *Symbol) IsTerminal() bool {
	return sym.term
}

// TokenType returns the token type of a terminal.
func (sym *Symbol) TokenType() thicket.TokType {
	return thicket.TokType(sym.Value)
}

// IsNullable is true if the symbol derives the empty string.
// Valid after the grammar has been compiled.
func (sym *Symbol) IsNullable() bool {
	return sym.class&classNullable != 0
}

// IsNulling is true if the symbol derives only the empty string.
func (sym *Symbol) IsNulling() bool {
	return sym.class&classNulling != 0
}

// IsProductive is true if the symbol derives at least one string of terminals.
func (sym *Symbol) IsProductive() bool {
	return sym.class&classProductive != 0
}

// IsAccessible is true if the symbol is reachable from the start symbol.
func (sym *Symbol) IsAccessible() bool {
	return sym.class&classAccessible != 0
}

// IsCounted is true for items and separators of sequence rules.
func (sym *Symbol) IsCounted() bool {
	return sym.class&classCounted != 0
}

// NonNulling returns the internal non-nulling alias of a symbol, or nil if
// the symbol is nulling or unused.
func (sym *Symbol) NonNulling() *ISymbol {
	return sym.alias[0]
}

// Nulling returns the internal nulling alias of a symbol, or nil if the
// symbol is not nullable.
func (sym *Symbol) Nulling() *ISymbol {
	return sym.alias[1]
}

// Events returns the kinds of events declared for this symbol.
func (sym *Symbol) Events() EventKind {
	return sym.ev
}

func (sym *Symbol) String() string {
	return sym.Name
}

// --- Internal symbols ------------------------------------------------------

// ISymbol is an internal symbol. Every used external symbol has a non-nulling
// alias and, if nullable, a nulling one. The compiler adds virtual symbols for
// factored rules, sequences and the augmented start rule.
type ISymbol struct {
	ID       int
	Name     string
	Source   *Symbol // external symbol; nil for virtual symbols
	Nulling  bool
	Virtual  bool
	Terminal bool
}

func (isy *ISymbol) String() string {
	return isy.Name
}

// --- Events ----------------------------------------------------------------

// EventKind is a bit set of event kinds a symbol may trigger.
type EventKind uint8

// Symbols may be declared to trigger events when they are completed, nulled
// or predicted.
const (
	CompletionEvent EventKind = 1 << iota
	NulledEvent
	PredictionEvent
)

func (k EventKind) String() string {
	switch k {
	case CompletionEvent:
		return "completed"
	case NulledEvent:
		return "nulled"
	case PredictionEvent:
		return "predicted"
	}
	return fmt.Sprintf("events(%d)", uint8(k))
}
