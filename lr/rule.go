package lr

import (
	"bytes"
	"fmt"

	"github.com/npillmayer/thicket/lr/intset"
)

// Rule is an external grammar rule, either a BNF rule or a sequence rule.
//
// A sequence rule
//
//     LHS ::= Item{Min,} % Separator
//
// matches Min or more occurences of Item, optionally separated by Separator.
// With Proper set, a trailing separator is not allowed. With Keep set,
// separators appear in parse trees.
type Rule struct {
	Serial    int     // position in the grammar's rule table
	LHS       *Symbol // left hand side
	rhs       []*Symbol
	Rank      int
	Min       int     // sequences only
	Separator *Symbol // sequences only, may be nil
	Proper    bool    // sequences only
	Keep      bool    // sequences only
	sequence  bool
	used      bool
	nulling   bool
}

// RHS returns the right hand side symbols of a rule. For sequence rules
// this is the single item symbol.
func (r *Rule) RHS() []*Symbol {
	return r.rhs
}

// IsSequence is true for sequence rules.
func (r *Rule) IsSequence() bool {
	return r.sequence
}

// IsUsed is true for rules which are accessible and productive. Unused
// rules are dropped by the grammar compiler.
func (r *Rule) IsUsed() bool {
	return r.used
}

// IsNulling is true for rules deriving only the empty string. These are
// not part of the internal rules, their derivations are part of the
// nulling variant of their LHS.
func (r *Rule) IsNulling() bool {
	return r.nulling
}

func (r *Rule) String() string {
	var b bytes.Buffer
	b.WriteString(r.LHS.Name)
	b.WriteString(" ::=")
	if r.sequence {
		b.WriteString(" ")
		b.WriteString(r.rhs[0].Name)
		if r.Min == 0 {
			b.WriteString("*")
		} else {
			b.WriteString("+")
		}
		if r.Separator != nil {
			if r.Proper {
				b.WriteString(" % ")
			} else {
				b.WriteString(" %? ")
			}
			b.WriteString(r.Separator.Name)
		}
		return b.String()
	}
	for _, sym := range r.rhs {
		b.WriteString(" ")
		b.WriteString(sym.Name)
	}
	return b.String()
}

// --- Internal rules --------------------------------------------------------

// RuleKind tells how an internal rule was derived from an external rule.
type RuleKind uint8

// Internal rules are either (parts of) BNF rules, one of the four rule
// kinds a sequence rule is rewritten into, or the augmented start rule.
const (
	BNFRule         RuleKind = iota // factored BNF rule
	SeqTopRule                      // L ::= R
	SeqTrailingRule                 // L ::= R sep
	SeqFirstRule                    // R ::= item
	SeqRestRule                     // R ::= R item | R sep item
	StartRule                       // S' ::= S
)

// IRule is an internal rule. Internal rules contain no proper nullable
// symbols: every RHS symbol is either nulling or non-nullable.
type IRule struct {
	ID             int
	LHS            *ISymbol
	RHS            []*ISymbol
	Source         *Rule    // external rule; nil for the start rule
	Kind           RuleKind //
	ChafStart      int      // external RHS position the first RHS symbol corresponds to
	VirtualRHS     bool     // last RHS symbol is a virtual continuation
	RightRecursive bool
	Rank           int
	ahms           []*AHM
	sep            int // RHS position of a sequence separator, or -1
}

// VirtualLHS is true if the LHS is a virtual symbol, i.e. the rule is a
// continuation piece of a factored rule or part of a sequence.
func (r *IRule) VirtualLHS() bool {
	return r.LHS.Virtual
}

// First returns the first item template of an internal rule.
func (r *IRule) First() *AHM {
	if len(r.ahms) == 0 {
		return nil
	}
	return r.ahms[0]
}

// Completion returns the item template with the dot after the RHS.
func (r *IRule) Completion() *AHM {
	if len(r.ahms) == 0 {
		return nil
	}
	return r.ahms[len(r.ahms)-1]
}

// AHMs returns all item templates of the rule, ordered by dot position.
func (r *IRule) AHMs() []*AHM {
	return r.ahms
}

// SeparatorPos returns the RHS position of a sequence separator, or -1.
func (r *IRule) SeparatorPos() int {
	return r.sep
}

// LastNonNulling returns the last non-nulling RHS symbol.
func (r *IRule) LastNonNulling() *ISymbol {
	for i := len(r.RHS) - 1; i >= 0; i-- {
		if !r.RHS[i].Nulling {
			return r.RHS[i]
		}
	}
	return nil
}

func (r *IRule) String() string {
	var b bytes.Buffer
	b.WriteString(r.LHS.Name)
	b.WriteString(" ::=")
	for _, isy := range r.RHS {
		b.WriteString(" ")
		b.WriteString(isy.Name)
	}
	return b.String()
}

// --- Item templates --------------------------------------------------------

// AHM is an item template: an internal rule with a dot before a non-nulling
// RHS symbol or after the complete RHS. Nulling RHS symbols are passed over.
// Earley items of a recognizer refer to one of these.
//
// AHMs of a rule have consecutive IDs, so the successor of an AHM is the AHM
// with the next ID.
type AHM struct {
	ID               int
	Rule             *IRule
	Position         int         // RHS index of the postdot symbol, or len(RHS)
	NullCount        int         // number of nulling symbols directly before the dot
	Postdot          *ISymbol    // nil for completions
	Predicted        *intset.Set // ids of internal rules predicted at this dot
	CompletionEvents *intset.Set // external symbol ids
	NulledEvents     *intset.Set // external symbol ids
	PredictionEvents *intset.Set // external symbol ids
	Assertions       []int       // zero-width assertions guarding this dot
	LeoEligible      bool        // base of a Leo transition
	index            int         // position within Rule.ahms
}

// IsCompletion is true for templates with the dot after the RHS.
func (ahm *AHM) IsCompletion() bool {
	return ahm.Postdot == nil
}

// IsFirst is true for the template with the dot before the first non-nulling
// RHS symbol. Items of first templates are predictions.
func (ahm *AHM) IsFirst() bool {
	return ahm.index == 0
}

// Next returns the template with the dot advanced over the postdot symbol,
// or nil for a completion.
func (ahm *AHM) Next() *AHM {
	if ahm.IsCompletion() {
		return nil
	}
	return ahm.Rule.ahms[ahm.index+1]
}

// Prev returns the template with the dot before the predot symbol, or nil
// for a first template.
func (ahm *AHM) Prev() *AHM {
	if ahm.index == 0 {
		return nil
	}
	return ahm.Rule.ahms[ahm.index-1]
}

// Predot returns the non-nulling RHS symbol before the dot, or nil.
func (ahm *AHM) Predot() *ISymbol {
	if p := ahm.Prev(); p != nil {
		return p.Postdot
	}
	return nil
}

// ExternalDot maps the dot onto the RHS of the external rule. It returns -1
// for the start rule and for positions within sequences.
func (ahm *AHM) ExternalDot() int {
	r := ahm.Rule
	if r.Source == nil || r.Kind != BNFRule {
		return -1
	}
	if ahm.IsCompletion() && r.VirtualRHS {
		return len(r.Source.rhs)
	}
	return r.ChafStart + ahm.Position
}

func (ahm *AHM) String() string {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("%d: %s ::=", ahm.ID, ahm.Rule.LHS.Name))
	for i, isy := range ahm.Rule.RHS {
		if i == ahm.Position {
			b.WriteString(" •")
		}
		b.WriteString(" ")
		b.WriteString(isy.Name)
	}
	if ahm.IsCompletion() {
		b.WriteString(" •")
	}
	return b.String()
}
