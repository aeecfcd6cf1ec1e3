/*
Package lr implements context-free grammars and their compilation for
Earley parsing.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Terminals
carry a token value of type int. Grammars may contain epsilon-productions,
ambiguities, and left- as well as right-recursion; only cycles (A ⇒+ A)
are rejected.

Example:

    b := lr.NewGrammarBuilder("G")
    b.LHS("S").N("A").T("a", 1).End()   // S  ::=  A a
    b.LHS("A").N("B").N("D").End()      // A  ::=  B D
    b.LHS("B").T("b", 2).End()          // B  ::=  b
    b.LHS("B").Epsilon()                // B  ::=
    b.LHS("D").T("d", 3).End()          // D  ::=  d
    b.LHS("D").Epsilon()                // D  ::=
    g, err := b.Grammar()

Sequence rules match repetitions of a symbol, optionally with separators:

    b.Sequence("List", "Item", 1).Separator("Comma").Proper().End()  // List ::= Item+ % Comma

Compilation

b.Grammar() compiles the grammar. Symbols are classified (nullable, nulling,
productive, accessible), and rules are rewritten into internal rules
without proper nullable symbols: every used symbol gets a non-nulling and,
if nullable, a nulling alias, and rules are factored into pieces with at
most two nullable variables each. Sequence rules are rewritten into
left-recursive rule pairs. An augmented start rule S' ::= S is added.

For every internal rule the compiler creates item templates (AHMs), one
for every dot position before a non-nulling symbol and one after the RHS.
Templates know which rules they predict, which events they trigger, and
whether they are the base of a Leo transition, i.e. sit at the right
edge of a right-recursive rule.

External rules and symbols stay available for clients. Parse trees are
projected back onto them.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thicket.lr'.
func tracer() tracing.Trace {
	return tracing.Select("thicket.lr")
}
