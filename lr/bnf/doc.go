/*
Package bnf reads grammars written in a small BNF notation.

A grammar is a list of rules, each ending with a semicolon:

	// expressions
	Sum     ::= Sum '+' Product | Product ;
	Product ::= Product '*' Factor | Factor ;
	Factor  ::= '(' Sum ')' | INT ;

The LHS of the first rule is the start symbol. Identifiers are non-terminals,
with the exception of IDENT, INT, FLOAT, STRING and CHAR, which are terminals
for the token classes of the default tokenizer of package scanner. Char
literals are terminals with the rune as token type. An empty alternative is
an epsilon rule.

An alternative may be a sequence instead, matching repetitions of a single
symbol:

	List ::= Item+ % ',' ;   // one or more items, separated by commas
	Args ::= Arg* %? ',' ;   // zero or more, a trailing comma is allowed
	Text ::= Word+ ;         // no separator

Grammar text is parsed by the Earley parser of this module, with a grammar
for the notation itself.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bnf

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thicket.lr'.
func tracer() tracing.Trace {
	return tracing.Select("thicket.lr")
}
