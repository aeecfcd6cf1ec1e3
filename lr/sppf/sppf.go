/*
Package sppf implements a "Shared Packed Parse Forest".

A packed parse forest re-uses existing parse tree nodes between different
parse trees. For a conventional non-ambiguous parse, a parse forest degrades
to a single tree. Ambiguous grammars, on the other hand, may result in parse
runs where more than one parse tree is created. To save space these parse
trees will share common nodes.

Forests of this package are AND/OR graphs built from the trace of an Earley
recognizer (package earley). An or-node stands for an item template together
with the span it covers, i.e. for a rule which has been recognized up to a
dot position. Every and-node of an or-node is one way to get there: a
predecessor or-node with the dot one symbol further left, and a cause, which
is either the or-node of a completed rule or an input token. The and-nodes
of a completed rule thus form a chain from right to left over its RHS.

Leo transitions of the recognizer are expanded while building the forest,
so forests built with and without Leo transitions are identical.

If the start symbol of a grammar derives the empty input, the forest for an
empty input is a nulling forest without any nodes. Clients have to check
IsNulling before walking a forest.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sppf

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thicket.lr'.
func tracer() tracing.Trace {
	return tracing.Select("thicket.lr")
}
