/*
Package tree enumerates the parse trees of a parse forest.

A forest (package sppf) holds all parses of an input. An Iterator walks
through the forest and hands out one parse tree at a time, until all of them
have been returned:

	it := tree.New(forest)
	for {
		root, err := it.Next()
		if err == tree.ErrExhausted {
			break
		}
		…
	}

Parse trees are expressed in terms of the grammar rules as the client wrote
them, i.e. rules split up by the grammar compiler are re-assembled, nulled
symbols appear as nodes without children, and separators of sequence rules
are left out unless the rule has been declared to keep them.

Trees are either evaluated bottom-up with an Evaluator, or traversed top-down
with a Listener.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thicket.lr'.
func tracer() tracing.Trace {
	return tracing.Select("thicket.lr")
}
