/*
Package earley implements an incremental Earley recognizer.

The recognizer works on grammars compiled by package lr. It reads input
token by token, where a token may span more than one earleme and more than
one token may start at the same earleme. The recognizer remembers how every
item has been derived; package sppf builds a parse forest from these links.

Right recursion is handled by Leo items, which keep the number of items
linear for right-recursive grammars. Symbols may be declared to trigger
events when they are completed, nulled or predicted, and zero-width
assertions may block rules at positions chosen by the client.

Clients may reject items during recognition; Clean then deactivates every
item depending on a rejected one.

Usage

	rec, err := earley.NewRecognizer(g)
	rec.Start()
	rec.Alternative(g.SymbolByName("a"), nil, 1)
	rec.Advance()
	if rec.Accepts(rec.CurrentEarleme()) { … }

For input from a scanner.Tokenizer, type Parser wraps this loop.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package earley

import (
	"fmt"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thicket.lr'.
func tracer() tracing.Trace {
	return tracing.Select("thicket.lr")
}

// internalError reports a broken invariant of the recognizer.
func internalError(msg string) error {
	tracer().Errorf(msg)
	if gconf.GetBool("panic-on-internal-error") {
		panic(`Earley recognizer detected an internal error.

Configuration flag panic-on-internal-error is set to true. It is aimed at helping
to debug the recognizer and do a post-mortem of what went wrong. However, if this
is a production environment and you did not expect this to panic, please unset
panic-on-internal-error to its default (false).

` + msg)
	}
	return fmt.Errorf("%w: %s", ErrInternal, msg)
}
