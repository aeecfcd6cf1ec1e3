/*
Command thicket is a command line tool for experimenting with grammars.

Grammars are read from files in the BNF notation of package lr/bnf.

	thicket compile expr.bnf             // compile and show grammar tables
	thicket parse expr.bnf '1 + 2 * 3'   // parse and print parse tree(s)
	thicket repl expr.bnf                // parse lines interactively

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thicket.cli'.
func tracer() tracing.Trace {
	return tracing.Select("thicket.cli")
}
