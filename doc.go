/*
Package thicket is a general context-free parsing toolbox.

Thicket parses with any context-free grammar, including ambiguous,
left-recursive, right-recursive and nullable ones. It is built around an
Earley recognizer with Leo's optimization for right recursion and a grammar
compiler which rewrites grammars into a form suited to fast recognition.
Package structure is as follows:

■ lr: Package lr holds the grammar representation and the grammar compiler.

■ lr/earley: Package earley implements an incremental Earley recognizer.

■ lr/sppf: Package sppf builds an AND/OR parse forest from a recognizer trace.

■ lr/tree: Package tree enumerates parse trees from a forest and evaluates them.

■ lr/bnf: Package bnf reads grammars from a small BNF notation.

■ lr/scanner: Package scanner defines the tokenizer interface and default scanners.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package thicket
