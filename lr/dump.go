package lr

import (
	"fmt"
	"io"

	"github.com/cnf/structhash"
)

// Dump is a debugging helper, writing the grammar and its internal tables
// to the tracer (with level Debug).
func (g *Grammar) Dump() {
	tracer().Debugf("--- %s ----------------------------------------", g.Name)
	for _, r := range g.rules {
		tracer().Debugf("%3d: %v", r.Serial, r)
	}
	if g.tables == nil {
		tracer().Debugf("(not compiled)")
		return
	}
	tracer().Debugf("--- internal rules -------------------------------")
	for _, r := range g.tables.irules {
		tracer().Debugf("%3d: %v", r.ID, r)
	}
	tracer().Debugf("--- item templates -------------------------------")
	for _, ahm := range g.tables.ahms {
		tracer().Debugf("%v  predicts %v", ahm, ahm.Predicted)
	}
	tracer().Debugf("--------------------------------------------------")
}

// tableDescription is a flat, hashable view of the compiled tables.
type tableDescription struct {
	Name    string
	Symbols []string
	Rules   []string
	AHMs    []string
}

// Fingerprint returns a hash over the compiled internal tables. Grammars with
// identical internal rules and item templates have identical fingerprints.
func (g *Grammar) Fingerprint() (string, error) {
	if g.tables == nil {
		return "", ErrNotCompiled
	}
	d := tableDescription{Name: g.Name}
	for _, isy := range g.tables.isyms {
		d.Symbols = append(d.Symbols, fmt.Sprintf("%s/%v/%v", isy.Name, isy.Nulling, isy.Terminal))
	}
	for _, r := range g.tables.irules {
		d.Rules = append(d.Rules, fmt.Sprintf("%v (%d,%d,%v)", r, r.Kind, r.Rank, r.RightRecursive))
	}
	for _, ahm := range g.tables.ahms {
		d.AHMs = append(d.AHMs, fmt.Sprintf("%v %v %v", ahm, ahm.Predicted, ahm.LeoEligible))
	}
	return structhash.Hash(d, 1)
}

// PredictionGraphViz writes the "predicts" relation between internal symbols
// in GraphViz DOT format. Edges lead from the LHS of a rule to its first
// non-nulling symbol; right-recursive rules are drawn in red.
func (g *Grammar) PredictionGraphViz(w io.Writer) error {
	if g.tables == nil {
		return ErrNotCompiled
	}
	fmt.Fprintf(w, "digraph %q {\n", g.Name)
	fmt.Fprintf(w, "node [shape=box style=rounded fontname=\"Helvetica\"];\n")
	for _, isy := range g.tables.isyms {
		if isy.Nulling {
			continue
		}
		shape := "box"
		if isy.Terminal {
			shape = "plaintext"
		}
		fmt.Fprintf(w, "s%03d [label=%q shape=%s];\n", isy.ID, isy.Name, shape)
	}
	for _, r := range g.tables.irules {
		color := "black"
		if r.RightRecursive {
			color = "red"
		}
		fmt.Fprintf(w, "s%03d -> s%03d [label=\"%d\" color=%s];\n",
			r.LHS.ID, r.First().Postdot.ID, r.ID, color)
	}
	_, err := fmt.Fprintf(w, "}\n")
	return err
}
