package earley

import (
	"fmt"
	"sort"

	"github.com/npillmayer/thicket/lr"
)

// Report is an entry of a progress report: an external rule, a dot position
// within its RHS, and the origin of the rule. A dot equal to the length of
// the RHS denotes a completed rule. For sequence rules, a dot of 0 means the
// sequence has been predicted and 1 that it has been completed.
type Report struct {
	Rule   *lr.Rule
	Dot    int
	Origin uint64
}

func (rep Report) String() string {
	return fmt.Sprintf("@%d %v [dot %d]", rep.Origin, rep.Rule, rep.Dot)
}

// Progress returns a progress report for earley set no. set, in terms of
// the rules of the external grammar. Only active items are reported.
// Pieces of factored rules which do not start the rule are not reported,
// as their origin differs from the origin of the rule.
func (r *Recognizer) Progress(set int) ([]Report, error) {
	S, err := r.EarleySet(set)
	if err != nil {
		return nil, err
	}
	seen := make(map[Report]bool)
	var reports []Report
	for _, item := range S.items {
		if !item.active {
			continue
		}
		rep, ok := report(item)
		if !ok || seen[rep] {
			continue
		}
		seen[rep] = true
		reports = append(reports, rep)
	}
	sort.Slice(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if a.Rule.Serial != b.Rule.Serial {
			return a.Rule.Serial < b.Rule.Serial
		}
		if a.Dot != b.Dot {
			return a.Dot < b.Dot
		}
		return a.Origin < b.Origin
	})
	return reports, nil
}

func report(item *Item) (Report, bool) {
	irl := item.ahm.Rule
	if irl.Source == nil || irl.VirtualLHS() {
		return Report{}, false
	}
	rep := Report{Rule: irl.Source, Origin: item.origin.earleme}
	switch irl.Kind {
	case lr.BNFRule:
		rep.Dot = item.ahm.ExternalDot()
	case lr.SeqTopRule, lr.SeqTrailingRule:
		switch {
		case item.ahm.IsFirst():
			rep.Dot = 0
		case item.ahm.IsCompletion():
			rep.Dot = 1
		default:
			return Report{}, false
		}
	default:
		return Report{}, false
	}
	return rep, true
}

// --- Debugging -------------------------------------------------------------

// DumpSet traces the items of earley set no. set, together with their
// sources and the Leo items of the set.
func (r *Recognizer) DumpSet(set int) {
	S, err := r.EarleySet(set)
	if err != nil {
		tracer().Errorf("cannot dump set %d: %v", set, err)
		return
	}
	tracer().Debugf("--- %v ------------------------------------", S)
	for _, item := range S.items {
		mark := " "
		if !item.active {
			mark = "-"
		}
		tracer().Debugf("%s[%2d] %v", mark, item.ordinal, item)
		for _, src := range item.sources {
			tracer().Debugf("        %s", sourceString(src))
		}
	}
	for _, L := range S.leos {
		tracer().Debugf("      %v", L)
	}
}

func sourceString(src Source) string {
	switch src.Kind {
	case TokenSource:
		return fmt.Sprintf("scan %v after %v", src.Token, src.Predecessor)
	case CompletionSource:
		return fmt.Sprintf("complete %v after %v", src.Cause, src.Predecessor)
	}
	return fmt.Sprintf("leo %v through %v", src.Cause, src.Leo)
}
