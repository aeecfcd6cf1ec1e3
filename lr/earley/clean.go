package earley

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/npillmayer/thicket/lr/bitmatrix"
)

// RejectItem marks an item as rejected. Items depending on it will become
// inactive when the recognizer is cleaned. Until then, the recognizer is
// inconsistent and will not accept input.
func (r *Recognizer) RejectItem(set, ordinal int) error {
	if r.phase == BeforeInput {
		return ErrNotStarted
	}
	S, err := r.EarleySet(set)
	if err != nil {
		return err
	}
	item := S.Item(ordinal)
	if item == nil {
		return ErrNoSuchItem
	}
	if item.rejected {
		return nil
	}
	item.rejected = true
	if r.consistent || set < r.dirty {
		r.dirty = set
	}
	r.consistent = false
	tracer().Debugf("rejected item %v in %v", item, S)
	return nil
}

// Clean propagates rejections. Working from the earliest set affected to
// the latest, an item stays active only if it has not been rejected and at
// least one of its sources is still valid. Postdot indexes and Leo items
// are rebuilt, pending tokens which lost all their predecessors are
// dropped, and exhaustion is re-checked.
//
// Cleaning a consistent recognizer is a no-op. Clean returns the number of
// items which became inactive.
func (r *Recognizer) Clean() int {
	if r.consistent {
		return 0
	}
	deactivated := 0
	for i := r.dirty; i < len(r.sets); i++ {
		deactivated += r.cleanSet(r.sets[i])
	}
	var pending []*Token
	for _, tok := range r.pending {
		if S := r.byEarleme[tok.Start]; S != nil && S.expects(tok.Symbol.NonNulling()) {
			pending = append(pending, tok)
		}
	}
	r.pending = pending
	r.consistent = true
	r.events = r.events[:0]
	if r.phase == DuringInput {
		r.checkExhaustion()
	}
	tracer().Debugf("clean deactivated %d items", deactivated)
	return deactivated
}

// cleanSet recomputes item activity for one set. Dependencies reaching back
// into earlier sets are already settled; within the set, a completion
// depends on its cause and a prediction on its predictor. Activity is
// reachability from the items with settled support in this dependency
// graph.
func (r *Recognizer) cleanSet(S *EarleySet) int {
	n := len(S.items)
	supported := bitset.New(uint(n))
	deps := bitmatrix.New(n)
	for i, item := range S.items {
		if item.rejected {
			continue
		}
		if len(item.sources) == 0 && S.id == 0 && item.ahm.Rule == r.g.StartRule() {
			supported.Set(uint(i))
		}
		for _, src := range item.sources {
			switch src.Kind {
			case TokenSource:
				if src.Predecessor.active {
					supported.Set(uint(i))
				}
			case CompletionSource:
				if src.Predecessor.active && !src.Cause.rejected {
					deps.Set(src.Cause.ordinal, i)
				}
			case LeoSource:
				if src.Leo.valid && !src.Cause.rejected {
					deps.Set(src.Cause.ordinal, i)
				}
			}
		}
		if X := item.ahm.Postdot; X != nil {
			for _, rule := range r.g.RulesFor(X) {
				if k := S.Find(rule.First(), S); k != nil && !k.rejected {
					deps.Set(i, k.ordinal)
				}
			}
		}
	}
	deps.TransitiveClosure()
	active := deps.Reachable(supported)
	deactivated := 0
	for i, item := range S.items {
		was := item.active
		item.active = active.Test(uint(i))
		if was && !item.active {
			deactivated++
		}
	}
	S.buildPostdot()
	leos := S.leos[:0]
	for _, L := range S.leos {
		if validateLeo(L) {
			if e := S.postdot[L.symbol.ID]; e != nil {
				e.leo = L
				leos = append(leos, L)
			}
		}
	}
	S.leos = leos
	for _, e := range S.postdot {
		e.leoDone = true
	}
	return deactivated
}

// validateLeo re-checks a Leo chain after rejections.
func validateLeo(L *LeoItem) bool {
	L.valid = L.base.active && (L.predecessor == nil || validateLeo(L.predecessor))
	return L.valid
}
