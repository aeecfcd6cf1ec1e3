package earley

import (
	"fmt"
	"sort"

	"github.com/npillmayer/thicket/lr"
)

// EventType is the type of recognizer events.
type EventType uint8

// Symbols declared with events trigger them when they are completed, nulled
// or predicted. Exhaustion is reported as an event as well.
const (
	SymbolCompleted EventType = iota
	SymbolNulled
	SymbolPredicted
	Exhausted
)

func (t EventType) String() string {
	switch t {
	case SymbolCompleted:
		return "completed"
	case SymbolNulled:
		return "nulled"
	case SymbolPredicted:
		return "predicted"
	}
	return "exhausted"
}

// Event is an event triggered by Start or Advance.
type Event struct {
	Type    EventType
	Symbol  *lr.Symbol // nil for exhaustion
	Earleme uint64
}

func (ev Event) String() string {
	if ev.Symbol == nil {
		return fmt.Sprintf("%s@%d", ev.Type, ev.Earleme)
	}
	return fmt.Sprintf("%s %s@%d", ev.Symbol.Name, ev.Type, ev.Earleme)
}

type eventKey struct {
	sym  int
	kind lr.EventKind
}

func (t EventType) kind() lr.EventKind {
	switch t {
	case SymbolCompleted:
		return lr.CompletionEvent
	case SymbolNulled:
		return lr.NulledEvent
	case SymbolPredicted:
		return lr.PredictionEvent
	}
	return 0
}

// collect queues events for the armed symbols among ids. Each event is
// queued at most once per earleme.
func (r *Recognizer) collect(t EventType, ids []int, earleme uint64) {
	for _, id := range ids {
		if !r.armed[eventKey{id, t.kind()}] {
			continue
		}
		ev := Event{Type: t, Symbol: r.g.Symbols()[id], Earleme: earleme}
		dup := false
		for _, other := range r.events {
			if other == ev {
				dup = true
				break
			}
		}
		if !dup {
			r.events = append(r.events, ev)
		}
	}
}

// Events returns the events triggered by the last call to Start or Advance,
// ordered by type and symbol.
func (r *Recognizer) Events() []Event {
	evs := make([]Event, len(r.events))
	copy(evs, r.events)
	sortEvents(evs)
	return evs
}

func sortEvents(evs []Event) {
	less := func(a, b Event) bool {
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Symbol == nil || b.Symbol == nil {
			return b.Symbol != nil
		}
		return a.Symbol.ID < b.Symbol.ID
	}
	sort.SliceStable(evs, func(i, j int) bool {
		return less(evs[i], evs[j])
	})
}

// ActivateEvent switches an event declared in the grammar on or off.
func (r *Recognizer) ActivateEvent(sym *lr.Symbol, kind lr.EventKind, on bool) error {
	if sym == nil || sym.Events()&kind == 0 {
		return ErrNoSuchEvent
	}
	r.armed[eventKey{sym.ID, kind}] = on
	return nil
}
