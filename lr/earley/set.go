package earley

import (
	"fmt"
	"sort"

	"github.com/npillmayer/thicket"
	"github.com/npillmayer/thicket/lr"
)

// EarleySet is the set of items the recognizer holds for one earleme.
// Earlemes without any item have no set.
type EarleySet struct {
	id      int
	earleme uint64
	items   []*Item
	index   map[itemKey]*Item
	postdot map[int]*postdotEntry // by internal symbol id
	pdkeys  []int                 // sorted keys of postdot
	leos    []*LeoItem
}

type itemKey struct {
	ahm, origin int
}

// postdotEntry collects the items waiting for a symbol, or the Leo item
// standing in for them.
type postdotEntry struct {
	leo     *LeoItem
	leoDone bool
	items   []*Item
}

func newEarleySet(id int, earleme uint64) *EarleySet {
	return &EarleySet{
		id:      id,
		earleme: earleme,
		index:   make(map[itemKey]*Item),
		postdot: make(map[int]*postdotEntry),
	}
}

// ID returns the ordinal of the set.
func (S *EarleySet) ID() int {
	return S.id
}

// Earleme returns the earleme of the set.
func (S *EarleySet) Earleme() uint64 {
	return S.earleme
}

// Len returns the number of items, including inactive ones.
func (S *EarleySet) Len() int {
	return len(S.items)
}

// Item returns item no. i, or nil.
func (S *EarleySet) Item(i int) *Item {
	if i < 0 || i >= len(S.items) {
		return nil
	}
	return S.items[i]
}

// Items returns all items of the set in creation order.
func (S *EarleySet) Items() []*Item {
	return S.items
}

// Find returns the item with a given template and origin, or nil.
func (S *EarleySet) Find(ahm *lr.AHM, origin *EarleySet) *Item {
	return S.index[itemKey{ahm.ID, origin.id}]
}

// Postdot returns the active items expecting symbol isy.
func (S *EarleySet) Postdot(isy *lr.ISymbol) []*Item {
	if e := S.postdot[isy.ID]; e != nil {
		return e.items
	}
	return nil
}

// Leo returns the Leo item for symbol isy, or nil.
func (S *EarleySet) Leo(isy *lr.ISymbol) *LeoItem {
	if e := S.postdot[isy.ID]; e != nil {
		return e.leo
	}
	return nil
}

// LeoItems returns all Leo items of the set.
func (S *EarleySet) LeoItems() []*LeoItem {
	return S.leos
}

func (S *EarleySet) String() string {
	return fmt.Sprintf("ES%d@%d", S.id, S.earleme)
}

// buildPostdot indexes active items by their postdot symbol.
func (S *EarleySet) buildPostdot() {
	S.postdot = make(map[int]*postdotEntry)
	S.pdkeys = S.pdkeys[:0]
	for _, item := range S.items {
		if !item.active || item.ahm.Postdot == nil {
			continue
		}
		id := item.ahm.Postdot.ID
		e := S.postdot[id]
		if e == nil {
			e = &postdotEntry{}
			S.postdot[id] = e
			S.pdkeys = append(S.pdkeys, id)
		}
		e.items = append(e.items, item)
	}
	sort.Ints(S.pdkeys)
}

// expects is true if an active item expects symbol isy.
func (S *EarleySet) expects(isy *lr.ISymbol) bool {
	e := S.postdot[isy.ID]
	return e != nil && len(e.items) > 0
}

// --- Items -----------------------------------------------------------------

// Item is an Earley item: an item template together with the set where
// recognition of its rule started. Items record all the ways they were
// derived as sources.
type Item struct {
	set      *EarleySet
	ordinal  int
	ahm      *lr.AHM
	origin   *EarleySet
	sources  []Source
	rejected bool
	active   bool
}

// AHM returns the item template of the item.
func (item *Item) AHM() *lr.AHM {
	return item.ahm
}

// Set returns the set the item lives in.
func (item *Item) Set() *EarleySet {
	return item.set
}

// Ordinal returns the position of the item within its set.
func (item *Item) Ordinal() int {
	return item.ordinal
}

// Origin returns the earleme where recognition of the item's rule started.
func (item *Item) Origin() uint64 {
	return item.origin.earleme
}

// OriginSet returns the set where recognition of the item's rule started.
func (item *Item) OriginSet() *EarleySet {
	return item.origin
}

// Sources returns the sources of an item. Predictions and the start item
// have no sources.
func (item *Item) Sources() []Source {
	return item.sources
}

// IsActive is false for rejected items and for items which lost all their
// sources by rejection of other items.
func (item *Item) IsActive() bool {
	return item.active
}

// IsRejected is true for items rejected by a client.
func (item *Item) IsRejected() bool {
	return item.rejected
}

// IsAmbiguous is true if the item has more than one valid source.
func (item *Item) IsAmbiguous() bool {
	n := 0
	for _, src := range item.sources {
		if src.IsValid() {
			n++
		}
	}
	return n > 1
}

// Span returns the range of earlemes covered by the item.
func (item *Item) Span() thicket.Span {
	return thicket.Span{item.origin.earleme, item.set.earleme}
}

func (item *Item) String() string {
	return fmt.Sprintf("[%v, %d]", item.ahm, item.origin.earleme)
}

func (item *Item) addSource(src Source) {
	for _, s := range item.sources {
		if s == src {
			return
		}
	}
	item.sources = append(item.sources, src)
}

// --- Sources ---------------------------------------------------------------

// SourceKind tells how an item was derived.
type SourceKind uint8

// Items are derived by scanning a token, by completing a rule, or by
// completing a rule through a Leo transition.
const (
	TokenSource SourceKind = iota
	CompletionSource
	LeoSource
)

// Source is one way an item has been derived. Predecessor is the item the
// dot has been advanced from; it is nil for Leo sources, where the Leo item
// stands for a chain of predecessors.
type Source struct {
	Kind        SourceKind
	Predecessor *Item
	Cause       *Item
	Leo         *LeoItem
	Token       *Token
}

// IsValid is true if all items the source depends on are active.
func (src Source) IsValid() bool {
	switch src.Kind {
	case TokenSource:
		return src.Predecessor.active
	case CompletionSource:
		return src.Predecessor.active && src.Cause.active
	case LeoSource:
		return src.Leo.valid && src.Cause.active
	}
	return false
}

// --- Leo items -------------------------------------------------------------

// LeoItem stands for a chain of right-recursive completions. If a symbol
// is expected by exactly one item in a set, and that item sits right before
// the last non-nulling symbol of a right-recursive rule, completing the
// symbol will complete the item's rule as well, and so on up the chain.
// The Leo item records the top of the chain, which is the only item
// created by a completion through it.
type LeoItem struct {
	set         *EarleySet
	symbol      *lr.ISymbol
	base        *Item
	predecessor *LeoItem
	top         *lr.AHM
	origin      *EarleySet
	events      []int // completion events of the chain, external symbol ids
	nulled      []int // nulled events of the skipped items
	valid       bool
}

// Set returns the set of the Leo item.
func (L *LeoItem) Set() *EarleySet {
	return L.set
}

// Symbol is the transition symbol.
func (L *LeoItem) Symbol() *lr.ISymbol {
	return L.symbol
}

// Base returns the unique item expecting the transition symbol.
func (L *LeoItem) Base() *Item {
	return L.base
}

// Predecessor returns the next Leo item up the chain, or nil.
func (L *LeoItem) Predecessor() *LeoItem {
	return L.predecessor
}

// Top returns the template of the item at the top of the chain.
func (L *LeoItem) Top() *lr.AHM {
	return L.top
}

// Origin returns the origin of the item at the top of the chain.
func (L *LeoItem) Origin() *EarleySet {
	return L.origin
}

// IsValid is false if the chain has been broken by rejection of items.
func (L *LeoItem) IsValid() bool {
	return L.valid
}

func (L *LeoItem) String() string {
	return fmt.Sprintf("Leo(%s@%d → %v, %d)", L.symbol, L.set.earleme, L.top, L.origin.earleme)
}

// --- Tokens ----------------------------------------------------------------

// Token is an alternative read by the recognizer: a terminal spanning one
// or more earlemes, with a client-supplied value.
type Token struct {
	Symbol *lr.Symbol
	Value  interface{}
	Start  uint64
	End    uint64
}

// Span returns the range of earlemes covered by the token.
func (tok *Token) Span() thicket.Span {
	return thicket.Span{tok.Start, tok.End}
}

func (tok *Token) String() string {
	return fmt.Sprintf("%s%v", tok.Symbol.Name, tok.Span())
}
