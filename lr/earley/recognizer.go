package earley

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/thicket/lr"
)

// Errors returned by the recognizer. A call returning an error leaves the
// recognizer unchanged.
var (
	ErrNotStarted      = errors.New("recognizer not started")
	ErrStarted         = errors.New("recognizer already started")
	ErrExhausted       = errors.New("recognizer is exhausted")
	ErrInconsistent    = errors.New("recognizer has rejected items, call Clean")
	ErrNotATerminal    = errors.New("symbol is not a terminal")
	ErrUnexpectedToken = errors.New("token not expected")
	ErrDuplicateToken  = errors.New("duplicate token")
	ErrTokenLength     = errors.New("token length must be at least 1")
	ErrTokenTooLong    = errors.New("token length exceeds limit")
	ErrNoSuchSet       = errors.New("no such earley set")
	ErrNoSuchItem      = errors.New("no such earley item")
	ErrNoSuchEvent     = errors.New("no such event")
	ErrInternal        = errors.New("internal error")
)

// Phase is the input phase of a recognizer.
type Phase uint8

// A recognizer is created before input, reads input after Start, and is
// after input when it is exhausted.
const (
	BeforeInput Phase = iota
	DuringInput
	AfterInput
)

// Recognizer is an incremental Earley recognizer. Clients feed it tokens
// one earleme at a time:
//
//	rec, _ := earley.NewRecognizer(g)
//	rec.Start()
//	for … {
//	    rec.Alternative(sym, value, 1)   // one or more alternatives
//	    rec.Advance()                    // complete the earleme
//	}
//	ok := rec.Accepts(rec.CurrentEarleme())
//
// Tokens may span more than one earleme, and more than one token may start
// at an earleme, which makes for ambiguous input.
//
// The recognizer keeps all earley sets and item sources, which is what a
// parse forest is built from.
type Recognizer struct {
	g          *lr.Grammar
	phase      Phase
	sets       []*EarleySet
	byEarleme  map[uint64]*EarleySet
	current    uint64
	furthest   uint64
	pending    []*Token // sorted by end earleme
	exhausted  bool
	consistent bool
	dirty      int // earliest set affected by rejections
	useLeo     bool
	maxLen     int
	zwa        []bool
	armed      map[eventKey]bool
	events     []Event
	itemCount  int
}

// Option configures a recognizer.
type Option func(*Recognizer)

// UseLeo switches Leo transitions on or off. They are on by default, unless
// configuration flag 'earley-disable-leo' is set.
func UseLeo(b bool) Option {
	return func(r *Recognizer) {
		r.useLeo = b
	}
}

// TokenLengthLimit sets an upper limit for token lengths. 0 means no limit.
func TokenLengthLimit(n int) Option {
	return func(r *Recognizer) {
		r.maxLen = n
	}
}

// NewRecognizer creates a recognizer for a compiled grammar.
func NewRecognizer(g *lr.Grammar, opts ...Option) (*Recognizer, error) {
	if g == nil || !g.IsCompiled() {
		return nil, lr.ErrNotCompiled
	}
	r := &Recognizer{
		g:          g,
		byEarleme:  make(map[uint64]*EarleySet),
		consistent: true,
		useLeo:     !gconf.GetBool("earley-disable-leo"),
		zwa:        make([]bool, g.AssertionCount()),
		armed:      make(map[eventKey]bool),
	}
	for i := range r.zwa {
		r.zwa[i] = g.AssertionDefault(i)
	}
	for _, sym := range g.Symbols() {
		for _, k := range []lr.EventKind{lr.CompletionEvent, lr.NulledEvent, lr.PredictionEvent} {
			if sym.Events()&k != 0 {
				r.armed[eventKey{sym.ID, k}] = true
			}
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Grammar returns the grammar of the recognizer.
func (r *Recognizer) Grammar() *lr.Grammar {
	return r.g
}

// Phase returns the input phase.
func (r *Recognizer) Phase() Phase {
	return r.phase
}

// Start prepares the recognizer for input: creates the first earley set,
// with the start item and its predictions.
func (r *Recognizer) Start() error {
	if r.phase != BeforeInput {
		return ErrStarted
	}
	S := r.newSet(0)
	r.commitSet(S)
	r.events = r.events[:0]
	if start := r.g.StartRule(); start != nil {
		item, _ := r.add(S, start.First(), S, nil)
		if item != nil {
			r.predict(S, item.ahm)
		}
	}
	r.finishSet(S)
	if r.g.StartIsNullable() {
		r.collect(SymbolNulled, r.g.StartNulledEvents().Members(), 0)
	}
	r.phase = DuringInput
	r.checkExhaustion()
	tracer().Debugf("recognizer started, %d items in %v", len(S.items), S)
	return nil
}

func (r *Recognizer) newSet(earleme uint64) *EarleySet {
	return newEarleySet(len(r.sets), earleme)
}

func (r *Recognizer) commitSet(S *EarleySet) {
	r.sets = append(r.sets, S)
	r.byEarleme[S.earleme] = S
}

// Alternative reads a token for terminal sym, starting at the current
// earleme and spanning length earlemes. The token has to be expected by
// the current earley set; otherwise ErrUnexpectedToken is returned and the
// recognizer is unchanged.
func (r *Recognizer) Alternative(sym *lr.Symbol, value interface{}, length int) error {
	if err := r.readyForInput(); err != nil {
		return err
	}
	if length < 1 {
		return ErrTokenLength
	}
	if r.maxLen > 0 && length > r.maxLen {
		return ErrTokenTooLong
	}
	if sym == nil || sym.ID >= len(r.g.Symbols()) || r.g.Symbols()[sym.ID] != sym {
		return lr.ErrNoSuchSymbol
	}
	if !sym.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrNotATerminal, sym.Name)
	}
	isy := sym.NonNulling()
	S := r.byEarleme[r.current]
	if isy == nil || S == nil || !S.expects(isy) {
		return fmt.Errorf("%w: %s at %d", ErrUnexpectedToken, sym.Name, r.current)
	}
	end := r.current + uint64(length)
	for _, tok := range r.pending {
		if tok.Symbol == sym && tok.Start == r.current && tok.End == end {
			return fmt.Errorf("%w: %s", ErrDuplicateToken, tok)
		}
	}
	tok := &Token{Symbol: sym, Value: value, Start: r.current, End: end}
	i := sort.Search(len(r.pending), func(i int) bool {
		return r.pending[i].End > end
	})
	r.pending = append(r.pending, nil)
	copy(r.pending[i+1:], r.pending[i:])
	r.pending[i] = tok
	if end > r.furthest {
		r.furthest = end
	}
	tracer().Debugf("alternative %v", tok)
	return nil
}

// AlternativeByType is a variant of Alternative which selects the terminal
// by token type.
func (r *Recognizer) AlternativeByType(tokval int, value interface{}, length int) error {
	sym := r.g.Terminal(tokval)
	if sym == nil {
		return fmt.Errorf("%w: token type %d", ErrNotATerminal, tokval)
	}
	return r.Alternative(sym, value, length)
}

func (r *Recognizer) readyForInput() error {
	switch {
	case r.phase == BeforeInput:
		return ErrNotStarted
	case !r.consistent:
		return ErrInconsistent
	case r.exhausted:
		return ErrExhausted
	}
	return nil
}

// Advance completes the current earleme and moves on to the next one. All
// tokens ending at the next earleme are scanned, completions and predictions
// are added, and events are collected. Advance returns the number of events
// triggered, which are available with Events().
func (r *Recognizer) Advance() (int, error) {
	if err := r.readyForInput(); err != nil {
		return 0, err
	}
	r.current++
	r.events = r.events[:0]
	S := r.newSet(r.current)
	n := 0
	for n < len(r.pending) && r.pending[n].End == r.current {
		n++
	}
	tokens := r.pending[:n]
	r.pending = r.pending[n:]
	for _, tok := range tokens {
		if err := r.scan(S, tok); err != nil {
			return 0, err
		}
	}
	if len(S.items) > 0 {
		r.commitSet(S)
		r.complete(S)
		k := len(S.items)
		for i := 0; i < k; i++ {
			r.predict(S, S.items[i].ahm)
		}
		r.finishSet(S)
	}
	r.checkExhaustion()
	tracer().Debugf("earleme %d: %d items", r.current, len(S.items))
	return len(r.events), nil
}

func (r *Recognizer) scan(S *EarleySet, tok *Token) error {
	O := r.byEarleme[tok.Start]
	if O == nil {
		return internalError(fmt.Sprintf("no earley set for start of token %v", tok))
	}
	for _, p := range O.Postdot(tok.Symbol.NonNulling()) {
		r.add(S, p.ahm.Next(), p.origin, &Source{Kind: TokenSource, Predecessor: p, Token: tok})
	}
	return nil
}

// complete works off completed items in S. Items created here may be
// completions themselves and are picked up by the loop.
func (r *Recognizer) complete(S *EarleySet) {
	for i := 0; i < len(S.items); i++ {
		c := S.items[i]
		if !c.ahm.IsCompletion() {
			continue
		}
		e := c.origin.postdot[c.ahm.Rule.LHS.ID]
		if e == nil {
			continue
		}
		if L := e.leo; L != nil && r.useLeo {
			r.add(S, L.top, L.origin, &Source{Kind: LeoSource, Leo: L, Cause: c})
			r.collect(SymbolNulled, L.nulled, S.earleme)
			r.collect(SymbolCompleted, L.events, S.earleme)
			continue
		}
		for _, p := range e.items {
			r.add(S, p.ahm.Next(), p.origin, &Source{Kind: CompletionSource, Predecessor: p, Cause: c})
		}
	}
}

// predict adds the predictions for template ahm to S.
func (r *Recognizer) predict(S *EarleySet, ahm *lr.AHM) {
	if ahm.Postdot == nil || ahm.Predicted.IsEmpty() {
		return
	}
	if !r.g.HasAssertions() {
		for _, id := range ahm.Predicted.Members() {
			r.add(S, r.g.IRule(id).First(), S, nil)
		}
		r.collect(SymbolPredicted, ahm.PredictionEvents.Members(), S.earleme)
		return
	}
	// Assertions may block predictions, so expand through created items only.
	seen := map[int]bool{ahm.Postdot.ID: true}
	work := []*lr.ISymbol{ahm.Postdot}
	for len(work) > 0 {
		X := work[len(work)-1]
		work = work[:len(work)-1]
		for _, rule := range r.g.RulesFor(X) {
			item, _ := r.add(S, rule.First(), S, nil)
			if item == nil {
				continue
			}
			if lhs := rule.LHS; !lhs.Virtual && lhs.Source.Events()&lr.PredictionEvent != 0 {
				r.collect(SymbolPredicted, []int{lhs.Source.ID}, S.earleme)
			}
			if Y := rule.First().Postdot; !seen[Y.ID] {
				seen[Y.ID] = true
				work = append(work, Y)
			}
		}
	}
}

// add adds an item to S, or a source to an existing item. It returns nil if
// a zero-width assertion blocks the item.
func (r *Recognizer) add(S *EarleySet, ahm *lr.AHM, origin *EarleySet, src *Source) (*Item, bool) {
	key := itemKey{ahm.ID, origin.id}
	if item, ok := S.index[key]; ok {
		if src != nil {
			item.addSource(*src)
		}
		return item, false
	}
	for _, zwa := range ahm.Assertions {
		if !r.zwa[zwa] {
			tracer().Debugf("assertion %d blocks %v at %d", zwa, ahm, S.earleme)
			return nil, false
		}
	}
	item := &Item{
		set:     S,
		ordinal: len(S.items),
		ahm:     ahm,
		origin:  origin,
		active:  true,
	}
	if src != nil {
		item.sources = []Source{*src}
	}
	S.items = append(S.items, item)
	S.index[key] = item
	r.itemCount++
	r.collect(SymbolNulled, ahm.NulledEvents.Members(), S.earleme)
	r.collect(SymbolCompleted, ahm.CompletionEvents.Members(), S.earleme)
	return item, true
}

// finishSet builds the postdot index and the Leo items of S.
func (r *Recognizer) finishSet(S *EarleySet) {
	S.buildPostdot()
	S.leos = S.leos[:0]
	for _, id := range S.pdkeys {
		r.leoFor(S, id)
	}
}

// leoFor returns the Leo item of S for symbol isy, creating it if the
// symbol is expected by a single item which is a Leo base. The predecessor
// is looked up in the base's origin set, which may be S itself.
func (r *Recognizer) leoFor(S *EarleySet, isy int) *LeoItem {
	e := S.postdot[isy]
	if e == nil {
		return nil
	}
	if e.leoDone {
		return e.leo
	}
	e.leoDone = true
	if !r.useLeo || len(e.items) != 1 || !e.items[0].ahm.LeoEligible {
		return nil
	}
	base := e.items[0]
	top := base.ahm.Next()
	L := &LeoItem{
		set:    S,
		symbol: base.ahm.Postdot,
		base:   base,
		top:    top,
		origin: base.origin,
		events: top.CompletionEvents.Members(),
		nulled: top.NulledEvents.Members(),
		valid:  true,
	}
	if pred := r.leoFor(base.origin, top.Rule.LHS.ID); pred != nil {
		L.predecessor = pred
		L.top = pred.top
		L.origin = pred.origin
		L.events = mergeInts(L.events, pred.events)
		L.nulled = mergeInts(L.nulled, pred.nulled)
	}
	e.leo = L
	S.leos = append(S.leos, L)
	return L
}

func (r *Recognizer) checkExhaustion() {
	r.exhausted = false
	if len(r.pending) == 0 {
		S := r.byEarleme[r.current]
		r.exhausted = S == nil || len(r.expected(S)) == 0
	}
	if r.exhausted {
		r.phase = AfterInput
		r.events = append(r.events, Event{Type: Exhausted, Earleme: r.current})
		tracer().Debugf("recognizer exhausted at earleme %d", r.current)
	}
}

// --- Queries ---------------------------------------------------------------

// CurrentEarleme returns the earleme where the next token will start.
func (r *Recognizer) CurrentEarleme() uint64 {
	return r.current
}

// FurthestEarleme returns the furthest earleme any token read so far
// reaches.
func (r *Recognizer) FurthestEarleme() uint64 {
	if r.current > r.furthest {
		return r.current
	}
	return r.furthest
}

// IsExhausted is true if no more input can be accepted.
func (r *Recognizer) IsExhausted() bool {
	return r.exhausted
}

// IsConsistent is false after items have been rejected, until Clean is
// called.
func (r *Recognizer) IsConsistent() bool {
	return r.consistent
}

// ItemCount returns the number of items created so far.
func (r *Recognizer) ItemCount() int {
	return r.itemCount
}

// SetCount returns the number of earley sets.
func (r *Recognizer) SetCount() int {
	return len(r.sets)
}

// EarleySet returns set no. i.
func (r *Recognizer) EarleySet(i int) (*EarleySet, error) {
	if i < 0 || i >= len(r.sets) {
		return nil, ErrNoSuchSet
	}
	return r.sets[i], nil
}

// SetAt returns the set at an earleme, or nil if there is none.
func (r *Recognizer) SetAt(earleme uint64) *EarleySet {
	return r.byEarleme[earleme]
}

// LatestSet returns the most recent earley set.
func (r *Recognizer) LatestSet() *EarleySet {
	if len(r.sets) == 0 {
		return nil
	}
	return r.sets[len(r.sets)-1]
}

// ExpectedTerminals returns the terminals expected at the current earleme.
func (r *Recognizer) ExpectedTerminals() []*lr.Symbol {
	S := r.byEarleme[r.current]
	if S == nil {
		return nil
	}
	return r.expected(S)
}

func (r *Recognizer) expected(S *EarleySet) []*lr.Symbol {
	var terms []*lr.Symbol
	isyms := r.g.ISymbols()
	for _, id := range S.pdkeys {
		if isy := isyms[id]; isy.Terminal && S.expects(isy) {
			terms = append(terms, isy.Source)
		}
	}
	return terms
}

// IsExpected is true if terminal sym is expected at the current earleme.
func (r *Recognizer) IsExpected(sym *lr.Symbol) bool {
	S := r.byEarleme[r.current]
	return S != nil && sym != nil && sym.NonNulling() != nil && S.expects(sym.NonNulling())
}

// StartItem returns the completed start item at an earleme, or nil.
func (r *Recognizer) StartItem(earleme uint64) *Item {
	start := r.g.StartRule()
	S := r.byEarleme[earleme]
	if start == nil || S == nil || len(r.sets) == 0 {
		return nil
	}
	item := S.Find(start.Completion(), r.sets[0])
	if item == nil || !item.active {
		return nil
	}
	return item
}

// Accepts is true if the input up to an earleme is a sentence of the
// grammar.
func (r *Recognizer) Accepts(earleme uint64) bool {
	if r.phase == BeforeInput {
		return false
	}
	if earleme == 0 && r.g.StartIsNullable() {
		return true
	}
	return r.StartItem(earleme) != nil
}

// SetAssertion sets the value of a zero-width assertion. It is effective
// for items created from now on.
func (r *Recognizer) SetAssertion(zwa int, value bool) error {
	if zwa < 0 || zwa >= len(r.zwa) {
		return lr.ErrNoSuchAssertion
	}
	r.zwa[zwa] = value
	return nil
}

func mergeInts(a, b []int) []int {
	m := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			m = append(m, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			m = append(m, b[j])
			j++
		default:
			m = append(m, a[i])
			i++
			j++
		}
	}
	return m
}
