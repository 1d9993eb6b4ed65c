package memorystore

import (
	"sync"
	"time"

	"cryptopusher/internal/alert"
	"cryptopusher/pkg/format"
)

// ThresholdReader supplies the current thresholds snapshot for a symbol.
type ThresholdReader interface {
	Get(symbol string) alert.Thresholds
}

// PriceStore maps symbol to SymbolState for a fixed symbol set.
// The symbol map never changes after construction, so the outer lock only
// guards iteration order; each entry has its own lock.
type PriceStore struct {
	globalMu   sync.RWMutex
	order      []string
	data       map[string]*symbolEntry
	thresholds ThresholdReader
	now        func() time.Time
}

type symbolEntry struct {
	mu    sync.RWMutex
	state SymbolState
}

// NewPriceStore creates an entry for every symbol, in the given order.
func NewPriceStore(symbols []Meta, thresholds ThresholdReader) *PriceStore {
	s := &PriceStore{
		data:       make(map[string]*symbolEntry, len(symbols)),
		thresholds: thresholds,
		now:        time.Now,
	}
	for _, m := range symbols {
		if _, dup := s.data[m.Symbol]; dup {
			continue
		}
		s.order = append(s.order, m.Symbol)
		s.data[m.Symbol] = &symbolEntry{state: SymbolState{
			Symbol:         m.Symbol,
			DisplayName:    m.DisplayName,
			FormattedPrice: format.NotAvailable,
			AlertState:     alert.Normal,
		}}
	}
	return s
}

// SetClock overrides the time source used for LastUpdate.
func (s *PriceStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *PriceStore) entry(symbol string) (*symbolEntry, bool) {
	s.globalMu.RLock()
	e, ok := s.data[symbol]
	s.globalMu.RUnlock()
	return e, ok
}

// Get returns a copy of the symbol's state.
func (s *PriceStore) Get(symbol string) (SymbolState, bool) {
	e, ok := s.entry(symbol)
	if !ok {
		return SymbolState{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyState(e.state), true
}

// SetPrice writes a new price, reformats it and re-evaluates the alert state
// in one step. Returns false for an untracked symbol.
func (s *PriceStore) SetPrice(symbol string, price float64) bool {
	e, ok := s.entry(symbol)
	if !ok {
		return false
	}

	th := s.thresholds.Get(symbol)
	now := s.now()

	e.mu.Lock()
	e.state.Price = &price
	e.state.FormattedPrice = format.Price(price)
	e.state.LastUpdate = &now
	e.state.AlertState = alert.Evaluate(price, th)
	e.mu.Unlock()

	return true
}

// Reevaluate recomputes the alert state of a priced symbol against the
// current thresholds, e.g. after they were updated at runtime.
func (s *PriceStore) Reevaluate(symbol string) (alert.State, bool) {
	e, ok := s.entry(symbol)
	if !ok {
		return alert.Normal, false
	}

	th := s.thresholds.Get(symbol)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Price != nil {
		e.state.AlertState = alert.Evaluate(*e.state.Price, th)
	}
	return e.state.AlertState, true
}

// Symbols returns the tracked symbols in startup order.
func (s *PriceStore) Symbols() []string {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// GetAll returns a copy of every symbol's state in startup order.
func (s *PriceStore) GetAll() []SymbolState {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	out := make([]SymbolState, 0, len(s.order))
	for _, sym := range s.order {
		e := s.data[sym]
		e.mu.RLock()
		out = append(out, copyState(e.state))
		e.mu.RUnlock()
	}
	return out
}

// CountPriced returns how many symbols have received at least one price.
func (s *PriceStore) CountPriced() int {
	n := 0
	for _, st := range s.GetAll() {
		if st.HasPrice() {
			n++
		}
	}
	return n
}

func copyState(st SymbolState) SymbolState {
	out := st
	if st.Price != nil {
		p := *st.Price
		out.Price = &p
	}
	if st.LastUpdate != nil {
		t := *st.LastUpdate
		out.LastUpdate = &t
	}
	return out
}
