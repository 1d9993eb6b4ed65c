package alert

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrNoThresholds is returned by a ThresholdSource holding no usable entry.
	ErrNoThresholds = errors.New("no thresholds configured")
)

// Thresholds holds the optional low/high bounds of one symbol.
// A nil side never fires.
type Thresholds struct {
	Low  *float64 `json:"low"`
	High *float64 `json:"high"`
}

// IsEmpty is true when neither side is set.
func (t Thresholds) IsEmpty() bool {
	return t.Low == nil && t.High == nil
}

// Merge returns t with every side that is set in patch replaced.
func (t Thresholds) Merge(patch Thresholds) Thresholds {
	out := t.clone()
	if patch.Low != nil {
		v := *patch.Low
		out.Low = &v
	}
	if patch.High != nil {
		v := *patch.High
		out.High = &v
	}
	return out
}

func (t Thresholds) clone() Thresholds {
	var out Thresholds
	if t.Low != nil {
		v := *t.Low
		out.Low = &v
	}
	if t.High != nil {
		v := *t.High
		out.High = &v
	}
	return out
}

// Float is a helper for building thresholds literals.
func Float(v float64) *float64 { return &v }

// ThresholdSet maps symbol to its thresholds.
type ThresholdSet map[string]Thresholds

// Symbols returns the set's keys, sorted.
func (s ThresholdSet) Symbols() []string {
	out := make([]string, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// ThresholdSource persists the threshold configuration.
type ThresholdSource interface {
	Load(ctx context.Context) (ThresholdSet, error)
	Save(ctx context.Context, set ThresholdSet) error
}

// ThresholdBook is the single owner of the runtime thresholds. Readers get
// copies; writers go through Replace, Update or Apply.
type ThresholdBook struct {
	// writeMu orders writers, including the persistence step of Apply,
	// without holding mu while a store call is in flight.
	writeMu sync.Mutex
	mu      sync.RWMutex
	known   map[string]struct{}
	entries ThresholdSet
}

// NewThresholdBook creates a book that accepts thresholds only for the given symbols.
func NewThresholdBook(symbols []string) *ThresholdBook {
	known := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		known[s] = struct{}{}
	}
	return &ThresholdBook{
		known:   known,
		entries: make(ThresholdSet),
	}
}

// Tracks reports whether symbol accepts thresholds.
func (b *ThresholdBook) Tracks(symbol string) bool {
	_, ok := b.known[symbol]
	return ok
}

// Get returns a copy of the thresholds for symbol; empty when unset.
func (b *ThresholdBook) Get(symbol string) Thresholds {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.entries[symbol].clone()
}

// Snapshot returns a deep copy of all configured thresholds.
func (b *ThresholdBook) Snapshot() ThresholdSet {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(ThresholdSet, len(b.entries))
	for sym, th := range b.entries {
		out[sym] = th.clone()
	}
	return out
}

// Replace swaps in a freshly loaded configuration. Entries for untracked
// symbols are dropped and reported back.
func (b *ThresholdBook) Replace(set ThresholdSet) (ignored []string) {
	next := make(ThresholdSet, len(set))
	for sym, th := range set {
		if _, ok := b.known[sym]; !ok {
			ignored = append(ignored, sym)
			continue
		}
		next[sym] = th.clone()
	}
	sort.Strings(ignored)

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	b.mu.Lock()
	b.entries = next
	b.mu.Unlock()
	return ignored
}

// Update merges patch into the symbol's thresholds and returns the result.
func (b *ThresholdBook) Update(symbol string, patch Thresholds) (Thresholds, error) {
	if _, ok := b.known[symbol]; !ok {
		return Thresholds{}, fmt.Errorf("update thresholds for %q: %w", symbol, ErrUnknownSymbol)
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	return b.store(symbol, b.Get(symbol).Merge(patch)), nil
}

// Apply merges patch into the symbol's thresholds, hands the result to save
// and stores it only when save succeeds. Concurrent Apply calls run one at a
// time, so what save persisted is always what the book holds.
func (b *ThresholdBook) Apply(symbol string, patch Thresholds, save func(Thresholds) error) (Thresholds, error) {
	if _, ok := b.known[symbol]; !ok {
		return Thresholds{}, fmt.Errorf("update thresholds for %q: %w", symbol, ErrUnknownSymbol)
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	merged := b.Get(symbol).Merge(patch)
	if save != nil {
		if err := save(merged.clone()); err != nil {
			return Thresholds{}, err
		}
	}
	return b.store(symbol, merged), nil
}

func (b *ThresholdBook) store(symbol string, th Thresholds) Thresholds {
	b.mu.Lock()
	b.entries[symbol] = th
	b.mu.Unlock()
	return th.clone()
}
