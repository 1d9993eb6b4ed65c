package alert

import (
	"sort"
	"sync"
)

// ShouldAlert is the edge trigger: true only when the symbol sits in an extreme
// state that differs from the last state an alert was raised for.
func ShouldAlert(current, lastAlerted State) bool {
	if current == Normal || current == None {
		return false
	}
	return current != lastAlerted
}

// Gate tracks, per symbol, the last state that raised an alert and the set of
// symbols whose edges have not yet been delivered in a notification burst.
type Gate struct {
	mu          sync.Mutex
	lastAlerted map[string]State
	pending     map[string]State
}

func NewGate() *Gate {
	return &Gate{
		lastAlerted: make(map[string]State),
		pending:     make(map[string]State),
	}
}

// Observe applies the gate to the symbol's current state and records the outcome.
// Returning to NORMAL clears the history so the same extreme can alert again.
func (g *Gate) Observe(symbol string, current State) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last := g.lastAlerted[symbol]
	if ShouldAlert(current, last) {
		g.lastAlerted[symbol] = current
		g.pending[symbol] = current
		return true
	}
	if current == Normal {
		delete(g.lastAlerted, symbol)
	}
	return false
}

// LastAlerted returns the state that last raised an alert for symbol, or None.
func (g *Gate) LastAlerted(symbol string) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastAlerted[symbol]
}

// HasPending reports whether any edge is waiting to be notified.
func (g *Gate) HasPending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending) > 0
}

// Pending returns the symbols with undelivered edges, sorted.
func (g *Gate) Pending() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, 0, len(g.pending))
	for sym := range g.pending {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// ClearPending forgets undelivered edges after a burst was attempted.
func (g *Gate) ClearPending() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = make(map[string]State)
}
