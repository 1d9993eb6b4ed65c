package memory

import (
	"context"
	"fmt"
	"sync"

	"cryptopusher/config"
	"cryptopusher/internal/alert"
)

// ThresholdStore keeps thresholds in process memory. Seeded from the config
// file, it serves development setups without a remote store; saved values
// last until the process exits.
type ThresholdStore struct {
	mu  sync.Mutex
	set alert.ThresholdSet
}

func NewThresholdStore(seed alert.ThresholdSet) *ThresholdStore {
	s := &ThresholdStore{set: make(alert.ThresholdSet, len(seed))}
	for sym, th := range seed {
		s.set[sym] = alert.Thresholds{}.Merge(th)
	}
	return s
}

// FromConfig builds the seed from the thresholds.static section.
func FromConfig(static map[string]config.StaticThreshold) *ThresholdStore {
	seed := make(alert.ThresholdSet, len(static))
	for sym, th := range static {
		seed[sym] = alert.Thresholds{Low: th.Low, High: th.High}
	}
	return NewThresholdStore(seed)
}

func (s *ThresholdStore) Load(context.Context) (alert.ThresholdSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to avoid sharing pointers with callers
	out := make(alert.ThresholdSet, len(s.set))
	for sym, th := range s.set {
		if th.IsEmpty() {
			continue
		}
		out[sym] = alert.Thresholds{}.Merge(th)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("static thresholds: %w", alert.ErrNoThresholds)
	}
	return out, nil
}

// Save replaces the stored entry of every symbol in set.
func (s *ThresholdStore) Save(_ context.Context, set alert.ThresholdSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sym, th := range set {
		s.set[sym] = alert.Thresholds{}.Merge(th)
	}
	return nil
}
