package alert

import (
	"sync"
	"time"
)

// Throttle is the process-wide cooldown between notification bursts.
type Throttle struct {
	mu       sync.Mutex
	lastSent time.Time
}

func NewThrottle() *Throttle {
	return &Throttle{}
}

// Ready is true if nothing was ever sent or at least interval elapsed since the last burst.
func (t *Throttle) Ready(now time.Time, interval time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastSent.IsZero() {
		return true
	}
	return now.Sub(t.lastSent) >= interval
}

// MarkSent records a burst attempt, successful or not.
func (t *Throttle) MarkSent(now time.Time) {
	t.mu.Lock()
	t.lastSent = now
	t.mu.Unlock()
}

// LastSent returns the time of the last burst and whether one happened.
func (t *Throttle) LastSent() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSent, !t.lastSent.IsZero()
}
