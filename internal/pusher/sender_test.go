package pusher

import (
	"context"
	"testing"
	"time"

	"cryptopusher/internal/alert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestEndToEndSingleTransition
func TestEndToEndSingleTransition(t *testing.T) {
	f := newFixture()

	var states []alert.State
	for _, price := range []float64{310000, 295000, 295000, 310000} {
		f.tick(time.Minute, "btc", price)
		st, _ := f.store.Get("btc")
		states = append(states, st.AlertState)
	}

	assert.Equal(t, []alert.State{alert.Normal, alert.Low, alert.Low, alert.Normal}, states)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "CRYPTO ANALYSER", f.notifier.sent[0].Title)
	assert.Equal(t, "BTC: 295.000,00 (LOW)", f.notifier.sent[0].Body)
	assert.Equal(t, "LOW", f.notifier.sent[0].Data["btc_status"])
}

// go test -v --run TestSenderThrottlesBursts
func TestSenderThrottlesBursts(t *testing.T) {
	f := newFixture()

	f.tick(0, "btc", 410000) // HIGH, first burst
	require.Len(t, f.notifier.sent, 1)

	// eth goes LOW 10s later: edge recorded, throttle holds it back
	f.tick(10*time.Second, "eth", 11000)
	assert.Len(t, f.notifier.sent, 1)
	assert.True(t, f.gate.HasPending())

	// once the cooldown elapses the pending edge goes out, with both symbols
	f.tick(20*time.Second, "", 0)
	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, "BTC: 410.000,00 (HIGH) | ETH: 11.000,00 (LOW)", f.notifier.sent[1].Body)

	// sustained extremes never send again
	f.tick(time.Hour, "btc", 420000)
	assert.Len(t, f.notifier.sent, 2)
}

// go test -v --run TestSenderSkipsRecoveredEdges
func TestSenderSkipsRecoveredEdges(t *testing.T) {
	f := newFixture()
	f.throttle.MarkSent(f.now)

	f.tick(time.Second, "btc", 410000)
	f.tick(time.Second, "btc", 350000)

	// cooldown over, but btc is back to NORMAL: nothing to report
	f.tick(time.Minute, "", 0)
	assert.Empty(t, f.notifier.sent)
	assert.False(t, f.gate.HasPending())
}

// go test -v --run TestSenderFailureAdvancesThrottle
func TestSenderFailureAdvancesThrottle(t *testing.T) {
	f := newFixture()
	f.notifier.err = errUnavailable

	f.tick(0, "btc", 290000)
	require.Len(t, f.notifier.sent, 1)

	last, ok := f.throttle.LastSent()
	assert.True(t, ok)
	assert.Equal(t, f.now, last)
	assert.False(t, f.gate.HasPending())

	// no retry storm: the failed edge is not retried on the next tick
	f.tick(time.Minute, "", 0)
	assert.Len(t, f.notifier.sent, 1)
}

// go test -v --run TestSenderReentryAlertsAgain
func TestSenderReentryAlertsAgain(t *testing.T) {
	f := newFixture()

	f.tick(0, "btc", 410000)
	f.tick(time.Minute, "btc", 350000)
	f.tick(time.Minute, "btc", 410000)

	assert.Len(t, f.notifier.sent, 2)
	assert.NoError(t, f.sender.Step(context.Background()))
}
