package alert

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestThresholdBook
func TestThresholdBook(t *testing.T) {
	book := NewThresholdBook([]string{"btc", "eth"})

	ignored := book.Replace(ThresholdSet{
		"btc":  {Low: Float(300000), High: Float(400000)},
		"doge": {High: Float(2)},
	})
	assert.Equal(t, []string{"doge"}, ignored)

	btc := book.Get("btc")
	require.NotNil(t, btc.Low)
	assert.Equal(t, 300000.0, *btc.Low)
	assert.True(t, book.Get("eth").IsEmpty())

	// copies must not alias the book
	*btc.Low = 1
	assert.Equal(t, 300000.0, *book.Get("btc").Low)

	merged, err := book.Update("btc", Thresholds{High: Float(450000)})
	require.NoError(t, err)
	assert.Equal(t, 300000.0, *merged.Low)
	assert.Equal(t, 450000.0, *merged.High)

	_, err = book.Update("doge", Thresholds{Low: Float(1)})
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	snap := book.Snapshot()
	assert.Equal(t, []string{"btc"}, snap.Symbols())
}

// go test -v --run TestThresholdBookTracks
func TestThresholdBookTracks(t *testing.T) {
	book := NewThresholdBook([]string{"btc"})
	assert.True(t, book.Tracks("btc"))
	assert.False(t, book.Tracks("doge"))
}

// go test -v --run TestThresholdBookApply
func TestThresholdBookApply(t *testing.T) {
	book := NewThresholdBook([]string{"btc"})
	book.Replace(ThresholdSet{"btc": {Low: Float(300000), High: Float(400000)}})

	var saved Thresholds
	got, err := book.Apply("btc", Thresholds{High: Float(450000)}, func(th Thresholds) error {
		saved = th
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Thresholds{Low: Float(300000), High: Float(450000)}, got)
	assert.Equal(t, got, saved)
	assert.Equal(t, got, book.Get("btc"))

	// failed save leaves the book untouched
	_, err = book.Apply("btc", Thresholds{Low: Float(1)}, func(Thresholds) error {
		return errors.New("permission denied")
	})
	assert.EqualError(t, err, "permission denied")
	assert.Equal(t, 300000.0, *book.Get("btc").Low)

	_, err = book.Apply("doge", Thresholds{Low: Float(1)}, nil)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

// go test -v --run TestThresholdBookApplySerializesWriters
func TestThresholdBookApplySerializesWriters(t *testing.T) {
	book := NewThresholdBook([]string{"btc"})

	var (
		mu       sync.Mutex
		last     Thresholds
		entered  = make(chan struct{})
		release  = make(chan struct{})
		firstRun = true
	)
	save := func(th Thresholds) error {
		mu.Lock()
		first := firstRun
		firstRun = false
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
		mu.Lock()
		last = th
		mu.Unlock()
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = book.Apply("btc", Thresholds{Low: Float(1)}, save)
	}()
	<-entered
	go func() {
		defer wg.Done()
		_, _ = book.Apply("btc", Thresholds{High: Float(2)}, save)
	}()

	// readers are not blocked while a save is in flight
	assert.True(t, book.Get("btc").IsEmpty())
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	want := Thresholds{Low: Float(1), High: Float(2)}
	assert.Equal(t, want, book.Get("btc"))
	assert.Equal(t, want, last)
}
