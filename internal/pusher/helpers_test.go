package pusher

import (
	"context"
	"errors"
	"sync"
	"time"

	"cryptopusher/internal/alert"
	"cryptopusher/internal/memorystore"
	"cryptopusher/internal/notification"
	"cryptopusher/pkg/notify"
)

type fakeSource struct {
	name   string
	prices map[string]float64
	err    error
	asked  [][]string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchPrices(_ context.Context, symbols []string) (map[string]float64, error) {
	f.asked = append(f.asked, symbols)
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]float64{}
	for _, s := range symbols {
		if p, ok := f.prices[s]; ok {
			out[s] = p
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []notify.Message
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

var errUnavailable = errors.New("service unavailable")

type fixture struct {
	book     *alert.ThresholdBook
	store    *memorystore.PriceStore
	gate     *alert.Gate
	throttle *alert.Throttle
	notifier *fakeNotifier
	monitor  *Monitor
	sender   *Sender
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}

	f.book = alert.NewThresholdBook([]string{"btc", "eth"})
	f.book.Replace(alert.ThresholdSet{
		"btc": {Low: alert.Float(300000), High: alert.Float(400000)},
		"eth": {Low: alert.Float(12000), High: alert.Float(20000)},
	})
	f.store = memorystore.NewPriceStore([]memorystore.Meta{
		{Symbol: "btc", DisplayName: "Bitcoin"},
		{Symbol: "eth", DisplayName: "Ethereum"},
	}, f.book)
	f.store.SetClock(func() time.Time { return f.now })

	f.gate = alert.NewGate()
	f.throttle = alert.NewThrottle()
	f.notifier = &fakeNotifier{}

	ids, err := notify.NewIDGenerator(1)
	if err != nil {
		panic(err)
	}

	f.monitor = NewMonitor(f.store, f.gate, nopLogger)
	f.sender = NewSender(f.store, f.gate, f.throttle, notification.NewComposer(""), f.notifier, ids,
		SenderConfig{Interval: 30 * time.Second, SendTimeout: time.Second}, nopLogger)
	f.sender.SetClock(func() time.Time { return f.now })
	return f
}

// tick advances the clock, optionally writes a price and runs monitor then sender.
func (f *fixture) tick(d time.Duration, symbol string, price float64) {
	f.now = f.now.Add(d)
	if symbol != "" {
		f.store.SetPrice(symbol, price)
	}
	_ = f.monitor.Step(context.Background())
	_ = f.sender.Step(context.Background())
}
