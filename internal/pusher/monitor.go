package pusher

import (
	"context"

	"cryptopusher/internal/alert"
	"cryptopusher/internal/memorystore"

	"go.uber.org/zap"
)

// StateReader is the read side of the store.
type StateReader interface {
	GetAll() []memorystore.SymbolState
}

// Monitor feeds the current alert state of every priced symbol through the gate.
type Monitor struct {
	store  StateReader
	gate   *alert.Gate
	logger *zap.Logger
}

func NewMonitor(store StateReader, gate *alert.Gate, logger *zap.Logger) *Monitor {
	return &Monitor{store: store, gate: gate, logger: logger}
}

func (m *Monitor) Step(_ context.Context) error {
	for _, st := range m.store.GetAll() {
		if !st.HasPrice() {
			continue
		}
		if m.gate.Observe(st.Symbol, st.AlertState) {
			m.logger.Info("alert triggered",
				zap.String("symbol", st.Symbol),
				zap.Stringer("state", st.AlertState),
				zap.String("price", st.FormattedPrice),
			)
		}
	}
	return nil
}
