package pusher

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// PriceWriter is the store side of ingestion.
type PriceWriter interface {
	Symbols() []string
	SetPrice(symbol string, price float64) bool
}

// Ingestor polls a price source and writes every returned price into the store.
type Ingestor struct {
	source PriceSource
	store  PriceWriter
	logger *zap.Logger
}

func NewIngestor(source PriceSource, store PriceWriter, logger *zap.Logger) *Ingestor {
	return &Ingestor{source: source, store: store, logger: logger}
}

// Step runs one fetch. Partial results are written; an empty result is an
// error so the task switches to its retry interval.
func (i *Ingestor) Step(ctx context.Context) error {
	symbols := i.store.Symbols()
	prices, err := i.source.FetchPrices(ctx, symbols)
	if err != nil {
		return err
	}
	if len(prices) == 0 {
		return errors.New("price source returned no prices")
	}

	updated := 0
	var missing []string
	for _, sym := range symbols {
		price, ok := prices[sym]
		if !ok {
			missing = append(missing, sym)
			continue
		}
		if i.store.SetPrice(sym, price) {
			updated++
		}
	}

	i.logger.Info("prices updated",
		zap.String("source", i.source.Name()),
		zap.Int("updated", updated),
		zap.Strings("missing", missing),
	)
	return nil
}
