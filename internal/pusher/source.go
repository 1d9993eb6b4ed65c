package pusher

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// PriceSource fetches the latest prices of a set of symbols. Symbols the
// source can't price are absent from the result.
type PriceSource interface {
	Name() string
	FetchPrices(ctx context.Context, symbols []string) (map[string]float64, error)
}

// ChainSource asks each source in turn for the symbols still missing.
type ChainSource struct {
	sources []PriceSource
	logger  *zap.Logger
}

func NewChainSource(logger *zap.Logger, sources ...PriceSource) *ChainSource {
	return &ChainSource{sources: sources, logger: logger}
}

func (c *ChainSource) Name() string {
	name := "chain"
	for _, s := range c.sources {
		name += ":" + s.Name()
	}
	return name
}

// FetchPrices returns an error only when no source produced any price.
func (c *ChainSource) FetchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	missing := symbols
	var errs []error

	for _, src := range c.sources {
		if len(missing) == 0 {
			break
		}

		got, err := src.FetchPrices(ctx, missing)
		if err != nil {
			c.logger.Warn("price source failed", zap.String("source", src.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		var still []string
		for _, sym := range missing {
			if p, ok := got[sym]; ok {
				prices[sym] = p
			} else {
				still = append(still, sym)
			}
		}
		missing = still
	}

	if len(prices) == 0 && len(symbols) > 0 {
		if len(errs) == 0 {
			return nil, errors.New("no source returned prices")
		}
		return nil, errors.Join(errs...)
	}
	return prices, nil
}
