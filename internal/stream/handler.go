package stream

import (
	"encoding/json"
	"strings"

	"cryptopusher/pkg/binance"

	"go.uber.org/zap"
)

// PriceSetter is the store side the realtime feed writes into.
type PriceSetter interface {
	SetPrice(symbol string, price float64) bool
}

// MakeMessageHandler returns a function that handles combined-stream messages
// by parsing miniTicker events and writing the close price into the store.
func MakeMessageHandler(logger *zap.Logger, store PriceSetter, pairs binance.Pairs) func(msg []byte) {
	return func(msg []byte) {
		// Subscription acks ({"result":null,"id":1}) carry no stream name
		var envelope binance.StreamMessage
		if err := json.Unmarshal(msg, &envelope); err != nil {
			logger.Warn("failed to parse stream envelope", zap.Error(err))
			return
		}
		if !isMiniTickerStream(envelope.Stream) {
			return
		}

		var ticker binance.MiniTicker
		if err := json.Unmarshal(envelope.Data, &ticker); err != nil {
			logger.Warn("failed to parse miniTicker payload", zap.String("stream", envelope.Stream), zap.Error(err))
			return
		}

		symbol, ok := pairs.Symbol(ticker.Symbol)
		if !ok {
			return
		}

		price, err := binance.ParsePrice(ticker.Close)
		if err != nil {
			logger.Warn("invalid ticker price", zap.String("pair", ticker.Symbol), zap.Error(err))
			return
		}

		if !store.SetPrice(symbol, price) {
			logger.Debug("ticker for untracked symbol", zap.String("symbol", symbol))
		}
	}
}

// isMiniTickerStream returns true for stream names like "btcbrl@miniTicker".
func isMiniTickerStream(stream string) bool {
	return strings.HasSuffix(stream, "@miniTicker")
}
