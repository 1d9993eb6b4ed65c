package binance

import "encoding/json"

// TickerPrice is one entry of GET /api/v3/ticker/price.
type TickerPrice struct {
	Symbol string `json:"symbol"` // Exchange pair, e.g. "BTCBRL"
	Price  string `json:"price"`  // Last price as a decimal string
}

// APIError is the error envelope Binance returns on non-200 responses.
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *APIError) Error() string {
	return "binance error " + itoa(e.Code) + ": " + e.Msg
}

// StreamMessage wraps every payload received on a combined stream.
type StreamMessage struct {
	Stream string          `json:"stream"` // e.g. "btcbrl@miniTicker"
	Data   json.RawMessage `json:"data"`
}

// MiniTicker is the 24h rolling window mini-ticker event.
// Both "e" and "E" are declared so the case-insensitive decoder never mixes them up.
type MiniTicker struct {
	EventType   string `json:"e"` // "24hrMiniTicker"
	EventTime   int64  `json:"E"` // Event time in milliseconds since epoch
	Symbol      string `json:"s"` // Exchange pair
	Close       string `json:"c"` // Last price
	Open        string `json:"o"`
	High        string `json:"h"`
	Low         string `json:"l"`
	Volume      string `json:"v"` // Base asset volume
	QuoteVolume string `json:"q"` // Quote asset volume
}

// SubscribeRequest is the live subscription control message.
type SubscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}
