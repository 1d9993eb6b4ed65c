package memorystore

import (
	"time"

	"cryptopusher/internal/alert"
)

// SymbolState is the last known market state of one tracked symbol.
type SymbolState struct {
	Symbol         string      `json:"symbol"`          // Stable lowercase identifier (e.g., "btc")
	DisplayName    string      `json:"name"`            // Human label (e.g., "Bitcoin")
	Price          *float64    `json:"price"`           // Last price in BRL; nil until the first successful fetch
	FormattedPrice string      `json:"formatted_price"` // Brazilian-formatted Price, "N/A" while Price is nil
	LastUpdate     *time.Time  `json:"last_update"`     // Time of the last successful price write
	AlertState     alert.State `json:"alert_status"`    // NORMAL, LOW or HIGH
}

// HasPrice reports whether a price was ever written.
func (s SymbolState) HasPrice() bool {
	return s.Price != nil
}

// Meta describes a symbol at startup.
type Meta struct {
	Symbol      string
	DisplayName string
}
