package notification

import (
	"strconv"
	"time"

	"cryptopusher/internal/alert"
)

// Entry is the reported status of one priced symbol.
type Entry struct {
	Symbol         string      `json:"symbol"`
	Price          float64     `json:"price"`
	FormattedPrice string      `json:"formatted_price"`
	Status         alert.State `json:"status"`
}

// Payload is the structured data attached to a push message.
type Payload struct {
	Entries   []Entry   `json:"entries"`
	Timestamp time.Time `json:"timestamp"`
}

// Data flattens the payload into the string map push channels expect:
// "<symbol>_price", "<symbol>_status" and "timestamp".
func (p Payload) Data() map[string]string {
	out := make(map[string]string, len(p.Entries)*2+1)
	for _, e := range p.Entries {
		out[e.Symbol+"_price"] = strconv.FormatFloat(e.Price, 'f', -1, 64)
		out[e.Symbol+"_status"] = string(e.Status)
	}
	out["timestamp"] = p.Timestamp.Format(time.RFC3339)
	return out
}

// Notification is a composed title/body pair plus its payload.
type Notification struct {
	Title   string
	Body    string
	Payload Payload
}
