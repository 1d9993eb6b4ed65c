package notification

import (
	"strings"
	"time"

	"cryptopusher/internal/memorystore"
)

const DefaultTitle = "CRYPTO ANALYSER"

// Composer turns a store snapshot into one outbound notification.
type Composer struct {
	title string
}

func NewComposer(title string) *Composer {
	if title == "" {
		title = DefaultTitle
	}
	return &Composer{title: title}
}

// Compose reports every priced symbol, alerting or not, in snapshot order.
// ok is false when no symbol has a price yet; callers skip sending then.
func (c *Composer) Compose(states []memorystore.SymbolState, now time.Time) (n Notification, ok bool) {
	var (
		entries []Entry
		parts   []string
	)

	for _, st := range states {
		if !st.HasPrice() {
			continue
		}
		entries = append(entries, Entry{
			Symbol:         st.Symbol,
			Price:          *st.Price,
			FormattedPrice: st.FormattedPrice,
			Status:         st.AlertState,
		})
		parts = append(parts, strings.ToUpper(st.Symbol)+": "+st.FormattedPrice+" ("+string(st.AlertState)+")")
	}

	if len(entries) == 0 {
		return Notification{}, false
	}

	return Notification{
		Title: c.title,
		Body:  strings.Join(parts, " | "),
		Payload: Payload{
			Entries:   entries,
			Timestamp: now,
		},
	}, true
}

// AnyAlerting reports whether at least one priced symbol is LOW or HIGH.
func AnyAlerting(states []memorystore.SymbolState) bool {
	for _, st := range states {
		if st.HasPrice() && st.AlertState.IsAlerting() {
			return true
		}
	}
	return false
}
