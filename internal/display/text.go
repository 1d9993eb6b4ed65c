package display

import (
	"strings"
	"time"
	"unicode/utf8"

	"cryptopusher/internal/alert"
	"cryptopusher/internal/memorystore"
	"cryptopusher/pkg/format"
)

// Width is the inner width of the box, borders excluded.
const Width = 62

const title = "CRYPTO ANALYSER - REAL-TIME PRICES"

// Text renders the snapshot as a bordered fixed-width box. The update line
// shows the newest price write, N/A before the first one.
func Text(states []memorystore.SymbolState, thresholds alert.ThresholdSet) string {
	var b strings.Builder

	b.WriteString(border('╔', '╗'))
	b.WriteString(row(center(title)))
	b.WriteString(border('╠', '╣'))
	b.WriteString(row(" Last update: " + lastUpdate(states)))
	b.WriteString(border('╠', '╣'))

	var alerts []string
	for _, st := range states {
		if st.HasPrice() && st.AlertState.IsAlerting() {
			alerts = append(alerts, " "+strings.ToUpper(st.Symbol)+" "+string(st.AlertState)+" ALERT")
		}
	}
	if len(alerts) > 0 {
		for _, a := range alerts {
			b.WriteString(row(a))
		}
		b.WriteString(border('╠', '╣'))
	}

	labelWidth := 0
	labels := make([]string, len(states))
	for i, st := range states {
		labels[i] = st.DisplayName + " (" + strings.ToUpper(st.Symbol) + "):"
		labelWidth = max(labelWidth, utf8.RuneCountInString(labels[i]))
	}
	for i, st := range states {
		b.WriteString(row(pad(labels[i], labelWidth) + " R$ " + st.FormattedPrice))
	}

	first := true
	for _, st := range states {
		th, ok := thresholds[st.Symbol]
		if !ok || th.IsEmpty() {
			continue
		}
		if first {
			b.WriteString(border('╠', '╣'))
		}
		prefix := "        "
		if first {
			prefix = "Levels: "
		}
		first = false
		b.WriteString(row(prefix + strings.ToUpper(st.Symbol) +
			" L=" + format.PricePtr(th.Low) + " H=" + format.PricePtr(th.High)))
	}

	b.WriteString(border('╚', '╝'))
	return b.String()
}

func lastUpdate(states []memorystore.SymbolState) string {
	var newest time.Time
	for _, st := range states {
		if st.LastUpdate != nil && st.LastUpdate.After(newest) {
			newest = *st.LastUpdate
		}
	}
	if newest.IsZero() {
		return format.NotAvailable
	}
	return newest.Format("2006-01-02 15:04:05")
}

func border(left, right rune) string {
	return string(left) + strings.Repeat("═", Width) + string(right) + "\n"
}

// row pads or truncates s to Width runes and adds the side borders.
func row(s string) string {
	if n := utf8.RuneCountInString(s); n > Width {
		s = string([]rune(s)[:Width])
	}
	return "║" + pad(s, Width) + "║\n"
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= Width {
		return s
	}
	left := (Width - n) / 2
	return strings.Repeat(" ", left) + s
}
