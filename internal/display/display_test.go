package display

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"cryptopusher/internal/alert"
	"cryptopusher/internal/memorystore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() ([]memorystore.SymbolState, alert.ThresholdSet) {
	book := alert.NewThresholdBook([]string{"btc", "eth", "shib"})
	book.Replace(alert.ThresholdSet{
		"btc": {Low: alert.Float(300000), High: alert.Float(400000)},
		"eth": {High: alert.Float(20000)},
	})
	store := memorystore.NewPriceStore([]memorystore.Meta{
		{Symbol: "btc", DisplayName: "Bitcoin"},
		{Symbol: "eth", DisplayName: "Ethereum"},
		{Symbol: "shib", DisplayName: "Shiba Inu"},
	}, book)
	store.SetClock(func() time.Time { return time.Date(2025, 5, 1, 12, 30, 0, 0, time.UTC) })
	store.SetPrice("btc", 295000)
	store.SetPrice("eth", 15000)
	return store.GetAll(), book.Snapshot()
}

// go test -v --run TestTextBox
func TestTextBox(t *testing.T) {
	states, thresholds := snapshot()
	out := Text(states, thresholds)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	for _, l := range lines {
		assert.Equal(t, Width+2, utf8.RuneCountInString(l), "line %q", l)
	}

	assert.True(t, strings.HasPrefix(lines[0], "╔"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "╚"))
	assert.Contains(t, out, "Last update: 2025-05-01 12:30:00")
	assert.Contains(t, out, "BTC LOW ALERT")
	assert.NotContains(t, out, "ETH HIGH ALERT")
	assert.Contains(t, out, "Bitcoin (BTC):    R$ 295.000,00")
	assert.Contains(t, out, "Shiba Inu (SHIB): R$ N/A")
	assert.Contains(t, out, "Levels: BTC L=300.000,00 H=400.000,00")
	assert.Contains(t, out, "        ETH L=N/A H=20.000,00")
}

// go test -v --run TestTextBoxNoAlertsNoThresholds
func TestTextBoxNoAlertsNoThresholds(t *testing.T) {
	states, _ := snapshot()
	states = states[1:] // eth only priced one, NORMAL

	out := Text(states, nil)
	assert.NotContains(t, out, "ALERT")
	assert.NotContains(t, out, "Levels")
	// top, title, update, two separators, one line per symbol, bottom
	assert.Equal(t, 5+len(states)+1, strings.Count(out, "\n"))
}

// go test -v --run TestTextLastUpdate
func TestTextLastUpdate(t *testing.T) {
	older := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 5, 1, 11, 45, 10, 0, time.UTC)
	states := []memorystore.SymbolState{
		{Symbol: "btc", DisplayName: "Bitcoin", FormattedPrice: "1,00", LastUpdate: &newer},
		{Symbol: "eth", DisplayName: "Ethereum", FormattedPrice: "1,00", LastUpdate: &older},
		{Symbol: "shib", DisplayName: "Shiba Inu", FormattedPrice: "N/A"},
	}
	assert.Contains(t, Text(states, nil), "Last update: 2025-05-01 11:45:10")

	// nothing priced yet
	assert.Contains(t, Text(states[2:], nil), "Last update: N/A")
}

// go test -v --run TestRowTruncates
func TestRowTruncates(t *testing.T) {
	r := row(strings.Repeat("x", 100))
	assert.Equal(t, Width+3, utf8.RuneCountInString(r))
}

// go test -v --run TestPage
func TestPage(t *testing.T) {
	page, err := Page(PageOptions{Interval: 2 * time.Second})
	require.NoError(t, err)

	html := string(page)
	assert.Regexp(t, `fetch\(\s*"\\?/display"`, html)
	assert.Regexp(t, `setInterval\(refresh,\s*2000\s*\)`, html)
}
