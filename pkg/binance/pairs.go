package binance

import (
	"fmt"
	"strconv"
	"strings"
)

// Pairs maps internal symbols ("btc") to exchange pairs ("BTCBRL") and back.
type Pairs struct {
	toPair   map[string]string
	toSymbol map[string]string
}

func NewPairs(symbolToPair map[string]string) Pairs {
	p := Pairs{
		toPair:   make(map[string]string, len(symbolToPair)),
		toSymbol: make(map[string]string, len(symbolToPair)),
	}
	for sym, pair := range symbolToPair {
		if pair == "" {
			continue
		}
		pair = strings.ToUpper(pair)
		p.toPair[strings.ToLower(sym)] = pair
		p.toSymbol[pair] = strings.ToLower(sym)
	}
	return p
}

// Pair returns the exchange pair for symbol.
func (p Pairs) Pair(symbol string) (string, bool) {
	pair, ok := p.toPair[strings.ToLower(symbol)]
	return pair, ok
}

// Symbol returns the internal symbol for an exchange pair.
func (p Pairs) Symbol(pair string) (string, bool) {
	sym, ok := p.toSymbol[strings.ToUpper(pair)]
	return sym, ok
}

// StreamNames returns "<pair>@miniTicker" stream names for the given symbols.
func (p Pairs) StreamNames(symbols []string) []string {
	var out []string
	for _, sym := range symbols {
		if pair, ok := p.Pair(sym); ok {
			out = append(out, strings.ToLower(pair)+"@miniTicker")
		}
	}
	return out
}

// ParsePrice converts a Binance decimal string into a float, rejecting
// non-positive values.
func ParsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive price %q", s)
	}
	return v, nil
}

func itoa(i int) string { return strconv.Itoa(i) }
