package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SimplePrice is the /simple/price response: coin id -> currency -> price.
// A coin CoinGecko knows but has no quote for comes back with a null price.
type SimplePrice map[string]map[string]*float64

type Client struct {
	baseURL    string
	vsCurrency string
	httpClient *http.Client

	toID     map[string]string
	toSymbol map[string]string
}

// NewClient creates a client quoting in vsCurrency ("brl"). ids maps internal
// symbols to CoinGecko coin ids ("btc" -> "bitcoin").
func NewClient(baseURL, vsCurrency string, timeout time.Duration, ids map[string]string) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		vsCurrency: strings.ToLower(vsCurrency),
		httpClient: &http.Client{Timeout: timeout},
		toID:       make(map[string]string, len(ids)),
		toSymbol:   make(map[string]string, len(ids)),
	}
	for sym, id := range ids {
		if id == "" {
			continue
		}
		c.toID[sym] = id
		c.toSymbol[id] = sym
	}
	return c
}

func (c *Client) Name() string { return "coingecko" }

// FetchPrices returns prices keyed by internal symbol. Symbols without a
// CoinGecko id, and coins returned without a quote, are absent from the result.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	var ids []string
	for _, sym := range symbols {
		if id, ok := c.toID[sym]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	quotes, err := c.GetSimplePrice(ctx, ids)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(quotes))
	for id, byCurrency := range quotes {
		sym, ok := c.toSymbol[id]
		if !ok {
			continue
		}
		if p := byCurrency[c.vsCurrency]; p != nil && *p > 0 {
			prices[sym] = *p
		}
	}
	return prices, nil
}

// GetSimplePrice fetches the quotes of several coins in one request.
func (c *Client) GetSimplePrice(ctx context.Context, ids []string) (SimplePrice, error) {
	query := url.Values{
		"ids":           {strings.Join(ids, ",")},
		"vs_currencies": {c.vsCurrency},
	}
	endpoint := c.baseURL + "/api/v3/simple/price?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko status %d: %s", resp.StatusCode, body)
	}

	var out SimplePrice
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
