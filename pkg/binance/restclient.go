package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
	pairs      Pairs
}

func NewRESTClient(baseURL string, timeout time.Duration, pairs Pairs) *RESTClient {
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		pairs:      pairs,
	}
}

func (c *RESTClient) Name() string { return "binance" }

// FetchPrices returns the last price of every symbol Binance knows, keyed by
// internal symbol. It tries one batched request first and falls back to one
// request per pair; symbols that still fail are simply absent.
func (c *RESTClient) FetchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	var pairs []string
	for _, sym := range symbols {
		if pair, ok := c.pairs.Pair(sym); ok {
			pairs = append(pairs, pair)
		}
	}
	if len(pairs) == 0 {
		return map[string]float64{}, nil
	}

	tickers, err := c.GetTickerPrices(ctx, pairs)
	if err == nil {
		return c.toPrices(tickers), nil
	}
	batchErr := err

	// Fallback to single-pair requests; an unknown pair fails the whole batch.
	var errs []error
	for _, pair := range pairs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t, err := c.GetTickerPrice(ctx, pair)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pair, err))
			continue
		}
		tickers = append(tickers, t)
	}

	prices := c.toPrices(tickers)
	if len(prices) == 0 {
		return nil, fmt.Errorf("batch: %w; single: %w", batchErr, errors.Join(errs...))
	}
	return prices, nil
}

func (c *RESTClient) toPrices(tickers []TickerPrice) map[string]float64 {
	prices := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		sym, ok := c.pairs.Symbol(t.Symbol)
		if !ok {
			continue
		}
		price, err := ParsePrice(t.Price)
		if err != nil {
			continue
		}
		prices[sym] = price
	}
	return prices
}

// GetTickerPrices fetches several pairs in one request.
func (c *RESTClient) GetTickerPrices(ctx context.Context, pairs []string) ([]TickerPrice, error) {
	raw, err := json.Marshal(pairs)
	if err != nil {
		return nil, fmt.Errorf("encode symbols: %w", err)
	}

	var out []TickerPrice
	if err := c.get(ctx, "/api/v3/ticker/price", url.Values{"symbols": {string(raw)}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTickerPrice fetches a single pair.
func (c *RESTClient) GetTickerPrice(ctx context.Context, pair string) (TickerPrice, error) {
	var out TickerPrice
	err := c.get(ctx, "/api/v3/ticker/price", url.Values{"symbol": {pair}}, &out)
	return out, err
}

// Ping checks that the REST API is reachable.
func (c *RESTClient) Ping(ctx context.Context) error {
	var out struct{}
	return c.get(ctx, "/api/v3/ping", nil, &out)
}

func (c *RESTClient) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return &apiErr
		}
		return fmt.Errorf("binance status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
