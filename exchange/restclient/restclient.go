// Package restclient is a reference exchange.Client implementation against
// a Coinbase-style public spot REST API. Grounded in the teacher's
// pkg/client/http.go (pooled http.Client, Get-with-JSON-decode helper) and
// chidi150c-coinbase/broker_coinbase.go's endpoint/field shape. Credential
// management and order placement are out of scope (spec.md §1) — this
// client only hits unauthenticated market-data/product endpoints.
package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"arbfinder/exchange"
	"arbfinder/internal/currency"
)

const defaultTimeout = 30 * time.Second

// Client is a reference REST exchange.Client.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client against apiBase (e.g. "https://api.exchange.example").
// The HTTP transport is pooled the way the teacher's pkg/client/http.go
// configures its client, and every request is bounded by spec.md §5's 30s
// default timeout, set on the http.Client (requests also honor ctx).
func New(apiBase string) *Client {
	return &Client{
		baseURL: strings.TrimRight(apiBase, "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &exchange.TransportError{Op: path, Err: err}
	}
	req.Header.Set("User-Agent", "arbfinder/restclient")

	resp, err := c.http.Do(req)
	if err != nil {
		return &exchange.TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &exchange.TransportError{Op: path, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &exchange.TransportError{Op: path, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &exchange.TransportError{Op: path, Err: err}
	}
	return nil
}

type productResponse struct {
	ProductID string `json:"product_id"`
	BaseName  string `json:"base_currency_id"`
	QuoteName string `json:"quote_currency_id"`
	Status    string `json:"status"`
}

type bookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type bookResponse struct {
	Bids []bookLevel `json:"bids"`
	Asks []bookLevel `json:"asks"`
}

type productDetailResponse struct {
	BaseIncrement     string `json:"base_increment"`
	QuoteMinSize      string `json:"quote_min_size"`
	MinMarketFundsUSD string `json:"min_market_funds"`
}

type feeTierResponse struct {
	FeeTier struct {
		TakerFeeRate string `json:"taker_fee_rate"`
	} `json:"fee_tier"`
}

func productID(base, quote currency.Currency) string {
	return string(base) + "-" + string(quote)
}

func (c *Client) CheckCurrenciesExist(ctx context.Context, symbols []currency.Currency) error {
	var missing []currency.Currency
	for _, s := range symbols {
		var resp productResponse
		path := fmt.Sprintf("/products/%s", url.PathEscape(string(s)))
		if err := c.get(ctx, path, &resp); err != nil {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return &exchange.MissingCurrenciesError{Missing: missing}
	}
	return nil
}

func (c *Client) PairExists(ctx context.Context, base, quote currency.Currency) (bool, error) {
	var resp productResponse
	path := fmt.Sprintf("/products/%s", url.PathEscape(productID(base, quote)))
	if err := c.get(ctx, path, &resp); err != nil {
		var te *exchange.TransportError
		if asTransportError(err, &te) {
			return false, nil
		}
		return false, err
	}
	return resp.Status == "" || resp.Status == "online", nil
}

func (c *Client) OrderBookTop(ctx context.Context, base, quote currency.Currency) (exchange.OrderBookTop, error) {
	var resp bookResponse
	path := fmt.Sprintf("/products/%s/book?level=1", url.PathEscape(productID(base, quote)))
	if err := c.get(ctx, path, &resp); err != nil {
		return exchange.OrderBookTop{}, err
	}
	if len(resp.Bids) == 0 || len(resp.Asks) == 0 {
		return exchange.OrderBookTop{}, &exchange.TransportError{Op: path, Err: fmt.Errorf("empty book for %s", productID(base, quote))}
	}
	bidPrice, err := decimal.NewFromString(resp.Bids[0].Price)
	if err != nil {
		return exchange.OrderBookTop{}, &exchange.TransportError{Op: path, Err: err}
	}
	bidSize, err := decimal.NewFromString(resp.Bids[0].Size)
	if err != nil {
		return exchange.OrderBookTop{}, &exchange.TransportError{Op: path, Err: err}
	}
	askPrice, err := decimal.NewFromString(resp.Asks[0].Price)
	if err != nil {
		return exchange.OrderBookTop{}, &exchange.TransportError{Op: path, Err: err}
	}
	askSize, err := decimal.NewFromString(resp.Asks[0].Size)
	if err != nil {
		return exchange.OrderBookTop{}, &exchange.TransportError{Op: path, Err: err}
	}
	return exchange.OrderBookTop{
		BidPrice: bidPrice,
		BidSize:  bidSize,
		AskPrice: askPrice,
		AskSize:  askSize,
	}, nil
}

func (c *Client) PairMetadata(ctx context.Context, base, quote currency.Currency) (exchange.PairMetadata, error) {
	var resp productDetailResponse
	path := fmt.Sprintf("/products/%s", url.PathEscape(productID(base, quote)))
	if err := c.get(ctx, path, &resp); err != nil {
		return exchange.PairMetadata{}, err
	}

	lotExp, err := lotExponentFromIncrement(resp.BaseIncrement)
	if err != nil {
		return exchange.PairMetadata{}, &exchange.TransportError{Op: path, Err: err}
	}

	notionalMin := decimal.Zero
	if resp.MinMarketFundsUSD != "" {
		notionalMin, err = decimal.NewFromString(resp.MinMarketFundsUSD)
		if err != nil {
			return exchange.PairMetadata{}, &exchange.TransportError{Op: path, Err: err}
		}
	}

	return exchange.PairMetadata{
		LotExponent: lotExp,
		NotionalMin: notionalMin,
	}, nil
}

func (c *Client) FeeForVolume(ctx context.Context, usdVolume30d decimal.Decimal) (decimal.Decimal, error) {
	var resp feeTierResponse
	if err := c.get(ctx, "/fees", &resp); err != nil {
		// Public fee-tier endpoint requires auth on the real exchange; fall
		// back to the published schedule rather than failing the analysis.
		return exchange.DefaultFeeForVolume(usdVolume30d), nil
	}
	fee, err := decimal.NewFromString(resp.FeeTier.TakerFeeRate)
	if err != nil {
		return exchange.DefaultFeeForVolume(usdVolume30d), nil
	}
	return fee, nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// lotExponentFromIncrement converts a decimal increment string like
// "0.0001" or "1" into its signed power-of-ten exponent.
func lotExponentFromIncrement(increment string) (int, error) {
	if increment == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(increment)
	if err != nil {
		return 0, err
	}
	return int(d.Exponent()), nil
}

func asTransportError(err error, target **exchange.TransportError) bool {
	te, ok := err.(*exchange.TransportError)
	if ok {
		*target = te
	}
	return ok
}
