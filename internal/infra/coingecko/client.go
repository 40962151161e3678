package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/config"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
)

const defaultUserAgent = "crypto-tracker-service/1.0 (+https://github.com/NastyaGoryachaya/crypto-tracker-service)"

type Client struct {
	cfg        config.CoinGeckoConfig
	httpClient *http.Client
}

// CoinDetail — ответ /coins/{id}. Указатели позволяют отличить отсутствующее поле от нуля.
type CoinDetail struct {
	ID          *string     `json:"id"`
	Symbol      *string     `json:"symbol"`
	Name        *string     `json:"name"`
	LastUpdated *string     `json:"last_updated"`
	MarketData  *MarketData `json:"market_data"`
}

type MarketData struct {
	CurrentPrice             map[string]*float64 `json:"current_price"`
	MarketCap                map[string]*float64 `json:"market_cap"`
	TotalVolume              map[string]*float64 `json:"total_volume"`
	PriceChangePercentage24h *float64            `json:"price_change_percentage_24h"`
}

// simplePrice — одна запись ответа /simple/price для vs_currencies=usd
type simplePrice struct {
	USD           *float64 `json:"usd"`
	USDMarketCap  *float64 `json:"usd_market_cap"`
	USD24hVol     *float64 `json:"usd_24h_vol"`
	USD24hChange  *float64 `json:"usd_24h_change"`
	LastUpdatedAt *int64   `json:"last_updated_at"`
}

// NewClient - создаёт клиента CoinGecko API
func NewClient(cfg config.CoinGeckoConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// FetchDetail — полная информация по одной монете
func (c *Client) FetchDetail(ctx context.Context, id string) (*CoinDetail, error) {
	u, err := c.endpoint(nil, "coins", id)
	if err != nil {
		return nil, err
	}

	var detail CoinDetail
	if err := c.get(ctx, u, &detail); err != nil {
		return nil, fmt.Errorf("fetch detail %s: %w", id, err)
	}
	return &detail, nil
}

// FetchBulkPrices — цены пачки монет одним запросом.
// Монеты, которых API не знает, просто отсутствуют в результате.
func (c *Client) FetchBulkPrices(ctx context.Context, ids []string) (map[string]domain.PricePoint, error) {
	if len(ids) == 0 {
		return map[string]domain.PricePoint{}, nil
	}

	// порядок ids стабилен, чтобы одинаковые наборы давали одинаковый URL
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	q := url.Values{}
	q.Set("ids", strings.Join(sorted, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_market_cap", "true")
	q.Set("include_24hr_vol", "true")
	q.Set("include_24hr_change", "true")
	q.Set("include_last_updated_at", "true")

	u, err := c.endpoint(q, "simple", "price")
	if err != nil {
		return nil, err
	}

	var data map[string]simplePrice
	if err := c.get(ctx, u, &data); err != nil {
		return nil, fmt.Errorf("fetch bulk prices: %w", err)
	}

	out := make(map[string]domain.PricePoint, len(data))
	for id, p := range data {
		point := domain.PricePoint{
			PriceUSD:       p.USD,
			MarketCap:      p.USDMarketCap,
			Volume24h:      p.USD24hVol,
			PriceChange24h: p.USD24hChange,
		}
		if p.LastUpdatedAt != nil {
			ts := FromUnix(*p.LastUpdatedAt)
			point.LastUpdatedAt = &ts
		}
		out[id] = point
	}
	return out, nil
}

func (c *Client) endpoint(q url.Values, elem ...string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u = u.JoinPath(elem...)
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// get — общий GET с разбором статусов: 429 -> ErrRateLimited, прочие не-200 -> UpstreamError
func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	ua := c.cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	if c.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w: %w", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errs.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return &errs.UpstreamError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w: %w", errs.ErrUpstreamUnavailable, err)
	}
	return nil
}
