// Package market resolves Kalshi market codes to display titles.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/youruser/pnlcard/internal/util"
)

// DefaultBaseURL is the public Kalshi trade API.
const DefaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

// ErrNotFound is returned when a code cannot be resolved.
var ErrNotFound = errors.New("market not found")

type Market struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
}

type Event struct {
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
}

type Series struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Client for the Kalshi trade API
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = util.DefaultFetchTimeout
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "kalshi").Logger(),
	}
}

func (c *Client) GetMarket(ctx context.Context, ticker string) (Market, error) {
	var out Market
	err := c.getObject(ctx, "/markets/"+url.PathEscape(ticker), "market", &out)
	return out, err
}

func (c *Client) GetEvent(ctx context.Context, eventTicker string) (Event, error) {
	var out Event
	err := c.getObject(ctx, "/events/"+url.PathEscape(eventTicker), "event", &out)
	return out, err
}

func (c *Client) GetSeries(ctx context.Context, seriesTicker string) (Series, error) {
	var out Series
	err := c.getObject(ctx, "/series/"+url.PathEscape(seriesTicker), "series", &out)
	return out, err
}

// SearchMarkets runs a keyword search and returns at most limit markets.
func (c *Client) SearchMarkets(ctx context.Context, keyword string, limit int) ([]Market, error) {
	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("limit", strconv.Itoa(limit))

	var result struct {
		Markets []Market `json:"markets"`
	}
	body, err := c.get(ctx, "/markets", params)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return result.Markets, nil
}

// getObject decodes either {"<key>": {...}} or a bare object into out.
func (c *Client) getObject(ctx context.Context, path, key string, out any) error {
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return err
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", key, err)
	}
	if inner, ok := envelope[key]; ok && string(inner) != "null" {
		body = inner
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", key, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	c.log.Debug().Str("url", u).Msg("Requesting")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d for %s", resp.StatusCode, path)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return raw, nil
}
