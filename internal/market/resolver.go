package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const searchLimit = 10

// API is the subset of the Kalshi API the resolver needs.
type API interface {
	GetMarket(ctx context.Context, ticker string) (Market, error)
	GetEvent(ctx context.Context, eventTicker string) (Event, error)
	GetSeries(ctx context.Context, seriesTicker string) (Series, error)
	SearchMarkets(ctx context.Context, keyword string, limit int) ([]Market, error)
}

// Resolver turns a user supplied code into a display title.
type Resolver struct {
	api API
	log zerolog.Logger
}

func NewResolver(api API, log zerolog.Logger) *Resolver {
	return &Resolver{
		api: api,
		log: log.With().Str("component", "market_resolver").Logger(),
	}
}

// NormalizeCode trims and upper-cases a market code.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ResolveTitle looks code up as a market, then an event, then a series, and
// finally falls back to a keyword search. A ticker-shaped code (one that
// contains '-') must match a search result exactly; otherwise the top result
// is accepted. Returns ErrNotFound when nothing matches.
func (r *Resolver) ResolveTitle(ctx context.Context, raw string) (string, error) {
	code := NormalizeCode(raw)
	if code == "" {
		return "", fmt.Errorf("%w: empty code", ErrNotFound)
	}

	title, err := r.direct(ctx, code)
	if err == nil {
		return title, nil
	}
	r.log.Debug().Err(err).Str("code", code).Msg("Direct lookup failed, searching")

	title, err = r.search(ctx, code)
	if err != nil {
		r.log.Warn().Err(err).Str("code", code).Msg("Fallback search failed")
		return "", fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return title, nil
}

func (r *Resolver) direct(ctx context.Context, code string) (string, error) {
	m, err := r.api.GetMarket(ctx, code)
	if err != nil {
		if ev, evErr := r.api.GetEvent(ctx, code); evErr == nil {
			return firstNonEmpty(ev.Title, code), nil
		}
		if s, sErr := r.api.GetSeries(ctx, code); sErr == nil {
			return firstNonEmpty(s.Title, code), nil
		}
		return "", err
	}

	if m.EventTicker != "" {
		ev, err := r.api.GetEvent(ctx, m.EventTicker)
		if err == nil {
			return firstNonEmpty(ev.Title, m.Title, m.Ticker, code), nil
		}
	}
	return firstNonEmpty(m.Title, m.Ticker, code), nil
}

func (r *Resolver) search(ctx context.Context, code string) (string, error) {
	markets, err := r.api.SearchMarkets(ctx, code, searchLimit)
	if err != nil {
		return "", err
	}
	if len(markets) == 0 {
		return "", errors.New("no search results")
	}
	for _, m := range markets {
		if m.Ticker == code || m.EventTicker == code {
			return firstNonEmpty(m.Title, m.Ticker, code), nil
		}
	}
	if strings.Contains(code, "-") {
		return "", errors.New("no exact match found for ticker")
	}
	return firstNonEmpty(markets[0].Title, markets[0].Ticker, code), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
