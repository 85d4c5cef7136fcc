package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// AlphaVantage fetches live snapshots from the Alpha Vantage REST API.
// Three calls per symbol: GLOBAL_QUOTE, OVERVIEW and TIME_SERIES_DAILY.
type AlphaVantage struct {
	client *resty.Client
	apiKey string
}

func NewAlphaVantage(apiKey string, timeout time.Duration) *AlphaVantage {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(timeout)
	return &AlphaVantage{client: client, apiKey: apiKey}
}

// Snapshots fetches one snapshot per symbol. A symbol whose fetch fails is
// logged and omitted; the map carries whatever succeeded. An error is
// returned only when no symbol could be fetched.
func (av *AlphaVantage) Snapshots(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error) {
	snaps := make(map[string]types.MarketSnapshot, len(symbols))
	var lastErr error

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return snaps, err
		}
		snap, err := av.snapshot(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "Snapshot fetch failed", "symbol", symbol, "error", err)
			lastErr = err
			continue
		}
		snaps[symbol] = snap
	}

	if len(snaps) == 0 && lastErr != nil {
		return nil, fmt.Errorf("no snapshots fetched: %w", lastErr)
	}
	return snaps, nil
}

func (av *AlphaVantage) snapshot(ctx context.Context, symbol string) (types.MarketSnapshot, error) {
	quote, err := av.query(ctx, "GLOBAL_QUOTE", symbol, nil)
	if err != nil {
		return types.MarketSnapshot{}, fmt.Errorf("global quote: %w", err)
	}
	gq := quote.Get("Global Quote")
	if !gq.Exists() || len(gq.Map()) == 0 {
		return types.MarketSnapshot{}, fmt.Errorf("empty quote for %s", symbol)
	}

	snap := types.MarketSnapshot{
		Symbol:       symbol,
		CurrentPrice: gq.Get("05\\. price").Float(),
		Volume:       gq.Get("06\\. volume").Int(),
		FetchedAt:    time.Now().UTC(),
	}

	// Overview is best effort. Fundamentals default to zero values when
	// the endpoint is throttled or the symbol has no coverage.
	if overview, err := av.query(ctx, "OVERVIEW", symbol, nil); err == nil && overview.Get("Symbol").Exists() {
		snap.MarketCap = overview.Get("MarketCapitalization").Float()
		snap.PERatio = overview.Get("PERatio").Float()
		snap.Beta = overview.Get("Beta").Float()
		snap.Sector = overview.Get("Sector").String()
		snap.Industry = overview.Get("Industry").String()
	} else if err != nil {
		logger.Debug(ctx, "Company overview unavailable", "symbol", symbol, "error", err)
	}

	history, err := av.dailyHistory(ctx, symbol)
	if err != nil {
		return types.MarketSnapshot{}, fmt.Errorf("daily history: %w", err)
	}
	snap.History = history
	return snap, nil
}

func (av *AlphaVantage) dailyHistory(ctx context.Context, symbol string) ([]types.Bar, error) {
	res, err := av.query(ctx, "TIME_SERIES_DAILY", symbol, map[string]string{"outputsize": "compact"})
	if err != nil {
		return nil, err
	}

	var series gjson.Result
	res.ForEach(func(key, value gjson.Result) bool {
		if strings.Contains(key.String(), "Time Series") {
			series = value
			return false
		}
		return true
	})
	if !series.Exists() {
		return nil, fmt.Errorf("no time series for %s", symbol)
	}

	var bars []types.Bar
	series.ForEach(func(key, value gjson.Result) bool {
		date, err := time.Parse("2006-01-02", key.String())
		if err != nil {
			return true
		}
		bars = append(bars, types.Bar{
			Date:   date,
			Open:   value.Get("1\\. open").Float(),
			High:   value.Get("2\\. high").Float(),
			Low:    value.Get("3\\. low").Float(),
			Close:  value.Get("4\\. close").Float(),
			Volume: value.Get("5\\. volume").Int(),
		})
		return true
	})

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func (av *AlphaVantage) query(ctx context.Context, function, symbol string, extra map[string]string) (gjson.Result, error) {
	req := av.client.R().
		SetContext(ctx).
		SetQueryParam("function", function).
		SetQueryParam("symbol", symbol).
		SetQueryParam("apikey", av.apiKey)
	for k, v := range extra {
		req.SetQueryParam(k, v)
	}

	resp, err := req.Get("")
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.IsError() {
		return gjson.Result{}, fmt.Errorf("%s returned status %d", function, resp.StatusCode())
	}

	body := resp.String()
	if !gjson.Valid(body) {
		return gjson.Result{}, fmt.Errorf("%s returned invalid JSON", function)
	}
	parsed := gjson.Parse(body)
	if note := parsed.Get("Note"); note.Exists() {
		return gjson.Result{}, fmt.Errorf("rate limited: %s", note.String())
	}
	if msg := parsed.Get("Error Message"); msg.Exists() {
		return gjson.Result{}, fmt.Errorf("api error: %s", msg.String())
	}
	return parsed, nil
}
