// Package alphavantage implements the TIME_SERIES_DAILY history provider.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/internal/service/ratelimit"
	xhttp "FinScope/pkg/http"
	"FinScope/pkg/util"
)

var (
	_ repository.HistoryProvider = (*Client)(nil)
	_ repository.Credentialed     = (*Client)(nil)
)

type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
	budget  *rate.Limiter
}

// New builds the client. requestsPerMinute bounds local usage of the free tier;
// when the budget is spent the call fails with ErrRateLimited instead of waiting.
func New(baseURL, apiKey string, requestsPerMinute int, opts ...xhttp.ClientOption) *Client {
	return &Client{
		http:    xhttp.NewClient(opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
		budget:  rate.NewLimiter(ratelimit.Every(requestsPerMinute, time.Minute), max(requestsPerMinute, 1)),
	}
}

func (c *Client) Name() string { return "alphavantage" }

func (c *Client) HasCredentials() bool { return c.apiKey != "" }

type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type dailyResponse struct {
	Series       map[string]dailyBar `json:"Time Series (Daily)"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	ErrorMessage string              `json:"Error Message"`
}

// FetchHistory returns the compact daily series, most-recent-first.
func (c *Client) FetchHistory(ctx context.Context, symbol string) (models.HistoricalSeries, error) {
	if !c.HasCredentials() {
		return nil, models.ErrMissingCredentials
	}
	if !c.budget.Allow() {
		return nil, fmt.Errorf("alphavantage local budget: %w", models.ErrRateLimited)
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/query",
		QueryParams: map[string][]string{
			"function":   {"TIME_SERIES_DAILY"},
			"symbol":     {symbol},
			"outputsize": {"compact"},
			"apikey":     {c.apiKey},
		},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w", err)
	}
	return parseDaily(symbol, body)
}

func parseDaily(symbol string, body []byte) (models.HistoricalSeries, error) {
	var r dailyResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	switch {
	case r.Note != "":
		return nil, fmt.Errorf("alphavantage: %s: %w", r.Note, models.ErrRateLimited)
	case r.Information != "":
		return nil, fmt.Errorf("alphavantage: %s: %w", r.Information, models.ErrRateLimited)
	case r.ErrorMessage != "":
		return nil, fmt.Errorf("alphavantage %s: %s: %w", symbol, r.ErrorMessage, models.ErrNoData)
	case len(r.Series) == 0:
		return nil, fmt.Errorf("alphavantage %s: %w", symbol, models.ErrNoData)
	}

	dates := make([]string, 0, len(r.Series))
	for d := range r.Series {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	out := make(models.HistoricalSeries, 0, len(dates))
	for _, d := range dates {
		bar, ok := toBar(d, r.Series[d])
		if ok {
			out = append(out, bar)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("alphavantage %s: no parsable bars: %w", symbol, models.ErrNoData)
	}
	return out, nil
}

func toBar(date string, b dailyBar) (models.HistoricalBar, bool) {
	o, ok1 := util.ParseFloat(b.Open)
	h, ok2 := util.ParseFloat(b.High)
	l, ok3 := util.ParseFloat(b.Low)
	cl, ok4 := util.ParseFloat(b.Close)
	v, ok5 := util.ParseFloat(b.Volume)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return models.HistoricalBar{}, false
	}
	bar := models.HistoricalBar{Date: date, Open: o, High: h, Low: l, Close: cl, Volume: int64(v)}
	return bar, bar.Valid()
}
