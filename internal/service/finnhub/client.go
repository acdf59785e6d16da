// Package finnhub implements the credentialed Finnhub REST providers: delayed
// quote, company news and the earnings calendar.
package finnhub

import (
	"context"
	"fmt"
	"sort"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/internal/services/sentiment"
	"FinScope/internal/services/tradingdays"
	xhttp "FinScope/pkg/http"
	"FinScope/pkg/util"
)

var (
	_ repository.QuoteProvider    = (*Client)(nil)
	_ repository.NewsProvider     = (*Client)(nil)
	_ repository.CalendarProvider = (*Client)(nil)
	_ repository.Credentialed     = (*Client)(nil)
)

const maxNewsItems = 20

// Client is safe for concurrent use. The API key is fixed at construction.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
	now     func() time.Time
}

func New(baseURL, apiKey string, opts ...xhttp.ClientOption) *Client {
	return &Client{
		http:    xhttp.NewClient(opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
		now:     time.Now,
	}
}

func (c *Client) Name() string { return "finnhub" }

func (c *Client) HasCredentials() bool { return c.apiKey != "" }

func (c *Client) get(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if !c.HasCredentials() {
		return models.ErrMissingCredentials
	}
	if query == nil {
		query = map[string][]string{}
	}
	query["token"] = []string{c.apiKey}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: query,
	}, dest)
	if xhttp.IsStatus(err, 429) {
		return fmt.Errorf("finnhub %s: %w", path, models.ErrRateLimited)
	}
	if err != nil {
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	return nil
}

type quoteResponse struct {
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	DP float64 `json:"dp"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	O  float64 `json:"o"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"` // seconds
}

// FetchQuote returns the delayed quote. Finnhub answers unknown symbols with an
// all-zero body, which is reported as ErrNoData.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var r quoteResponse
	if err := c.get(ctx, "/quote", map[string][]string{"symbol": {symbol}}, &r); err != nil {
		return nil, err
	}
	q := &models.Quote{
		Symbol:        symbol,
		Price:         r.C,
		Change:        r.D,
		ChangePercent: r.DP,
		High:          r.H,
		Low:           r.L,
		Open:          r.O,
		PreviousClose: r.PC,
		Timestamp:     util.EpochMillis(r.T),
		Source:        c.Name(),
	}
	if !q.Valid() {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
	}
	return q, nil
}

type newsItem struct {
	Datetime int64  `json:"datetime"` // seconds
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// FetchNews returns scored headlines in [from,to], newest first.
func (c *Client) FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error) {
	var raw []newsItem
	q := map[string][]string{
		"symbol": {symbol},
		"from":   {util.FormatDate(from)},
		"to":     {util.FormatDate(to)},
	}
	if err := c.get(ctx, "/company-news", q, &raw); err != nil {
		return nil, err
	}

	sort.SliceStable(raw, func(i, j int) bool { return raw[i].Datetime > raw[j].Datetime })
	out := make([]models.NewsItem, 0, min(len(raw), maxNewsItems))
	for _, n := range raw {
		if n.Headline == "" {
			continue
		}
		score, label := sentiment.Classify(n.Headline, n.Summary)
		out = append(out, models.NewsItem{
			Title:     n.Headline,
			Source:    n.Source,
			Sentiment: label,
			Score:     score,
			Timestamp: util.EpochMillis(n.Datetime),
			URL:       n.URL,
		})
		if len(out) == maxNewsItems {
			break
		}
	}
	return out, nil
}

type earningsResponse struct {
	EarningsCalendar []struct {
		Date        string   `json:"date"`
		EPSActual   *float64 `json:"epsActual"`
		EPSEstimate *float64 `json:"epsEstimate"`
		Symbol      string   `json:"symbol"`
	} `json:"earningsCalendar"`
}

// FetchCalendar looks one quarter back for the last surprise and four months
// ahead for the next report.
func (c *Client) FetchCalendar(ctx context.Context, symbol string) (*models.EventsCalendar, error) {
	now := c.now().UTC()
	var r earningsResponse
	q := map[string][]string{
		"symbol": {symbol},
		"from":   {util.FormatDate(now.AddDate(0, -4, 0))},
		"to":     {util.FormatDate(now.AddDate(0, 4, 0))},
	}
	if err := c.get(ctx, "/calendar/earnings", q, &r); err != nil {
		return nil, err
	}

	entries := r.EarningsCalendar
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	today := util.FormatDate(now)
	cal := &models.EventsCalendar{Symbol: symbol, AcquiredAt: now}
	found := false
	for _, e := range entries {
		if e.Date < today {
			if e.EPSActual != nil && e.EPSEstimate != nil && *e.EPSEstimate != 0 {
				s := (*e.EPSActual - *e.EPSEstimate) / abs(*e.EPSEstimate) * 100
				cal.LastSurprisePct = &s
			}
			continue
		}
		if found {
			continue
		}
		d, err := time.Parse(util.DateLayout, e.Date)
		if err != nil {
			continue
		}
		cal.NextEarnings = e.Date
		cal.DaysToEarnings = tradingdays.ForSymbol(symbol).Between(now, d)
		cal.EPSEstimate = e.EPSEstimate
		found = true
	}
	if !found {
		return nil, fmt.Errorf("%s: no upcoming earnings: %w", symbol, models.ErrNoData)
	}
	return cal, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
