package yahoo

import (
	"context"
	"fmt"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/pkg/util"
)

var (
	_ repository.QuoteProvider = (*QuoteProvider)(nil)
	_ repository.QuoteProvider = (*ChartQuoteProvider)(nil)
)

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			RegularMarketPrice         float64  `json:"regularMarketPrice"`
			RegularMarketChange        float64  `json:"regularMarketChange"`
			RegularMarketChangePercent float64  `json:"regularMarketChangePercent"`
			RegularMarketDayHigh       float64  `json:"regularMarketDayHigh"`
			RegularMarketDayLow        float64  `json:"regularMarketDayLow"`
			RegularMarketOpen          float64  `json:"regularMarketOpen"`
			RegularMarketPreviousClose float64  `json:"regularMarketPreviousClose"`
			RegularMarketVolume        int64    `json:"regularMarketVolume"`
			RegularMarketTime          int64    `json:"regularMarketTime"`
			MarketCap                  *float64 `json:"marketCap"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

type QuoteProvider struct{ c *Client }

func (p *QuoteProvider) Name() string { return "yahoo-quote" }

func (p *QuoteProvider) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var resp quoteResponse
	q := map[string][]string{"symbols": {symbol}}
	if err := p.c.get(ctx, p.c.quoteURL, "/v7/finance/quote", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
	}
	r := resp.QuoteResponse.Result[0]
	quote := &models.Quote{
		Symbol:        symbol,
		Price:         r.RegularMarketPrice,
		Change:        r.RegularMarketChange,
		ChangePercent: r.RegularMarketChangePercent,
		High:          r.RegularMarketDayHigh,
		Low:           r.RegularMarketDayLow,
		Open:          r.RegularMarketOpen,
		PreviousClose: r.RegularMarketPreviousClose,
		Volume:        r.RegularMarketVolume,
		MarketCap:     r.MarketCap,
		Timestamp:     util.EpochMillis(r.RegularMarketTime),
		Source:        p.Name(),
	}
	if !quote.Valid() {
		return nil, fmt.Errorf("%s: missing price: %w", symbol, models.ErrNoData)
	}
	return quote, nil
}

type ChartQuoteProvider struct{ c *Client }

func (p *ChartQuoteProvider) Name() string { return "yahoo-chart" }

func (p *ChartQuoteProvider) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	res, err := p.c.chart(ctx, symbol, "1d")
	if err != nil {
		return nil, err
	}
	m := res.Meta
	prev := m.ChartPreviousClose
	if prev == 0 {
		prev = m.PreviousClose
	}
	quote := &models.Quote{
		Symbol:        symbol,
		Price:         m.RegularMarketPrice,
		High:          m.RegularMarketDayHigh,
		Low:           m.RegularMarketDayLow,
		PreviousClose: prev,
		Volume:        m.RegularMarketVolume,
		Timestamp:     util.EpochMillis(m.RegularMarketTime),
		Source:        p.Name(),
	}
	if !quote.Valid() {
		return nil, fmt.Errorf("%s: missing price: %w", symbol, models.ErrNoData)
	}
	// the chart meta carries no open or change; take open from the first bar
	if q := res.firstQuote(); q != nil && len(q.Open) > 0 && q.Open[0] != nil {
		quote.Open = *q.Open[0]
	}
	if prev > 0 {
		quote.Change = quote.Price - prev
		quote.ChangePercent = quote.Change / prev * 100
	}
	return quote, nil
}
