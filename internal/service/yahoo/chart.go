package yahoo

import (
	"context"
	"fmt"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/pkg/util"
)

var _ repository.HistoryProvider = (*HistoryProvider)(nil)

type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type chartResult struct {
	Meta struct {
		Symbol               string  `json:"symbol"`
		RegularMarketPrice   float64 `json:"regularMarketPrice"`
		ChartPreviousClose   float64 `json:"chartPreviousClose"`
		PreviousClose        float64 `json:"previousClose"`
		RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
		RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
		RegularMarketVolume  int64   `json:"regularMarketVolume"`
		RegularMarketTime    int64   `json:"regularMarketTime"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

func (r *chartResult) firstQuote() *chartQuote {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	return &r.Indicators.Quote[0]
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) chart(ctx context.Context, symbol, rng string) (*chartResult, error) {
	var resp chartResponse
	q := map[string][]string{"range": {rng}, "interval": {"1d"}}
	if err := c.get(ctx, c.chartURL, "/v8/finance/chart/"+escape(symbol), q, &resp); err != nil {
		return nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
	}
	return &resp.Chart.Result[0], nil
}

type HistoryProvider struct{ c *Client }

func (p *HistoryProvider) Name() string { return "yahoo-history" }

// FetchHistory returns the six month daily chart, most-recent-first. Indices
// with any null field are skipped.
func (p *HistoryProvider) FetchHistory(ctx context.Context, symbol string) (models.HistoricalSeries, error) {
	res, err := p.c.chart(ctx, symbol, "6mo")
	if err != nil {
		return nil, err
	}
	series := barsFromChart(res)
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: empty chart: %w", symbol, models.ErrNoData)
	}
	return series, nil
}

func barsFromChart(res *chartResult) models.HistoricalSeries {
	q := res.firstQuote()
	if q == nil {
		return nil
	}
	out := make(models.HistoricalSeries, 0, len(res.Timestamp))
	for i := len(res.Timestamp) - 1; i >= 0; i-- {
		o, h, l, c, v := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i), atInt(q.Volume, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue
		}
		bar := models.HistoricalBar{
			Date:  util.UnixDate(res.Timestamp[i]),
			Open:  *o,
			High:  *h,
			Low:   *l,
			Close: *c,
		}
		if v != nil {
			bar.Volume = *v
		}
		if bar.Valid() {
			out = append(out, bar)
		}
	}
	return out
}

func at(s []*float64, i int) *float64 {
	if i >= len(s) {
		return nil
	}
	return s[i]
}

func atInt(s []*int64, i int) *int64 {
	if i >= len(s) {
		return nil
	}
	return s[i]
}
