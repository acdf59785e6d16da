// Package yahoo talks to the unauthenticated Yahoo Finance JSON endpoints.
package yahoo

import (
	"context"
	"fmt"
	"net/url"

	xhttp "FinScope/pkg/http"
)

// Client holds the two Yahoo hosts. The quote and options endpoints live on
// query1, the chart endpoint on query2.
type Client struct {
	http     *xhttp.Client
	quoteURL string
	chartURL string
}

func NewClient(quoteURL, chartURL string, opts ...xhttp.ClientOption) *Client {
	return &Client{
		http:     xhttp.NewClient(opts...),
		quoteURL: quoteURL,
		chartURL: chartURL,
	}
}

func (c *Client) get(ctx context.Context, base, path string, query map[string][]string, dest interface{}) error {
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         base + path,
		QueryParams: query,
	}, dest)
	if err != nil {
		return fmt.Errorf("yahoo %s: %w", path, err)
	}
	return nil
}

func escape(symbol string) string { return url.PathEscape(symbol) }

// Quotes returns the primary real-time quote provider.
func (c *Client) Quotes() *QuoteProvider { return &QuoteProvider{c: c} }

// ChartQuotes returns the secondary provider that derives a quote from chart metadata.
func (c *Client) ChartQuotes() *ChartQuoteProvider { return &ChartQuoteProvider{c: c} }

// History returns the six month daily chart provider.
func (c *Client) History() *HistoryProvider { return &HistoryProvider{c: c} }

// Options returns the options-chain provider.
func (c *Client) Options() *OptionsProvider { return &OptionsProvider{c: c} }
