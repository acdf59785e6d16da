// Package stocktwits reads the public symbol stream and reduces it to a
// social sentiment score.
package stocktwits

import (
	"context"
	"fmt"
	"math"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/internal/services/sentiment"
	xhttp "FinScope/pkg/http"
)

var _ repository.SocialProvider = (*Client)(nil)

type Client struct {
	http    *xhttp.Client
	baseURL string
}

func New(baseURL string, opts ...xhttp.ClientOption) *Client {
	return &Client{http: xhttp.NewClient(opts...), baseURL: baseURL}
}

func (c *Client) Name() string { return "stocktwits" }

type streamResponse struct {
	Messages []struct {
		Body     string `json:"body"`
		Entities struct {
			Sentiment *struct {
				Basic string `json:"basic"`
			} `json:"sentiment"`
		} `json:"entities"`
	} `json:"messages"`
}

// FetchSocial scores the stream as (bullish-bearish)/(bullish+bearish) over
// tagged messages. With no tags it falls back to lexicon scoring of the bodies.
func (c *Client) FetchSocial(ctx context.Context, symbol string) (*models.SocialSentiment, error) {
	var r streamResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/streams/symbol/%s.json", c.baseURL, symbol),
	}, &r)
	if err != nil {
		return nil, fmt.Errorf("stocktwits: %w", err)
	}
	if len(r.Messages) == 0 {
		return nil, fmt.Errorf("stocktwits %s: %w", symbol, models.ErrNoData)
	}

	s := &models.SocialSentiment{Symbol: symbol, Messages: len(r.Messages), AcquiredAt: time.Now().UTC()}
	var lexSum float64
	for _, m := range r.Messages {
		if m.Entities.Sentiment != nil {
			switch m.Entities.Sentiment.Basic {
			case "Bullish":
				s.Bullish++
			case "Bearish":
				s.Bearish++
			}
		}
		lexSum += sentiment.Score(m.Body)
	}

	if tagged := s.Bullish + s.Bearish; tagged > 0 {
		s.Score = float64(s.Bullish-s.Bearish) / float64(tagged)
	} else {
		s.Score = lexSum / float64(len(r.Messages))
	}
	s.Score = math.Round(s.Score*100) / 100
	return s, nil
}
