package reasoning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"FinScope/internal/domain/service"
	xhttp "FinScope/pkg/http"
)

// ErrEmptyCompletion is returned when the response has no text block.
var ErrEmptyCompletion = errors.New("reasoning service returned no text")

// Client calls a messages-style completion endpoint: one user message in, a
// list of content blocks out.
type Client struct {
	url         string
	apiKey      string
	keyHeader   string
	version     string
	model       string
	maxTokens   int
	temperature float64
	attempts    int
	http        *xhttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithAuthHeader changes the header carrying the key and the API version sent
// alongside it. An empty version omits the version header.
func WithAuthHeader(header, version string) Option {
	return func(c *Client) {
		if header != "" {
			c.keyHeader = header
		}
		c.version = version
	}
}

// WithRetry opts into attempting a 429 or 5xx response up to attempts times.
// Without it every call is made once.
func WithRetry(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

func New(url, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url:         url,
		apiKey:      apiKey,
		keyHeader:   "x-api-key",
		version:     "2023-06-01",
		maxTokens:   1500,
		temperature: 0.3,
		attempts:    1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = xhttp.NewClient(xhttp.WithTimeout(timeout))
	return c
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type completionResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete posts prompt and returns the concatenated text blocks.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.url == "" || c.apiKey == "" {
		return "", fmt.Errorf("reasoning client not configured")
	}
	headers := map[string]string{
		"Content-Type": "application/json",
		c.keyHeader:    c.apiKey,
	}
	if c.version != "" {
		headers["anthropic-version"] = c.version
	}
	req := &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.url,
		Headers: headers,
		Body: completionRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			Messages:    []message{{Role: "user", Content: prompt}},
		},
	}

	var (
		resp completionResponse
		err  error
	)
	for i := 1; i <= c.attempts; i++ {
		resp = completionResponse{}
		err = c.http.SendAndParse(ctx, req, &resp)
		if err == nil || !retryable(err) || i == c.attempts {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 250 * time.Millisecond):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", fmt.Errorf("post completion: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return b.String(), nil
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == http.StatusTooManyRequests || se.Code >= 500
}

var _ service.Reasoner = (*Client)(nil)
