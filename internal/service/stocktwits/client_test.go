package stocktwits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScope/internal/domain/models"
)

func serve(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/streams/symbol/TSLA.json", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestFetchSocialTagged(t *testing.T) {
	c := serve(t, `{"messages":[
	  {"body":"to the moon","entities":{"sentiment":{"basic":"Bullish"}}},
	  {"body":"buying more","entities":{"sentiment":{"basic":"Bullish"}}},
	  {"body":"overvalued","entities":{"sentiment":{"basic":"Bearish"}}},
	  {"body":"watching","entities":{"sentiment":null}}
	]}`)

	s, err := c.FetchSocial(context.Background(), "TSLA")
	require.NoError(t, err)

	assert.Equal(t, 2, s.Bullish)
	assert.Equal(t, 1, s.Bearish)
	assert.Equal(t, 4, s.Messages)
	assert.Equal(t, 0.33, s.Score)
}

func TestFetchSocialUntaggedUsesLexicon(t *testing.T) {
	c := serve(t, `{"messages":[
	  {"body":"earnings beat, strong quarter","entities":{}},
	  {"body":"just a chart","entities":{}}
	]}`)

	s, err := c.FetchSocial(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, 0.4, s.Score)
}

func TestFetchSocialEmpty(t *testing.T) {
	c := serve(t, `{"messages":[]}`)

	_, err := c.FetchSocial(context.Background(), "TSLA")
	assert.ErrorIs(t, err, models.ErrNoData)
}
