package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "finscope-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		_ = json.NewEncoder(w).Encode(map[string]float64{"c": 150.5})
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("finscope-test"))
	var out struct {
		C float64 `json:"c"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		URL:         srv.URL,
		QueryParams: map[string][]string{"symbol": {"AAPL"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 150.5, out.C)
}

func TestSendAndParseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusTooManyRequests))
	assert.False(t, IsStatus(err, http.StatusNotFound))
	assert.Contains(t, err.Error(), "slow down")
}

func TestSendAndParseRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"raw":true}`))
	}))
	defer srv.Close()

	var raw []byte
	require.NoError(t, NewClient().SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, &raw))
	assert.JSONEq(t, `{"raw":true}`, string(raw))
}
