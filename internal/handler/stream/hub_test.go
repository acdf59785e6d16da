package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScope/internal/domain/models"
	"FinScope/internal/usecase"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := NewHub(nil)
	require.NoError(t, h.Start(context.Background()))

	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.Stop(ctx)
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/analyses"
}

func dial(t *testing.T, url string, h *Hub, want int) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return h.Clients() == want }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHubBroadcastsWithTickerFilter(t *testing.T) {
	h, url := startHub(t)
	all := dial(t, url, h, 1)
	msftOnly := dial(t, url+"?tickers=msft", h, 2)

	ctx := usecase.WithRequestID(usecase.WithTrigger(context.Background(), usecase.TriggerCron), "req-1")
	require.NoError(t, h.Consume(ctx, &models.AnalysisResult{ID: "1", Ticker: "AAPL"}))
	require.NoError(t, h.Consume(ctx, &models.AnalysisResult{ID: "2", Ticker: "MSFT"}))

	read := func(conn *websocket.Conn) models.ScanResult {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var sr models.ScanResult
		require.NoError(t, json.Unmarshal(raw, &sr))
		return sr
	}

	first := read(all)
	assert.Equal(t, "AAPL", first.Ticker)
	assert.Equal(t, "cron", first.Trigger)
	assert.Equal(t, "req-1", first.RequestID)
	assert.Equal(t, "MSFT", read(all).Ticker)

	got := read(msftOnly)
	assert.Equal(t, "MSFT", got.Ticker)
	require.NotNil(t, got.Result)
	assert.Equal(t, "2", got.Result.ID)
}

func TestHubUnregistersClosedClients(t *testing.T) {
	h, url := startHub(t)
	conn := dial(t, url, h, 1)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestParseTickers(t *testing.T) {
	assert.Nil(t, parseTickers(""))
	assert.Equal(t, map[string]struct{}{"AAPL": {}, "MSFT": {}}, parseTickers(" aapl,MSFT,, "))
}
