package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	"FinScope/internal/usecase"
	xlogger "FinScope/pkg/logger"
	"FinScope/pkg/util"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

// Hub pushes every finished analysis to connected websocket clients. Clients
// may subscribe to a subset with ?tickers=AAPL,MSFT.
type Hub struct {
	log      *xlogger.Logger
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	broadcast  chan *outbound

	mu      sync.Mutex
	clients map[*client]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	tickers map[string]struct{}
}

type outbound struct {
	ticker  string
	payload []byte
}

func (c *client) wants(ticker string) bool {
	if len(c.tickers) == 0 {
		return true
	}
	_, ok := c.tickers[ticker]
	return ok
}

func NewHub(log *xlogger.Logger) *Hub {
	if log == nil {
		log = xlogger.Nop()
	}
	return &Hub{
		log: log.With(xlogger.String("component", "ws-hub")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *outbound, 256),
		clients:    make(map[*client]struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/analyses", h.Serve)
}

func (h *Hub) Name() string { return "ws-hub" }

func (h *Hub) Start(ctx context.Context) error {
	ctx, h.cancel = context.WithCancel(context.WithoutCancel(ctx))
	go h.run(ctx)
	return nil
}

func (h *Hub) Stop(ctx context.Context) error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if !c.wants(msg.ticker) {
					continue
				}
				select {
				case c.send <- msg.payload:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Consume implements AnalysisSink. It never blocks on slow clients; when the
// broadcast queue is full the update is dropped.
func (h *Hub) Consume(ctx context.Context, r *models.AnalysisResult) error {
	payload, err := json.Marshal(models.ScanResult{
		RequestID: usecase.RequestIDFrom(ctx),
		Trigger:   string(usecase.TriggerFrom(ctx)),
		Ticker:    r.Ticker,
		Result:    r,
	})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- &outbound{ticker: r.Ticker, payload: payload}:
	default:
		h.log.Warn("broadcast queue full, dropping update", xlogger.String("ticker", r.Ticker))
	}
	return nil
}

// Serve upgrades the request and pumps analyses to the connection until it
// closes.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	cl := &client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		tickers: parseTickers(c.QueryParam("tickers")),
	}

	select {
	case h.register <- cl:
	case <-h.done:
		_ = conn.Close()
		return nil
	}
	go h.writePump(cl)
	h.readPump(cl)
	return nil
}

func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func parseTickers(raw string) map[string]struct{} {
	if raw == "" {
		return nil
	}
	out := make(map[string]struct{})
	for _, t := range strings.Split(raw, ",") {
		if s := util.NormalizeTicker(t); s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

var _ domrepo.AnalysisSink = (*Hub)(nil)
