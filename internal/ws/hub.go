package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hferris/tictactoe-go/internal/metrics"
	"github.com/hferris/tictactoe-go/internal/model"
	"github.com/hferris/tictactoe-go/internal/services/presence"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is a single websocket connection
type Client struct {
	id   presence.ConnectionID
	conn *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	nickname model.Nickname
	closed   bool
}

type enqueueResult int

const (
	enqueueOK enqueueResult = iota
	enqueueFull
	enqueueClosed
)

// enqueue buffers an outbound frame. The closed check and the channel
// send happen under the same lock as closeSend, so a frame is never
// sent on a closed channel.
func (c *Client) enqueue(data []byte) enqueueResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return enqueueClosed
	}
	select {
	case c.send <- data:
		return enqueueOK
	default:
		return enqueueFull
	}
}

// closeSend closes the send channel exactly once
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ID returns the connection identifier
func (c *Client) ID() presence.ConnectionID {
	return c.id
}

// Nickname returns the nickname bound to the connection, if any
func (c *Client) Nickname() (model.Nickname, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nickname, c.nickname != ""
}

func (c *Client) bind(nickname model.Nickname) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nickname = nickname
}

// Hub tracks the set of live connections and routes outbound messages
// to them by nickname.
type Hub struct {
	mu         sync.Mutex
	clients    map[presence.ConnectionID]*Client
	byNickname map[model.Nickname]*Client

	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewHub creates a new hub
func NewHub(logger *slog.Logger, metrics *metrics.Collector) *Hub {
	return &Hub{
		clients:    make(map[presence.ConnectionID]*Client),
		byNickname: make(map[model.Nickname]*Client),
		logger:     logger.With(slog.String("component", "ws")),
		metrics:    metrics,
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	n := len(h.clients)
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
	h.logger.Info("client connected",
		slog.String("conn_id", string(client.id)),
		slog.Int("total", n),
	)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	if nickname, ok := client.Nickname(); ok && h.byNickname[nickname] == client {
		delete(h.byNickname, nickname)
	}
	n := len(h.clients)
	h.mu.Unlock()

	client.closeSend()
	h.metrics.ConnectionClosed()
	h.logger.Info("client disconnected",
		slog.String("conn_id", string(client.id)),
		slog.Int("total", n),
	)
}

// Bind associates the nickname with the client so outbound messages
// addressed to the nickname reach this connection
func (h *Hub) Bind(client *Client, nickname model.Nickname) {
	client.bind(nickname)
	h.mu.Lock()
	h.byNickname[nickname] = client
	h.mu.Unlock()
}

// Send delivers the payload to the client. A client whose send buffer
// is full is dropped rather than allowed to stall the caller, and a
// client already torn down is skipped.
func (h *Hub) Send(client *Client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to marshal outbound message", slog.String("error", err.Error()))
		return
	}
	switch client.enqueue(data) {
	case enqueueOK, enqueueClosed:
	case enqueueFull:
		h.logger.Warn("dropping slow client", slog.String("conn_id", string(client.id)))
		h.remove(client)
		client.conn.Close()
	}
}

// SendTo delivers the payload to whichever connection currently holds
// the nickname. Unconnected nicknames are skipped silently.
func (h *Hub) SendTo(nickname model.Nickname, v any) {
	h.mu.Lock()
	client, ok := h.byNickname[nickname]
	h.mu.Unlock()
	if !ok {
		return
	}
	h.Send(client, v)
}

// ClientCount returns the number of live connections
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and runs the connection until it closes
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, handler *Handler) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &Client{
		id:   presence.ConnectionID(uuid.NewString()),
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.add(client)

	go client.writePump()
	go client.readPump(h, handler)
}

// readPump pumps inbound frames into the handler
func (c *Client) readPump(h *Hub, handler *Handler) {
	defer func() {
		handler.HandleDisconnect(context.Background(), c)
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", slog.String("error", err.Error()))
			}
			break
		}
		handler.HandleMessage(context.Background(), c, data)
	}
}

// writePump pumps outbound messages to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
