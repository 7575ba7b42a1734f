package server

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Outgoing messages buffered per client.
	sendBuffer = 64
)

// Message types sent to WebSocket clients.
const (
	MessageResult   = "result"
	MessageError    = "error"
	MessageReloaded = "dictionary_reloaded"
)

// WSRequest is one hyphenation request on the socket.
type WSRequest struct {
	ID string `json:"id,omitempty"`
	HyphenateRequest
}

// Message is everything the server sends on the socket.
type Message struct {
	Type      string    `json:"type"`
	ID        string    `json:"id,omitempty"`
	Result    string    `json:"result,omitempty"`
	Language  string    `json:"language,omitempty"`
	Error     string    `json:"error,omitempty"`
	Code      string    `json:"code,omitempty"`
	Languages []string  `json:"languages,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one WebSocket connection. send is never closed; done signals
// both pumps to stop.
type Client struct {
	conn *websocket.Conn
	send chan Message
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan Message, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub tracks connected clients for broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  logging.Logger
	done    chan struct{}
	stop    sync.Once
}

// NewHub creates an empty hub.
func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Run closes every client when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		h.CloseAll()
	case <-h.done:
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return false
	default:
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// Broadcast queues msg for every client. Clients whose buffer is full are
// dropped.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			c.close()
		}
	}
}

// CloseAll disconnects every client and refuses new ones.
func (h *Hub) CloseAll() {
	h.stop.Do(func() { close(h.done) })
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.config.Server.AllowedOrigins),
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "request_id", RequestID(r.Context()))
		return
	}
	conn.SetReadLimit(maxBodyBytes)

	client := newClient(conn)
	if !s.hub.add(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.writePump(ctx, client)
	s.readPump(ctx, client, r.Header.Get("Accept-Language"))
}

// readPump answers requests until the peer goes away.
func (s *Server) readPump(ctx context.Context, c *Client, accept string) {
	defer func() {
		s.hub.remove(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var req WSRequest
		if err := wsjson.Read(ctx, c.conn, &req); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				s.logger.Debug(ctx, "WebSocket read ended", "error", err.Error())
			}
			return
		}

		msg := Message{Type: MessageResult, ID: req.ID, Timestamp: time.Now().UTC()}
		resp, err := s.hyphenate(req.HyphenateRequest, accept)
		if err != nil {
			msg.Type = MessageError
			msg.Error = err.Error()
			var he *errors.HyphenError
			if errors.As(err, &he) {
				msg.Error = he.Message
				msg.Code = he.Code
			}
		} else {
			msg.Result = resp.Result
			msg.Language = resp.Language
		}

		select {
		case c.send <- msg:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// writePump owns all writes to the connection.
func (s *Server) writePump(ctx context.Context, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			c.conn.Close(websocket.StatusGoingAway, "")
			return
		case msg := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := wsjson.Write(writeCtx, c.conn, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// originPatterns converts allowed origins to host patterns. The request's
// own host is always accepted by the websocket package.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if u, err := parseOrigin(o); err == nil {
			patterns = append(patterns, u)
		}
	}
	return patterns
}

func parseOrigin(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.NewValidationError(errors.CodeInvalidRequest, "origin has no host")
	}
	return u.Host, nil
}
