// Package websocket pushes expense changes to connected dashboards of the same company.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"sgo/internal/middleware"
	"sgo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sendBuffer = 256

// Client is one connected dashboard.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	companyID uuid.UUID
	send      chan []byte
}

type message struct {
	companyID uuid.UUID
	payload   []byte
}

// Hub keeps the connected clients and fans out company-scoped messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	upgrader   websocket.Upgrader
	log        *zap.Logger
}

// NewHub builds a hub. allowedOrigins restricts the upgrade; an empty list accepts any origin.
func NewHub(log *zap.Logger, allowedOrigins []string) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// Run dispatches until ctx is cancelled, then closes every client. A hub runs once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("websocket client connected", zap.String("company_id", client.companyID.String()))
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug("websocket client disconnected")
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.companyID != msg.companyID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyExpense queues an event for the company's clients. It never blocks the caller;
// when the queue is full the event is dropped.
func (h *Hub) NotifyExpense(event service.ExpenseEvent) {
	companyID, err := uuid.Parse(event.CompanyID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("failed to encode expense event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{companyID: companyID, payload: payload}:
	default:
		h.log.Warn("websocket queue full, dropping event", zap.String("type", event.Type))
	}
}

// attach hands a new client to Run. It reports false once the hub has stopped.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach removes a client. After shutdown Run has already closed every client.
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Connected counts clients of a company.
func (h *Hub) Connected(companyID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for client := range h.clients {
		if client.companyID == companyID {
			n++
		}
	}
	return n
}

func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
	}
}

// Handler authenticates with the `token` query parameter, the cookie or a Bearer header,
// then upgrades the connection.
func (h *Hub) Handler(auth *middleware.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			var err error
			if tokenString, err = middleware.TokenFromRequest(c); err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
		}
		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			h.log.Info("websocket connection rejected", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		client := &Client{hub: h, conn: conn, companyID: claims.CompanyID, send: make(chan []byte, sendBuffer)}
		if !h.attach(client) {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
