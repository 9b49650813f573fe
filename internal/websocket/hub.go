package websocket

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin restriction is handled by the CORS middleware
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one connected analysis subscriber.
type Client struct {
	FixtureIDs []int // Fixtures this client wants updates for; empty = all
	Conn       *websocket.Conn
	Send       chan []byte
	Hub        *AnalysisHub
	LastSeen   time.Time
}

// AnalysisUpdate is one event pushed to subscribers when an analysis
// completes or a fixture's cached data is refreshed.
type AnalysisUpdate struct {
	Type      string      `json:"type"` // "analysis_completed", "fixtures_refreshed", "pong"
	FixtureID int         `json:"fixture_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// AnalysisHub fans analysis events out to WebSocket subscribers.
type AnalysisHub struct {
	clients        map[*Client]bool
	fixtureClients map[int][]*Client
	broadcast      chan *AnalysisUpdate
	register       chan *Client
	unregister     chan *Client
	logger         *logrus.Logger
	mutex          sync.RWMutex
}

// NewAnalysisHub creates the hub. Run must be started on its own goroutine.
func NewAnalysisHub(logger *logrus.Logger) *AnalysisHub {
	return &AnalysisHub{
		clients:        make(map[*Client]bool),
		fixtureClients: make(map[int][]*Client),
		broadcast:      make(chan *AnalysisUpdate, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger,
	}
}

// Run processes registration, unregistration and broadcast events.
func (h *AnalysisHub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case update := <-h.broadcast:
			h.broadcastUpdate(update)
		case <-ticker.C:
			h.dropStaleClients()
		}
	}
}

func (h *AnalysisHub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	for _, fixtureID := range client.FixtureIDs {
		h.fixtureClients[fixtureID] = append(h.fixtureClients[fixtureID], client)
	}

	h.logger.WithFields(logrus.Fields{
		"component":     "ws_hub",
		"fixture_ids":   client.FixtureIDs,
		"total_clients": len(h.clients),
	}).Info("Analysis WebSocket client connected")
}

func (h *AnalysisHub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	for _, fixtureID := range client.FixtureIDs {
		subscribers := h.fixtureClients[fixtureID]
		for i, c := range subscribers {
			if c == client {
				h.fixtureClients[fixtureID] = append(subscribers[:i], subscribers[i+1:]...)
				break
			}
		}
		if len(h.fixtureClients[fixtureID]) == 0 {
			delete(h.fixtureClients, fixtureID)
		}
	}

	h.logger.WithFields(logrus.Fields{
		"component":     "ws_hub",
		"total_clients": len(h.clients),
	}).Info("Analysis WebSocket client disconnected")
}

func (h *AnalysisHub) broadcastUpdate(update *AnalysisUpdate) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// Fixture-scoped updates go only to that fixture's subscribers plus
	// the catch-all clients.
	if update.FixtureID != 0 {
		seen := make(map[*Client]bool)
		for _, client := range h.fixtureClients[update.FixtureID] {
			h.sendToClient(client, update)
			seen[client] = true
		}
		for client := range h.clients {
			if len(client.FixtureIDs) == 0 && !seen[client] {
				h.sendToClient(client, update)
			}
		}
		return
	}

	for client := range h.clients {
		h.sendToClient(client, update)
	}
}

func (h *AnalysisHub) sendToClient(client *Client, update *AnalysisUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	select {
	case client.Send <- data:
		client.LastSeen = time.Now()
	default:
		// Send buffer full; treat the client as gone.
		go func() { h.unregister <- client }()
	}
}

func (h *AnalysisHub) dropStaleClients() {
	h.mutex.RLock()
	var stale []*Client
	now := time.Now()
	for client := range h.clients {
		if now.Sub(client.LastSeen) > 2*time.Minute {
			stale = append(stale, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range stale {
		h.unregister <- client
	}
	if len(stale) > 0 {
		h.logger.WithField("stale_clients", len(stale)).Debug("Removed stale WebSocket clients")
	}
}

// BroadcastAnalysis pushes a completed analysis to that fixture's subscribers.
func (h *AnalysisHub) BroadcastAnalysis(fixtureID int, payload interface{}) {
	h.broadcast <- &AnalysisUpdate{
		Type:      "analysis_completed",
		FixtureID: fixtureID,
		Data:      payload,
		Timestamp: time.Now(),
	}
}

// BroadcastRefresh announces that the fixture cache was refreshed.
func (h *AnalysisHub) BroadcastRefresh(teamIDs []int) {
	h.broadcast <- &AnalysisUpdate{
		Type:      "fixtures_refreshed",
		Data:      map[string]interface{}{"team_ids": teamIDs},
		Timestamp: time.Now(),
	}
}

// GetConnectionCount returns the number of active connections.
func (h *AnalysisHub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the HTTP request and registers the client.
// The optional fixture_ids query parameter scopes the subscription.
func (h *AnalysisHub) HandleWebSocket(c *gin.Context) {
	var fixtureIDs []int
	if raw := c.Query("fixture_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				fixtureIDs = append(fixtureIDs, id)
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		FixtureIDs: fixtureIDs,
		Conn:       conn,
		Send:       make(chan []byte, 256),
		Hub:        h,
		LastSeen:   time.Now(),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains client messages; a "ping" gets a "pong" back.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastSeen = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("Analysis WebSocket error")
			}
			break
		}
		c.handleIncomingMessage(message)
		c.LastSeen = time.Now()
	}
}

// writePump writes hub messages and keep-alive pings to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleIncomingMessage(message []byte) {
	var clientMsg map[string]interface{}
	if err := json.Unmarshal(message, &clientMsg); err != nil {
		c.Hub.logger.WithError(err).Warn("Failed to parse client message")
		return
	}

	if msgType, _ := clientMsg["type"].(string); msgType == "ping" {
		c.Hub.sendToClient(c, &AnalysisUpdate{
			Type:      "pong",
			Timestamp: time.Now(),
		})
	}
}
