package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/VarnikaKalani/anagram/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub fans notifications out to the websocket clients of each room and
// feeds connection lifecycle events back into the room engine. It is the
// engine's Notifier implementation.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex

	rooms *RoomService
	log   zerolog.Logger
}

// Client is one websocket connection bound to a player in a room.
type Client struct {
	hub        *Hub
	id         string
	socket     *websocket.Conn
	send       chan []byte
	roomCode   string
	playerID   string
	playerName string

	// closed marks send as closed; guarded by hub.mutex.
	closed bool
}

// inboundMessage is the envelope clients send over the socket.
type inboundMessage struct {
	Type string `json:"type"`
	Word string `json:"word,omitempty"`
}

func NewHub(rooms *RoomService, log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      rooms,
		log:        log.With().Str("component", "hub").Logger(),
	}
}

// Run owns the client set. Register/unregister flow through channels so
// the map is only mutated here and in the send-failure paths that already
// hold the write lock.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Info().Str("client", client.id).Str("room", client.roomCode).
				Str("player", client.playerID).Int("total", total).Msg("client registered")

		case client := <-h.unregister:
			h.mutex.Lock()
			h.dropClientLocked(client)
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Info().Str("client", client.id).Str("room", client.roomCode).
				Str("player", client.playerID).Int("total", total).Msg("client unregistered")

			// The engine only sees the player as disconnected once no socket
			// of theirs remains; a page reload briefly overlaps connections.
			// This check must run even when a slow client was already
			// force-dropped from the map, or that player would stay marked
			// connected forever.
			if !h.IsPlayerConnected(client.roomCode, client.playerID) {
				h.rooms.Disconnect(client.roomCode, client.playerID)
			}
		}
	}
}

// ToRoom sends a notification to every client in the room.
func (h *Hub) ToRoom(code string, n models.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(n.Type)).Msg("failed to marshal notification")
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if client.roomCode != code {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.dropClientLocked(client)
		}
	}
	h.mutex.Unlock()
}

// ToPlayer sends a notification to one player's client(s) in the room.
func (h *Hub) ToPlayer(code, playerID string, n models.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(n.Type)).Msg("failed to marshal notification")
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if client.roomCode != code || client.playerID != playerID {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.dropClientLocked(client)
		}
	}
	h.mutex.Unlock()
}

// dropClientLocked removes the client and closes its send channel exactly
// once. Caller holds the hub write lock.
func (h *Hub) dropClientLocked(client *Client) {
	delete(h.clients, client)
	if !client.closed {
		client.closed = true
		close(client.send)
	}
}

// IsPlayerConnected reports whether the player still has a live socket.
func (h *Hub) IsPlayerConnected(code, playerID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for client := range h.clients {
		if client.roomCode == code && client.playerID == playerID {
			return true
		}
	}
	return false
}

// RegisterClient attaches a websocket connection as a player's transport,
// marks the player connected in the engine, and sends them an initial
// state snapshot.
func (h *Hub) RegisterClient(conn *websocket.Conn, code, playerID, playerName string) *Client {
	client := &Client{
		hub:        h,
		id:         uuid.NewString(),
		socket:     conn,
		send:       make(chan []byte, 256),
		roomCode:   code,
		playerID:   playerID,
		playerName: playerName,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	if state, err := h.rooms.MarkConnected(code, playerID); err == nil {
		client.sendNotification(models.RoomStateNotification(state))
	} else {
		h.log.Warn().Err(err).Str("room", code).Str("player", playerID).Msg("could not bind client to room")
	}
	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Str("client", c.id).Msg("websocket read error")
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.hub.log.Debug().Err(err).Str("client", c.id).Msg("discarding malformed message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg inboundMessage) {
	switch msg.Type {
	case "ping":
		c.sendRaw([]byte(`{"type":"pong"}`))

	case "word:submit":
		result, err := c.hub.rooms.SubmitWord(context.Background(), c.roomCode, c.playerID, msg.Word)
		if err != nil {
			ge := models.AsGameError(err)
			result = models.WordResultData{OK: false, Word: msg.Word, ErrorCode: ge.Code, Message: ge.Message}
		}
		c.sendNotification(models.WordResultNotification(result))

	case "room:sync":
		state, err := c.hub.rooms.Snapshot(context.Background(), c.roomCode, c.playerID)
		if err != nil {
			c.hub.log.Debug().Err(err).Str("room", c.roomCode).Msg("sync request for unavailable room")
			return
		}
		c.sendNotification(models.RoomStateNotification(state))

	default:
		c.hub.log.Debug().Str("type", msg.Type).Str("client", c.id).Msg("unknown message type")
	}
}

func (c *Client) sendNotification(n models.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		c.hub.log.Error().Err(err).Str("type", string(n.Type)).Msg("failed to marshal notification")
		return
	}
	c.sendRaw(data)
}

// sendRaw enqueues data unless the client has been dropped. Closing only
// ever happens under the hub write lock, so holding the read lock across
// the closed check and the send makes the pair race-free.
func (c *Client) sendRaw(data []byte) {
	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
