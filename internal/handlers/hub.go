package handlers

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/game"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/sirupsen/logrus"
)

const clientBuffer = 16

// client is one WebSocket seat. Outbound frames are queued on send and written by the
// connection's writer goroutine.
type client struct {
	gameID   uuid.UUID
	playerID uuid.UUID
	send     chan []byte
	// slow is closed when the hub gives up on the client.
	slow     chan struct{}
	slowOnce sync.Once
}

func newClient(gameID, playerID uuid.UUID) *client {
	return &client{
		gameID:   gameID,
		playerID: playerID,
		send:     make(chan []byte, clientBuffer),
		slow:     make(chan struct{}),
	}
}

func (c *client) markSlow() {
	c.slowOnce.Do(func() { close(c.slow) })
}

// Hub fans game updates out to connected seats, each receiving its own view.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]map[*client]struct{}
	logger  *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.gameID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.gameID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.gameID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.gameID)
	}
}

// Connections returns the number of open sockets for a game.
func (h *Hub) Connections(gameID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[gameID])
}

// GameUpdated pushes a fresh view to every seat watching g. It never blocks: a client
// whose queue is full is marked slow and dropped by its own connection.
func (h *Hub) GameUpdated(g *models.Game) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[g.ID]))
	for c := range h.clients[g.ID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		frame, err := stateFrame(g, c.playerID)
		if err != nil {
			h.logger.WithError(err).WithField("game_id", g.ID).Warn("failed to build view for push")
			continue
		}
		select {
		case c.send <- frame:
		default:
			h.logger.WithFields(logrus.Fields{"game_id": g.ID, "player_id": c.playerID}).Warn("client too slow, dropping")
			c.markSlow()
		}
	}
}

type outboundMessage struct {
	Type   string            `json:"type"`
	View   *game.PublicView  `json:"view,omitempty"`
	Error  string            `json:"error,omitempty"`
	Reason game.RejectReason `json:"reason,omitempty"`
}

func stateFrame(g *models.Game, viewerID uuid.UUID) ([]byte, error) {
	view, err := game.SnapshotFor(g, viewerID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(outboundMessage{Type: "game_state", View: view})
}
