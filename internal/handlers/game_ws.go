// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/hanamikoji/internal/auth"
	"github.com/jason-s-yu/hanamikoji/internal/game"
	"github.com/jason-s-yu/hanamikoji/internal/middleware"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/jason-s-yu/hanamikoji/internal/store"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// GameMessage is an inbound WebSocket message.
type GameMessage struct {
	// Type is one of "action", "choice", "resign" or "ping".
	Type string `json:"type"`

	Action     *actionRequest `json:"action,omitempty"`
	GroupIndex *int           `json:"group_index,omitempty"`
}

// GameWSHandler upgrades the connection for a seat of a game. The seat receives a
// game_state frame on connect and after every change, and may submit moves over the
// socket. Authorization happens before the upgrade so failures are plain HTTP errors.
func (s *APIServer) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if _, err := s.svc.Load(r.Context(), seat.GameID); err != nil {
		s.writeError(w, err)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"game"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warnf("WebSocket accept error for game %s: %v", seat.GameID, err)
		return
	}
	defer c.CloseNow()

	if c.Subprotocol() != "game" {
		c.Close(websocket.StatusCode(BadSubprotocolError), "Client must use the 'game' subprotocol.")
		return
	}
	middleware.LogWebSocketConnect(s.logger, r.RemoteAddr, r.URL.Path)

	cl := newClient(seat.GameID, seat.PlayerID)
	s.hub.register(cl)
	defer s.hub.unregister(cl)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Registered first, so no update between this load and the first push is missed.
	if g, err := s.svc.Load(ctx, seat.GameID); err == nil {
		if frame, err := stateFrame(g, seat.PlayerID); err == nil {
			cl.send <- frame
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx, c, cl)
		cancel()
	}()

	err = s.readLoop(ctx, c, cl, seat)
	cancel()
	<-done
	middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, err)
}

// writeLoop is the only writer of c.
func (s *APIServer) writeLoop(ctx context.Context, c *websocket.Conn, cl *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-cl.slow:
			c.Close(websocket.StatusCode(SlowConsumerError), "client too slow")
			return
		case frame := <-cl.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				s.logger.WithError(err).WithField("player_id", cl.playerID).Debug("websocket write failed")
				return
			}
		}
	}
}

// readLoop handles inbound messages until the connection closes. A clean close
// returns nil.
func (s *APIServer) readLoop(ctx context.Context, c *websocket.Conn, cl *client, seat auth.Seat) error {
	log := s.logger.WithFields(logrus.Fields{"game_id": seat.GameID, "player_id": seat.PlayerID})
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			log.Warnf("Ignoring non-text message type %d", msgType)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(cl, outboundMessage{Type: "error", Error: "Invalid JSON format."})
			continue
		}
		log.Debugf("Received %q message", msg.Type)

		switch msg.Type {
		case "action":
			if msg.Action == nil {
				s.reply(cl, outboundMessage{Type: "error", Error: "action message requires an action"})
				continue
			}
			_, err = s.svc.ApplyAction(ctx, seat.GameID, msg.Action.toAction(seat.PlayerID))
		case "choice":
			if msg.GroupIndex == nil {
				s.reply(cl, outboundMessage{Type: "error", Error: "choice message requires group_index"})
				continue
			}
			_, err = s.svc.ChooseGroup(ctx, seat.GameID, models.Choice{PlayerID: seat.PlayerID, GroupIndex: *msg.GroupIndex})
		case "resign":
			_, err = s.svc.Resign(ctx, seat.GameID, seat.PlayerID)
		case "ping":
			s.reply(cl, outboundMessage{Type: "pong"})
			continue
		default:
			s.reply(cl, outboundMessage{Type: "error", Error: fmt.Sprintf("Unknown message type: %s", msg.Type)})
			continue
		}
		if err != nil {
			s.reply(cl, s.errorMessage(err))
		}
	}
}

// reply queues a direct answer to the client.
func (s *APIServer) reply(cl *client, msg outboundMessage) {
	frame, err := json.Marshal(msg)
	if err != nil {
		s.logger.WithError(err).Error("failed to marshal websocket reply")
		return
	}
	select {
	case cl.send <- frame:
	default:
		cl.markSlow()
	}
}

func (s *APIServer) errorMessage(err error) outboundMessage {
	var rejected *game.RejectedError
	switch {
	case errors.As(err, &rejected):
		return outboundMessage{Type: "error", Error: rejected.Error(), Reason: rejected.Reason}
	case errors.Is(err, store.ErrNotFound):
		return outboundMessage{Type: "error", Error: "game not found"}
	default:
		s.logger.WithError(err).Error("websocket request failed")
		return outboundMessage{Type: "error", Error: "internal error"}
	}
}
