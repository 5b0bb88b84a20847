// internal/handlers/api_server.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/auth"
	"github.com/jason-s-yu/hanamikoji/internal/game"
	"github.com/jason-s-yu/hanamikoji/internal/middleware"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/jason-s-yu/hanamikoji/internal/service"
	"github.com/jason-s-yu/hanamikoji/internal/store"
	"github.com/sirupsen/logrus"
)

// APIServer exposes a GameService over HTTP and WebSocket. Every game route is
// authorized by a seat token naming the game and the caller's player.
type APIServer struct {
	svc    *service.GameService
	issuer *auth.Issuer
	hub    *Hub
	logger *logrus.Logger
}

// NewAPIServer wires the hub in as the service's notifier.
func NewAPIServer(svc *service.GameService, issuer *auth.Issuer, hub *Hub, logger *logrus.Logger) *APIServer {
	svc.SetNotifier(hub)
	return &APIServer{svc: svc, issuer: issuer, hub: hub, logger: logger}
}

// Routes returns the server's handler with request logging applied.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /games", s.createGame)
	mux.HandleFunc("GET /games/{id}", s.getGame)
	mux.HandleFunc("POST /games/{id}/actions", s.postAction)
	mux.HandleFunc("POST /games/{id}/choice", s.postChoice)
	mux.HandleFunc("POST /games/{id}/resign", s.postResign)
	mux.HandleFunc("GET /games/{id}/ws", s.GameWSHandler)

	return middleware.LogMiddleware(s.logger)(mux)
}

type createGameRequest struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

type seatResponse struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Token    string    `json:"token"`
}

type createGameResponse struct {
	GameID uuid.UUID      `json:"game_id"`
	Seats  []seatResponse `json:"seats"`
}

// actionRequest is an Action without the player; the seat token supplies it.
type actionRequest struct {
	ActionType     models.ActionType `json:"action_type"`
	CardIDs        []uuid.UUID       `json:"card_ids"`
	TargetGeishaID string            `json:"target_geisha_id,omitempty"`
	Groupings      [][]uuid.UUID     `json:"groupings,omitempty"`
}

func (a actionRequest) toAction(playerID uuid.UUID) models.Action {
	return models.Action{
		PlayerID:       playerID,
		ActionType:     a.ActionType,
		CardIDs:        a.CardIDs,
		TargetGeishaID: a.TargetGeishaID,
		Groupings:      a.Groupings,
	}
}

type choiceRequest struct {
	GroupIndex *int `json:"group_index"`
}

func (s *APIServer) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := s.svc.CreateGame(r.Context(), req.Player1, req.Player2)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := createGameResponse{GameID: g.ID}
	for _, p := range g.Players {
		token, err := s.issuer.Issue(auth.Seat{GameID: g.ID, PlayerID: p.ID})
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Seats = append(resp.Seats, seatResponse{PlayerID: p.ID, Name: p.Name, Token: token})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *APIServer) getGame(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.authorize(w, r)
	if !ok {
		return
	}
	s.respondView(w, r, seat)
}

func (s *APIServer) postAction(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.authorize(w, r)
	if !ok {
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := s.svc.ApplyAction(r.Context(), seat.GameID, req.toAction(seat.PlayerID)); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondView(w, r, seat)
}

func (s *APIServer) postChoice(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.authorize(w, r)
	if !ok {
		return
	}
	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GroupIndex == nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	choice := models.Choice{PlayerID: seat.PlayerID, GroupIndex: *req.GroupIndex}
	if _, err := s.svc.ChooseGroup(r.Context(), seat.GameID, choice); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondView(w, r, seat)
}

func (s *APIServer) postResign(w http.ResponseWriter, r *http.Request) {
	seat, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if _, err := s.svc.Resign(r.Context(), seat.GameID, seat.PlayerID); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondView(w, r, seat)
}

func (s *APIServer) respondView(w http.ResponseWriter, r *http.Request, seat auth.Seat) {
	view, err := s.svc.View(r.Context(), seat.GameID, seat.PlayerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// authorize checks the seat token against the game in the path. On failure it writes
// the response and returns false.
func (s *APIServer) authorize(w http.ResponseWriter, r *http.Request) (auth.Seat, bool) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid game id")
		return auth.Seat{}, false
	}
	token := tokenFromRequest(r)
	if token == "" {
		writeErrorMessage(w, http.StatusUnauthorized, "missing auth token")
		return auth.Seat{}, false
	}
	seat, err := s.issuer.Authenticate(token)
	if err != nil {
		s.writeError(w, err)
		return auth.Seat{}, false
	}
	if seat.GameID != gameID {
		writeErrorMessage(w, http.StatusForbidden, "token is for another game")
		return auth.Seat{}, false
	}
	return seat, true
}

type errorResponse struct {
	Error  string            `json:"error"`
	Reason game.RejectReason `json:"reason,omitempty"`
}

// writeError maps service errors to status codes. Unexpected errors are logged and
// hidden from the client.
func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	var rejected *game.RejectedError
	switch {
	case errors.As(err, &rejected):
		writeJSON(w, http.StatusConflict, errorResponse{Error: rejected.Error(), Reason: rejected.Reason})
	case errors.Is(err, store.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "game not found")
	case errors.Is(err, auth.ErrInvalidToken):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid auth token")
	default:
		s.logger.WithError(err).Error("request failed")
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
