package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/catalog"
	"github.com/jason-s-yu/hanamikoji/internal/game"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialGame(ctx context.Context, t *testing.T, baseURL string, gameID uuid.UUID, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/games/" + gameID.String() + "/ws"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{"game"},
		HTTPHeader:   http.Header{"Authorization": []string{"Bearer " + token}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })
	return c
}

func readMessage(ctx context.Context, t *testing.T, c *websocket.Conn) outboundMessage {
	t.Helper()
	var msg outboundMessage
	require.NoError(t, wsjson.Read(ctx, c, &msg))
	return msg
}

func TestGameSocketPushesViews(t *testing.T) {
	ts, api := setupServer(t)
	created := createGame(t, ts)
	alice, bob := created.Seats[0], created.Seats[1]
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ac := dialGame(ctx, t, ts.URL, created.GameID, alice.Token)
	bc := dialGame(ctx, t, ts.URL, created.GameID, bob.Token)

	first := readMessage(ctx, t, ac)
	require.Equal(t, "game_state", first.Type)
	require.NotNil(t, first.View)
	assert.Equal(t, alice.PlayerID, first.View.ViewerID)
	require.Equal(t, "game_state", readMessage(ctx, t, bc).Type)
	assert.Equal(t, 2, api.hub.Connections(created.GameID))

	require.NoError(t, wsjson.Write(ctx, ac, GameMessage{Type: "ping"}))
	assert.Equal(t, "pong", readMessage(ctx, t, ac).Type)

	hand := handIDs(*first.View)
	require.NoError(t, wsjson.Write(ctx, ac, GameMessage{
		Type:   "action",
		Action: &actionRequest{ActionType: models.ActionDiscard, CardIDs: hand[:2]},
	}))

	pushed := readMessage(ctx, t, ac)
	require.Equal(t, "game_state", pushed.Type)
	assert.Equal(t, bob.PlayerID, pushed.View.CurrentPlayerID)

	bobView := readMessage(ctx, t, bc)
	require.Equal(t, "game_state", bobView.Type)
	assert.Equal(t, bob.PlayerID, bobView.View.ViewerID)
	assert.Equal(t, bob.PlayerID, bobView.View.CurrentPlayerID)
	assert.Empty(t, bobView.View.Players[0].Discarded)

	require.NoError(t, wsjson.Write(ctx, ac, GameMessage{
		Type:   "action",
		Action: &actionRequest{ActionType: models.ActionSecret, CardIDs: hand[2:3]},
	}))
	rejected := readMessage(ctx, t, ac)
	assert.Equal(t, "error", rejected.Type)
	assert.Equal(t, game.ReasonNotYourTurn, rejected.Reason)

	require.NoError(t, wsjson.Write(ctx, ac, GameMessage{Type: "shuffle"}))
	assert.Equal(t, "error", readMessage(ctx, t, ac).Type)
}

func TestGameSocketResign(t *testing.T) {
	ts, _ := setupServer(t)
	created := createGame(t, ts)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bc := dialGame(ctx, t, ts.URL, created.GameID, created.Seats[1].Token)
	readMessage(ctx, t, bc)

	require.NoError(t, wsjson.Write(ctx, bc, GameMessage{Type: "resign"}))
	msg := readMessage(ctx, t, bc)
	require.Equal(t, "game_state", msg.Type)
	assert.Equal(t, models.GameFinished, msg.View.Status)
	assert.Equal(t, created.Seats[0].PlayerID, msg.View.WinnerID)
}

func TestGameSocketRequiresToken(t *testing.T) {
	ts, _ := setupServer(t)
	created := createGame(t, ts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/" + created.GameID.String() + "/ws"
	_, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: []string{"game"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubDropsSlowClients(t *testing.T) {
	logger, hook := test.NewNullLogger()
	hub := NewHub(logger)

	cat, err := catalog.Default()
	require.NoError(t, err)
	engine, err := game.NewEngine(cat, game.WithShuffler(nil))
	require.NoError(t, err)
	g, err := engine.CreateGame("Alice", "Bob")
	require.NoError(t, err)

	cl := newClient(g.ID, g.Players[0].ID)
	hub.register(cl)
	for i := 0; i <= clientBuffer; i++ {
		hub.GameUpdated(g)
	}

	select {
	case <-cl.slow:
	default:
		t.Fatal("client was not marked slow")
	}
	assert.Len(t, cl.send, clientBuffer)
	assert.NotEmpty(t, hook.Entries)

	hub.unregister(cl)
	assert.Equal(t, 0, hub.Connections(g.ID))
}
