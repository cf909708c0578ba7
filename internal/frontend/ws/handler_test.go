package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/game/dice"
	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/gameserver"
	"github.com/cory-johannsen/ludo/internal/protocol"
	"github.com/cory-johannsen/ludo/internal/session"
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	// Handler goroutines may outlive the test, so they log nowhere.
	logger := zap.NewNop()
	sessions := session.NewManager(64, logger)
	coord := gameserver.NewCoordinator(
		room.NewDirectory(room.NewNumericIDs(dice.NewCryptoSource())),
		sessions,
		dice.NewLoggedRoller(dice.NewCryptoSource(), dice.DefaultPityThreshold, logger),
		gameserver.DefaultRules(),
		nil,
		logger,
	)
	srv := httptest.NewServer(NewRouter(NewHandler(coord, logger), logger))
	t.Cleanup(srv.Close)
	return srv, sessions
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var env envelope
	require.NoError(t, wsjson.Read(ctx, conn, &env))
	return env
}

func readUntil(t *testing.T, conn *websocket.Conn, event string) envelope {
	t.Helper()
	for i := 0; i < 10; i++ {
		if env := read(t, conn); env.Event == event {
			return env
		}
	}
	t.Fatalf("no %s event received", event)
	return envelope{}
}

// readPlayers returns the seats of the next player_update on conn.
func readPlayers(t *testing.T, conn *websocket.Conn) []protocol.PlayerState {
	t.Helper()
	var update protocol.PlayerUpdate
	require.NoError(t, json.Unmarshal(readUntil(t, conn, protocol.EventPlayerUpdate).Data, &update))
	return update.Players
}

func write(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, v))
}

func TestRouter_HealthAndBanner(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, Banner, string(body))
}

func TestHandler_ConnectReceivesRoomList(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	env := read(t, conn)
	assert.Equal(t, protocol.EventRoomListUpdate, env.Event)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestHandler_CreateAndJoinOverSocket(t *testing.T) {
	srv, _ := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)
	read(t, host)
	read(t, guest)

	write(t, host, map[string]any{"event": "create_room", "data": map[string]any{"name": "Host", "maxPlayers": 2}})
	created := readUntil(t, host, protocol.EventRoomCreated)
	var ack protocol.RoomAck
	require.NoError(t, json.Unmarshal(created.Data, &ack))
	assert.Len(t, ack.RoomID, 6)
	assert.Len(t, readPlayers(t, host), 1)

	listing := readUntil(t, guest, protocol.EventRoomListUpdate)
	assert.Contains(t, string(listing.Data), ack.RoomID)

	write(t, guest, map[string]any{"event": "join_game", "data": map[string]any{"name": "Guest", "roomId": ack.RoomID}})
	readUntil(t, guest, protocol.EventRoomJoined)

	players := readPlayers(t, host)
	require.Len(t, players, 2)
	assert.Equal(t, "Host", players[0].Name)
	assert.Equal(t, "Guest", players[1].Name)
	assert.Equal(t, "green", players[1].Color)
}

func TestHandler_MalformedFrameIsSkipped(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	read(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))

	write(t, conn, map[string]any{"event": "get_room_list"})
	assert.Equal(t, protocol.EventRoomListUpdate, read(t, conn).Event)
}

func TestHandler_CloseDisconnects(t *testing.T) {
	srv, sessions := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)
	read(t, host)
	read(t, guest)

	write(t, host, map[string]any{"event": "create_room", "data": map[string]any{"name": "Host"}})
	readUntil(t, guest, protocol.EventRoomListUpdate)

	require.NoError(t, host.Close(websocket.StatusNormalClosure, "bye"))

	// The emptied room disappears from the listing.
	env := readUntil(t, guest, protocol.EventRoomListUpdate)
	assert.JSONEq(t, `[]`, string(env.Data))

	deadline := time.Now().Add(2 * time.Second)
	for sessions.Count() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 1, sessions.Count())
}
