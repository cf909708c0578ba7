package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/config"
	"github.com/cory-johannsen/ludo/internal/game/dice"
	"github.com/cory-johannsen/ludo/internal/protocol"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second
	return cfg
}

func TestInitializeServer_ServesWebSocket(t *testing.T) {
	srv, cleanup, err := InitializeServer(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case <-srv.HTTP.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("http listener not ready")
	}
	base := srv.HTTP.Addr()

	resp, err := http.Get("http://" + base + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dialCancel()
	conn, _, err := websocket.Dial(dialCtx, "ws://"+base+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, wsjson.Read(dialCtx, conn, &env))
	assert.Equal(t, protocol.EventRoomListUpdate, env.Event)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestProvideRecorder_Disabled(t *testing.T) {
	rec, cleanup, err := ProvideRecorder(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, rec)
	cleanup()
}

func TestProvideRecorder_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Enabled = true
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := ProvideRecorder(ctx, cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideRoller_ForcesSixAfterFiveMisses(t *testing.T) {
	r := ProvideRoller(dice.NewSequenceSource(0), zap.NewNop())
	assert.Equal(t, dice.DefaultPityThreshold, r.Threshold())
	assert.Equal(t, 5, r.Threshold())

	out := r.Roll(5)
	assert.Equal(t, dice.Faces, out.Value)
	assert.True(t, out.Forced)
	out = r.Roll(4)
	assert.Equal(t, 1, out.Value)
	assert.Equal(t, 5, out.Misses)
}

func TestProvideRules(t *testing.T) {
	cfg := testConfig()
	cfg.Game.DefaultMaxPlayers = 3
	cfg.Game.EnforceTurnOwner = false
	rules := ProvideRules(cfg)
	assert.Equal(t, 3, rules.DefaultMaxPlayers)
	assert.False(t, rules.EnforceTurnOwner)
}
