package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacnav/game"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rm := InitRoomManager(newTestWorld, 100)
	t.Cleanup(rm.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", HandleWS)
	mux.HandleFunc("/admin/config", HandleAdminConfig)
	mux.HandleFunc("/metrics", HandleMetrics)
	mux.HandleFunc("/state", HandleState)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleAdminConfig(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/admin/config?room=cfg", "application/json", strings.NewReader(`{"step":2,"paused":true}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/admin/config?room=cfg")
	require.NoError(t, err)
	defer resp.Body.Close()
	var got RoomSettings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Step)
	assert.Equal(t, 2.0, *got.Step)
	assert.True(t, *got.Paused)

	resp, err = http.Post(srv.URL+"/admin/config?room=cfg", "application/json", strings.NewReader(`{"step":-3}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/admin/config", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleStateAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/state?room=snap")
	require.NoError(t, err)
	defer resp.Body.Close()
	var snap game.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.Len(t, snap.Entities, 1)
	assert.Equal(t, "Pacman", snap.Entities[0].Name)

	resp2, err := http.Get(srv.URL + "/metrics?room=snap")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&m))
	assert.Equal(t, "snap", m["room"])
	assert.Contains(t, m["metrics"], "dots_eaten")
}

func TestHandleWS_MissingPlayer(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleWS_MoveRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=ws&player=alice"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var init initMessage
	require.NoError(t, conn.ReadJSON(&init))
	assert.Equal(t, "init", init.Type)
	assert.Equal(t, "ws", init.Room)

	require.NoError(t, conn.WriteJSON(InputMessage{Type: "move", Command: "right", Seq: 1}))

	for {
		var msg stateMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Turn == nil {
			continue
		}
		assert.True(t, msg.Turn.Accepted)
		assert.Equal(t, game.DirRight, msg.Turn.Dir)
		assert.Equal(t, 10, msg.Score.Player)
		return
	}
}
