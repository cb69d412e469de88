package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codewords/internal/app"
	"codewords/internal/config"
	"codewords/internal/store"
	"codewords/internal/words"
)

func newTestServer(t *testing.T) (*Server, *app.GameHub) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := store.NewMemoryStore()
	hub := app.NewGameHub(st, words.Default(), app.HubOptions{TickInterval: time.Hour}, logger)
	t.Cleanup(func() {
		hub.Close()
		st.Close()
	})

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0", Env: "development"},
	}
	return NewServer(cfg, hub, logger), hub
}

func do(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// decodeData re-decodes the envelope's data into v
func decodeData(t *testing.T, resp Response, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestCreateAndGetRoom(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := do(t, s, http.MethodPost, "/api/rooms")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)

	var created CreateRoomResponse
	decodeData(t, resp, &created)
	assert.Len(t, created.RoomCode, app.DefaultRoomCodeLength)
	assert.True(t, strings.HasSuffix(created.InviteLink, "/join/"+created.RoomCode))

	rec, resp = do(t, s, http.MethodGet, "/api/rooms/"+strings.ToLower(created.RoomCode))
	require.Equal(t, http.StatusOK, rec.Code)

	var room GetRoomResponse
	decodeData(t, resp, &room)
	assert.Equal(t, created.RoomCode, room.RoomCode)
	assert.Equal(t, "lobby", room.Phase)
	assert.Equal(t, 0, room.PlayerCount)
	assert.True(t, room.CanJoin)

	_, resp = do(t, s, http.MethodGet, "/api/rooms/"+created.RoomCode+"/exists")
	var exists RoomExistsResponse
	decodeData(t, resp, &exists)
	assert.True(t, exists.Exists)
}

func TestGetRoom_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := do(t, s, http.MethodGet, "/api/rooms/ZZZZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ROOM_NOT_FOUND", resp.Error.Code)

	_, resp = do(t, s, http.MethodGet, "/api/rooms/ZZZZZ/exists")
	var exists RoomExistsResponse
	decodeData(t, resp, &exists)
	assert.False(t, exists.Exists)
}

func TestHealthAndStats(t *testing.T) {
	s, hub := newTestServer(t)

	rec, resp := do(t, s, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	var health HealthResponse
	decodeData(t, resp, &health)
	assert.Equal(t, "ok", health.Status)

	_, err := hub.CreateGame(context.Background())
	require.NoError(t, err)

	_, resp = do(t, s, http.MethodGet, "/api/stats")
	var stats StatsResponse
	decodeData(t, resp, &stats)
	assert.Equal(t, 1, stats.ActiveGames)
	assert.Equal(t, 0, stats.TotalPlayers)
}

func TestPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := do(t, s, http.MethodOptions, "/api/rooms")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestWebsocketRouteRequiresRoomCode(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
