package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordrace/server/internal/api"
	"github.com/wordrace/server/internal/factory"
	"github.com/wordrace/server/internal/model"
	"github.com/wordrace/server/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *factory.TestApp) {
	t.Helper()

	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestDictionary())

	router := api.NewRouter(api.RouterConfig{
		Logger:                testutil.NopLogger(),
		Storage:               app.Storage,
		Hub:                   app.Hub,
		Gateway:               app.Gateway,
		MatchController:       app.MatchController,
		RoyaleController:      app.RoyaleController,
		MatchmakingController: app.MatchmakingController,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, app
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func saveSummary(t *testing.T, app *factory.TestApp, code string) {
	t.Helper()
	require.NoError(t, app.Storage.SaveMatchSummary(context.Background(), &model.MatchSummary{
		Code:        model.RoomCode(code),
		Mode:        model.ModeClassic,
		Winner:      "Player 1",
		WinningWord: "cart",
		Scores:      map[string]int{"Player 1": 10, "Player 2": 4},
		CompletedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}))
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/healthz", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestStatsEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	saveSummary(t, app, "ROOM01")
	saveSummary(t, app, "ROOM02")

	var body struct {
		Online           int   `json:"online"`
		Rooms            int   `json:"rooms"`
		MatchesCompleted int64 `json:"matchesCompleted"`
	}
	status := getJSON(t, srv.URL+"/api/v1/stats", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, body.Online)
	assert.Equal(t, 0, body.Rooms)
	assert.Equal(t, int64(2), body.MatchesCompleted)
}

func TestRecentMatchesEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	saveSummary(t, app, "ROOM01")
	saveSummary(t, app, "ROOM02")
	saveSummary(t, app, "ROOM03")

	var body struct {
		Matches []*model.MatchSummary `json:"matches"`
	}
	status := getJSON(t, srv.URL+"/api/v1/matches/recent?limit=2", &body)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Matches, 2)
	// Newest first
	assert.Equal(t, model.RoomCode("ROOM03"), body.Matches[0].Code)
	assert.Equal(t, model.RoomCode("ROOM02"), body.Matches[1].Code)
}

func TestRecentMatchesEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	var body struct {
		Matches []*model.MatchSummary `json:"matches"`
	}
	status := getJSON(t, srv.URL+"/api/v1/matches/recent", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body.Matches)
	assert.Empty(t, body.Matches)
}

func TestRecentMatchesRejectsBadLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/matches/recent?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/matches/recent?limit=0", nil))
}

func TestWebsocketUpgrade(t *testing.T) {
	srv, app := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration broadcasts the online count to the new connection
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, "online_count", env.Type)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	assert.Equal(t, 1, app.Hub.Count())
}
