package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardbank/internal/api"
	"github.com/mcoot/boardbank/internal/api/apierr"
	"github.com/mcoot/boardbank/internal/api/handler"
	"github.com/mcoot/boardbank/internal/api/response"
	"github.com/mcoot/boardbank/internal/factory"
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:   testutil.NopLogger(),
		Sessions: app.SessionRegistry,
		Lobby:    app.RoomManager,
		Health: handler.HealthSources{
			Games: app.RoomManager.GameCount,
			Drops: app.Dispatcher.Drops,
		},
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) login(t *testing.T, username string) response.Session {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/sessions", map[string]any{"username": username}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Zero(t, resp.Games)
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.login(t, "  Alice  ")

	assert.Equal(t, "Alice", resp.Username)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, resp.PlayerID)
	assert.False(t, resp.CreatedAt.IsZero())
}

func TestCreateSessionRejectsInvalidUsernames(t *testing.T) {
	ts := newTestServer(t)

	for name, body := range map[string]any{
		"blank":      map[string]any{"username": "   "},
		"missing":    map[string]any{},
		"non-string": map[string]any{"username": 42},
	} {
		t.Run(name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/sessions", body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "INVALID_USERNAME", errorCode(t, rr))
		})
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", "{not json", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rr))
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/sessions/me", nil, session.SessionID)
	assert.Equal(t, http.StatusOK, rr.Code)

	var me response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, session.SessionID, me.SessionID)
	assert.Equal(t, "Bob", me.Username)
}

func TestGetMeRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/sessions/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "SESSION_INVALID", errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/sessions/me", nil, "no-such-session")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "SESSION_INVALID", errorCode(t, rr))
}

func TestLobbyGames(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/lobby/games", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"games":[]}`, rr.Body.String())

	session := ts.login(t, "Alice")
	gameID, err := ts.app.RoomManager.CreateGame(context.Background(), "conn-1", model.SessionID(session.SessionID), nil)
	require.NoError(t, err)

	rr = ts.request(http.MethodGet, "/api/v1/lobby/games", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var lobby response.LobbyGames
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lobby))
	require.Len(t, lobby.Games, 1)
	assert.Equal(t, gameID, lobby.Games[0].ID)
	assert.Equal(t, "Alice", lobby.Games[0].HostUsername)
	assert.Equal(t, 1, lobby.Games[0].PlayerCount)

	rr = ts.request(http.MethodGet, "/api/v1/health", nil, "")
	var health response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, 1, health.Games)
}

func TestRealtimeNotMountedWithoutHandler(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/ws", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnknownRouteIsJSONError(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rr))
}

func TestWrongMethodIsJSONError(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodDelete, "/api/v1/sessions", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rr))
}

func TestResponsesAreNotCached(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestCreateSessionRejectsTrailingData(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", `{"username":"Alice"}{"username":"Bob"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rr))
}
