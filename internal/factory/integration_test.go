package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/boardbank/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) emit(conn model.ConnectionID, event model.EventType, data map[string]any) {
	raw, err := json.Marshal(map[string]any{"event": event, "data": data})
	s.Require().NoError(err)
	s.app.Dispatcher.Handle(s.ctx, conn, raw)
}

func (s *IntegrationSuite) login(conn model.ConnectionID, name string) model.SessionID {
	s.emit(conn, model.EventLogin, map[string]any{"username": name})
	ev, ok := s.app.MockNotifier.Last(conn, model.EventLoginSuccess)
	s.Require().True(ok)
	return ev.Payload.(model.LoginSuccessPayload).SessionID
}

func (s *IntegrationSuite) balances(conn model.ConnectionID) map[model.ConnectionID]int64 {
	ev, ok := s.app.MockNotifier.Last(conn, model.EventGameStateUpdate)
	s.Require().True(ok)
	out := map[model.ConnectionID]int64{}
	for _, p := range ev.Payload.(model.GameStateUpdatePayload).Players {
		if p.Balance != nil {
			out[p.ID] = *p.Balance
		}
	}
	return out
}

// Test: Complete game flow from login to final statistics
func (s *IntegrationSuite) TestCompleteGameFlow() {
	s.app.MockRandom.QueueString("ABCDEF01")

	// Step 1: Two players log in and a third watches the lobby
	alice := s.login("c1", "Alice")
	bob := s.login("c2", "Bob")
	s.emit("c3", model.EventJoinLobby, nil)

	// Step 2: Alice creates a game with custom settings
	s.emit("c1", model.EventCreateGame, map[string]any{
		"sessionId": alice,
		"settings":  map[string]any{"startingBalance": 1000, "anonymousBalances": false},
	})
	created, ok := s.app.MockNotifier.Last("c1", model.EventCreateGameSuccess)
	s.Require().True(ok)
	gameID := created.Payload.(model.GameJoinedPayload).GameID
	s.Equal(model.GameID("GABCDEF01"), gameID)

	lobby, ok := s.app.MockNotifier.Last("c3", model.EventLobbyGames)
	s.Require().True(ok)
	s.Require().Len(lobby.Payload.(model.LobbyGamesPayload).Games, 1)

	// Step 3: Bob joins and Alice starts the game
	s.emit("c2", model.EventJoinGame, map[string]any{"gameId": gameID, "sessionId": bob})
	_, ok = s.app.MockNotifier.Last("c2", model.EventJoinGameSuccess)
	s.Require().True(ok)

	s.emit("c1", model.EventStartGame, map[string]any{"gameId": gameID})
	_, ok = s.app.MockNotifier.Last("c2", model.EventGameStarted)
	s.Require().True(ok)

	lobby, _ = s.app.MockNotifier.Last("c3", model.EventLobbyGames)
	s.Empty(lobby.Payload.(model.LobbyGamesPayload).Games)

	// Step 4: Money moves
	s.emit("c1", model.EventTransferToPlayer, map[string]any{"gameId": gameID, "fromPlayerId": "c1", "toPlayerId": "c2", "amount": 300})
	s.emit("c2", model.EventTransferToBank, map[string]any{"gameId": gameID, "fromPlayerId": "c2", "amount": "100"})
	s.emit("c2", model.EventPassGo, map[string]any{"gameId": gameID, "playerId": "c2"})
	s.emit("c1", model.EventTransferFromBank, map[string]any{"gameId": gameID, "toPlayerId": "c1", "amount": 50})

	s.Equal(map[model.ConnectionID]int64{"c1": 750, "c2": 1400}, s.balances("c1"))

	logs, ok := s.app.MockNotifier.Last("c2", model.EventTransactionLogUpdate)
	s.Require().True(ok)
	s.Len(logs.Payload.(model.TransactionLogUpdatePayload).Logs, 4)

	// Step 5: Alice finishes the game and everyone gets the statistics
	s.emit("c1", model.EventFinishGame, map[string]any{"gameId": gameID})
	finished, ok := s.app.MockNotifier.Last("c2", model.EventGameFinished)
	s.Require().True(ok)
	stats := finished.Payload.(model.GameFinishedPayload).Statistics
	s.Equal(int64(650), stats.TotalMoneyTransferred)
	s.Equal(model.PlayerAmount{Player: "Alice", Amount: 300}, stats.MostGenerous)
	s.Equal(model.PlayerAmount{Player: "Bob", Amount: 100}, stats.MostBankDeposits)
	s.Equal(model.PlayerCount{Player: "Bob", Count: 1}, stats.MostPassGo)
	s.Equal(model.PlayerBalance{Player: "Alice", Balance: 750}, stats.MostBroke)

	// Step 6: Money operations on a finished game are ignored
	drops := s.app.Dispatcher.Drops()
	s.emit("c2", model.EventPassGo, map[string]any{"gameId": gameID, "playerId": "c2"})
	s.Equal(drops+1, s.app.Dispatcher.Drops())
}

// Test: Reconnecting with the same session keeps the balance
func (s *IntegrationSuite) TestReconnectKeepsBalance() {
	alice := s.login("c1", "Alice")
	s.emit("c1", model.EventCreateGame, map[string]any{"sessionId": alice})
	created, _ := s.app.MockNotifier.Last("c1", model.EventCreateGameSuccess)
	gameID := created.Payload.(model.GameJoinedPayload).GameID
	s.emit("c1", model.EventStartGame, map[string]any{"gameId": gameID})
	s.emit("c1", model.EventTransferToBank, map[string]any{"gameId": gameID, "fromPlayerId": "c1", "amount": 500})

	// The transport drops and a new connection rejoins with the stored session
	s.app.Dispatcher.Disconnected(s.ctx, "c1")
	s.emit("c9", model.EventJoinGame, map[string]any{"gameId": gameID, "sessionId": alice})

	joined, ok := s.app.MockNotifier.Last("c9", model.EventJoinGameSuccess)
	s.Require().True(ok)
	view := joined.Payload.(model.GameJoinedPayload).Game
	s.Equal(model.ConnectionID("c9"), view.HostID)
	s.Require().Len(view.Players, 1)
	s.Require().NotNil(view.Players[0].Balance)
	s.Equal(int64(1000), *view.Players[0].Balance)
}

// Test: Idle games are evicted by the reaper
func (s *IntegrationSuite) TestReaperEvictsIdleGames() {
	alice := s.login("c1", "Alice")
	s.emit("c1", model.EventCreateGame, map[string]any{"sessionId": alice})
	s.Equal(1, s.app.RoomManager.GameCount())

	s.app.MockClock.Advance(25 * time.Hour)
	s.Equal(1, s.app.Reaper.Sweep(s.ctx))
	s.Equal(0, s.app.RoomManager.GameCount())
}

// Test: HTTP mirrors of login, session lookup, lobby and health
func (s *IntegrationSuite) TestHTTPRoutes() {
	router := s.app.Router()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"username":"Carol"}`)))
	s.Require().Equal(http.StatusCreated, rr.Code)
	var created struct {
		SessionID string `json:"sessionId"`
		Username  string `json:"username"`
	}
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &created))
	s.Equal("Carol", created.Username)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/me", nil)
	req.Header.Set("Authorization", "Bearer "+created.SessionID)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	s.Equal(http.StatusOK, rr.Code)

	s.emit("c1", model.EventCreateGame, map[string]any{"sessionId": created.SessionID})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/lobby/games", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), `"hostUsername":"Carol"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"status":"ok","games":1,"connections":0,"droppedRequests":0}`, rr.Body.String())
}
