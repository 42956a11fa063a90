package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/boardbank/internal/dependencies/mocks"
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/msgcat"
	"github.com/mcoot/boardbank/internal/services/fanout"
	"github.com/mcoot/boardbank/internal/services/ledger"
	"github.com/mcoot/boardbank/internal/services/room"
	"github.com/mcoot/boardbank/internal/services/session"
	"github.com/mcoot/boardbank/internal/storage/memory"
	"github.com/mcoot/boardbank/internal/testutil"
)

type DispatcherSuite struct {
	suite.Suite
	notifier   *mocks.MockNotifier
	rooms      *room.Manager
	dispatcher *Dispatcher
	ctx        context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	store := memory.New()
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	random := mocks.NewMockRandom()
	s.notifier = mocks.NewMockNotifier()
	logger := testutil.NopLogger()
	out := fanout.New(s.notifier)

	sessions := session.NewRegistry(store, clock, random, logger)
	s.rooms = room.NewManager(sessions, store, out, clock, random, logger, room.DefaultConfig())
	processor := ledger.NewProcessor(s.rooms, out, clock, random, logger, ledger.DefaultConfig())
	s.dispatcher = NewDispatcher(sessions, s.rooms, processor, s.notifier, msgcat.Default(), logger)
	s.ctx = context.Background()
}

func (s *DispatcherSuite) send(conn model.ConnectionID, frame string) {
	s.dispatcher.Handle(s.ctx, conn, []byte(frame))
}

func (s *DispatcherSuite) login(conn model.ConnectionID, name string) model.SessionID {
	s.send(conn, `{"event":"login","data":{"username":"`+name+`"}}`)
	ev, ok := s.notifier.Last(conn, model.EventLoginSuccess)
	s.Require().True(ok)
	return ev.Payload.(model.LoginSuccessPayload).SessionID
}

func (s *DispatcherSuite) lastError(conn model.ConnectionID, event model.EventType) model.ErrorPayload {
	ev, ok := s.notifier.Last(conn, event)
	s.Require().True(ok, "expected %s", event)
	return ev.Payload.(model.ErrorPayload)
}

// startedGame has Alice host on c1 and Bob join on c2, then starts the game
func (s *DispatcherSuite) startedGame() model.GameID {
	alice := s.login("c1", "Alice")
	bob := s.login("c2", "Bob")

	s.send("c1", `{"event":"createGame","data":{"sessionId":"`+string(alice)+`"}}`)
	ev, ok := s.notifier.Last("c1", model.EventCreateGameSuccess)
	s.Require().True(ok)
	id := ev.Payload.(model.GameJoinedPayload).GameID

	s.send("c2", `{"event":"joinGame","data":{"gameId":"`+string(id)+`","sessionId":"`+string(bob)+`"}}`)
	s.send("c1", `{"event":"startGame","data":{"gameId":"`+string(id)+`"}}`)
	_, ok = s.notifier.Last("c2", model.EventGameStarted)
	s.Require().True(ok)
	s.notifier.Reset()
	return id
}

func (s *DispatcherSuite) TestLoginSuccess() {
	s.send("c1", `{"event":"login","data":{"username":"  Alice "}}`)

	ev, ok := s.notifier.Last("c1", model.EventLoginSuccess)
	s.Require().True(ok)
	payload := ev.Payload.(model.LoginSuccessPayload)
	s.Equal("Alice", payload.Username)
	s.NotEmpty(payload.SessionID)
	s.Equal(payload.SessionID, payload.PlayerID)
}

func (s *DispatcherSuite) TestLoginRejectsNonStringUsername() {
	s.send("c1", `{"event":"login","data":{"username":42}}`)

	s.Equal("INVALID_USERNAME", s.lastError("c1", model.EventLoginError).Code)
}

func (s *DispatcherSuite) TestLoginRejectsMissingUsername() {
	s.send("c1", `{"event":"login","data":{}}`)

	payload := s.lastError("c1", model.EventLoginError)
	s.Equal("INVALID_USERNAME", payload.Code)
	s.Equal("Please enter a username.", payload.Message)
}

func (s *DispatcherSuite) TestMalformedFrameDropped() {
	s.send("c1", `{{{`)
	s.send("c1", `{"data":{}}`)
	s.send("c1", `{"event":"fly"}`)

	s.Empty(s.notifier.Sent())
	s.Equal(int64(3), s.dispatcher.Drops())
}

func (s *DispatcherSuite) TestCreateGameWithUnknownSession() {
	s.send("c1", `{"event":"createGame","data":{"sessionId":"nope"}}`)

	s.Equal("SESSION_INVALID", s.lastError("c1", model.EventCreateGameError).Code)
}

func (s *DispatcherSuite) TestCreateGameAcceptsLegacyPlayerID() {
	id := s.login("c1", "Alice")

	s.send("c1", `{"event":"createGame","data":{"playerId":"`+string(id)+`","settings":{"startingBalance":"2000"}}}`)

	ev, ok := s.notifier.Last("c1", model.EventCreateGameSuccess)
	s.Require().True(ok)
	s.Equal(int64(2000), ev.Payload.(model.GameJoinedPayload).Game.Settings.StartingBalance)
}

func (s *DispatcherSuite) TestJoinUnknownGame() {
	id := s.login("c1", "Alice")

	s.send("c1", `{"event":"joinGame","data":{"gameId":"GNOPE","sessionId":"`+string(id)+`"}}`)

	s.Equal("GAME_NOT_FOUND", s.lastError("c1", model.EventJoinGameError).Code)
}

func (s *DispatcherSuite) TestLeaveGameAlwaysAcknowledged() {
	s.send("c1", `{"event":"leaveGame"}`)

	_, ok := s.notifier.Last("c1", model.EventLeaveGameSuccess)
	s.True(ok)
}

func (s *DispatcherSuite) TestStartGameByNonHost() {
	alice := s.login("c1", "Alice")
	bob := s.login("c2", "Bob")
	s.send("c1", `{"event":"createGame","data":{"sessionId":"`+string(alice)+`"}}`)
	ev, _ := s.notifier.Last("c1", model.EventCreateGameSuccess)
	id := ev.Payload.(model.GameJoinedPayload).GameID
	s.send("c2", `{"event":"joinGame","data":{"gameId":"`+string(id)+`","sessionId":"`+string(bob)+`"}}`)

	s.send("c2", `{"event":"startGame","data":{"gameId":"`+string(id)+`"}}`)

	s.Equal("NOT_HOST", s.lastError("c2", model.EventStartGameError).Code)
}

func (s *DispatcherSuite) TestLobbyEvents() {
	s.send("c9", `{"event":"joinLobby"}`)
	_, ok := s.notifier.Last("c9", model.EventLobbyGames)
	s.True(ok)
	s.Contains(s.notifier.Members(fanout.LobbyGroup), model.ConnectionID("c9"))

	s.send("c9", `{"event":"leaveLobby"}`)
	s.NotContains(s.notifier.Members(fanout.LobbyGroup), model.ConnectionID("c9"))

	s.notifier.Reset()
	s.send("c9", `{"event":"getLobbyGames"}`)
	_, ok = s.notifier.Last("c9", model.EventLobbyGames)
	s.True(ok)
}

func (s *DispatcherSuite) TestTransferWithNumericAmount() {
	id := s.startedGame()

	s.send("c1", `{"event":"transferToPlayer","data":{"gameId":"`+string(id)+`","fromPlayerId":"c1","toPlayerId":"c2","amount":250}}`)

	s.Len(s.notifier.SentTo("c1", model.EventGameStateUpdate), 1)
	s.Empty(s.notifier.SentTo("c1", model.EventTransactionError))
}

func (s *DispatcherSuite) TestTransferInvalidAmount() {
	id := s.startedGame()

	s.send("c1", `{"event":"transferToBank","data":{"gameId":"`+string(id)+`","fromPlayerId":"c1","amount":1.5}}`)

	payload := s.lastError("c1", model.EventTransactionError)
	s.Equal("INVALID_AMOUNT", payload.Code)
	s.Equal("The amount must be a whole number.", payload.Message)
}

func (s *DispatcherSuite) TestWithdrawWithEmptyStringAmount() {
	id := s.startedGame()

	s.send("c1", `{"event":"transferFromBank","data":{"gameId":"`+string(id)+`","toPlayerId":"c1","amount":""}}`)

	s.Equal("INVALID_AMOUNT", s.lastError("c1", model.EventTransactionError).Code)
}

func (s *DispatcherSuite) TestImpersonationDroppedSilently() {
	id := s.startedGame()

	s.send("c2", `{"event":"transferToPlayer","data":{"gameId":"`+string(id)+`","fromPlayerId":"c1","toPlayerId":"c2","amount":100}}`)

	s.Empty(s.notifier.Sent())
	s.Equal(int64(1), s.dispatcher.Drops())
}

func (s *DispatcherSuite) TestPassGoRateLimitMessage() {
	id := s.startedGame()
	frame := `{"event":"passGo","data":{"gameId":"` + string(id) + `","playerId":"c1"}}`

	s.send("c1", frame)
	s.send("c1", frame)
	s.send("c1", frame)

	payload := s.lastError("c1", model.EventTransactionError)
	s.Equal("PASS_GO_RATE_LIMIT", payload.Code)
	s.Equal("You can only pass GO 2 times every 90 seconds.", payload.Message)
}

func (s *DispatcherSuite) TestDisconnectedReleasesParticipant() {
	s.startedGame()

	s.dispatcher.Disconnected(s.ctx, "c1")

	_, bound := s.rooms.BoundGame("c1")
	s.False(bound)
	ev, ok := s.notifier.Last("c2", model.EventUpdatePlayers)
	s.Require().True(ok)
	payload := ev.Payload.(model.UpdatePlayersPayload)
	s.Equal(model.ConnectionID("c2"), payload.HostID)
}
