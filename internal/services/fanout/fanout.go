// Package fanout pushes personalized game events to connections. It must be
// called while the game's lock is held; that is what orders pushes for a game.
package fanout

import (
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/services/projection"
)

// LobbyGroup is the broadcast group of connections watching the lobby
const LobbyGroup = "lobby"

// GameGroup returns the broadcast group for a game
func GameGroup(id model.GameID) string {
	return "game:" + string(id)
}

// Notifier delivers events to connections and groups. Implementations must not
// block: payloads are queued per connection.
type Notifier interface {
	Subscribe(conn model.ConnectionID, group string)
	Unsubscribe(conn model.ConnectionID, group string)
	Members(group string) []model.ConnectionID
	Send(conn model.ConnectionID, event model.EventType, payload any)
	Broadcast(group string, event model.EventType, payload any)

	// Kick closes a connection that has been superseded
	Kick(conn model.ConnectionID)
}

// Fanout turns game state into the events each observer receives
type Fanout struct {
	notifier Notifier
}

// New creates a new Fanout
func New(notifier Notifier) *Fanout {
	return &Fanout{notifier: notifier}
}

// Notifier returns the underlying notifier
func (f *Fanout) Notifier() Notifier {
	return f.notifier
}

// Joined answers a create or join with the requester's view of the game
func (f *Fanout) Joined(conn model.ConnectionID, event model.EventType, g *model.Game) {
	f.notifier.Send(conn, event, model.GameJoinedPayload{
		GameID: g.ID,
		Game:   projection.Game(g, conn),
	})
}

// UpdatePlayers pushes membership, host, settings and status to every member
func (f *Fanout) UpdatePlayers(g *model.Game) {
	for _, conn := range f.notifier.Members(GameGroup(g.ID)) {
		f.notifier.Send(conn, model.EventUpdatePlayers, model.UpdatePlayersPayload{
			Players:  projection.Players(g, conn),
			HostID:   g.HostConnectionID,
			Settings: g.Settings,
			Status:   g.Status,
		})
	}
}

// Balances pushes updated balances followed by the transaction log
func (f *Fanout) Balances(g *model.Game) {
	for _, conn := range f.notifier.Members(GameGroup(g.ID)) {
		f.notifier.Send(conn, model.EventGameStateUpdate, model.GameStateUpdatePayload{
			GameID:  g.ID,
			Players: projection.Players(g, conn),
		})
	}
	f.notifier.Broadcast(GameGroup(g.ID), model.EventTransactionLogUpdate, model.TransactionLogUpdatePayload{
		GameID: g.ID,
		Logs:   projection.Logs(g),
	})
}

// GameStarted announces the move to in-progress
func (f *Fanout) GameStarted(g *model.Game) {
	f.notifier.Broadcast(GameGroup(g.ID), model.EventGameStarted, model.GameStartedPayload{
		GameID:   g.ID,
		Status:   g.Status,
		Settings: g.Settings,
	})
}

// GameFinished announces the move to finished together with the statistics
func (f *Fanout) GameFinished(g *model.Game, stats model.GameStatistics) {
	f.notifier.Broadcast(GameGroup(g.ID), model.EventGameFinished, model.GameFinishedPayload{
		GameID:     g.ID,
		Status:     g.Status,
		Statistics: stats,
	})
}

// Lobby pushes the waiting-game list to every lobby watcher
func (f *Fanout) Lobby(games []model.LobbyGame) {
	f.notifier.Broadcast(LobbyGroup, model.EventLobbyGames, model.LobbyGamesPayload{Games: games})
}

// LobbyTo sends the waiting-game list to one connection
func (f *Fanout) LobbyTo(conn model.ConnectionID, games []model.LobbyGame) {
	f.notifier.Send(conn, model.EventLobbyGames, model.LobbyGamesPayload{Games: games})
}
