// Package projection builds the per-observer views of a game. Views are
// rebuilt for every observer on every push because they depend on who is
// looking.
package projection

import "github.com/mcoot/boardbank/internal/model"

type bucket struct {
	limit int64
	label string
}

var buckets = []bucket{
	{100_000, "<100K"},
	{500_000, "<500K"},
	{1_000_000, "<1M"},
	{1_500_000, "<1.5M"},
	{3_000_000, "<3M"},
	{5_000_000, "<5M"},
	{7_000_000, "<7M"},
	{10_000_000, "<10M"},
}

// TopBucket is the label for balances at or above the highest threshold
const TopBucket = "≥10M"

// Bucket returns the coarse range label for a balance. Negative balances fall
// into the lowest bucket.
func Bucket(balance int64) string {
	for _, b := range buckets {
		if balance < b.limit {
			return b.label
		}
	}
	return TopBucket
}

// Players returns the game's participants as seen by viewer. The viewer always
// sees its own exact balance; others are bucketed when the game hides
// balances.
func Players(g *model.Game, viewer model.ConnectionID) []model.PlayerView {
	views := make([]model.PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		v := model.PlayerView{
			ID:          p.ConnectionID,
			Username:    p.Username,
			IsConnected: p.IsConnected,
		}
		if p.ConnectionID == viewer || !g.Settings.AnonymousBalances {
			balance := max(p.Balance, 0)
			v.Balance = &balance
		} else {
			v.BalanceBucket = Bucket(p.Balance)
		}
		views = append(views, v)
	}
	return views
}

// Game returns a full snapshot of the game as seen by viewer
func Game(g *model.Game, viewer model.ConnectionID) model.GameView {
	return model.GameView{
		ID:                   g.ID,
		HostID:               g.HostConnectionID,
		OriginalHostUsername: g.OriginalHostUsername,
		Status:               g.Status,
		Settings:             g.Settings,
		Players:              Players(g, viewer),
		TransactionLogs:      Logs(g),
		CreatedAt:            g.CreatedAt,
		LastActivityAt:       g.LastActivityAt,
	}
}

// Logs returns a copy of the game's transaction log, never nil
func Logs(g *model.Game) []model.TransactionLogEntry {
	logs := make([]model.TransactionLogEntry, len(g.TransactionLog))
	copy(logs, g.TransactionLog)
	return logs
}

// LobbyEntry summarises a game for the lobby list
func LobbyEntry(g *model.Game) model.LobbyGame {
	hostUsername := model.NoHostUsername
	if host := g.Host(); host != nil {
		hostUsername = host.Username
	}
	return model.LobbyGame{
		ID:           g.ID,
		HostID:       g.HostConnectionID,
		HostUsername: hostUsername,
		PlayerCount:  len(g.Players),
		Status:       g.Status,
	}
}
