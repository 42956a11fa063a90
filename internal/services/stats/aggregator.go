package stats

import "github.com/mcoot/boardbank/internal/model"

type playerTotals struct {
	withdrawals int64
	deposits    int64
	given       int64
	received    int64
	passGo      int
}

// Compute reduces a game's transaction log and final balances into its
// leaderboard. Only current participants are ranked. Ties keep whichever
// player reached the value first in log order.
func Compute(g *model.Game) model.GameStatistics {
	var stats model.GameStatistics

	totals := make(map[model.PlayerName]*playerTotals, len(g.Players))
	for _, p := range g.Players {
		totals[model.PlayerName(p.Username)] = &playerTotals{}
	}

	for _, entry := range g.TransactionLog {
		stats.TotalMoneyTransferred += entry.Amount

		switch entry.Type {
		case model.TransactionFromBank:
			if t, ok := totals[entry.To]; ok {
				t.withdrawals += entry.Amount
				if t.withdrawals > stats.MostBankWithdrawals.Amount {
					stats.MostBankWithdrawals = model.PlayerAmount{Player: entry.To, Amount: t.withdrawals}
				}
			}

		case model.TransactionToBank:
			if t, ok := totals[entry.From]; ok {
				t.deposits += entry.Amount
				if t.deposits > stats.MostBankDeposits.Amount {
					stats.MostBankDeposits = model.PlayerAmount{Player: entry.From, Amount: t.deposits}
				}
			}

		case model.TransactionPlayerToPlayer:
			if t, ok := totals[entry.From]; ok {
				t.given += entry.Amount
				if t.given > stats.MostGenerous.Amount {
					stats.MostGenerous = model.PlayerAmount{Player: entry.From, Amount: t.given}
				}
			}
			if t, ok := totals[entry.To]; ok {
				t.received += entry.Amount
				if t.received > stats.MostReceived.Amount {
					stats.MostReceived = model.PlayerAmount{Player: entry.To, Amount: t.received}
				}
			}
			if entry.Amount > stats.LargestTransfer.Amount {
				stats.LargestTransfer = model.TransferRecord{From: entry.From, To: entry.To, Amount: entry.Amount}
			}

		case model.TransactionPassGo:
			if t, ok := totals[entry.To]; ok {
				t.passGo++
				if t.passGo > stats.MostPassGo.Count {
					stats.MostPassGo = model.PlayerCount{Player: entry.To, Count: t.passGo}
				}
			}
		}
	}

	for i, p := range g.Players {
		if i == 0 || p.Balance < stats.MostBroke.Balance {
			stats.MostBroke = model.PlayerBalance{Player: model.PlayerName(p.Username), Balance: p.Balance}
		}
	}

	return stats
}
