package stats

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/boardbank/internal/model"
)

type AggregatorSuite struct {
	suite.Suite
	game *model.Game
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) SetupTest() {
	s.game = &model.Game{
		ID:     "G1",
		Status: model.GameStatusInProgress,
		Players: []*model.Participant{
			{ConnectionID: "c1", Username: "A", Balance: 1000},
			{ConnectionID: "c2", Username: "B", Balance: 2200},
		},
	}
}

func (s *AggregatorSuite) log(typ model.TransactionType, from, to model.PlayerName, amount int64) {
	s.game.TransactionLog = append(s.game.TransactionLog, model.TransactionLogEntry{
		Type: typ, From: from, To: to, Amount: amount,
	})
}

func (s *AggregatorSuite) TestEmptyGameYieldsDefaults() {
	stats := Compute(&model.Game{})
	s.Equal(model.GameStatistics{}, stats)
}

func (s *AggregatorSuite) TestNoTransactionsStillFindsMostBroke() {
	stats := Compute(s.game)

	s.Equal(model.PlayerBalance{Player: "A", Balance: 1000}, stats.MostBroke)
	s.Equal(model.PlayerAmount{}, stats.MostGenerous)
	s.Equal(int64(0), stats.TotalMoneyTransferred)
}

func (s *AggregatorSuite) TestSumsPerCategory() {
	s.log(model.TransactionPlayerToPlayer, "A", "B", 500)
	s.log(model.TransactionFromBank, "", "B", 200)
	s.log(model.TransactionPassGo, "", "A", 200)

	stats := Compute(s.game)

	s.Equal(model.PlayerAmount{Player: "A", Amount: 500}, stats.MostGenerous)
	s.Equal(model.PlayerAmount{Player: "B", Amount: 500}, stats.MostReceived)
	s.Equal(model.PlayerAmount{Player: "B", Amount: 200}, stats.MostBankWithdrawals)
	s.Equal(model.PlayerCount{Player: "A", Count: 1}, stats.MostPassGo)
	s.Equal(model.TransferRecord{From: "A", To: "B", Amount: 500}, stats.LargestTransfer)
	s.Equal(int64(900), stats.TotalMoneyTransferred)
}

func (s *AggregatorSuite) TestAccumulatesAcrossEntries() {
	s.log(model.TransactionPlayerToPlayer, "A", "B", 300)
	s.log(model.TransactionPlayerToPlayer, "B", "A", 400)
	s.log(model.TransactionPlayerToPlayer, "A", "B", 300)
	s.log(model.TransactionToBank, "B", "", 50)
	s.log(model.TransactionToBank, "B", "", 75)

	stats := Compute(s.game)

	s.Equal(model.PlayerAmount{Player: "A", Amount: 600}, stats.MostGenerous)
	s.Equal(model.PlayerAmount{Player: "B", Amount: 600}, stats.MostReceived)
	s.Equal(model.PlayerAmount{Player: "B", Amount: 125}, stats.MostBankDeposits)
	s.Equal(model.TransferRecord{From: "B", To: "A", Amount: 400}, stats.LargestTransfer)
	s.Equal(int64(1125), stats.TotalMoneyTransferred)
}

func (s *AggregatorSuite) TestTiesKeepFirstSeen() {
	s.log(model.TransactionPlayerToPlayer, "A", "B", 500)
	s.log(model.TransactionPlayerToPlayer, "B", "A", 500)
	s.log(model.TransactionPassGo, "", "B", 200)
	s.log(model.TransactionPassGo, "", "A", 200)

	stats := Compute(s.game)

	s.Equal(model.PlayerName("A"), stats.MostGenerous.Player)
	s.Equal(model.PlayerName("B"), stats.MostReceived.Player)
	s.Equal(model.TransferRecord{From: "A", To: "B", Amount: 500}, stats.LargestTransfer)
	s.Equal(model.PlayerCount{Player: "B", Count: 1}, stats.MostPassGo)
}

func (s *AggregatorSuite) TestMostBrokeTieKeepsFirstParticipant() {
	s.game.Players[1].Balance = 1000

	stats := Compute(s.game)
	s.Equal(model.PlayerName("A"), stats.MostBroke.Player)
}

func (s *AggregatorSuite) TestIgnoresPlayersNoLongerInGame() {
	s.log(model.TransactionFromBank, "", "ghost", 9000)
	s.log(model.TransactionFromBank, "", "A", 100)

	stats := Compute(s.game)

	s.Equal(model.PlayerAmount{Player: "A", Amount: 100}, stats.MostBankWithdrawals)
	s.Equal(int64(9100), stats.TotalMoneyTransferred)
}
