package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mcoot/boardbank/internal/api/response"
	"github.com/mcoot/boardbank/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Session:
		o.printSession(v)
	case response.LobbyGames:
		o.printLobby(v)
	case response.Health:
		o.printHealth(v)
	case model.GameView:
		o.printGame(v)
	case model.GameSettings:
		o.printSettings(v)
	case []model.PlayerView:
		o.printPlayers(v, "")
	case model.GameStatistics:
		o.printStatistics(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printSession(s response.Session) {
	fmt.Fprintf(o.w, "Logged in as %s\n", s.Username)
	fmt.Fprintf(o.w, "Session: %s\n", s.SessionID)
}

func (o *Output) printLobby(l response.LobbyGames) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No games waiting for players")
		return
	}
	fmt.Fprintf(o.w, "Games (%d):\n", len(l.Games))
	for _, g := range l.Games {
		fmt.Fprintf(o.w, "  - %s hosted by %s, %d player(s)\n", g.ID, g.HostUsername, g.PlayerCount)
	}
}

func (o *Output) printHealth(h response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Games: %d\n", h.Games)
	fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
	fmt.Fprintf(o.w, "Dropped requests: %d\n", h.DroppedRequests)
}

func (o *Output) printGame(g model.GameView) {
	fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	fmt.Fprintf(o.w, "Status: %s\n", g.Status)
	o.printSettings(g.Settings)
	fmt.Fprintln(o.w)
	o.printPlayers(g.Players, g.HostID)

	if len(g.TransactionLogs) > 0 {
		fmt.Fprintln(o.w, "\nTransactions:")
		for _, entry := range g.TransactionLogs {
			fmt.Fprintf(o.w, "  %s %s\n", entry.Timestamp.Format("15:04:05"), describeTransaction(entry))
		}
	}
}

func (o *Output) printSettings(s model.GameSettings) {
	fmt.Fprintf(o.w, "Starting balance: %d\n", s.StartingBalance)
	fmt.Fprintf(o.w, "Pass GO amount: %d\n", s.PassGoAmount)
	fmt.Fprintf(o.w, "Bankerless withdrawals: %s\n", yesNo(s.BankerlessWithdrawal))
	fmt.Fprintf(o.w, "Anonymous balances: %s\n", yesNo(s.AnonymousBalances))
}

func (o *Output) printPlayers(players []model.PlayerView, host model.ConnectionID) {
	fmt.Fprintf(o.w, "Players (%d):\n", len(players))
	for _, p := range players {
		balance := p.BalanceBucket
		if p.Balance != nil {
			balance = strconv.FormatInt(*p.Balance, 10)
		}

		tags := ""
		if host != "" && p.ID == host {
			tags += " [host]"
		}
		if !p.IsConnected {
			tags += " [away]"
		}
		fmt.Fprintf(o.w, "  - %s (%s): %s%s\n", p.Username, p.ID, balance, tags)
	}
}

func (o *Output) printStatistics(s model.GameStatistics) {
	fmt.Fprintln(o.w, "Game finished!")
	fmt.Fprintf(o.w, "Total money transferred: %d\n", s.TotalMoneyTransferred)
	printLeader(o.w, "Most generous", s.MostGenerous.Player, s.MostGenerous.Amount)
	printLeader(o.w, "Most received", s.MostReceived.Player, s.MostReceived.Amount)
	printLeader(o.w, "Most bank deposits", s.MostBankDeposits.Player, s.MostBankDeposits.Amount)
	printLeader(o.w, "Most bank withdrawals", s.MostBankWithdrawals.Player, s.MostBankWithdrawals.Amount)
	printLeader(o.w, "Most broke", s.MostBroke.Player, s.MostBroke.Balance)
	printLeader(o.w, "Most times passing GO", s.MostPassGo.Player, int64(s.MostPassGo.Count))
	if s.LargestTransfer.From != "" {
		fmt.Fprintf(o.w, "Largest transfer: %s paid %s %d\n", s.LargestTransfer.From, s.LargestTransfer.To, s.LargestTransfer.Amount)
	}
}

func printLeader(w io.Writer, label string, player model.PlayerName, value int64) {
	if player == "" {
		return
	}
	fmt.Fprintf(w, "%s: %s (%d)\n", label, player, value)
}

func describeTransaction(e model.TransactionLogEntry) string {
	switch e.Type {
	case model.TransactionPlayerToPlayer:
		return fmt.Sprintf("%s paid %s %d", e.From, e.To, e.Amount)
	case model.TransactionToBank:
		return fmt.Sprintf("%s paid the bank %d", e.From, e.Amount)
	case model.TransactionFromBank:
		return fmt.Sprintf("%s took %d from the bank", e.To, e.Amount)
	case model.TransactionPassGo:
		return fmt.Sprintf("%s passed GO and collected %d", e.To, e.Amount)
	default:
		return fmt.Sprintf("%s %d", e.Type, e.Amount)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
