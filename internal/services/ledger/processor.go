package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/boardbank/internal/dependencies/clock"
	"github.com/mcoot/boardbank/internal/dependencies/random"
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/services/fanout"
)

// Games gives exclusive access to the game a connection is bound to
type Games interface {
	WithGame(ctx context.Context, conn model.ConnectionID, id model.GameID, fn func(game *model.Game) error) error
}

// Config holds configuration for the transaction processor
type Config struct {
	// PassGoWindow and PassGoLimit bound how often a participant may claim
	// pass-go income
	PassGoWindow time.Duration
	PassGoLimit  int

	// TransactionLogLimit is how many log entries a game keeps
	TransactionLogLimit int
}

// DefaultConfig returns default ledger configuration
func DefaultConfig() Config {
	return Config{
		PassGoWindow:        90 * time.Second,
		PassGoLimit:         2,
		TransactionLogLimit: model.DefaultTransactionLogLimit,
	}
}

// Processor validates and applies balance-changing operations. Every
// operation runs under the game's lock; rejected operations change nothing
// but the game's activity time.
type Processor struct {
	games  Games
	fanout *fanout.Fanout
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
	cfg    Config
}

// NewProcessor creates a new transaction Processor
func NewProcessor(games Games, fanout *fanout.Fanout, clock clock.Clock, random random.Random, logger *slog.Logger, cfg Config) *Processor {
	defaults := DefaultConfig()
	if cfg.PassGoWindow == 0 {
		cfg.PassGoWindow = defaults.PassGoWindow
	}
	if cfg.PassGoLimit == 0 {
		cfg.PassGoLimit = defaults.PassGoLimit
	}
	if cfg.TransactionLogLimit == 0 {
		cfg.TransactionLogLimit = defaults.TransactionLogLimit
	}
	return &Processor{
		games:  games,
		fanout: fanout,
		clock:  clock,
		random: random,
		logger: logger.With(slog.String("component", "ledger")),
		cfg:    cfg,
	}
}

// TransferToPlayer moves money from the requester to another participant
func (p *Processor) TransferToPlayer(ctx context.Context, conn model.ConnectionID, req model.TransferToPlayerRequest) error {
	if req.FromPlayerID != conn {
		return model.Ignored("sender is not the requesting connection")
	}
	return p.apply(ctx, conn, req.GameID, func(game *model.Game) error {
		from := game.Player(req.FromPlayerID)
		to := game.Player(req.ToPlayerID)
		if from == nil || to == nil {
			return model.Ignored("participant not found")
		}
		if req.FromPlayerID == req.ToPlayerID {
			return model.Ignored("transfer to self")
		}

		amount, err := model.ParseAmount(req.Amount)
		if err != nil {
			return err
		}
		if from.Balance < amount {
			return model.NewTransactionError(model.CodeInsufficientFunds)
		}
		if err := checkCredit(to, amount); err != nil {
			return err
		}

		from.Balance -= amount
		to.Balance += amount
		p.record(game, model.TransactionPlayerToPlayer, from.Username, to.Username, amount)
		return nil
	})
}

// TransferToBank pays money from the requester into the bank
func (p *Processor) TransferToBank(ctx context.Context, conn model.ConnectionID, req model.TransferToBankRequest) error {
	if req.FromPlayerID != conn {
		return model.Ignored("sender is not the requesting connection")
	}
	return p.apply(ctx, conn, req.GameID, func(game *model.Game) error {
		from := game.Player(req.FromPlayerID)
		if from == nil {
			return model.Ignored("participant not found")
		}

		amount, err := model.ParseAmount(req.Amount)
		if err != nil {
			return err
		}
		if from.Balance < amount {
			return model.NewTransactionError(model.CodeInsufficientFunds)
		}

		from.Balance -= amount
		p.record(game, model.TransactionToBank, from.Username, "", amount)
		return nil
	})
}

// TransferFromBank withdraws money from the bank to the requester. Only
// allowed when the game permits bankerless withdrawals.
func (p *Processor) TransferFromBank(ctx context.Context, conn model.ConnectionID, req model.TransferFromBankRequest) error {
	if req.ToPlayerID != conn {
		return model.Ignored("recipient is not the requesting connection")
	}
	return p.apply(ctx, conn, req.GameID, func(game *model.Game) error {
		to := game.Player(req.ToPlayerID)
		if to == nil {
			return model.Ignored("participant not found")
		}

		amount, err := model.ParseAmount(req.Amount)
		if err != nil {
			return err
		}
		if !game.Settings.BankerlessWithdrawal {
			return model.NewTransactionError(model.CodeUnauthorized)
		}
		if err := checkCredit(to, amount); err != nil {
			return err
		}

		to.Balance += amount
		p.record(game, model.TransactionFromBank, "", to.Username, amount)
		return nil
	})
}

// PassGo credits the requester with the game's pass-go amount, at most
// PassGoLimit times per sliding PassGoWindow
func (p *Processor) PassGo(ctx context.Context, conn model.ConnectionID, req model.PassGoRequest) error {
	if req.PlayerID != conn {
		return model.Ignored("player is not the requesting connection")
	}
	return p.apply(ctx, conn, req.GameID, func(game *model.Game) error {
		player := game.Player(req.PlayerID)
		if player == nil {
			return model.Ignored("participant not found")
		}

		now := p.clock.Now()
		recent := player.PassGoHistory[:0:0]
		for _, t := range player.PassGoHistory {
			if now.Sub(t) < p.cfg.PassGoWindow {
				recent = append(recent, t)
			}
		}
		player.PassGoHistory = recent
		if len(recent) >= p.cfg.PassGoLimit {
			return &model.TransactionError{
				Code: model.CodePassGoRateLimit,
				Params: map[string]any{
					"limit":  p.cfg.PassGoLimit,
					"window": int(p.cfg.PassGoWindow.Seconds()),
				},
			}
		}

		amount := game.Settings.PassGoAmount
		if err := checkCredit(player, amount); err != nil {
			return err
		}

		player.Balance += amount
		player.PassGoHistory = append(player.PassGoHistory, now)
		p.record(game, model.TransactionPassGo, "", player.Username, amount)
		return nil
	})
}

// apply runs op on an in-progress game after recording activity
func (p *Processor) apply(ctx context.Context, conn model.ConnectionID, id model.GameID, op func(game *model.Game) error) error {
	return p.games.WithGame(ctx, conn, id, func(game *model.Game) error {
		if game.Status != model.GameStatusInProgress {
			return model.Ignored("game is not in progress")
		}
		game.Touch(p.clock.Now())
		return op(game)
	})
}

// record appends a log entry and pushes balances and the log to the game
func (p *Processor) record(game *model.Game, typ model.TransactionType, from, to string, amount int64) {
	entry := model.TransactionLogEntry{
		ID:        p.random.UUID(),
		Type:      typ,
		From:      model.PlayerName(from),
		To:        model.PlayerName(to),
		Amount:    amount,
		Timestamp: p.clock.Now(),
	}
	game.AppendTransaction(entry, p.cfg.TransactionLogLimit)
	p.fanout.Balances(game)

	p.logger.Info("transaction applied",
		slog.String("game_id", string(game.ID)),
		slog.String("type", string(typ)),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int64("amount", amount),
	)
}

// checkCredit rejects a credit that would push a balance past the safe range
func checkCredit(p *model.Participant, amount int64) error {
	if p.Balance > model.MaxSafeAmount-amount {
		return &model.TransactionError{Code: model.CodeInvalidAmount, Reason: model.AmountTooLarge}
	}
	return nil
}
