package cli

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardbank/internal/model"
)

// amountArg sends well-formed numbers as JSON numbers and anything else as
// the raw string, leaving validation to the server
func amountArg(s string) any {
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return json.Number(s)
	}
	return s
}

// transact sends a balance-changing request and prints the balances that
// come back
func transact(cmd *cobra.Command, build func(s *gameSession) (model.EventType, any, error)) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	s, err := openGame(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	event, data, err := build(s)
	if err != nil {
		return err
	}

	return awaitBalances(ctx, cmd, s, event, data)
}

func awaitBalances(ctx context.Context, cmd *cobra.Command, s *gameSession, event model.EventType, data any) error {
	frame, err := s.conn.Request(ctx, event, data, model.EventGameStateUpdate)
	if err != nil {
		return err
	}

	var update model.GameStateUpdatePayload
	if err := frame.Decode(&update); err != nil {
		return err
	}

	output(cmd).Print(update.Players)
	return nil
}

func newPayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <player> <amount>",
		Short: "Pay another player",
		Long:  `Pay another player. The player may be given by username or player id.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transact(cmd, func(s *gameSession) (model.EventType, any, error) {
				to, err := s.player(args[0])
				if err != nil {
					return "", nil, err
				}
				return model.EventTransferToPlayer, model.TransferToPlayerRequest{
					GameID:       s.gameID(),
					FromPlayerID: s.conn.ID(),
					ToPlayerID:   to.ID,
					Amount:       amountArg(args[1]),
				}, nil
			})
		},
	}
}

func newDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Pay money into the bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transact(cmd, func(s *gameSession) (model.EventType, any, error) {
				return model.EventTransferToBank, model.TransferToBankRequest{
					GameID:       s.gameID(),
					FromPlayerID: s.conn.ID(),
					Amount:       amountArg(args[0]),
				}, nil
			})
		},
	}
}

func newWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Take money out of the bank",
		Long: `Take money out of the bank. Only allowed in games created with
bankerless withdrawals.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transact(cmd, func(s *gameSession) (model.EventType, any, error) {
				return model.EventTransferFromBank, model.TransferFromBankRequest{
					GameID:     s.gameID(),
					ToPlayerID: s.conn.ID(),
					Amount:     amountArg(args[0]),
				}, nil
			})
		},
	}
}

func newPassGoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pass-go",
		Short: "Collect money for passing GO",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return transact(cmd, func(s *gameSession) (model.EventType, any, error) {
				return model.EventPassGo, model.PassGoRequest{
					GameID:   s.gameID(),
					PlayerID: s.conn.ID(),
				}, nil
			})
		},
	}
}
