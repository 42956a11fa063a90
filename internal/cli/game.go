package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardbank/internal/model"
)

// gameSession is a realtime connection rejoined to the stored game
type gameSession struct {
	conn  *Conn
	state State
	game  model.GameView
}

// openGame dials the server and replays joinGame with the stored session.
// The server treats this as a rejoin, so the player keeps their balance and
// takes over the game under this connection.
func openGame(ctx context.Context) (*gameSession, error) {
	st, err := cfg.RequireGame()
	if err != nil {
		return nil, err
	}

	conn, err := Dial(ctx, cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	joined, err := joinGame(ctx, conn, st.SessionID, st.GameID)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	// Our own join is announced to the room too
	if _, err := conn.Await(ctx, model.EventUpdatePlayers); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &gameSession{conn: conn, state: st, game: joined.Game}, nil
}

func joinGame(ctx context.Context, conn *Conn, sessionID, gameID string) (model.GameJoinedPayload, error) {
	var joined model.GameJoinedPayload

	frame, err := conn.Request(ctx, model.EventJoinGame, model.JoinGameRequest{
		GameID:    model.GameID(gameID),
		SessionID: model.SessionID(sessionID),
	}, model.EventJoinGameSuccess)
	if err != nil {
		return joined, err
	}

	err = frame.Decode(&joined)
	return joined, err
}

func (s *gameSession) Close() {
	_ = s.conn.Close()
}

func (s *gameSession) gameID() model.GameID {
	return model.GameID(s.state.GameID)
}

// player resolves a player reference, either a connection id or a username,
// against the current game
func (s *gameSession) player(ref string) (model.PlayerView, error) {
	var matches []model.PlayerView
	for _, p := range s.game.Players {
		if string(p.ID) == ref {
			return p, nil
		}
		if strings.EqualFold(p.Username, ref) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return model.PlayerView{}, fmt.Errorf("no player %q in game %s", ref, s.state.GameID)
	case 1:
		return matches[0], nil
	default:
		return model.PlayerView{}, fmt.Errorf("%d players are called %q; use a player id", len(matches), ref)
	}
}

// settingsFlags are the game settings a command can patch
type settingsFlags struct {
	startingBalance int64
	passGoAmount    int64
	bankerless      bool
	anonymous       bool
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.startingBalance, "starting-balance", 0, "Balance each player starts with")
	cmd.Flags().Int64Var(&f.passGoAmount, "pass-go", 0, "Amount collected when passing GO")
	cmd.Flags().BoolVar(&f.bankerless, "bankerless", false, "Let players withdraw from the bank themselves")
	cmd.Flags().BoolVar(&f.anonymous, "anonymous", false, "Hide exact balances from other players")
}

// patch returns only the settings whose flags were set
func (f *settingsFlags) patch(cmd *cobra.Command) model.RawSettings {
	raw := model.RawSettings{}
	if cmd.Flags().Changed("starting-balance") {
		raw["startingBalance"] = f.startingBalance
	}
	if cmd.Flags().Changed("pass-go") {
		raw["passGoAmount"] = f.passGoAmount
	}
	if cmd.Flags().Changed("bankerless") {
		raw["bankerlessWithdrawal"] = f.bankerless
	}
	if cmd.Flags().Changed("anonymous") {
		raw["anonymousBalances"] = f.anonymous
	}
	return raw
}

func newCreateCmd() *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game and become its host",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()

			conn, err := Dial(ctx, cfg.ServerURL)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			frame, err := conn.Request(ctx, model.EventCreateGame, model.CreateGameRequest{
				SessionID: model.SessionID(st.SessionID),
				Settings:  flags.patch(cmd),
			}, model.EventCreateGameSuccess)
			if err != nil {
				return err
			}

			var created model.GameJoinedPayload
			if err := frame.Decode(&created); err != nil {
				return err
			}

			st.GameID = string(created.GameID)
			if err := cfg.SaveState(st); err != nil {
				return err
			}

			output(cmd).Print(created.Game)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <gameId>",
		Short: "Join a game, or rejoin one you were in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()

			conn, err := Dial(ctx, cfg.ServerURL)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			joined, err := joinGame(ctx, conn, st.SessionID, strings.ToUpper(args[0]))
			if err != nil {
				return err
			}

			st.GameID = string(joined.GameID)
			if err := cfg.SaveState(st); err != nil {
				return err
			}

			output(cmd).Print(joined.Game)
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current game",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			s, err := openGame(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			output(cmd).Print(s.game)
			return nil
		},
	}
}

func newLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the current game",
		Long: `Leave the current game. Your balance is kept, and you can come back
later with 'bankctl join <gameId>'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			s, err := openGame(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.conn.Request(ctx, model.EventLeaveGame, model.GameRequest{GameID: s.gameID()}, model.EventLeaveGameSuccess); err != nil {
				return err
			}

			st := s.state
			st.GameID = ""
			if err := cfg.SaveState(st); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Left game %s", s.state.GameID))
			return nil
		},
	}
}

func newSettingsCmd() *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the current game's settings",
		Long: `With no flags, print the current game's settings. With flags, update
them. Only the host can change settings, and only before the game starts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			s, err := openGame(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			patch := flags.patch(cmd)
			if len(patch) == 0 {
				output(cmd).Print(s.game.Settings)
				return nil
			}

			frame, err := s.conn.Request(ctx, model.EventUpdateGameSettings, model.UpdateSettingsRequest{
				GameID:   s.gameID(),
				Settings: patch,
			}, model.EventUpdatePlayers)
			if err != nil {
				return err
			}

			var update model.UpdatePlayersPayload
			if err := frame.Decode(&update); err != nil {
				return err
			}

			output(cmd).Print(update.Settings)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the current game",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			s, err := openGame(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.conn.Request(ctx, model.EventStartGame, model.GameRequest{GameID: s.gameID()}, model.EventGameStarted); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Game %s started", s.state.GameID))
			return nil
		},
	}
}

func newFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Finish the current game and show its statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			s, err := openGame(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			frame, err := s.conn.Request(ctx, model.EventFinishGame, model.GameRequest{GameID: s.gameID()}, model.EventGameFinished)
			if err != nil {
				return err
			}

			var finished model.GameFinishedPayload
			if err := frame.Decode(&finished); err != nil {
				return err
			}

			output(cmd).Print(finished.Statistics)
			return nil
		},
	}
}
