package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardbank/internal/model"
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		lobbyOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream live events",
		Long: `Connect to the server and print events as they arrive.

By default this rejoins the current game and streams its updates:
  - updatePlayers: members, host, settings or status changed
  - gameStateUpdate: balances changed
  - transactionLogUpdate: the transaction log changed
  - gameStarted / gameFinished: the game started or finished
  - lobbyGames: the list of waiting games changed

With --lobby, only lobby updates are streamed. Because a session can only
be connected once, running another command for the same session ends a
game stream.

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(cmd, lobbyOnly, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&lobbyOnly, "lobby", false, "Stream lobby updates instead of the current game")

	return cmd
}

// StreamEvent is one received event
type StreamEvent struct {
	Time  time.Time       `json:"time"`
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func streamEvents(cmd *cobra.Command, lobbyOnly, jsonOutput bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()

	var (
		conn  *Conn
		title string
	)
	if lobbyOnly {
		c, err := subscribeLobby(ctx, cmd)
		if err != nil {
			return err
		}
		conn, title = c, "lobby"
	} else {
		joinCtx, cancel := requestContext(cmd)
		s, err := openGame(joinCtx)
		cancel()
		if err != nil {
			return err
		}
		conn, title = s.conn, "game "+s.state.GameID
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to %s as %s\n", title, conn.ID())
	}

	for {
		frame, err := conn.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				if !jsonOutput {
					fmt.Fprintln(w, "\nDisconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		printEvent(w, frame, jsonOutput)
	}
}

func subscribeLobby(ctx context.Context, cmd *cobra.Command) (*Conn, error) {
	dialCtx, cancel := requestContext(cmd)
	defer cancel()

	conn, err := Dial(dialCtx, cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	if err := conn.Send(ctx, model.EventJoinLobby, model.EmptyPayload{}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func printEvent(w io.Writer, frame Frame, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		data, _ := json.Marshal(StreamEvent{Time: now, Event: frame.Event, Data: frame.Data})
		fmt.Fprintln(w, string(data))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	displayData := string(frame.Data)
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	displayData = strings.ReplaceAll(displayData, "\n", " ")
	fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, frame.Event, displayData)
}

