package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardbank/internal/api/apierr"
	"github.com/mcoot/boardbank/internal/api/request"
	"github.com/mcoot/boardbank/internal/api/response"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Start a new session",
		Long: `Create a session on the server and remember it in the state file.

Logging in again starts a fresh session and forgets the current game.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			var result response.Session
			if err := client.Post(ctx, "/api/v1/sessions", request.CreateSessionRequest{Username: args[0]}, &result); err != nil {
				return err
			}

			if err := cfg.SaveState(State{SessionID: result.SessionID, Username: result.Username}); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cfg.RequireSession(); err != nil {
				return err
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()

			var result response.Session
			err := client.Get(ctx, "/api/v1/sessions/me", &result)
			if IsCode(err, apierr.CodeSessionInvalid) {
				return fmt.Errorf("%w: run 'bankctl login' again", err)
			}
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newLobbyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lobby",
		Short: "List games waiting for players",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			var result response.LobbyGames
			if err := client.Get(ctx, "/api/v1/lobby/games", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			var result response.Health
			if err := client.Get(ctx, "/api/v1/health", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
