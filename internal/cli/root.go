package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg       *Config
	client    *Client
	errWriter io.Writer = os.Stderr
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "bankctl",
		Short: "CLI tool for the board game bank",
		Long: `bankctl is a CLI tool for playing the banker in a board game.

It logs in over the JSON API, then drives games over the realtime
connection: creating and joining games, moving money between players and
the bank, and streaming live updates.

The session id and current game are kept in a state file so that every
command rejoins the same game as the same player.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			errWriter = cmd.ErrOrStderr()

			st, err := cfg.LoadState()
			if err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, st.SessionID)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: BOARDBANK_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "State file path (env: BOARDBANK_STATE_FILE)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "How long to wait for each server response")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Print every realtime frame to stderr")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newLobbyCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newLeaveCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newFinishCmd())
	rootCmd.AddCommand(newPayCmd())
	rootCmd.AddCommand(newDepositCmd())
	rootCmd.AddCommand(newWithdrawCmd())
	rootCmd.AddCommand(newPassGoCmd())
	rootCmd.AddCommand(newEventsCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// requestContext bounds a single command by the configured timeout
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.Timeout)
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}
