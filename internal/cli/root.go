package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
)

const defaultConfigPath = "./config.yml"

// RootOptions - flags shared by all commands and the state they load.
type RootOptions struct {
	ConfigPath string

	Config *config.Config
}

// NewRootCommand creates the root command with the serve and play subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe with move history",
		Long: `Tic-tac-toe for two players at one board.

Every move is kept in the history. Jumping back to an earlier step and
playing from there discards the moves after it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			conf, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}

			opts.Config = conf
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", defaultConfigPath, "path to config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))

	return cmd
}

// newLogger - JSON logs at the configured level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
