package cli

import (
	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/terminal"
)

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play a local game in the terminal.

Type help at the prompt for the list of commands. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), rootOpts.Config.LogLevel)
			if err != nil {
				return err
			}

			return terminal.NewREPL(logger, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}
