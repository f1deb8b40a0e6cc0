package cli

import (
	"github.com/spf13/cobra"

	application "github.com/rocketscienceinc/tictactoe-timetravel/internal"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve games over HTTP and WebSocket",
		Long: `Start the game server.

Browsers play over the WebSocket endpoint /ws. Sessions are kept in memory
or in Redis depending on the storage setting.

Example:
  tictactoe serve --config ./config.yml
  STORAGE=redis REDIS_HOST=localhost tictactoe serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.OutOrStdout(), rootOpts.Config.LogLevel)
			if err != nil {
				return err
			}

			return application.RunApp(logger, rootOpts.Config)
		},
	}
}
