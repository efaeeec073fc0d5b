package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/corey/seek/internal/adapters/socket"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the daemon's index from the store",
	RunE:  runReindex,
}

func runReindex(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := socket.NewClient(socketPath(paths, cfg))
	if !client.Ping() {
		return errors.New("daemon is not running\n  → start it:  seek daemon start")
	}

	result, err := client.Reindex()
	if err != nil {
		return err
	}
	render(formatReindex(result))
	return nil
}
