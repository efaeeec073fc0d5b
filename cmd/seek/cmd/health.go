package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/seek/internal/adapters/socket"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon status",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := socket.NewClient(socketPath(paths, cfg))

	if !client.Ping() {
		fmt.Println("⚡ seek daemon is not running")
		return nil
	}

	health, err := client.Health()
	if err != nil {
		return err
	}
	render(formatHealth(health))
	return nil
}
