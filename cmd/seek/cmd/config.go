package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows data paths, socket path, daemon status and every config key. No daemon required.",
	RunE:  runConfig,
}

var configGetCmd = &cobra.Command{
	Use:   "get <section.key>",
	Short: "Print one config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <section.key> <value>",
	Short: "Set one config value in .seek/config.yaml",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(paths.Config); err != nil {
			return err
		}
		fmt.Printf("⚡ %s = %s (restart the daemon to apply)\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sockPath := socketPath(paths, cfg)

	daemonRunning := socket.NewClient(sockPath).Ping()
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	fmt.Printf("%s⚡ seek config%s\n", colorBold, colorReset)
	fmt.Printf("  Data:       %s\n", paths.Root)
	fmt.Printf("  Config:     %s\n", paths.Config)
	fmt.Printf("  DB:         %s\n", paths.DB)
	fmt.Printf("  Socket:     %s\n", sockPath)
	fmt.Printf("  Daemon:     %s\n", daemonStatus)
	if daemonRunning {
		if portData, err := os.ReadFile(paths.PortFile); err == nil {
			fmt.Printf("  HTTP:       http://localhost:%s\n", strings.TrimSpace(string(portData)))
		}
	}

	fmt.Println()
	for _, key := range config.ListKeys() {
		v, _ := cfg.Get(key)
		fmt.Printf("  %s%-22s%s %s\n", colorGray, key, colorReset, v)
	}
	return nil
}
