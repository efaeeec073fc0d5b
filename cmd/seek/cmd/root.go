package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/app"
	"github.com/corey/seek/internal/config"
)

var baseDirFlag string

var rootCmd = &cobra.Command{
	Use:           "seek",
	Short:         "seek: local search over tabs, bookmarks, history and downloads",
	Long:          "Ranked, typo-tolerant search over browsing artifacts with scoped filters, facets and tab commands.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// baseDir returns the directory holding .seek/ (home by default).
func baseDir() string {
	if baseDirFlag != "" {
		return baseDirFlag
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// loadConfig resolves paths and reads .seek/config.yaml.
func loadConfig() (*app.Paths, *config.Config, error) {
	paths := app.NewPaths(baseDir())
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, nil, err
	}
	return paths, cfg, nil
}

// socketPath honors daemon.socket_path before the derived default.
func socketPath(paths *app.Paths, cfg *config.Config) string {
	if cfg.Daemon.SocketPath != "" {
		return cfg.Daemon.SocketPath
	}
	return socket.SocketPath(paths.Root)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDirFlag, "dir", "", "base directory holding .seek/ (default: home)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable color output")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(configCmd)
}
