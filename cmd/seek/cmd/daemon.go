package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/app"
	"github.com/corey/seek/internal/logging"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the seek daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the foreground",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sockPath := socketPath(paths, cfg)

	if socket.NewClient(sockPath).Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	logging.Init(logging.Config{
		LogDir:     paths.LogDir,
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Debug:      logging.DebugFromEnv(),
	})
	defer logging.Shutdown()

	a, err := app.New(app.Options{BaseDir: baseDir(), Config: cfg})
	if err != nil {
		return fmt.Errorf("init: %w", explainStoreError(err, sockPath))
	}
	if err := a.Start(); err != nil {
		a.Stop()
		return err
	}
	os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644)
	defer paths.CleanEphemeral()

	fmt.Printf("⚡ seek daemon started at %s\n", a.Server.Addr())
	if a.WebServer != nil && a.WebServer.Port() != 0 {
		fmt.Printf("  http:   %s\n", a.WebServer.URL())
	}
	if cfg.Corpus.SnapshotPath != "" {
		fmt.Printf("  corpus: %s\n", cfg.Corpus.SnapshotPath)
	}

	// Wait for a signal or a remote shutdown request.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := socket.NewClient(socketPath(paths, cfg))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return err
	}
	fmt.Println("⚡ daemon stopped")
	return nil
}
