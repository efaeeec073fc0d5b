package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/app"
)

var importCmd = &cobra.Command{
	Use:   "import <snapshot.json|snapshot.yaml>",
	Short: "Load a corpus snapshot into the store",
	Long:  "Replaces the stored corpus with the snapshot. A running daemon imports it and rebuilds its index.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	sockPath := socketPath(paths, cfg)
	client := socket.NewClient(sockPath)
	if client.Ping() {
		result, err := client.Import(path)
		if err != nil {
			return err
		}
		render(formatReindex(result))
		return nil
	}

	corpus, err := app.ImportOffline(baseDir(), cfg, path)
	if err != nil {
		return explainStoreError(err, sockPath)
	}
	render(fmt.Sprintf("%s⚡ imported%s %d tabs, %d bookmarks, %d history, %d downloads, %d top sites\n",
		colorBold, colorReset,
		len(corpus.Tabs), len(corpus.Bookmarks), len(corpus.History), len(corpus.Downloads), len(corpus.TopSites)))
	return nil
}
