package app

import (
	"fmt"

	"github.com/corey/seek/internal/adapters/snapshot"
)

// onSnapshotChanged re-imports the watched snapshot and rebuilds. On any
// failure the previous epoch keeps serving.
func (a *App) onSnapshotChanged(path string) {
	if err := a.importSnapshot(path); err != nil {
		a.log.Warn("snapshot import failed, keeping current epoch", "path", path, "error", err)
		return
	}
	if _, err := a.rebuild(); err != nil {
		a.log.Warn("rebuild failed, keeping current epoch", "error", err)
	}
}

// importSnapshot decodes the file at path and replaces the stored corpus.
func (a *App) importSnapshot(path string) error {
	a.importMu.Lock()
	defer a.importMu.Unlock()

	corpus, err := snapshot.Load(path)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := a.Store.SaveCorpus(corpus); err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}
	a.log.Debug("snapshot imported", "path", path,
		"tabs", len(corpus.Tabs),
		"bookmarks", len(corpus.Bookmarks),
		"history", len(corpus.History),
		"downloads", len(corpus.Downloads),
		"topsites", len(corpus.TopSites))
	return nil
}
