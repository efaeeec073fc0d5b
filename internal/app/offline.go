package app

import (
	"context"
	"fmt"

	"github.com/corey/seek/internal/adapters/bbolt"
	"github.com/corey/seek/internal/adapters/snapshot"
	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/config"
	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/domain/search"
	"github.com/corey/seek/internal/ports"
)

// SearchOffline answers one query without a daemon by building an epoch
// straight from the store. The store must not be held open by a daemon.
// A profile that was never imported is served from the configured snapshot.
func SearchOffline(ctx context.Context, baseDir string, cfg *config.Config, params socket.SearchParams) (*ports.Response, error) {
	store, err := bbolt.NewStore(NewPaths(baseDir).DB, cfg.Corpus.Profile)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	provider, err := offlineProvider(store, cfg.Corpus.SnapshotPath)
	if err != nil {
		return nil, err
	}
	ep, err := index.NewHolder(cfg.Index.HistoryLimit).Rebuild(ctx, provider)
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	return search.RunSearch(params.Query, ep, search.Options{
		Subfilter:    params.Subfilter,
		Navigation:   params.Navigation,
		FocusedTabID: params.FocusedTabID,
		Limit:        limit,
		WebSearch:    params.WebSearch || cfg.Search.WebSearch,
	}), nil
}

func offlineProvider(store *bbolt.Store, snapshotPath string) (ports.CorpusProvider, error) {
	if snapshotPath == "" {
		return store, nil
	}
	saved, err := store.SavedAt()
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if !saved.IsZero() {
		return store, nil
	}
	corpus, err := snapshot.Load(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snapshot.Static{Corpus: corpus}, nil
}

// ImportOffline writes the snapshot at path into the store without a daemon.
func ImportOffline(baseDir string, cfg *config.Config, path string) (*ports.Corpus, error) {
	corpus, err := snapshot.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	paths := NewPaths(baseDir)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := bbolt.NewStore(paths.DB, cfg.Corpus.Profile)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.SaveCorpus(corpus); err != nil {
		return nil, fmt.Errorf("save corpus: %w", err)
	}
	return corpus, nil
}
