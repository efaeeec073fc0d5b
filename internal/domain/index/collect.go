package index

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/corey/seek/internal/ports"
)

// Collect materializes a corpus from provider. The five collections are
// fetched concurrently; the first failure cancels the rest and is returned
// as a *ports.CorpusError naming the collection.
func Collect(ctx context.Context, provider ports.CorpusProvider, historyLimit int) (*ports.Corpus, error) {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	var corpus ports.Corpus
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tabs, err := provider.Tabs(gctx)
		if err != nil {
			return &ports.CorpusError{Kind: ports.KindTab, Err: err}
		}
		corpus.Tabs = tabs
		return nil
	})
	g.Go(func() error {
		bookmarks, err := provider.Bookmarks(gctx)
		if err != nil {
			return &ports.CorpusError{Kind: ports.KindBookmark, Err: err}
		}
		corpus.Bookmarks = bookmarks
		return nil
	})
	g.Go(func() error {
		history, err := provider.History(gctx, historyLimit)
		if err != nil {
			return &ports.CorpusError{Kind: ports.KindHistory, Err: err}
		}
		if len(history) > historyLimit {
			history = history[:historyLimit]
		}
		corpus.History = history
		return nil
	})
	g.Go(func() error {
		downloads, err := provider.Downloads(gctx)
		if err != nil {
			return &ports.CorpusError{Kind: ports.KindDownload, Err: err}
		}
		corpus.Downloads = downloads
		return nil
	})
	g.Go(func() error {
		sites, err := provider.TopSites(gctx)
		if err != nil {
			return &ports.CorpusError{Kind: ports.KindTopSite, Err: err}
		}
		corpus.TopSites = sites
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &corpus, nil
}
