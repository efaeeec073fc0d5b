package index

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/seek/internal/ports"
)

// =============================================================================
// Collect + Holder: fan-out, error tagging, stale-read-on-error
// =============================================================================

// fakeProvider serves a corpus and can fail one collection.
type fakeProvider struct {
	mu        sync.Mutex
	corpus    ports.Corpus
	failKind  ports.Kind
	err       error
	lastLimit int
}

func (f *fakeProvider) fail(kind ports.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKind == kind {
		return f.err
	}
	return nil
}

func (f *fakeProvider) Tabs(context.Context) ([]ports.TabRecord, error) {
	if err := f.fail(ports.KindTab); err != nil {
		return nil, err
	}
	return f.corpus.Tabs, nil
}

func (f *fakeProvider) Bookmarks(context.Context) ([]ports.BookmarkRecord, error) {
	if err := f.fail(ports.KindBookmark); err != nil {
		return nil, err
	}
	return f.corpus.Bookmarks, nil
}

func (f *fakeProvider) History(_ context.Context, limit int) ([]ports.HistoryRecord, error) {
	if err := f.fail(ports.KindHistory); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	// Ignores limit on purpose: Collect must cap anyway.
	return f.corpus.History, nil
}

func (f *fakeProvider) Downloads(context.Context) ([]ports.DownloadRecord, error) {
	if err := f.fail(ports.KindDownload); err != nil {
		return nil, err
	}
	return f.corpus.Downloads, nil
}

func (f *fakeProvider) TopSites(context.Context) ([]ports.TopSiteRecord, error) {
	if err := f.fail(ports.KindTopSite); err != nil {
		return nil, err
	}
	return f.corpus.TopSites, nil
}

func TestCollect(t *testing.T) {
	p := &fakeProvider{corpus: *sampleCorpus()}
	for i := 0; i < 5; i++ {
		p.corpus.History = append(p.corpus.History, ports.HistoryRecord{Title: "extra"})
	}

	corpus, err := Collect(context.Background(), p, 3)
	require.NoError(t, err)
	assert.Len(t, corpus.Tabs, 1)
	assert.Len(t, corpus.Bookmarks, 2)
	assert.Len(t, corpus.History, 3)
	assert.Equal(t, 3, p.lastLimit)
	assert.Len(t, corpus.TopSites, 1)
}

func TestCollect_DefaultLimit(t *testing.T) {
	p := &fakeProvider{}
	_, err := Collect(context.Background(), p, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, p.lastLimit)
}

func TestCollect_TagsFailingKind(t *testing.T) {
	boom := errors.New("permission denied")
	p := &fakeProvider{corpus: *sampleCorpus(), failKind: ports.KindBookmark, err: boom}

	corpus, err := Collect(context.Background(), p, 0)
	require.Error(t, err)
	assert.Nil(t, corpus)
	assert.ErrorIs(t, err, boom)

	var ce *ports.CorpusError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ports.KindBookmark, ce.Kind)
	assert.Equal(t, "corpus bookmark: permission denied", ce.Error())
}

func TestHolder_EmptyBeforeBuild(t *testing.T) {
	h := NewHolder(0)
	assert.Nil(t, h.Current())
	at, err := h.LastFailure()
	assert.NoError(t, err)
	assert.True(t, at.IsZero())
}

func TestHolder_RebuildPublishesGenerations(t *testing.T) {
	h := NewHolder(0)
	p := &fakeProvider{corpus: *sampleCorpus()}

	ep1, err := h.Rebuild(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ep1.Generation)
	assert.Same(t, ep1, h.Current())

	ep2, err := h.Rebuild(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ep2.Generation)
	assert.Same(t, ep2, h.Current())
}

func TestHolder_FailedRebuildKeepsEpoch(t *testing.T) {
	h := NewHolder(0)
	p := &fakeProvider{corpus: *sampleCorpus()}

	good, err := h.Rebuild(context.Background(), p)
	require.NoError(t, err)

	p.mu.Lock()
	p.failKind, p.err = ports.KindTab, errors.New("gone")
	p.mu.Unlock()

	got, err := h.Rebuild(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corpus tab: gone")
	assert.Same(t, good, got)
	assert.Same(t, good, h.Current())

	at, ferr := h.LastFailure()
	assert.Error(t, ferr)
	assert.False(t, at.IsZero())

	// A later success clears the failure.
	p.mu.Lock()
	p.failKind = ""
	p.mu.Unlock()
	_, err = h.Rebuild(context.Background(), p)
	require.NoError(t, err)
	_, ferr = h.LastFailure()
	assert.NoError(t, ferr)
}

func TestHolder_ReaderKeepsOldEpoch(t *testing.T) {
	h := NewHolder(0)
	old, err := h.Rebuild(context.Background(), &fakeProvider{corpus: *sampleCorpus()})
	require.NoError(t, err)
	oldTitle := old.Item(0).Title

	next := &fakeProvider{corpus: ports.Corpus{Tabs: []ports.TabRecord{{TabID: 1, Title: "Replaced", URL: "https://r.example"}}}}
	_, err = h.Rebuild(context.Background(), next)
	require.NoError(t, err)

	assert.Equal(t, oldTitle, old.Item(0).Title)
	assert.Equal(t, 6, len(old.Items))
	assert.Equal(t, "Replaced", h.Current().Item(0).Title)
	assert.Equal(t, uint64(2), h.Current().Generation)
}

func TestHolder_ConcurrentReadsDuringRebuild(t *testing.T) {
	h := NewHolder(0)
	p := &fakeProvider{corpus: *sampleCorpus()}
	_, err := h.Rebuild(context.Background(), p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ep := h.Current()
				if assert.NotNil(t, ep) {
					assert.Len(t, ep.Items, 6)
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		_, err := h.Rebuild(context.Background(), p)
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, uint64(11), h.Current().Generation)
}
