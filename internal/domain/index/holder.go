package index

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/seek/internal/ports"
)

// Holder owns the current epoch and swaps it atomically on rebuild.
// Readers call Current once per query and keep using that epoch; a rebuild
// never touches an epoch a reader holds.
type Holder struct {
	current atomic.Pointer[Epoch]
	gen     atomic.Uint64

	// rebuildMu serializes rebuilds so generations are published in order.
	rebuildMu    sync.Mutex
	historyLimit int
	lastErr      atomic.Pointer[rebuildFailure]
}

type rebuildFailure struct {
	err error
	at  time.Time
}

// NewHolder creates an empty holder. historyLimit <= 0 uses DefaultHistoryLimit.
func NewHolder(historyLimit int) *Holder {
	return &Holder{historyLimit: historyLimit}
}

// Current returns the live epoch, or nil before the first successful build.
func (h *Holder) Current() *Epoch {
	return h.current.Load()
}

// Rebuild collects a fresh corpus from provider and publishes a new epoch.
// On failure the previous epoch stays live and the error is returned.
func (h *Holder) Rebuild(ctx context.Context, provider ports.CorpusProvider) (*Epoch, error) {
	h.rebuildMu.Lock()
	defer h.rebuildMu.Unlock()

	corpus, err := Collect(ctx, provider, h.historyLimit)
	if err != nil {
		h.lastErr.Store(&rebuildFailure{err: err, at: time.Now()})
		return h.current.Load(), fmt.Errorf("rebuild: %w", err)
	}
	return h.publish(corpus), nil
}

func (h *Holder) publish(corpus *ports.Corpus) *Epoch {
	ep := Build(corpus, BuildOptions{
		HistoryLimit: h.historyLimit,
		Generation:   h.gen.Add(1),
	})
	h.current.Store(ep)
	h.lastErr.Store(nil)
	return ep
}

// LastFailure returns when the most recent rebuild failed and why. Both are
// zero once a later build succeeds.
func (h *Holder) LastFailure() (time.Time, error) {
	f := h.lastErr.Load()
	if f == nil {
		return time.Time{}, nil
	}
	return f.at, f.err
}
