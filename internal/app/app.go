// Package app wires the corpus store, index holder, servers and snapshot
// watcher into the seek daemon.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/corey/seek/internal/adapters/bbolt"
	fsw "github.com/corey/seek/internal/adapters/fsnotify"
	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/adapters/web"
	"github.com/corey/seek/internal/config"
	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/domain/search"
	"github.com/corey/seek/internal/logging"
	"github.com/corey/seek/internal/ports"
)

const (
	// rebuildTimeout bounds one corpus collection from the store.
	rebuildTimeout = 30 * time.Second
	// latencyWindow is the rolling window health reports search latency over.
	latencyWindow = time.Minute
)

// App is the top-level container wiring all components together.
type App struct {
	BaseDir string
	Paths   *Paths
	Config  *config.Config

	Store     *bbolt.Store
	Holder    *index.Holder
	Pool      *ants.Pool
	Server    *socket.Server
	WebServer *web.Server  // nil when daemon.http_port is -1
	Watcher   *fsw.Watcher // nil without a watched snapshot

	log      *slog.Logger
	latency  *LatencyTracker
	importMu sync.Mutex // serializes snapshot imports
	started  time.Time
}

// Options holds initialization parameters for the App.
type Options struct {
	BaseDir string         // directory holding .seek/ (required)
	Config  *config.Config // nil loads .seek/config.yaml
}

// New creates an App with all dependencies wired. Does not start services.
func New(opts Options) (*App, error) {
	if opts.BaseDir == "" {
		return nil, fmt.Errorf("base directory required")
	}
	paths := NewPaths(opts.BaseDir)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(paths.Config); err != nil {
			return nil, err
		}
	}

	store, err := bbolt.NewStore(paths.DB, cfg.Corpus.Profile)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	pool, err := ants.NewPool(cfg.Daemon.PoolSize)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	a := &App{
		BaseDir: opts.BaseDir,
		Paths:   paths,
		Config:  cfg,
		Store:   store,
		Holder:  index.NewHolder(cfg.Index.HistoryLimit),
		Pool:    pool,
		log:     logging.ForComponent(logging.CompApp),
		latency: NewLatencyTracker(latencyWindow),
	}

	sockPath := cfg.Daemon.SocketPath
	if sockPath == "" {
		sockPath = socket.SocketPath(paths.Root)
	}
	a.Server = socket.NewServer(a, pool, sockPath, logging.ForComponent(logging.CompSocket))

	if cfg.Daemon.HTTPPort >= 0 {
		a.WebServer = web.NewServer(a, pool, paths.PortFile, logging.ForComponent(logging.CompWeb))
	}

	if cfg.Corpus.SnapshotPath != "" && cfg.Corpus.Watch {
		watcher, err := fsw.NewWatcher(time.Duration(cfg.Daemon.DebounceMs) * time.Millisecond)
		if err != nil {
			pool.Release()
			store.Close()
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		watchLog := logging.ForComponent(logging.CompWatch)
		watcher.OnError = func(err error) { watchLog.Warn("watch error", "error", err) }
		a.Watcher = watcher
	}

	return a, nil
}

// Start builds the first epoch and begins serving (socket + HTTP + watcher).
// A configured snapshot is imported first; failures there are logged and the
// store contents are served instead.
func (a *App) Start() error {
	a.started = time.Now()

	if path := a.Config.Corpus.SnapshotPath; path != "" {
		if err := a.importSnapshot(path); err != nil {
			a.log.Warn("initial import failed", "path", path, "error", err)
		}
	}
	if _, err := a.rebuild(); err != nil {
		a.log.Warn("initial build failed", "error", err)
	}

	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	// HTTP is non-fatal if the port is unavailable.
	if a.WebServer != nil {
		port := a.Config.Daemon.HTTPPort
		if port == 0 {
			port = web.DefaultPort(a.Paths.Root)
		}
		if err := a.WebServer.Start(port); err != nil {
			a.log.Warn("http api unavailable", "error", err)
		}
	}

	if a.Watcher != nil {
		if err := a.Watcher.Watch(a.Config.Corpus.SnapshotPath, a.onSnapshotChanged); err != nil {
			a.log.Warn("snapshot watcher unavailable", "error", err)
		}
	}
	return nil
}

// Stop shuts down all services and closes the store.
func (a *App) Stop() error {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	if a.WebServer != nil {
		a.WebServer.Stop()
	}
	a.Server.Stop()
	a.Pool.Release()
	return a.Store.Close()
}

// Search answers a query against the live epoch. Implements socket.AppQueries.
func (a *App) Search(params socket.SearchParams, requestID string) *ports.Response {
	start := time.Now()
	defer func() { a.latency.Record(time.Since(start)) }()

	limit := params.Limit
	if limit <= 0 {
		limit = a.Config.Search.Limit
	}
	return search.RunSearch(params.Query, a.Holder.Current(), search.Options{
		Subfilter:    params.Subfilter,
		Navigation:   params.Navigation,
		FocusedTabID: params.FocusedTabID,
		Limit:        limit,
		WebSearch:    params.WebSearch || a.Config.Search.WebSearch,
		RequestID:    requestID,
	})
}

// Health reports the live epoch and the last rebuild failure.
// Implements socket.AppQueries.
func (a *App) Health() socket.HealthResult {
	h := socket.HealthResult{Status: "ok"}
	ep := a.Holder.Current()
	if ep == nil {
		h.Status = "empty"
	} else {
		h.Generation = ep.Generation
		h.Counts = ep.Metadata.Counts
		h.TermCount = ep.Metadata.Terms
		h.BuiltAt = ep.BuiltAt.Format(time.RFC3339)
	}
	if at, err := a.Holder.LastFailure(); err != nil {
		h.Status = "stale"
		h.LastError = err.Error()
		h.LastErrorAt = at.Format(time.RFC3339)
	}
	var p50 time.Duration
	h.RecentSearches, p50 = a.latency.Snapshot()
	if p50 > 0 {
		h.SearchP50 = p50.String()
	}
	return h
}

// Reindex rebuilds the epoch from the store. Implements socket.AppQueries.
func (a *App) Reindex() (socket.ReindexResult, error) {
	return a.rebuild()
}

// Import loads a snapshot file into the store and rebuilds.
// Implements socket.AppQueries.
func (a *App) Import(path string) (socket.ReindexResult, error) {
	if err := a.importSnapshot(path); err != nil {
		return socket.ReindexResult{}, err
	}
	return a.rebuild()
}

func (a *App) rebuild() (socket.ReindexResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
	defer cancel()

	ep, err := a.Holder.Rebuild(ctx, a.Store)
	if err != nil {
		return socket.ReindexResult{}, err
	}
	elapsed := time.Since(start)
	a.log.Info("epoch built",
		"generation", ep.Generation,
		"items", len(ep.Items),
		"terms", ep.Metadata.Terms,
		"elapsed", elapsed)

	return socket.ReindexResult{
		Generation: ep.Generation,
		Counts:     ep.Metadata.Counts,
		TermCount:  ep.Metadata.Terms,
		ElapsedMs:  elapsed.Milliseconds(),
	}, nil
}
