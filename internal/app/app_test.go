package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/config"
	"github.com/corey/seek/internal/ports"
)

// =============================================================================
// App lifecycle: import, build, search, health, watch-triggered rebuilds
// =============================================================================

const snapshotV1 = `{
  "tabs": [
    {"tab_id": 1, "window_id": 1, "title": "GitHub", "url": "https://github.com", "active": true},
    {"tab_id": 2, "window_id": 1, "title": "Google", "url": "https://google.com"}
  ],
  "bookmarks": [{"title": "Go Docs", "url": "https://go.dev/doc", "folder_path": ["Bar"]}],
  "history": [{"title": "GitHub Issues", "url": "https://github.com/issues", "last_visit_time": 1700000000000}],
  "downloads": []
}`

const snapshotV2 = `{
  "tabs": [
    {"tab_id": 9, "window_id": 1, "title": "Zettelkasten Notes", "url": "https://notes.example.com", "active": true}
  ],
  "bookmarks": [],
  "history": [],
  "downloads": []
}`

func testConfig(snapshotPath string, watch bool) *config.Config {
	cfg := config.Default()
	cfg.Daemon.HTTPPort = -1
	cfg.Daemon.PoolSize = 2
	cfg.Daemon.DebounceMs = 20
	cfg.Corpus.SnapshotPath = snapshotPath
	cfg.Corpus.Watch = watch
	return cfg
}

func writeSnapshot(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(Options{BaseDir: t.TempDir(), Config: cfg})
	require.NoError(t, err)
	return a
}

func startTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a := newTestApp(t, cfg)
	require.NoError(t, a.Start())
	t.Cleanup(func() { a.Stop() })
	return a
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestNew_LoadsConfigFile(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(base)
	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, os.WriteFile(paths.Config, []byte("daemon:\n  http_port: -1\nsearch:\n  limit: 3\n"), 0644))

	a, err := New(Options{BaseDir: base})
	require.NoError(t, err)
	defer a.Stop()

	assert.Equal(t, 3, a.Config.Search.Limit)
	assert.Nil(t, a.WebServer)
	assert.Nil(t, a.Watcher)
}

func TestApp_HealthBeforeBuild(t *testing.T) {
	a := newTestApp(t, testConfig("", false))
	defer a.Stop()

	h := a.Health()
	assert.Equal(t, "empty", h.Status)
	assert.Equal(t, uint64(0), h.Generation)

	resp := a.Search(socket.SearchParams{Query: "git"}, "r1")
	assert.Empty(t, resp.Results)
	assert.Equal(t, "r1", resp.RequestID)

	h = a.Health()
	assert.Equal(t, 1, h.RecentSearches)
	assert.Empty(t, h.SearchP50, "no median below five searches")
}

func TestApp_StartImportsSnapshot(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "browser.json")
	writeSnapshot(t, snap, snapshotV1)

	a := startTestApp(t, testConfig(snap, false))

	h := a.Health()
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, uint64(1), h.Generation)
	assert.Equal(t, 2, h.Counts[ports.KindTab])
	assert.Equal(t, 1, h.Counts[ports.KindBookmark])
	assert.NotEmpty(t, h.BuiltAt)

	resp := a.Search(socket.SearchParams{Query: "git"}, "r2")
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "GitHub", resp.Results[0].Title)
	assert.Equal(t, ports.KindTab, resp.Results[0].Kind)
	assert.Equal(t, uint64(1), resp.Generation)
}

func TestApp_SearchUsesConfigDefaults(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "browser.json")
	writeSnapshot(t, snap, snapshotV1)
	cfg := testConfig(snap, false)
	cfg.Search.WebSearch = true
	cfg.Search.Limit = 1

	a := startTestApp(t, cfg)

	resp := a.Search(socket.SearchParams{Query: "github"}, "")
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "GitHub", resp.Results[0].Title)
	assert.Equal(t, ports.KindWebSearch, resp.Results[1].Kind)
}

func TestApp_Reindex(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "browser.json")
	writeSnapshot(t, snap, snapshotV1)
	a := startTestApp(t, testConfig(snap, false))

	result, err := a.Reindex()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Generation)
	assert.Equal(t, 2, result.Counts[ports.KindTab])
	assert.Greater(t, result.TermCount, 0)
}

func TestApp_Import(t *testing.T) {
	a := startTestApp(t, testConfig("", false))
	assert.Equal(t, 0, a.Holder.Current().Count(ports.KindTab))

	snap := filepath.Join(t.TempDir(), "browser.yaml")
	writeSnapshot(t, snap, "tabs:\n  - tab_id: 4\n    window_id: 1\n    title: Yaml Tab\n    url: https://yaml.org\n")

	result, err := a.Import(snap)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counts[ports.KindTab])

	resp := a.Search(socket.SearchParams{Query: "yaml"}, "")
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Yaml Tab", resp.Results[0].Title)

	_, err = a.Import(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestApp_BadSnapshotKeepsEpoch(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "browser.json")
	writeSnapshot(t, snap, snapshotV1)
	a := startTestApp(t, testConfig(snap, false))
	before := a.Holder.Current()

	writeSnapshot(t, snap, "{broken")
	a.onSnapshotChanged(snap)

	assert.Same(t, before, a.Holder.Current())
	resp := a.Search(socket.SearchParams{Query: "google"}, "")
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Google", resp.Results[0].Title)
}

func TestApp_WatchRebuildsOnChange(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "browser.json")
	writeSnapshot(t, snap, snapshotV1)
	a := startTestApp(t, testConfig(snap, true))
	require.NotNil(t, a.Watcher)

	writeSnapshot(t, snap, snapshotV2)

	require.Eventually(t, func() bool {
		resp := a.Search(socket.SearchParams{Query: "zettelkasten"}, "")
		return len(resp.Results) > 0 && resp.Results[0].Title == "Zettelkasten Notes"
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 0, len(a.Search(socket.SearchParams{Query: "google"}, "").Results))
}

func TestApp_SocketRoundtrip(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "browser.json")
	writeSnapshot(t, snap, snapshotV1)
	a := startTestApp(t, testConfig(snap, false))

	client := socket.NewClient(a.Server.Addr())
	require.True(t, client.Ping())

	result, err := client.Search(socket.SearchParams{Query: "close google"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)
	require.NotNil(t, result.Results[0].Command)
	assert.Equal(t, "tab-close-domain", result.Results[0].Command.CommandID)
}

// =============================================================================
// Offline helpers used by the CLI when no daemon runs
// =============================================================================

func TestImportAndSearchOffline(t *testing.T) {
	base := t.TempDir()
	cfg := testConfig("", false)
	snap := filepath.Join(t.TempDir(), "browser.json")
	writeSnapshot(t, snap, snapshotV1)

	corpus, err := ImportOffline(base, cfg, snap)
	require.NoError(t, err)
	assert.Len(t, corpus.Tabs, 2)

	resp, err := SearchOffline(context.Background(), base, cfg, socket.SearchParams{Query: "tab:"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	// Active tab lists first and the default listing carries no score.
	assert.Equal(t, "GitHub", resp.Results[0].Title)
	assert.Zero(t, resp.Results[0].Score)
}

func TestSearchOfflineFallsBackToSnapshot(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, NewPaths(base).EnsureDirs())
	snap := filepath.Join(t.TempDir(), "browser.json")
	writeSnapshot(t, snap, snapshotV1)
	cfg := testConfig(snap, false)

	resp, err := SearchOffline(context.Background(), base, cfg, socket.SearchParams{Query: "go docs"})
	require.NoError(t, err)
	assert.Contains(t, titlesOf(resp.Results), "Go Docs")

	// Once imported, the store wins over the snapshot file.
	writeSnapshot(t, snap, snapshotV2)
	_, err = ImportOffline(base, cfg, snap)
	require.NoError(t, err)
	writeSnapshot(t, snap, snapshotV1)

	resp, err = SearchOffline(context.Background(), base, cfg, socket.SearchParams{Query: "tab:"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Zettelkasten Notes", resp.Results[0].Title)
}

func titlesOf(results []ports.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestImportOfflineRejectsBadFile(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "browser.txt")
	writeSnapshot(t, snap, "tabs: []")
	_, err := ImportOffline(t.TempDir(), testConfig("", false), snap)
	assert.Error(t, err)
}
